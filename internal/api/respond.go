package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) writeInternalError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: "Internal server error"}
	if a.development {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// writeError maps service errors to status codes
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *core.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid input: " + vErr.Field + " " + vErr.Reason})
	case errors.Is(err, core.ErrRecordNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	default:
		a.logger.Error("Request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		a.writeInternalError(w, err)
	}
}
