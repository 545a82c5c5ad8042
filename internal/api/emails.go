package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mikey/support-triage/internal/core"
)

type updateResponseRequest struct {
	Response string `json:"response"`
}

func (a *API) handleListEmails(w http.ResponseWriter, r *http.Request) {
	records, err := a.inbox.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []*core.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *API) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	record, err := a.inbox.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *API) handleDeleteEmail(w http.ResponseWriter, r *http.Request) {
	if err := a.inbox.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUpdateResponse(w http.ResponseWriter, r *http.Request) {
	var req updateResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, r, &core.ValidationError{Field: "response", Reason: "is required"})
		return
	}

	record, err := a.inbox.UpdateResponse(r.Context(), chi.URLParam(r, "id"), req.Response)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *API) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	record, err := a.inbox.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.inbox.Stats(r.Context(), a.now())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
