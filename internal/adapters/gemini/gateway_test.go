package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/option"
)

func TestNewGateway_RejectsShortKey(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)
	for _, key := range []string{"", "   ", "short", "  123456789  "} {
		_, err := NewGateway(context.Background(), config.GeminiConfig{APIKey: key, ModelName: "gemini-1.5-flash"},
			logger, utils.NewTextProcessor(logger))
		var cfgErr *core.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("NewGateway(key=%q) error = %v, want ConfigurationError", key, err)
		}
	}
}

func TestCompletionText(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("{\"a\":"), genai.Text("1}")}},
		}},
	}
	got, err := completionText(resp)
	if err != nil {
		t.Fatalf("completionText: %v", err)
	}
	if got != `{"a":1}` {
		t.Errorf("completionText = %q, want %q", got, `{"a":1}`)
	}

	for _, empty := range []*genai.GenerateContentResponse{
		nil,
		{},
		{Candidates: []*genai.Candidate{{}}},
		{Candidates: []*genai.Candidate{{Content: &genai.Content{}}}},
	} {
		if _, err := completionText(empty); !errors.Is(err, core.ErrGatewayFailure) {
			t.Errorf("completionText(%+v) error = %v, want ErrGatewayFailure", empty, err)
		}
	}
}

func TestComplete_ServerErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if got := r.Header.Get("x-goog-api-key"); got != "test-api-key-123" {
			t.Errorf("x-goog-api-key = %q, want %q", got, "test-api-key-123")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`)
	}))
	defer srv.Close()

	logger := zaptest.NewLogger(t)
	gw, err := NewGateway(context.Background(),
		config.GeminiConfig{APIKey: "test-api-key-123", ModelName: "gemini-1.5-flash", Temperature: 0.1, TopP: 0.9, MaxTokens: 256},
		logger, utils.NewTextProcessor(logger), option.WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	defer gw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = gw.Complete(ctx, "classify this")
	if !errors.Is(err, core.ErrGatewayFailure) {
		t.Fatalf("Complete error = %v, want ErrGatewayFailure", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
}

func TestSingleShotTransport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"bad request passes through", http.StatusBadRequest, false},
		{"rate limited", http.StatusTooManyRequests, true},
		{"unavailable", http.StatusServiceUnavailable, true},
		{"internal", http.StatusInternalServerError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, "body")
			}))
			defer srv.Close()

			client := &http.Client{Transport: &singleShotTransport{apiKey: "k", base: http.DefaultTransport}}
			resp, err := client.Get(srv.URL)
			if tt.wantErr {
				if err == nil {
					resp.Body.Close()
					t.Fatalf("status %d: err = nil, want error", tt.status)
				}
				if !strings.Contains(err.Error(), "gemini returned") {
					t.Errorf("err = %v, want gemini status error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("status %d: %v", tt.status, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}
