package gemini

import (
	"fmt"
	"io"
	"net/http"
)

// singleShotTransport authenticates requests with the API key and returns
// 429 and 5xx responses as transport errors. The client library only retries
// API errors, so each Complete call issues exactly one request.
type singleShotTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *singleShotTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("x-goog-api-key", t.apiKey)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("gemini returned %s: %s", resp.Status, body)
	}
	return resp, nil
}
