package api

import (
	"encoding/json"
	"net/http"

	"github.com/mikey/support-triage/internal/core"
)

type analyzeRequest struct {
	Text any `json:"text"`
}

type sentimentIndicators struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

type sentimentDetails struct {
	Score      string              `json:"score"`
	Summary    string              `json:"summary"`
	Indicators sentimentIndicators `json:"indicators"`
}

type priorityDetails struct {
	Reasons []string `json:"reasons"`
	Summary string   `json:"summary"`
}

type contactDetails struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

type analyzeMetadata struct {
	ContactDetails      contactDetails      `json:"contactDetails"`
	Requirements        []string            `json:"requirements"`
	SentimentIndicators sentimentIndicators `json:"sentimentIndicators"`
	PriorityIndicators  []string            `json:"priorityIndicators"`
}

type analyzeResponse struct {
	Sentiment         core.SentimentLabel `json:"sentiment"`
	SentimentDetails  sentimentDetails    `json:"sentimentDetails"`
	Priority          core.PriorityLabel  `json:"priority"`
	PriorityDetails   priorityDetails     `json:"priorityDetails"`
	Metadata          analyzeMetadata     `json:"metadata"`
	SuggestedResponse string              `json:"suggestedResponse"`
}

func newAnalyzeResponse(res *core.TriageResult) analyzeResponse {
	indicators := sentimentIndicators{
		Positive: nonNil(res.SentimentDetail.MatchedPositive),
		Negative: nonNil(res.SentimentDetail.MatchedNegative),
	}
	reasons := res.PriorityDetail.Reasons()

	return analyzeResponse{
		Sentiment: res.Sentiment,
		SentimentDetails: sentimentDetails{
			Score:      res.SentimentDetail.FormattedScore(),
			Summary:    res.SentimentDetail.Summary(),
			Indicators: indicators,
		},
		Priority: res.Priority,
		PriorityDetails: priorityDetails{
			Reasons: reasons,
			Summary: res.PriorityDetail.Summary(),
		},
		Metadata: analyzeMetadata{
			ContactDetails: contactDetails{
				Emails: nonNil(res.Metadata.Emails),
				Phones: nonNil(res.Metadata.Phones),
			},
			Requirements:        nonNil(res.Metadata.Requirements),
			SentimentIndicators: indicators,
			PriorityIndicators:  reasons,
		},
		SuggestedResponse: res.SuggestedResponse,
	}
}

// handleAnalyze triages the text of one message
func (a *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, r, &core.ValidationError{Field: "text", Reason: "is required"})
		return
	}
	text, ok := req.Text.(string)
	if !ok {
		a.writeError(w, r, &core.ValidationError{Field: "text", Reason: "is required"})
		return
	}

	result, err := a.analyzer.TriageText(r.Context(), text)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newAnalyzeResponse(result))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
