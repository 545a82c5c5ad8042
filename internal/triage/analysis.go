package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/support-triage/internal/core"
)

const analysisPrompt = `Analyze this customer message and return a JSON object (no markdown, just pure JSON) with these fields:
- sentiment: one of ["Positive", "Negative", "Neutral"]
- priority: one of ["Urgent", "Normal"]
- metadata: { contactDetails: { emails: [], phones: [] }, requirements: [] }

Message: "%s"`

type outcomeKind int

const (
	outcomeOK outcomeKind = iota
	outcomeGatewayFailure
	outcomeParseFailure
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeOK:
		return "ok"
	case outcomeGatewayFailure:
		return "gateway_failure"
	case outcomeParseFailure:
		return "parse_failure"
	default:
		return "unknown"
	}
}

// modelAnalysis is a validated model answer
type modelAnalysis struct {
	Sentiment core.SentimentLabel
	Priority  core.PriorityLabel
	Metadata  core.ContactMetadata
}

// analysisOutcome carries either a model analysis or the reason there is none
type analysisOutcome struct {
	kind     outcomeKind
	analysis modelAnalysis
	err      error
	duration time.Duration
}

// analysisResponse is the JSON document the model is asked to produce
type analysisResponse struct {
	Sentiment string `json:"sentiment"`
	Priority  string `json:"priority"`
	Metadata  struct {
		ContactDetails struct {
			Emails []string `json:"emails"`
			Phones []string `json:"phones"`
		} `json:"contactDetails"`
		Requirements []string `json:"requirements"`
	} `json:"metadata"`
}

func (p *Pipeline) analyze(ctx context.Context, text string) analysisOutcome {
	start := time.Now()

	completion, err := p.gateway.Complete(ctx, fmt.Sprintf(analysisPrompt, text))
	if err != nil {
		if !errors.Is(err, core.ErrGatewayFailure) {
			err = fmt.Errorf("%w: %w", core.ErrGatewayFailure, err)
		}
		return analysisOutcome{kind: outcomeGatewayFailure, err: err, duration: time.Since(start)}
	}

	analysis, err := parseAnalysis(completion)
	if err != nil {
		return analysisOutcome{kind: outcomeParseFailure, err: err, duration: time.Since(start)}
	}
	return analysisOutcome{kind: outcomeOK, analysis: analysis, duration: time.Since(start)}
}

// parseAnalysis decodes and validates a cleaned model completion
func parseAnalysis(completion string) (modelAnalysis, error) {
	var resp analysisResponse
	if err := json.Unmarshal([]byte(completion), &resp); err != nil {
		return modelAnalysis{}, fmt.Errorf("%w: %w", core.ErrParseFailure, err)
	}

	sentiment, ok := parseSentiment(resp.Sentiment)
	if !ok {
		return modelAnalysis{}, fmt.Errorf("%w: unknown sentiment %q", core.ErrParseFailure, resp.Sentiment)
	}
	priority, ok := parsePriority(resp.Priority)
	if !ok {
		return modelAnalysis{}, fmt.Errorf("%w: unknown priority %q", core.ErrParseFailure, resp.Priority)
	}

	return modelAnalysis{
		Sentiment: sentiment,
		Priority:  priority,
		Metadata: core.ContactMetadata{
			Emails:       nonNil(resp.Metadata.ContactDetails.Emails),
			Phones:       nonNil(resp.Metadata.ContactDetails.Phones),
			Requirements: nonNil(resp.Metadata.Requirements),
		},
	}, nil
}

func parseSentiment(s string) (core.SentimentLabel, bool) {
	for _, label := range []core.SentimentLabel{core.SentimentPositive, core.SentimentNegative, core.SentimentNeutral} {
		if strings.EqualFold(strings.TrimSpace(s), string(label)) {
			return label, true
		}
	}
	return "", false
}

func parsePriority(s string) (core.PriorityLabel, bool) {
	for _, label := range []core.PriorityLabel{core.PriorityUrgent, core.PriorityNormal} {
		if strings.EqualFold(strings.TrimSpace(s), string(label)) {
			return label, true
		}
	}
	return "", false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
