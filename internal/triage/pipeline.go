// Package triage turns a support message into labels, metadata and a
// suggested reply. The language model is tried first; any failure falls
// back to the keyword classifier and pattern extractor.
package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/support-triage/internal/classifier"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/extractor"
	"github.com/mikey/support-triage/internal/responder"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
)

// Hooks are optional callbacks fired as a message moves through the pipeline
type Hooks struct {
	// OnAnalysis fires after the model analysis attempt with its outcome kind
	OnAnalysis func(kind string, duration float64)
	// OnComplete fires once per triaged message
	OnComplete func(sources core.Sources, duration float64)
}

// Pipeline is the triage entry point. It holds no per-message state and is
// safe for concurrent use.
type Pipeline struct {
	gateway     core.Gateway
	synthesizer *responder.Synthesizer
	textProc    *utils.TextProcessor
	maxBodySize int
	logger      *zap.Logger
	hooks       Hooks
}

// NewPipeline creates a new triage pipeline
func NewPipeline(
	gateway core.Gateway,
	synthesizer *responder.Synthesizer,
	textProc *utils.TextProcessor,
	maxBodySize int,
	logger *zap.Logger,
	hooks Hooks,
) *Pipeline {
	return &Pipeline{
		gateway:     gateway,
		synthesizer: synthesizer,
		textProc:    textProc,
		maxBodySize: maxBodySize,
		logger:      logger,
		hooks:       hooks,
	}
}

// Triage analyses a single message. The only error it returns is a
// *core.ValidationError for a nil message or one without text.
func (p *Pipeline) Triage(ctx context.Context, msg *core.Message) (*core.TriageResult, error) {
	if msg == nil {
		return nil, &core.ValidationError{Field: "message", Reason: "is required"}
	}
	text := msg.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &core.ValidationError{Field: "text", Reason: "is required"}
	}

	start := time.Now()
	promptText := p.textProc.ProcessText(text, p.maxBodySize)

	result := &core.TriageResult{}

	outcome := p.analyze(ctx, promptText)
	if p.hooks.OnAnalysis != nil {
		p.hooks.OnAnalysis(outcome.kind.String(), outcome.duration.Seconds())
	}

	// Indicators are always keyword-derived, whichever path set the labels
	sentiment := classifier.ClassifySentiment(text)
	priority := classifier.ClassifyPriority(text)
	result.SentimentDetail = sentiment
	result.PriorityDetail = priority

	switch outcome.kind {
	case outcomeOK:
		result.Sentiment = outcome.analysis.Sentiment
		result.Priority = outcome.analysis.Priority
		result.Metadata = outcome.analysis.Metadata
		result.Sources.Analysis = core.SourceModel
	case outcomeGatewayFailure, outcomeParseFailure:
		p.logger.Warn("Model analysis unavailable, using keyword fallback",
			zap.String("sender", msg.Sender),
			zap.String("failure", outcome.kind.String()),
			zap.Error(outcome.err))
		result.Sentiment = sentiment.Label
		result.Priority = priority.Label
		result.Metadata = extractor.Extract(text)
		result.Sources.Analysis = core.SourceFallback
	default:
		panic(fmt.Sprintf("triage: unhandled analysis outcome %d", outcome.kind))
	}

	result.SuggestedResponse, result.Sources.Response = p.synthesizer.Synthesize(
		ctx, promptText, result.Sentiment, result.Priority)

	p.logger.Debug("Message triaged",
		zap.String("sender", msg.Sender),
		zap.String("sentiment", string(result.Sentiment)),
		zap.String("priority", string(result.Priority)),
		zap.String("analysis_source", string(result.Sources.Analysis)),
		zap.String("response_source", string(result.Sources.Response)))

	if p.hooks.OnComplete != nil {
		p.hooks.OnComplete(result.Sources, time.Since(start).Seconds())
	}
	return result, nil
}

// TriageText analyses raw text as the body of a message with no other fields
func (p *Pipeline) TriageText(ctx context.Context, text string) (*core.TriageResult, error) {
	return p.Triage(ctx, &core.Message{Body: text})
}
