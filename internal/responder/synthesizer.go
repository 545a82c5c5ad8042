// Package responder drafts the reply suggested to the operator for a message.
package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

const responsePrompt = `Customer email: "%s"
Sentiment: %s
Priority: %s
Write a professional, empathetic response to the customer.`

// Synthesizer asks the language model for a reply and falls back to a
// template when the model path fails
type Synthesizer struct {
	gateway core.Gateway
	logger  *zap.Logger
}

// NewSynthesizer creates a new Synthesizer
func NewSynthesizer(gateway core.Gateway, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		gateway: gateway,
		logger:  logger,
	}
}

// Synthesize returns a reply for text given the chosen labels, along with
// the path that produced it. It never fails.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, sentiment core.SentimentLabel, priority core.PriorityLabel) (string, core.Source) {
	prompt := fmt.Sprintf(responsePrompt, text, sentiment, priority)

	reply, err := s.gateway.Complete(ctx, prompt)
	if err == nil {
		reply = strings.TrimSpace(reply)
		if reply != "" {
			return reply, core.SourceModel
		}
		err = fmt.Errorf("%w: empty reply", core.ErrGatewayFailure)
	}

	s.logger.Info("Using template reply", zap.Error(err))
	return Template(sentiment, priority), core.SourceFallback
}

// Template builds the deterministic fallback reply
func Template(sentiment core.SentimentLabel, priority core.PriorityLabel) string {
	action := "respond as soon as possible"
	if priority == core.PriorityUrgent {
		action = "address it immediately"
	}

	reply := "Thank you for contacting us. We have received your message and will " + action + "."
	if sentiment == core.SentimentNegative {
		reply += " We apologize for any inconvenience caused."
	}
	return reply
}
