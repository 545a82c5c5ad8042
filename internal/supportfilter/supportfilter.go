// Package supportfilter decides which inbound messages belong in the support inbox.
package supportfilter

import (
	"strings"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// Checker matches message subjects against a list of support keywords
type Checker struct {
	keywords []string
	logger   *zap.Logger
}

// NewChecker creates a new support checker. An empty keyword list accepts
// every message.
func NewChecker(keywords []string, logger *zap.Logger) *Checker {
	normalized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if k := strings.ToLower(strings.TrimSpace(keyword)); k != "" {
			normalized = append(normalized, k)
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized support filter", zap.Strings("keywords", normalized))
	}

	return &Checker{
		keywords: normalized,
		logger:   logger,
	}
}

// IsSupportMessage reports whether the message subject mentions a support keyword
func (c *Checker) IsSupportMessage(msg *core.Message) bool {
	if len(c.keywords) == 0 {
		return true
	}

	subject := strings.ToLower(msg.Subject)
	for _, keyword := range c.keywords {
		if strings.Contains(subject, keyword) {
			return true
		}
	}

	if c.logger != nil {
		c.logger.Debug("Message is not a support request",
			zap.String("sender", msg.Sender),
			zap.String("subject", msg.Subject))
	}
	return false
}
