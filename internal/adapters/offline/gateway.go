// Package offline provides a gateway for running without a language model.
// Every call fails, so triage always takes the keyword fallback path.
package offline

import (
	"context"
	"fmt"

	"github.com/mikey/support-triage/internal/core"
)

// Gateway is a core.Gateway that never reaches a model
type Gateway struct{}

// NewGateway creates a new offline gateway
func NewGateway() *Gateway {
	return &Gateway{}
}

// Complete always returns an error wrapping core.ErrGatewayFailure
func (g *Gateway) Complete(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrGatewayFailure, err)
	}
	return "", fmt.Errorf("%w: offline mode", core.ErrGatewayFailure)
}
