// Package ratelimit throttles calls to a language model gateway.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/mikey/support-triage/internal/core"
	"golang.org/x/time/rate"
)

// Gateway waits on a token bucket before every completion
type Gateway struct {
	next    core.Gateway
	limiter *rate.Limiter
}

// Wrap returns next unchanged when perSecond is not positive
func Wrap(next core.Gateway, perSecond float64, burst int) core.Gateway {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &Gateway{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Complete blocks until a token is available or ctx ends
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limit wait: %w", core.ErrGatewayFailure, err)
	}
	return g.next.Complete(ctx, prompt)
}

// Close releases the wrapped gateway when it holds resources
func (g *Gateway) Close() error {
	if closer, ok := g.next.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
