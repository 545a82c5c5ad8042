package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/support-triage/internal/core"
)

type stubGateway struct {
	calls  int
	closed bool
}

func (s *stubGateway) Complete(context.Context, string) (string, error) {
	s.calls++
	return "ok", nil
}

func (s *stubGateway) Close() error {
	s.closed = true
	return nil
}

func TestWrap_Disabled(t *testing.T) {
	t.Parallel()

	next := &stubGateway{}
	if got := Wrap(next, 0, 5); got != core.Gateway(next) {
		t.Errorf("Wrap with zero rate = %T, want the wrapped gateway", got)
	}
}

func TestComplete_Burst(t *testing.T) {
	t.Parallel()

	next := &stubGateway{}
	gw := Wrap(next, 1, 2)

	for i := 0; i < 2; i++ {
		if _, err := gw.Complete(context.Background(), "p"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := gw.Complete(ctx, "p")
	if !errors.Is(err, core.ErrGatewayFailure) {
		t.Errorf("third call error = %v, want ErrGatewayFailure", err)
	}
	if next.calls != 2 {
		t.Errorf("calls = %d, want 2", next.calls)
	}
}

func TestClose_Forwards(t *testing.T) {
	t.Parallel()

	next := &stubGateway{}
	gw := Wrap(next, 10, 1).(*Gateway)
	if err := gw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !next.closed {
		t.Error("wrapped gateway was not closed")
	}
}
