package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap/zaptest"
)

type stubGateway struct {
	reply  string
	err    error
	prompt string
}

func (g *stubGateway) Complete(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.reply, g.err
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		gateway    *stubGateway
		sentiment  core.SentimentLabel
		priority   core.PriorityLabel
		wantReply  string
		wantSource core.Source
	}{
		{
			name:       "model reply is trimmed",
			gateway:    &stubGateway{reply: "\n  Dear customer, we are on it.  \n"},
			sentiment:  core.SentimentNeutral,
			priority:   core.PriorityNormal,
			wantReply:  "Dear customer, we are on it.",
			wantSource: core.SourceModel,
		},
		{
			name:       "gateway failure uses template",
			gateway:    &stubGateway{err: fmt.Errorf("%w: timeout", core.ErrGatewayFailure)},
			sentiment:  core.SentimentNegative,
			priority:   core.PriorityUrgent,
			wantReply:  "Thank you for contacting us. We have received your message and will address it immediately. We apologize for any inconvenience caused.",
			wantSource: core.SourceFallback,
		},
		{
			name:       "blank reply uses template",
			gateway:    &stubGateway{reply: "   "},
			sentiment:  core.SentimentPositive,
			priority:   core.PriorityNormal,
			wantReply:  "Thank you for contacting us. We have received your message and will respond as soon as possible.",
			wantSource: core.SourceFallback,
		},
		{
			name:       "unclassified error uses template",
			gateway:    &stubGateway{err: errors.New("boom")},
			sentiment:  core.SentimentNeutral,
			priority:   core.PriorityUrgent,
			wantReply:  "Thank you for contacting us. We have received your message and will address it immediately.",
			wantSource: core.SourceFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewSynthesizer(tt.gateway, zaptest.NewLogger(t))
			reply, source := s.Synthesize(context.Background(), "my order is late", tt.sentiment, tt.priority)
			if reply != tt.wantReply {
				t.Errorf("reply = %q, want %q", reply, tt.wantReply)
			}
			if source != tt.wantSource {
				t.Errorf("source = %q, want %q", source, tt.wantSource)
			}
			for _, want := range []string{"my order is late", string(tt.sentiment), string(tt.priority)} {
				if !strings.Contains(tt.gateway.prompt, want) {
					t.Errorf("prompt %q does not mention %q", tt.gateway.prompt, want)
				}
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	t.Parallel()

	urgentNegative := Template(core.SentimentNegative, core.PriorityUrgent)
	if !strings.Contains(urgentNegative, "immediately") {
		t.Errorf("urgent reply %q lacks the immediate clause", urgentNegative)
	}
	if !strings.Contains(urgentNegative, "apologize") {
		t.Errorf("negative reply %q lacks the apology", urgentNegative)
	}

	normalPositive := Template(core.SentimentPositive, core.PriorityNormal)
	if strings.Contains(normalPositive, "immediately") || strings.Contains(normalPositive, "apologize") {
		t.Errorf("normal positive reply %q has a special clause", normalPositive)
	}

	if Template(core.SentimentNeutral, core.PriorityNormal) != Template(core.SentimentNeutral, core.PriorityNormal) {
		t.Error("Template is not deterministic")
	}
}
