package factory

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/support-triage/internal/adapters/mailer"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap/zaptest"
)

type nopImporter struct{}

func (nopImporter) Import(context.Context, []core.Message) ([]*core.Record, error) {
	return nil, nil
}

func TestCreateIntakes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		settings  map[string]any
		wantNames []string
	}{
		{name: "none enabled"},
		{name: "smtp", settings: map[string]any{"intake.smtp.enabled": true}, wantNames: []string{"smtp"}},
		{
			name:      "both",
			settings:  map[string]any{"intake.smtp.enabled": true, "intake.imap.enabled": true},
			wantNames: []string{"smtp", "imap"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := config.NewEmptyViper()
			for k, val := range tt.settings {
				v.Set(k, val)
			}
			f := NewIntakeFactory(config.NewFromViper(v), zaptest.NewLogger(t), nopImporter{})

			intakes := f.CreateIntakes()
			if len(intakes) != len(tt.wantNames) {
				t.Fatalf("CreateIntakes() returned %d intakes, want %d", len(intakes), len(tt.wantNames))
			}
			for i, in := range intakes {
				if in.Name() != tt.wantNames[i] {
					t.Errorf("intake[%d] = %q, want %q", i, in.Name(), tt.wantNames[i])
				}
			}
		})
	}
}

func TestCreateMailer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings map[string]any
		check    func(core.Mailer) bool
		wantErr  bool
	}{
		{
			name:  "disabled",
			check: func(m core.Mailer) bool { _, ok := m.(*mailer.LogMailer); return ok },
		},
		{
			name:     "smtp",
			settings: map[string]any{"mailer.enabled": true},
			check:    func(m core.Mailer) bool { _, ok := m.(*mailer.SMTPMailer); return ok },
		},
		{
			name:     "resend",
			settings: map[string]any{"mailer.enabled": true, "mailer.provider": "resend", "mailer.api_key": "re_0123456789abcdef"},
			check:    func(m core.Mailer) bool { _, ok := m.(*mailer.ResendMailer); return ok },
		},
		{
			name:     "sendgrid",
			settings: map[string]any{"mailer.enabled": true, "mailer.provider": "sendgrid", "mailer.api_key": "SG.0123456789abcdef"},
			check:    func(m core.Mailer) bool { _, ok := m.(*mailer.SendGridMailer); return ok },
		},
		{
			name:     "sendgrid without key",
			settings: map[string]any{"mailer.enabled": true, "mailer.provider": "sendgrid"},
			wantErr:  true,
		},
		{
			name:     "unknown",
			settings: map[string]any{"mailer.enabled": true, "mailer.provider": "fax"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := config.NewEmptyViper()
			for k, val := range tt.settings {
				v.Set(k, val)
			}
			m, err := NewMailerFactory(config.NewFromViper(v), zaptest.NewLogger(t)).CreateMailer()
			if tt.wantErr {
				var cfgErr *core.ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Errorf("CreateMailer error = %v, want ConfigurationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateMailer: %v", err)
			}
			if !tt.check(m) {
				t.Errorf("mailer = %T", m)
			}
		})
	}
}
