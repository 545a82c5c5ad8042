package intake

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap/zaptest"
)

func TestIMAPIntakeRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	in := NewIMAPIntake(&fakeImporter{}, zaptest.NewLogger(t), config.IMAPIntakeConfig{
		Address:  "imap.example.com:993",
		Schedule: "every tuesday",
	})
	var cfgErr *core.ConfigurationError
	if err := in.Start(); !errors.As(err, &cfgErr) || cfgErr.Setting != "intake.imap.schedule" {
		t.Fatalf("Start() error = %v, want ConfigurationError for intake.imap.schedule", err)
	}
}

func TestIMAPIntakeNextWait(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  config.IMAPIntakeConfig
		want time.Duration
	}{
		{name: "interval", cfg: config.IMAPIntakeConfig{PollInterval: 5 * time.Minute}, want: 5 * time.Minute},
		{name: "zero interval", cfg: config.IMAPIntakeConfig{}, want: time.Minute},
		{name: "hourly schedule", cfg: config.IMAPIntakeConfig{PollInterval: time.Minute, Schedule: "0 * * * *"}, want: 30 * time.Minute},
		{name: "quarter hour schedule", cfg: config.IMAPIntakeConfig{Schedule: "*/15 * * * *"}, want: 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := NewIMAPIntake(&fakeImporter{}, zaptest.NewLogger(t), tt.cfg)
			if got := in.nextWait(now); got != tt.want {
				t.Errorf("nextWait = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIMAPIntakeImportEachKeepsGoingPastFailures(t *testing.T) {
	t.Parallel()

	importer := &fakeImporter{failSender: "broken@example.com"}
	in := NewIMAPIntake(importer, zaptest.NewLogger(t), config.IMAPIntakeConfig{})

	batch := []fetchedMessage{
		{uid: 11, msg: core.Message{Sender: "a@example.com", Body: "first"}},
		{uid: 12, msg: core.Message{Sender: "broken@example.com", Body: "second"}},
		{uid: 13, msg: core.Message{Sender: "c@example.com", Body: "third"}},
	}
	handled, err := in.importEach(context.Background(), batch)
	if err == nil {
		t.Fatal("importEach() error = nil, want the failed message reported")
	}
	if want := []uint32{11, 13}; !reflect.DeepEqual(handled, want) {
		t.Errorf("handled = %v, want %v", handled, want)
	}
	if len(importer.messages) != 2 {
		t.Errorf("imported %d messages, want 2", len(importer.messages))
	}
}

func TestIMAPIntakeImportEachStopsOnCancel(t *testing.T) {
	t.Parallel()

	importer := &fakeImporter{}
	in := NewIMAPIntake(importer, zaptest.NewLogger(t), config.IMAPIntakeConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	handled, err := in.importEach(ctx, []fetchedMessage{{uid: 1, msg: core.Message{Sender: "a@example.com", Body: "x"}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("importEach() error = %v, want context.Canceled", err)
	}
	if len(handled) != 0 || len(importer.messages) != 0 {
		t.Errorf("handled = %v, imported = %d, want nothing", handled, len(importer.messages))
	}
}
