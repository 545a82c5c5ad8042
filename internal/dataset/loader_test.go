package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

const sample = `sender,subject,body,sent_date
alice@example.com,Support needed,"My account is locked, please help",2024-08-19 10:15:00
bob@example.com,Query about pricing,Do you offer discounts?,2024-08-20T08:00:00Z
carol@example.com,Broken row
dave@example.com,Request,No date here,yesterday
`

func TestLoad(t *testing.T) {
	t.Parallel()

	msgs, err := NewLoader(zaptest.NewLogger(t)).Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len(msgs) = %d, want 3", len(msgs))
	}

	if msgs[0].Body != "My account is locked, please help" {
		t.Errorf("body = %q", msgs[0].Body)
	}
	if want := time.Date(2024, 8, 19, 10, 15, 0, 0, time.UTC); !msgs[0].ReceivedAt.Equal(want) {
		t.Errorf("ReceivedAt = %v, want %v", msgs[0].ReceivedAt, want)
	}
	if want := time.Date(2024, 8, 20, 8, 0, 0, 0, time.UTC); !msgs[1].ReceivedAt.Equal(want) {
		t.Errorf("ReceivedAt = %v, want %v", msgs[1].ReceivedAt, want)
	}
	if msgs[2].Sender != "dave@example.com" || !msgs[2].ReceivedAt.IsZero() {
		t.Errorf("msgs[2] = %+v, want dave with zero time", msgs[2])
	}
}

func TestLoad_HeaderErrors(t *testing.T) {
	t.Parallel()

	l := NewLoader(zaptest.NewLogger(t))
	if _, err := l.Load(strings.NewReader("")); err == nil {
		t.Error("Load(empty) returned no error")
	}
	if _, err := l.Load(strings.NewReader("sender,body\na,b\n")); err == nil {
		t.Error("Load(missing subject) returned no error")
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "emails.csv")
	if err := os.WriteFile(path, []byte("\ufeffSender,Subject,Body\nx@y.io,Help,hi\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	msgs, err := NewLoader(zaptest.NewLogger(t)).LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Subject != "Help" {
		t.Errorf("msgs = %+v", msgs)
	}

	if _, err := NewLoader(zaptest.NewLogger(t)).LoadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("LoadFile(missing) returned no error")
	}
}
