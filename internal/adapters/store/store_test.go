package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newRecord(id string, priority core.PriorityLabel, created time.Time) *core.Record {
	return &core.Record{
		ID: id,
		Message: core.Message{
			Sender:     "alice@example.com",
			Subject:    "Support needed",
			Body:       "Cannot log in",
			ReceivedAt: created,
		},
		Result: core.TriageResult{
			Sentiment: core.SentimentNegative,
			Priority:  priority,
			Metadata: core.ContactMetadata{
				Emails:       []string{"alice@example.com"},
				Phones:       []string{},
				Requirements: []string{},
			},
			SentimentDetail: core.SentimentResult{
				Label:           core.SentimentNegative,
				Score:           -1,
				MatchedPositive: []string{},
				MatchedNegative: []string{"cannot"},
			},
			PriorityDetail: core.PriorityResult{
				Label:   priority,
				Factors: []core.PriorityFactor{},
			},
			SuggestedResponse: "We are on it.",
			Sources:           core.Sources{Analysis: core.SourceFallback, Response: core.SourceFallback},
		},
		Status:    core.StatusPending,
		Response:  "We are on it.",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestRepositories(t *testing.T) {
	t.Parallel()

	factories := map[string]func(t *testing.T) Repository{
		"memory": func(t *testing.T) Repository {
			return NewMemoryStore(zaptest.NewLogger(t))
		},
		"sqlite": func(t *testing.T) Repository {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"), zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("NewSQLiteStore: %v", err)
			}
			return s
		},
	}

	factories["pebble"] = func(t *testing.T) Repository {
		s, err := NewPebbleStore(filepath.Join(t.TempDir(), "records.pebble"), zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("NewPebbleStore: %v", err)
		}
		return s
	}
	if dsn := os.Getenv("SUPPORT_TRIAGE_TEST_POSTGRES_DSN"); dsn != "" {
		factories["postgres"] = func(t *testing.T) Repository {
			s, err := NewPostgresStore(dsn, zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("NewPostgresStore: %v", err)
			}
			if _, err := s.db.Exec(`TRUNCATE support_records`); err != nil {
				t.Fatalf("truncate: %v", err)
			}
			return s
		}
	}

	for name, newRepo := range factories {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			repo := newRepo(t)
			t.Cleanup(func() { _ = repo.Close() })
			ctx := context.Background()
			created := time.Date(2024, 8, 19, 10, 0, 0, 0, time.UTC)

			if _, err := repo.Get(ctx, "missing"); !errors.Is(err, core.ErrRecordNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrRecordNotFound", err)
			}

			first := newRecord("01J000000000000000000000A1", core.PriorityUrgent, created)
			second := newRecord("01J000000000000000000000B2", core.PriorityNormal, created.Add(time.Minute))
			for _, r := range []*core.Record{first, second} {
				if err := repo.Save(ctx, r); err != nil {
					t.Fatalf("Save(%s): %v", r.ID, err)
				}
			}

			got, err := repo.Get(ctx, first.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !reflect.DeepEqual(got, first) {
				t.Errorf("Get = %+v, want %+v", got, first)
			}

			responded := created.Add(time.Hour)
			got.Status = core.StatusResponded
			got.RespondedAt = &responded
			if err := repo.Save(ctx, got); err != nil {
				t.Fatalf("Save(update): %v", err)
			}
			updated, err := repo.Get(ctx, first.ID)
			if err != nil {
				t.Fatalf("Get(updated): %v", err)
			}
			if updated.Status != core.StatusResponded || updated.RespondedAt == nil || !updated.RespondedAt.Equal(responded) {
				t.Errorf("updated = %+v, want Responded at %v", updated, responded)
			}

			all, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(all) != 2 {
				t.Errorf("len(List) = %d, want 2", len(all))
			}

			if err := repo.Delete(ctx, second.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := repo.Get(ctx, second.ID); !errors.Is(err, core.ErrRecordNotFound) {
				t.Errorf("Get(deleted) error = %v, want ErrRecordNotFound", err)
			}
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(zaptest.NewLogger(t))
	ctx := context.Background()
	r := newRecord("id-1", core.PriorityNormal, time.Now())
	if err := s.Save(ctx, r); err != nil {
		t.Fatal(err)
	}

	r.Status = core.StatusResponded
	got, err := s.Get(ctx, "id-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != core.StatusPending {
		t.Errorf("stored status changed through caller pointer: %q", got.Status)
	}
}

func TestPebbleStore_ListOrder(t *testing.T) {
	t.Parallel()

	s, err := NewPebbleStore(filepath.Join(t.TempDir(), "records.pebble"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	base := time.Date(2024, 8, 19, 10, 0, 0, 0, time.UTC)
	// Key order is the reverse of creation order
	for i, id := range []string{"c", "b", "a"} {
		if err := s.Save(ctx, newRecord(id, core.PriorityNormal, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	if want := []string{"c", "b", "a"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("List order = %v, want %v", ids, want)
	}
}

func TestQueryTracer(t *testing.T) {
	t.Parallel()

	observed, logs := observer.New(zapcore.DebugLevel)
	tracer := &queryTracer{logger: zap.New(observed)}

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT data\n\t\tFROM support_records"})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1")})
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("relation does not exist")})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("len(logs) = %d, want 2", len(entries))
	}
	if got := entries[0].ContextMap()["sql"]; got != "SELECT data FROM support_records" {
		t.Errorf("sql = %v, want compacted statement", got)
	}
	if entries[0].Level != zapcore.DebugLevel || entries[1].Level != zapcore.WarnLevel {
		t.Errorf("levels = %v, %v, want debug then warn", entries[0].Level, entries[1].Level)
	}
}
