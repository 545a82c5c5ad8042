package factory

import (
	"path/filepath"
	"testing"

	"github.com/mikey/support-triage/internal/adapters/store"
	"github.com/mikey/support-triage/internal/config"
	"go.uber.org/zap/zaptest"
)

func TestCreateRepository(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings func(dir string) map[string]any
		wantType string
		wantErr  bool
	}{
		{
			name:     "memory",
			settings: func(string) map[string]any { return map[string]any{"store.type": "memory"} },
			wantType: "*store.MemoryStore",
		},
		{
			name: "sqlite",
			settings: func(dir string) map[string]any {
				return map[string]any{"store.type": "sqlite", "store.sqlite_path": filepath.Join(dir, "nested", "records.db")}
			},
			wantType: "*store.SQLiteStore",
		},
		{
			name: "pebble",
			settings: func(dir string) map[string]any {
				return map[string]any{"store.type": "pebble", "store.pebble_path": filepath.Join(dir, "nested", "records.pebble")}
			},
			wantType: "*store.PebbleStore",
		},
		{
			name:     "postgres bad dsn",
			settings: func(string) map[string]any { return map[string]any{"store.type": "postgres", "store.postgres_dsn": "://nope"} },
			wantErr:  true,
		},
		{
			name:     "unknown",
			settings: func(string) map[string]any { return map[string]any{"store.type": "tape"} },
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := config.NewEmptyViper()
			for k, val := range tt.settings(t.TempDir()) {
				v.Set(k, val)
			}

			repo, err := NewStoreFactory(config.NewFromViper(v), zaptest.NewLogger(t)).CreateRepository()
			if tt.wantErr {
				if err == nil {
					_ = repo.Close()
					t.Fatal("CreateRepository succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateRepository: %v", err)
			}
			t.Cleanup(func() { _ = repo.Close() })

			var got string
			switch repo.(type) {
			case *store.MemoryStore:
				got = "*store.MemoryStore"
			case *store.SQLiteStore:
				got = "*store.SQLiteStore"
			case *store.PebbleStore:
				got = "*store.PebbleStore"
			}
			if got != tt.wantType {
				t.Errorf("repository type = %T, want %s", repo, tt.wantType)
			}
		})
	}
}
