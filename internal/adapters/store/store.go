// Package store holds the record repositories.
package store

import (
	"io"

	"github.com/mikey/support-triage/internal/core"
)

// Repository is a record repository that owns resources to release
type Repository interface {
	core.RecordRepository
	io.Closer
}

var (
	_ Repository = (*MemoryStore)(nil)
	_ Repository = (*SQLiteStore)(nil)
	_ Repository = (*MySQLStore)(nil)
	_ Repository = (*PostgresStore)(nil)
	_ Repository = (*PebbleStore)(nil)
)
