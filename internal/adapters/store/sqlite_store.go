package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the RecordRepository interface
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens (and if needed creates) the SQLite database at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS support_records (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			data TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_support_records_created_at ON support_records(created_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	logger.Info("Opened SQLite store", zap.String("path", dbPath))
	return &SQLiteStore{sqlStore{db: db, logger: logger, queries: replaceQueries}}, nil
}
