package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// sqlQueries holds the statements that differ between SQL dialects
type sqlQueries struct {
	save   string
	get    string
	delete string
}

// replaceQueries serve SQLite and MySQL
var replaceQueries = sqlQueries{
	save: `
		REPLACE INTO support_records (id, status, priority, created_at, data)
		VALUES (?, ?, ?, ?, ?)
	`,
	get:    `SELECT data FROM support_records WHERE id = ?`,
	delete: `DELETE FROM support_records WHERE id = ?`,
}

// sqlStore holds the queries shared by the SQL stores. Records are kept as
// JSON next to a few indexed columns.
type sqlStore struct {
	db      *sql.DB
	logger  *zap.Logger
	queries sqlQueries
}

// Save inserts or replaces a record
func (s *sqlStore) Save(ctx context.Context, record *core.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.queries.save, record.ID, string(record.Status), string(record.Result.Priority), record.CreatedAt.UnixNano(), string(data))
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID
func (s *sqlStore) Get(ctx context.Context, id string) (*core.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.queries.get, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	return decodeRecord(data)
}

// List returns every stored record
func (s *sqlStore) List(ctx context.Context) ([]*core.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM support_records ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*core.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		record, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// Delete removes a record
func (s *sqlStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.queries.delete, id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.Error(err))
		return err
	}
	return nil
}

func decodeRecord(data string) (*core.Record, error) {
	var record core.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &record, nil
}

// compactSQL collapses a statement onto one line for logging
func compactSQL(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
