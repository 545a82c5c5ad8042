package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/cockroachdb/pebble"
	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

var recordPrefix = []byte("record:")

// PebbleStore is an embedded key-value implementation of the RecordRepository
// interface. Records are stored as JSON under "record:<id>".
type PebbleStore struct {
	db     *pebble.DB
	logger *zap.Logger
}

// NewPebbleStore opens (and if needed creates) the Pebble database at path
func NewPebbleStore(path string, logger *zap.Logger) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open Pebble database: %w", err)
	}

	logger.Info("Opened Pebble store", zap.String("path", path))
	return &PebbleStore{db: db, logger: logger}, nil
}

func recordKey(id string) []byte {
	return append(append([]byte(nil), recordPrefix...), id...)
}

// Save inserts or replaces a record
func (s *PebbleStore) Save(_ context.Context, record *core.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := s.db.Set(recordKey(record.ID), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID
func (s *PebbleStore) Get(_ context.Context, id string) (*core.Record, error) {
	v, closer, err := s.db.Get(recordKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, core.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	defer closer.Close()

	return decodeRecord(string(v))
}

// List returns every stored record ordered by creation time
func (s *PebbleStore) List(ctx context.Context) ([]*core.Record, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open iterator: %w", err)
	}
	defer iter.Close()

	var records []*core.Record
	for iter.SeekGE(recordPrefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), recordPrefix) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := decodeRecord(string(iter.Value()))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	slices.SortStableFunc(records, func(a, b *core.Record) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return records, nil
}

// Delete removes a record
func (s *PebbleStore) Delete(_ context.Context, id string) error {
	if err := s.db.Delete(recordKey(id), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Close flushes and closes the database
func (s *PebbleStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close Pebble database", zap.Error(err))
		return err
	}
	return nil
}
