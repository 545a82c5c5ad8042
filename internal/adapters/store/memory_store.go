package store

import (
	"context"
	"sync"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the RecordRepository interface
type MemoryStore struct {
	records map[string]*core.Record
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*core.Record),
		logger:  logger,
	}
}

// Save inserts or replaces a record
func (s *MemoryStore) Save(_ context.Context, record *core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = cloneRecord(record)
	return nil
}

// Get retrieves a record by ID
func (s *MemoryStore) Get(_ context.Context, id string) (*core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, core.ErrRecordNotFound
	}
	return cloneRecord(record), nil
}

// List returns every stored record
func (s *MemoryStore) List(_ context.Context) ([]*core.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*core.Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, cloneRecord(record))
	}
	return records, nil
}

// Delete removes a record
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	s.logger.Debug("Deleted record", zap.String("id", id))
	return nil
}

// Close releases nothing; it exists so every store can be closed the same way
func (s *MemoryStore) Close() error {
	return nil
}

// cloneRecord copies the mutable parts of a record so callers cannot change stored state
func cloneRecord(r *core.Record) *core.Record {
	c := *r
	if r.RespondedAt != nil {
		t := *r.RespondedAt
		c.RespondedAt = &t
	}
	return &c
}
