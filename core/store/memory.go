package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local runs. It
// mimics the remote store's header-driven behaviour, including empty
// defaults for absent fields.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]Row)}
}

// Seed replaces the named table's contents.
func (s *MemoryStore) Seed(table string, rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]Row, len(rows))
	for i, r := range rows {
		copied[i] = r.Clone()
	}
	s.tables[table] = copied
}

func (s *MemoryStore) ReadTable(_ context.Context, table string) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *MemoryStore) AppendRows(_ context.Context, table string, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[table] = append(s.tables[table], r.Clone())
	}
	return nil
}

func (s *MemoryStore) UpdateRow(_ context.Context, table string, index int, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("store: row %d out of range for table %s", index, table)
	}
	rows[index] = row.Clone()
	return nil
}
