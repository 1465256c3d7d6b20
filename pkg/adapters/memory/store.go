package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/turing/pkg/domain"
)

// Store implements ports.RunStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Record
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Record),
	}
}

// Save persists the record in memory.
func (s *Store) Save(ctx context.Context, record *domain.Record) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := record.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[record.ID] = copied
	return nil
}

// Load retrieves the record from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}

	// Copy on read so callers can't mutate the stored record by pointer
	return record.Clone(), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored run IDs, oldest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.data[ids[i]], s.data[ids[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}
