package storage

import (
	"context"
	"sync"

	"marketplace/internal/domain"

	"github.com/cockroachdb/errors"
)

// MemoryStore holds the encoded document in memory. It goes through the same
// encode/decode path as FileStore so round trips behave identically.
type MemoryStore struct {
	mu    sync.Mutex
	raw   []byte
	saves int
}

// NewMemoryStore creates an empty store. Initialize must run before Load.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Initialize(ctx context.Context, seed SeedFunc) error {
	s.mu.Lock()
	exists := s.raw != nil
	s.mu.Unlock()
	if exists {
		return nil
	}
	return s.Save(ctx, seed())
}

func (s *MemoryStore) Load(ctx context.Context) (domain.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw == nil {
		return domain.Catalog{}, errors.New("memory store not initialized")
	}
	return decode("memory", s.raw)
}

func (s *MemoryStore) Save(ctx context.Context, doc domain.Catalog) error {
	raw, err := encode(doc)
	if err != nil {
		return errors.Wrap(err, "encode catalog")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *MemoryStore) Close() error {
	return nil
}
