package identity

import (
	"context"
	"sync"

	"github.com/kindness-pool/backend/internal/models"
)

// MemoryStore is an in-process identity store for tests and single-binary
// dev runs without Redis.
type MemoryStore struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{names: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, address string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[models.NormalizeAddress(address)], nil
}

func (s *MemoryStore) Set(_ context.Context, address, name string) error {
	trimmed, err := models.NormalizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.names[models.NormalizeAddress(address)] = trimmed
	s.mu.Unlock()
	return nil
}
