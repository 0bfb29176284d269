package basket

import (
	"context"
	"sync"
)

// The two logical keys kept per session in the durable store.
const (
	keyBasket   = "basket"
	keyDiscount = "basket_discount"
)

// Store is the session-scoped durable key/value storage backing the basket.
// Absent keys report ok=false; implementations never surface corrupt values
// as errors, only transport/IO failures.
type Store interface {
	Get(ctx context.Context, session, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, session, key string, value []byte) error
	Delete(ctx context.Context, session, key string) error
}

// MemoryStore is an in-process Store, used in tests and single-process runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]map[string][]byte)}
}

// Get returns the value stored for the session and key, if any.
func (s *MemoryStore) Get(_ context.Context, session, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[session][key]
	return v, ok, nil
}

// Set stores the value for the session and key, replacing any previous value.
func (s *MemoryStore) Set(_ context.Context, session, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values[session] == nil {
		s.values[session] = make(map[string][]byte)
	}
	s.values[session][key] = value
	return nil
}

// Delete removes the value for the session and key, if present.
func (s *MemoryStore) Delete(_ context.Context, session, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values[session], key)
	return nil
}
