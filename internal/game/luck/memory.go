package luck

import (
	"context"
	"sync"
)

// MemoryStore is an in-process PoolStore.
type MemoryStore struct {
	mu    sync.Mutex
	pools map[string]Pool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pools: make(map[string]Pool)}
}

// PutPool stores pool for owner unconditionally.
func (s *MemoryStore) PutPool(ctx context.Context, owner string, pool Pool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[owner] = pool
	return nil
}

// GetPool returns the pool for owner.
func (s *MemoryStore) GetPool(ctx context.Context, owner string) (Pool, error) {
	if err := ctx.Err(); err != nil {
		return Pool{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pool, ok := s.pools[owner]
	if !ok {
		return Pool{}, ErrPoolNotFound
	}
	return pool, nil
}

// CompareAndSwapPool writes next when the stored pool equals expected.
func (s *MemoryStore) CompareAndSwapPool(ctx context.Context, owner string, expected, next Pool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.pools[owner]
	if !ok {
		return false, ErrPoolNotFound
	}
	if current != expected {
		return false, nil
	}
	s.pools[owner] = next
	return true, nil
}
