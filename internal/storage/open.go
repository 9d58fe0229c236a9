package storage

import (
	"fmt"
	"strings"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
	boltstore "github.com/Iwalker-dev/bizarre-adventures-d6/internal/storage/bbolt"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/storage/sqlite"
)

// Backend names a pool store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendBolt   Backend = "bbolt"
)

var (
	_ PoolStore = (*sqlite.Store)(nil)
	_ PoolStore = (*boltstore.Store)(nil)
	_ PoolStore = memoryStore{}
)

// memoryStore adapts luck.MemoryStore to PoolStore.
type memoryStore struct {
	*luck.MemoryStore
}

func (memoryStore) Close() error { return nil }

// Open opens the pool store for backend. Persistent backends require path.
func Open(backend Backend, path string) (PoolStore, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(string(backend)))) {
	case "", BackendMemory:
		return memoryStore{luck.NewMemoryStore()}, nil
	case BackendSQLite:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite store requires a path")
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt store requires a path")
		}
		store, err := boltstore.Open(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
