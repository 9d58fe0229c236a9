package storage

import (
	"context"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
)

// PoolStore is a persistent luck pool store.
type PoolStore interface {
	luck.PoolStore
	// PutPool writes a pool unconditionally, for seeding from sheets.
	PutPool(ctx context.Context, owner string, pool luck.Pool) error
	Close() error
}
