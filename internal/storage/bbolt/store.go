// Package bbolt provides a BoltDB-backed luck pool store.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/timeouts"
	"go.etcd.io/bbolt"
)

const poolBucket = "luck_pools"

// Store provides a BoltDB-backed pool store. Each update runs in one bolt
// write transaction, which serializes compare-and-swap checks.
type Store struct {
	db *bbolt.DB
}

type poolRecord struct {
	Temp      int   `json:"temp"`
	Perm      int   `json:"perm"`
	UpdatedAt int64 `json:"updated_at"`
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: timeouts.StoreOpen})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(owner) == "" {
		return fmt.Errorf("character id is required")
	}
	return nil
}

// PutPool persists a pool unconditionally.
func (s *Store) PutPool(ctx context.Context, owner string, pool luck.Pool) error {
	if err := s.ready(ctx, owner); err != nil {
		return err
	}
	if pool.Temp < 0 || pool.Perm < 0 {
		return fmt.Errorf("luck pool for %s cannot be negative", owner)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(poolBucket))
		if bucket == nil {
			return fmt.Errorf("pool bucket is missing")
		}
		return putRecord(bucket, owner, pool)
	})
}

// GetPool fetches the pool for owner.
func (s *Store) GetPool(ctx context.Context, owner string) (luck.Pool, error) {
	if err := s.ready(ctx, owner); err != nil {
		return luck.Pool{}, err
	}

	var pool luck.Pool
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(poolBucket))
		if bucket == nil {
			return fmt.Errorf("pool bucket is missing")
		}
		var err error
		pool, err = getRecord(bucket, owner)
		return err
	})
	if err != nil {
		return luck.Pool{}, err
	}
	return pool, nil
}

// CompareAndSwapPool writes next only while the stored pool equals expected.
func (s *Store) CompareAndSwapPool(ctx context.Context, owner string, expected, next luck.Pool) (bool, error) {
	if err := s.ready(ctx, owner); err != nil {
		return false, err
	}
	if next.Temp < 0 || next.Perm < 0 {
		return false, fmt.Errorf("luck pool for %s cannot be negative", owner)
	}

	swapped := false
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(poolBucket))
		if bucket == nil {
			return fmt.Errorf("pool bucket is missing")
		}
		current, err := getRecord(bucket, owner)
		if err != nil {
			return err
		}
		if current != expected {
			return nil
		}
		swapped = true
		return putRecord(bucket, owner, next)
	})
	if err != nil {
		return false, err
	}
	return swapped, nil
}

func getRecord(bucket *bbolt.Bucket, owner string) (luck.Pool, error) {
	payload := bucket.Get(poolKey(owner))
	if payload == nil {
		return luck.Pool{}, luck.ErrPoolNotFound
	}
	var record poolRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return luck.Pool{}, fmt.Errorf("unmarshal pool: %w", err)
	}
	return luck.Pool{Temp: record.Temp, Perm: record.Perm}, nil
}

func putRecord(bucket *bbolt.Bucket, owner string, pool luck.Pool) error {
	payload, err := json.Marshal(poolRecord{
		Temp:      pool.Temp,
		Perm:      pool.Perm,
		UpdatedAt: time.Now().UTC().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}
	return bucket.Put(poolKey(owner), payload)
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(poolBucket)); err != nil {
			return fmt.Errorf("create pool bucket: %w", err)
		}
		return nil
	})
}

func poolKey(owner string) []byte {
	return []byte(owner)
}
