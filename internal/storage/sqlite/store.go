// Package sqlite provides a SQLite-backed luck pool store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
	sqlitemigrate "github.com/Iwalker-dev/bizarre-adventures-d6/internal/platform/storage/sqlitemigrate"
	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists luck pools in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite pool store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(owner) == "" {
		return fmt.Errorf("character id is required")
	}
	return nil
}

// PutPool inserts or replaces the pool for owner.
func (s *Store) PutPool(ctx context.Context, owner string, pool luck.Pool) error {
	if err := s.ready(ctx, owner); err != nil {
		return err
	}
	if pool.Temp < 0 || pool.Perm < 0 {
		return fmt.Errorf("luck pool for %s cannot be negative", owner)
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO luck_pools (character_id, temp, perm, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(character_id) DO UPDATE SET
		   temp = excluded.temp,
		   perm = excluded.perm,
		   updated_at = excluded.updated_at`,
		owner, pool.Temp, pool.Perm, toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("put luck pool: %w", err)
	}
	return nil
}

// GetPool returns the pool for owner.
func (s *Store) GetPool(ctx context.Context, owner string) (luck.Pool, error) {
	if err := s.ready(ctx, owner); err != nil {
		return luck.Pool{}, err
	}
	var pool luck.Pool
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT temp, perm FROM luck_pools WHERE character_id = ?`, owner,
	).Scan(&pool.Temp, &pool.Perm)
	if errors.Is(err, sql.ErrNoRows) {
		return luck.Pool{}, luck.ErrPoolNotFound
	}
	if err != nil {
		return luck.Pool{}, fmt.Errorf("get luck pool: %w", err)
	}
	return pool, nil
}

// CompareAndSwapPool writes next only while the stored pool equals expected.
func (s *Store) CompareAndSwapPool(ctx context.Context, owner string, expected, next luck.Pool) (bool, error) {
	if err := s.ready(ctx, owner); err != nil {
		return false, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE luck_pools SET temp = ?, perm = ?, updated_at = ?
		 WHERE character_id = ? AND temp = ? AND perm = ?`,
		next.Temp, next.Perm, toMillis(s.now()),
		owner, expected.Temp, expected.Perm,
	)
	if err != nil {
		return false, fmt.Errorf("swap luck pool: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("swap luck pool rows: %w", err)
	}
	if rows == 1 {
		return true, nil
	}
	if _, err := s.GetPool(ctx, owner); err != nil {
		return false, err
	}
	return false, nil
}
