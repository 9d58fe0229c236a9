package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Iwalker-dev/bizarre-adventures-d6/internal/game/luck"
)

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()
	tcs := []struct {
		backend Backend
		path    string
	}{
		{backend: BackendMemory},
		{backend: BackendSQLite, path: filepath.Join(dir, "luck.db")},
		{backend: BackendBolt, path: filepath.Join(dir, "luck.bolt")},
	}
	for _, tc := range tcs {
		t.Run(string(tc.backend), func(t *testing.T) {
			store, err := Open(tc.backend, tc.path)
			if err != nil {
				t.Fatalf("open %s: %v", tc.backend, err)
			}
			defer store.Close()

			ctx := context.Background()
			if _, err := store.GetPool(ctx, "jotaro"); !errors.Is(err, luck.ErrPoolNotFound) {
				t.Fatalf("get missing = %v, want ErrPoolNotFound", err)
			}
			if err := store.PutPool(ctx, "jotaro", luck.Pool{Temp: 4, Perm: 2}); err != nil {
				t.Fatalf("put: %v", err)
			}
			ledger := luck.NewLedger(store)
			if _, err := ledger.Spend(ctx, "jotaro", luck.Intent{Move: "fudge"}); err != nil {
				t.Fatalf("spend: %v", err)
			}
			pool, err := store.GetPool(ctx, "jotaro")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if pool != (luck.Pool{Temp: 2, Perm: 2}) {
				t.Fatalf("pool = %v, want temp 2 perm 2", pool)
			}
		})
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := Open("redis", "x"); err == nil {
		t.Fatal("expected unknown backend error")
	}
	if _, err := Open(BackendSQLite, ""); err == nil {
		t.Fatal("expected missing path error")
	}
}
