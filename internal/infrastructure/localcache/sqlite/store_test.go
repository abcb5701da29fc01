package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/starleague/internal/platform/localcache"
	"github.com/riskibarqy/starleague/internal/platform/logging"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_PutGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	if _, ok, err := store.Get(ctx, "sl_teams"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "sl_teams", []byte(`[{"id":"t1"}]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "sl_teams", []byte(`[{"id":"t2"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, ok, err := store.Get(ctx, "sl_teams")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != `[{"id":"t2"}]` {
		t.Fatalf("unexpected value: %s", got)
	}

	if err := store.Delete(ctx, "sl_teams"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "sl_teams"); ok {
		t.Fatalf("expected deleted key")
	}
}

func TestStore_BacksLocalCacheAdapter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	adapter := localcache.NewAdapter(first, localcache.Options{Logger: logging.NewNop()})
	adapter.Store(ctx, "site", map[string]string{"nameFr": "LIGUE"})
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	reopened := localcache.NewAdapter(second, localcache.Options{Logger: logging.NewNop()})
	got := localcache.Load(ctx, reopened, "site", map[string]string{})
	if got["nameFr"] != "LIGUE" {
		t.Fatalf("value did not survive reopen: %+v", got)
	}
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestFormatQueryForTrace(t *testing.T) {
	t.Parallel()

	got := formatQueryForTrace("\n  SELECT value\n\tFROM cache_entries  ")
	if got != "SELECT value FROM cache_entries" {
		t.Fatalf("unexpected formatted query: %q", got)
	}
}
