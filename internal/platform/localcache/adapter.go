package localcache

import (
	"context"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/starleague/internal/platform/logging"
	"github.com/riskibarqy/starleague/internal/platform/metrics"
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

const DefaultPrefix = "sl_"

// Backend persists opaque values by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Options struct {
	Prefix  string
	Logger  *logging.Logger
	Metrics *metrics.Manager
}

// Adapter is the best-effort cache used when the remote store is unreachable.
// Reads never fail and writes never surface errors.
type Adapter struct {
	backend Backend
	prefix  string
	logger  *logging.Logger
	metrics *metrics.Manager
}

func NewAdapter(backend Backend, opts Options) *Adapter {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Adapter{
		backend: backend,
		prefix:  opts.Prefix,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

// Key maps a collection name to its namespaced cache key, e.g. teams -> sl_teams.
func (a *Adapter) Key(name string) string {
	return a.prefix + name
}

// LoadSnapshot returns the cached value for name, or an absent snapshot.
func (a *Adapter) LoadSnapshot(ctx context.Context, name string) snapshot.Snapshot {
	raw, ok := a.load(ctx, name)
	if !ok {
		return snapshot.Snapshot{Path: name}
	}
	return snapshot.Snapshot{Path: name, Raw: raw}
}

// Store encodes value and writes it under name.
func (a *Adapter) Store(ctx context.Context, name string, value any) {
	raw, err := sonic.ConfigStd.Marshal(value)
	if err != nil {
		a.logger.WarnContext(ctx, "local cache encode failed", "key", a.Key(name), "error", err)
		a.metrics.IncCacheWriteError(a.Key(name))
		return
	}
	a.StoreRaw(ctx, name, raw)
}

func (a *Adapter) StoreRaw(ctx context.Context, name string, raw []byte) {
	key := a.Key(name)
	if err := a.backend.Put(ctx, key, raw); err != nil {
		a.logger.WarnContext(ctx, "local cache write dropped", "key", key, "error", err)
		a.metrics.IncCacheWriteError(key)
	}
}

// Remove drops the cached value for name.
func (a *Adapter) Remove(ctx context.Context, name string) {
	key := a.Key(name)
	if err := a.backend.Delete(ctx, key); err != nil {
		a.logger.WarnContext(ctx, "local cache delete dropped", "key", key, "error", err)
		a.metrics.IncCacheWriteError(key)
	}
}

func (a *Adapter) load(ctx context.Context, name string) ([]byte, bool) {
	key := a.Key(name)
	raw, ok, err := a.backend.Get(ctx, key)
	if err != nil {
		a.logger.WarnContext(ctx, "local cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok || len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

// Load decodes the cached value for name into T, returning fallback when the key is missing,
// the backend fails, or the payload does not parse.
func Load[T any](ctx context.Context, a *Adapter, name string, fallback T) T {
	raw, ok := a.load(ctx, name)
	if !ok {
		return fallback
	}
	var out T
	if err := sonic.Unmarshal(raw, &out); err != nil {
		a.logger.WarnContext(ctx, "local cache payload unreadable", "key", a.Key(name), "error", err)
		return fallback
	}
	return out
}
