package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/starleague/external/firebase"
	"github.com/riskibarqy/starleague/internal/config"
	"github.com/riskibarqy/starleague/internal/domain/remote"
	"github.com/riskibarqy/starleague/internal/infrastructure/localcache/sqlite"
	"github.com/riskibarqy/starleague/internal/infrastructure/remote/memory"
	"github.com/riskibarqy/starleague/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/starleague/internal/platform/id"
	"github.com/riskibarqy/starleague/internal/platform/localcache"
	"github.com/riskibarqy/starleague/internal/platform/logging"
	"github.com/riskibarqy/starleague/internal/platform/metrics"
	"github.com/riskibarqy/starleague/internal/platform/resilience"
	"github.com/riskibarqy/starleague/internal/usecase"
)

// App holds the wired HTTP server and the league session behind it.
type App struct {
	Server  *http.Server
	Session *usecase.LeagueSession

	closers []func() error
}

// New builds every dependency from cfg and initializes the league session. The session is
// usable even when the remote store is unreachable; it then serves the local cache.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var metricsManager *metrics.Manager
	if cfg.MetricsEnabled {
		metricsManager = metrics.NewManager()
	}

	a := &App{}
	backend, err := newCacheBackend(ctx, cfg, a)
	if err != nil {
		return nil, err
	}
	cache := localcache.NewAdapter(backend, localcache.Options{
		Prefix:  cfg.LocalCachePrefix,
		Logger:  logger.Named("localcache"),
		Metrics: metricsManager,
	})

	store, err := newRemoteStore(cfg, logger, metricsManager)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	session, err := usecase.NewLeagueSession(store, cache, idgen.NewUUIDGenerator(""), usecase.LeagueSessionConfig{
		Collections:  cfg.SyncCollections,
		WriteTimeout: cfg.SyncWriteTimeout,
		WriteWorkers: cfg.SyncWriteWorkers,
		CacheOnSync:  cfg.SyncCacheOnSync,
		SeedDemoData: cfg.SeedDemoData,
	}, logger, metricsManager)
	if err != nil {
		_ = a.close()
		return nil, fmt.Errorf("create league session: %w", err)
	}
	if err := session.Init(ctx); err != nil {
		_ = a.close()
		return nil, fmt.Errorf("init league session: %w", err)
	}

	handler := httpapi.NewHandler(session, logger)
	router := httpapi.NewRouter(handler, httpapi.RouterOptions{
		Logger:             logger,
		Metrics:            metricsManager,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminToken:         cfg.AdminToken,
	})

	a.Session = session
	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

// Shutdown stops accepting requests, then drains the session's pending writes and releases
// the local cache.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if a.Session != nil {
		if err := a.Session.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close league session: %w", err))
		}
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func newCacheBackend(ctx context.Context, cfg config.Config, a *App) (localcache.Backend, error) {
	switch cfg.LocalCacheDriver {
	case config.LocalCacheDriverMemory:
		return localcache.NewMemoryBackend(), nil
	default:
		store, err := sqlite.Open(ctx, cfg.LocalCachePath)
		if err != nil {
			return nil, fmt.Errorf("open local cache: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
}

func newRemoteStore(cfg config.Config, logger *logging.Logger, metricsManager *metrics.Manager) (remote.Store, error) {
	switch cfg.RemoteDriver {
	case config.RemoteDriverMemory:
		store, err := memory.NewStore(nil)
		if err != nil {
			return nil, fmt.Errorf("create memory store: %w", err)
		}
		return store, nil
	default:
		breaker := resilience.CircuitBreakerConfig{
			Enabled:          cfg.FirebaseCircuitEnabled,
			FailureThreshold: cfg.FirebaseCircuitFailureCount,
			OpenTimeout:      cfg.FirebaseCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FirebaseCircuitHalfOpenMaxReq,
		}
		client, err := firebase.NewClient(firebase.ClientConfig{
			BaseURL:        cfg.FirebaseDatabaseURL,
			AuthToken:      cfg.FirebaseAuthToken,
			Timeout:        cfg.FirebaseTimeout,
			MaxRetries:     cfg.FirebaseMaxRetries,
			ReconnectDelay: cfg.FirebaseStreamRetryDelay,
			Logger:         logger,
			Metrics:        metricsManager,
			CircuitBreaker: breaker,
		})
		if err != nil {
			return nil, fmt.Errorf("create firebase client: %w", err)
		}
		logger.Info("remote store configured",
			"driver", config.RemoteDriverFirebase,
			"circuit_breaker", breaker.String(),
		)
		return client, nil
	}
}
