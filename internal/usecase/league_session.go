package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/starleague/internal/domain/fixture"
	"github.com/riskibarqy/starleague/internal/domain/leaguestanding"
	"github.com/riskibarqy/starleague/internal/domain/remote"
	"github.com/riskibarqy/starleague/internal/domain/site"
	"github.com/riskibarqy/starleague/internal/domain/team"
	"github.com/riskibarqy/starleague/internal/platform/cache"
	"github.com/riskibarqy/starleague/internal/platform/id"
	"github.com/riskibarqy/starleague/internal/platform/localcache"
	"github.com/riskibarqy/starleague/internal/platform/logging"
	"github.com/riskibarqy/starleague/internal/platform/metrics"
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

type SessionMode string

const (
	SessionModeIdle    SessionMode = "idle"
	SessionModeOnline  SessionMode = "online"
	SessionModeOffline SessionMode = "offline"
	SessionModeClosed  SessionMode = "closed"
)

const (
	defaultWriteTimeout = 10 * time.Second
	defaultWriteWorkers = 4

	fixtureViewTTL        = 5 * time.Minute
	fixtureViewMaxEntries = 256

	// CollectionInit marks the event published once the initial load settled.
	CollectionInit = "init"
	// CollectionSelection marks the event published after the fixture selection changed.
	CollectionSelection = "selection"
)

type LeagueSessionConfig struct {
	// Collections lists the auxiliary collections to load and follow besides teams, matches and site.
	Collections  []string
	WriteTimeout time.Duration
	WriteWorkers int
	// CacheOnSync refreshes the local cache from successful remote loads and notifications.
	CacheOnSync bool
	// SeedDemoData writes demo teams and matches when the league is empty after the initial load.
	SeedDemoData bool
}

// DerivedViews are recomputed from the mirror whenever teams or matches change.
type DerivedViews struct {
	Standings []leaguestanding.Standing
	Fixtures  fixture.View
}

// ChangeEvent is published to observers after every applied change.
type ChangeEvent struct {
	Collection string
	Version    uint64
	Mode       SessionMode
	Derived    DerivedViews
}

type SyncStatus struct {
	Mode           SessionMode    `json:"mode"`
	Version        uint64         `json:"version"`
	LoadedAt       time.Time      `json:"loadedAt"`
	LastChangeAt   time.Time      `json:"lastChangeAt"`
	Subscriptions  int            `json:"subscriptions"`
	PendingWrites  int            `json:"pendingWrites"`
	FailedWrites   int            `json:"failedWrites"`
	CollectionSize map[string]int `json:"collectionSize"`
}

// LeagueSession owns the mirror for one process: it loads the league from the remote store (or
// the local cache when the store is unreachable), follows remote changes, applies local edits
// optimistically and keeps the derived views current.
//
// Notification handlers and mutations run one at a time under the session lock. Observers are
// called under that lock too and must not call session mutators synchronously.
type LeagueSession struct {
	remote  remote.Store
	cache   *localcache.Adapter
	ids     id.Generator
	logger  *logging.Logger
	metrics *metrics.Manager
	cfg     LeagueSessionConfig

	mirror *LeagueMirror

	mu            sync.Mutex
	mode          SessionMode
	subs          []remote.Subscription
	cancelSubs    context.CancelFunc
	teamsNotified bool
	loadedAt      time.Time

	viewMu       sync.RWMutex
	selection    fixture.Selection
	derived      DerivedViews
	lastChangeAt time.Time
	// views memoizes ad-hoc fixture views by mirror version and selection.
	views *cache.Store[fixture.View]

	observerMu   sync.RWMutex
	observers    map[int]func(ChangeEvent)
	nextObserver int

	writes  *ants.Pool
	writeWG sync.WaitGroup
	writeMu sync.Mutex
	// Per collection: tickets issued, the ticket whose turn it is, and the latest replace.
	writeIssued   map[string]uint64
	writeTurn     map[string]uint64
	writeTurnCond *sync.Cond
	writeDone     map[writeTicket]struct{}
	writeSeq      map[string]uint64
	pending       int
	failedWrites  int

	// pendingMu guards the locally queued player registrations.
	pendingMu sync.Mutex
}

func NewLeagueSession(
	remoteStore remote.Store,
	localCache *localcache.Adapter,
	ids id.Generator,
	cfg LeagueSessionConfig,
	logger *logging.Logger,
	metricsManager *metrics.Manager,
) (*LeagueSession, error) {
	if remoteStore == nil {
		return nil, fmt.Errorf("%w: remote store is required", ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if localCache == nil {
		localCache = localcache.NewAdapter(localcache.NewMemoryBackend(), localcache.Options{Logger: logger, Metrics: metricsManager})
	}
	if ids == nil {
		ids = id.NewUUIDGenerator("")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.WriteWorkers <= 0 {
		cfg.WriteWorkers = defaultWriteWorkers
	}
	collections, err := ParseAuxCollections(cfg.Collections)
	if err != nil {
		return nil, err
	}
	cfg.Collections = collections

	writes, err := ants.NewPool(cfg.WriteWorkers)
	if err != nil {
		return nil, fmt.Errorf("create write pool: %w", err)
	}

	s := &LeagueSession{
		remote:      remoteStore,
		cache:       localCache,
		ids:         ids,
		logger:      logger.Named("league_session"),
		metrics:     metricsManager,
		cfg:         cfg,
		mirror:      NewLeagueMirror(),
		mode:        SessionModeIdle,
		views:       cache.NewStore[fixture.View](fixtureViewTTL, fixtureViewMaxEntries),
		observers:   make(map[int]func(ChangeEvent)),
		writes:      writes,
		writeIssued: make(map[string]uint64),
		writeTurn:   make(map[string]uint64),
		writeDone:   make(map[writeTicket]struct{}),
		writeSeq:    make(map[string]uint64),
	}
	s.writeTurnCond = sync.NewCond(&s.writeMu)
	s.derived = computeDerived(s.mirror.State(), s.selection)
	return s, nil
}

func (s *LeagueSession) Mirror() *LeagueMirror {
	return s.mirror
}

// Init performs the initial load and, when the remote store answered, opens live subscriptions.
// It may be called once.
func (s *LeagueSession) Init(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueSession.Init", CoreCollections...)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case SessionModeIdle:
	case SessionModeClosed:
		return ErrSessionClosed
	default:
		return fmt.Errorf("%w: session already initialized", ErrInvalidInput)
	}

	results := s.readAll(ctx)
	online := true
	for _, collection := range CoreCollections {
		if err := results[collection].err; err != nil {
			online = false
			s.logger.WarnContext(ctx, "remote read failed, falling back to local cache",
				"collection", collection,
				"error", err,
			)
		}
	}

	if online {
		s.mode = SessionModeOnline
		for _, collection := range s.loadedCollections() {
			res := results[collection]
			if res.err != nil {
				s.logger.WarnContext(ctx, "auxiliary collection unavailable", "collection", collection, "error", res.err)
				_ = s.applySnapshot(collection, snapshot.Snapshot{Path: collection})
				continue
			}
			s.applyLogged(ctx, collection, res.snap)
		}
		if s.cfg.CacheOnSync {
			for _, collection := range CoreCollections {
				s.storeCache(ctx, collection)
			}
		}
	} else {
		s.mode = SessionModeOffline
		s.metrics.IncFallbackLoad()
		for _, collection := range CoreCollections {
			s.applyLogged(ctx, collection, s.cache.LoadSnapshot(ctx, collection))
		}
		for _, collection := range s.cfg.Collections {
			_ = s.applySnapshot(collection, snapshot.Snapshot{Path: collection})
		}
	}
	s.loadedAt = time.Now().UTC()

	if s.cfg.SeedDemoData {
		s.seedIfEmptyLocked(ctx)
	}

	s.recordSizes()
	s.publishLocked(CollectionInit, true)

	if s.mode == SessionModeOnline {
		s.subscribeAllLocked(ctx)
	}

	s.logger.InfoContext(ctx, "league session initialized",
		"mode", string(s.mode),
		"teams", len(s.mirror.Teams()),
		"matches", len(s.mirror.Matches()),
		"subscriptions", len(s.subs),
	)
	return nil
}

type readResult struct {
	collection string
	snap       snapshot.Snapshot
	err        error
}

// readAll reads every loaded collection concurrently and waits for all of them.
func (s *LeagueSession) readAll(ctx context.Context) map[string]readResult {
	p := pool.NewWithResults[readResult]()
	for _, collection := range s.loadedCollections() {
		collection := collection
		p.Go(func() readResult {
			snap, err := s.remote.Read(ctx, collection)
			if err != nil {
				s.metrics.IncRemoteReadError(collection)
			}
			return readResult{collection: collection, snap: snap, err: err}
		})
	}

	out := make(map[string]readResult)
	for _, res := range p.Wait() {
		out[res.collection] = res
	}
	return out
}

func (s *LeagueSession) loadedCollections() []string {
	out := make([]string, 0, len(CoreCollections)+len(s.cfg.Collections))
	out = append(out, CoreCollections...)
	out = append(out, s.cfg.Collections...)
	return out
}

// applyLogged applies a snapshot and logs malformed payloads instead of failing.
func (s *LeagueSession) applyLogged(ctx context.Context, collection string, snap snapshot.Snapshot) {
	if err := s.applySnapshot(collection, snap); err != nil {
		s.metrics.IncMalformedSnapshot(collection)
		s.logger.WarnContext(ctx, "snapshot ignored", "collection", collection, "error", err)
	}
}

func (s *LeagueSession) subscribeAllLocked(ctx context.Context) {
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelSubs = cancel
	for _, collection := range s.loadedCollections() {
		collection := collection
		sub, err := s.remote.Subscribe(subCtx, collection, func(snap snapshot.Snapshot) {
			s.handleNotification(subCtx, collection, snap)
		})
		if err != nil {
			s.logger.WarnContext(ctx, "subscribe failed", "collection", collection, "error", err)
			continue
		}
		s.subs = append(s.subs, sub)
	}
}

// handleNotification applies one remote change notification to completion.
func (s *LeagueSession) handleNotification(ctx context.Context, collection string, snap snapshot.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == SessionModeClosed {
		return
	}
	s.metrics.IncNotification(collection)

	if collection == team.Collection {
		first := !s.teamsNotified
		s.teamsNotified = true
		if first && !snap.Exists() && len(s.mirror.Teams()) > 0 {
			s.logger.DebugContext(ctx, "ignoring empty first teams notification")
			return
		}
	}

	if err := s.applySnapshot(collection, snap); err != nil {
		s.metrics.IncMalformedSnapshot(collection)
		s.logger.WarnContext(ctx, "snapshot ignored", "collection", collection, "error", err)
	} else if s.cfg.CacheOnSync && isCoreCollection(collection) {
		s.storeCache(ctx, collection)
	}

	s.recordSizes()
	s.publishLocked(collection, affectsDerived(collection))
}

func (s *LeagueSession) storeCache(ctx context.Context, collection string) {
	if value, ok := cacheValue(s.mirror.State(), collection); ok {
		s.cache.Store(ctx, collection, value)
	}
}

func (s *LeagueSession) recordSizes() {
	if s.metrics == nil {
		return
	}
	for _, collection := range s.loadedCollections() {
		s.metrics.SetMirrorRecords(collection, s.mirror.Count(collection))
	}
}

// publishLocked recomputes the derived views when needed and notifies observers.
func (s *LeagueSession) publishLocked(collection string, recompute bool) {
	state := s.mirror.State()

	s.viewMu.Lock()
	if recompute {
		start := time.Now()
		s.derived = computeDerived(state, s.selection)
		s.selection = s.derived.Fixtures.Selection
		s.metrics.ObserveRecompute(time.Since(start))
		s.views.DeleteExcept(context.Background(), fixtureViewVersionPrefix(state.Version))
	}
	s.lastChangeAt = time.Now().UTC()
	event := ChangeEvent{
		Collection: collection,
		Version:    state.Version,
		Mode:       s.mode,
		Derived:    s.derived,
	}
	s.viewMu.Unlock()

	s.observerMu.RLock()
	observers := make([]func(ChangeEvent), 0, len(s.observers))
	for i := 0; i < s.nextObserver; i++ {
		if fn, ok := s.observers[i]; ok {
			observers = append(observers, fn)
		}
	}
	s.observerMu.RUnlock()

	for _, fn := range observers {
		fn(event)
	}
}

func computeDerived(state MirrorState, sel fixture.Selection) DerivedViews {
	return DerivedViews{
		Standings: leaguestanding.Compute(state.Teams, state.Matches),
		Fixtures:  fixture.ComputeView(state.Teams, state.Matches, sel),
	}
}

// Subscribe registers an observer for change events and returns a function that removes it.
func (s *LeagueSession) Subscribe(fn func(ChangeEvent)) func() {
	if fn == nil {
		return func() {}
	}
	s.observerMu.Lock()
	key := s.nextObserver
	s.nextObserver++
	s.observers[key] = fn
	s.observerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.observerMu.Lock()
			delete(s.observers, key)
			s.observerMu.Unlock()
		})
	}
}

// Select stores the observer-level fixture selection and returns the view for it. Values that
// are not available fall back to "all" and the stored selection reflects that.
func (s *LeagueSession) Select(sel fixture.Selection) fixture.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.mirror.State()
	s.viewMu.Lock()
	view := fixture.ComputeView(state.Teams, state.Matches, sel)
	s.selection = view.Selection
	s.derived.Fixtures = view
	s.viewMu.Unlock()

	s.publishLocked(CollectionSelection, false)
	return view
}

// Derived returns the latest standings and the fixture view for the stored selection.
func (s *LeagueSession) Derived() DerivedViews {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return s.derived
}

// FixtureView returns the view for an ad-hoc selection without touching the stored one. Views
// are shared between callers of the same mirror version and must not be modified.
func (s *LeagueSession) FixtureView(sel fixture.Selection) fixture.View {
	state := s.mirror.State()
	view, _ := s.views.GetOrLoad(context.Background(), fixtureViewKey(state.Version, sel), func(context.Context) (fixture.View, error) {
		return fixture.ComputeView(state.Teams, state.Matches, sel), nil
	})
	return view
}

func fixtureViewVersionPrefix(version uint64) string {
	return strconv.FormatUint(version, 10) + "|"
}

func fixtureViewKey(version uint64, sel fixture.Selection) string {
	round := "all"
	if sel.Round != nil {
		round = strconv.Itoa(*sel.Round)
	}
	return fixtureViewVersionPrefix(version) +
		strings.ToUpper(strings.TrimSpace(sel.Category)) + "|" +
		strings.ToUpper(strings.TrimSpace(sel.Group)) + "|" + round
}

func (s *LeagueSession) State() MirrorState {
	return s.mirror.State()
}

func (s *LeagueSession) Site() site.Config {
	return s.mirror.State().Site
}

func (s *LeagueSession) Mode() SessionMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *LeagueSession) Status() SyncStatus {
	s.mu.Lock()
	mode := s.mode
	subs := len(s.subs)
	loadedAt := s.loadedAt
	s.mu.Unlock()

	s.writeMu.Lock()
	pending := s.pending
	failed := s.failedWrites
	s.writeMu.Unlock()

	s.viewMu.RLock()
	lastChangeAt := s.lastChangeAt
	s.viewMu.RUnlock()

	sizes := make(map[string]int)
	for _, collection := range s.loadedCollections() {
		sizes[collection] = s.mirror.Count(collection)
	}

	return SyncStatus{
		Mode:           mode,
		Version:        s.mirror.Version(),
		LoadedAt:       loadedAt,
		LastChangeAt:   lastChangeAt,
		Subscriptions:  subs,
		PendingWrites:  pending,
		FailedWrites:   failed,
		CollectionSize: sizes,
	}
}

// Close stops live subscriptions and waits for in-flight remote writes until ctx is done.
func (s *LeagueSession) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.mode == SessionModeClosed {
		s.mu.Unlock()
		return nil
	}
	s.mode = SessionModeClosed
	subs := s.subs
	s.subs = nil
	if s.cancelSubs != nil {
		s.cancelSubs()
	}
	s.mu.Unlock()

	var errs []error
	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.WaitWrites(ctx); err != nil {
		errs = append(errs, err)
	}
	s.writes.Release()

	return errors.Join(errs...)
}

// WaitWrites blocks until every dispatched remote write finished or ctx is done.
func (s *LeagueSession) WaitWrites(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.writeWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for remote writes: %w", ctx.Err())
	}
}
