package memory

import (
	"context"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/riskibarqy/starleague/internal/domain/remote"
	"github.com/riskibarqy/starleague/internal/infrastructure/remote/tree"
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

var _ remote.Store = (*Store)(nil)

// Store is an in-process remote.Store used for local runs and tests. Change notifications are
// delivered asynchronously; a slow subscriber only ever sees the latest value.
type Store struct {
	mu          sync.Mutex
	tree        *tree.Tree
	subs        map[uint64]*subscription
	nextSub     uint64
	unavailable error
}

func NewStore(initial map[string]any) (*Store, error) {
	var root any
	if len(initial) > 0 {
		root = initial
	}
	t, err := tree.New(root)
	if err != nil {
		return nil, err
	}
	return &Store{tree: t, subs: make(map[uint64]*subscription)}, nil
}

// SetUnavailable makes every later operation fail with err until it is reset with nil.
func (s *Store) SetUnavailable(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = err
}

func (s *Store) Read(_ context.Context, path string) (snapshot.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unavailable != nil {
		return snapshot.Snapshot{}, crerr.Wrapf(s.unavailable, "read %s", path)
	}
	return s.snapshotLocked(path)
}

func (s *Store) Subscribe(ctx context.Context, path string, fn func(snapshot.Snapshot)) (remote.Subscription, error) {
	if fn == nil {
		return nil, crerr.New("subscribe: callback is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unavailable != nil {
		return nil, crerr.Wrapf(s.unavailable, "subscribe %s", path)
	}
	snap, err := s.snapshotLocked(path)
	if err != nil {
		return nil, err
	}

	s.nextSub++
	sub := &subscription{
		store: s,
		id:    s.nextSub,
		path:  path,
		fn:    fn,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	s.subs[sub.id] = sub
	sub.offer(snap)
	go sub.run(ctx)
	return sub, nil
}

func (s *Store) Write(_ context.Context, path string, value any) error {
	return s.mutate(path, func() error { return s.tree.Set(path, value) })
}

// Push stores value under a time ordered uuid key.
func (s *Store) Push(_ context.Context, path string, value any) (string, error) {
	key, err := uuid.NewV7()
	if err != nil {
		return "", crerr.Wrap(err, "generate push key")
	}
	child := remote.JoinPath(path, key.String())
	if err := s.mutate(child, func() error { return s.tree.Set(child, value) }); err != nil {
		return "", err
	}
	return key.String(), nil
}

func (s *Store) Update(_ context.Context, path string, fields map[string]any) error {
	return s.mutate(path, func() error { return s.tree.Merge(path, fields) })
}

func (s *Store) Remove(_ context.Context, path string) error {
	return s.mutate(path, func() error { return s.tree.Set(path, nil) })
}

func (s *Store) mutate(path string, apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unavailable != nil {
		return crerr.Wrapf(s.unavailable, "write %s", path)
	}
	if err := apply(); err != nil {
		return crerr.Wrapf(err, "write %s", path)
	}

	for _, sub := range s.subs {
		if !tree.Related(sub.path, path) {
			continue
		}
		snap, err := s.snapshotLocked(sub.path)
		if err != nil {
			return err
		}
		sub.offer(snap)
	}
	return nil
}

func (s *Store) snapshotLocked(path string) (snapshot.Snapshot, error) {
	raw, err := s.tree.Encode(path)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snapshot.Snapshot{Path: path, Raw: raw}, nil
}

func (s *Store) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

type subscription struct {
	store *Store
	id    uint64
	path  string
	fn    func(snapshot.Snapshot)

	mu     sync.Mutex
	latest *snapshot.Snapshot
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// offer replaces the pending value and never blocks.
func (sub *subscription) offer(snap snapshot.Snapshot) {
	sub.mu.Lock()
	sub.latest = &snap
	sub.mu.Unlock()

	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *subscription) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = sub.Close()
			return
		case <-sub.done:
			return
		case <-sub.wake:
			sub.mu.Lock()
			snap := sub.latest
			sub.latest = nil
			sub.mu.Unlock()
			if snap != nil {
				sub.fn(*snap)
			}
		}
	}
}

func (sub *subscription) Close() error {
	sub.once.Do(func() {
		close(sub.done)
		sub.store.unsubscribe(sub.id)
	})
	return nil
}
