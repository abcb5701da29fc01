package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_DoSharesOneRead(t *testing.T) {
	var g SingleFlight
	var reads atomic.Int32
	var shared atomic.Int32

	const readers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(readers)

	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, wasShared := g.Do("read:teams", func() (any, error) {
				reads.Add(1)
				time.Sleep(20 * time.Millisecond)
				return "teams", nil
			})
			if err != nil || v != "teams" {
				t.Errorf("unexpected result: v=%v err=%v", v, err)
			}
			if wasShared {
				shared.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := reads.Load(); got != 1 {
		t.Fatalf("expected one remote read, got %d", got)
	}
	if shared.Load() == 0 {
		t.Fatalf("expected waiting readers to report a shared result")
	}
}

func TestSingleFlight_ForgetStartsFreshCall(t *testing.T) {
	var g SingleFlight
	release := make(chan struct{})
	firstStarted := make(chan struct{})

	go func() {
		_, _, _ = g.Do("read:matches", func() (any, error) {
			close(firstStarted)
			<-release
			return "stale", nil
		})
	}()
	<-firstStarted

	g.Forget("read:matches")
	v, err, _ := g.Do("read:matches", func() (any, error) { return "fresh", nil })
	close(release)
	if err != nil || v != "fresh" {
		t.Fatalf("expected a fresh call after Forget, got v=%v err=%v", v, err)
	}
}

func TestSingleFlight_DoContextSurvivesFirstCallerCancel(t *testing.T) {
	var g SingleFlight
	release := make(chan struct{})
	started := make(chan struct{})
	sharedErr := make(chan error, 1)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err, _ := g.DoContext(firstCtx, "read:teams", func(ctx context.Context) (any, error) {
			close(started)
			<-release
			sharedErr <- ctx.Err()
			return "teams", nil
		})
		firstErr <- err
	}()
	<-started

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the cancelled caller to stop waiting, got %v", err)
	}

	close(release)
	if err := <-sharedErr; err != nil {
		t.Fatalf("shared call saw the first caller's cancellation: %v", err)
	}
}
