package resilience

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SingleFlight deduplicates concurrent remote reads for the same key.
type SingleFlight struct {
	group singleflight.Group
}

// Do returns shared=true when the result came from a call started by another caller.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	return g.group.Do(key, fn)
}

// DoContext is Do for calls that outlive a single caller. fn runs on a context detached from
// the starting caller's cancellation, so one caller giving up never fails the others; a caller
// whose ctx ends stops waiting and gets ctx.Err(). fn must bound its own duration.
func (g *SingleFlight) DoContext(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	detached := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-ch:
		return res.Val, res.Err, res.Shared
	}
}

// Forget drops an in-flight key so the next caller starts a fresh call.
func (g *SingleFlight) Forget(key string) {
	g.group.Forget(key)
}
