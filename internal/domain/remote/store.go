package remote

import (
	"context"

	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

// Subscription stops the change feed for one path.
type Subscription interface {
	Close() error
}

// Store is the key-path document store the league mirror syncs with. Paths are slash separated,
// e.g. "teams" or "players/-Nx1".
type Store interface {
	// Read returns the current value at path. A missing value is an absent snapshot, not an error.
	Read(ctx context.Context, path string) (snapshot.Snapshot, error)
	// Subscribe calls fn with the full value at path, first with the current value and then on
	// every change, until the subscription is closed or ctx is done. fn runs on a goroutine owned
	// by the subscription, never on the caller's, and calls for one subscription never overlap.
	Subscribe(ctx context.Context, path string, fn func(snapshot.Snapshot)) (Subscription, error)
	// Write replaces the value at path.
	Write(ctx context.Context, path string, value any) error
	// Push appends value under a new generated child key and returns the key.
	Push(ctx context.Context, path string, value any) (string, error)
	// Update merges fields into the object at path.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Remove deletes the value at path.
	Remove(ctx context.Context, path string) error
}

// JoinPath builds a child path, skipping empty segments.
func JoinPath(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "/"
		}
		out += p
	}
	return out
}
