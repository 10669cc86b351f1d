// Package cache stores rendered dashboard views between requests.
//
// Keys combine the dataset fingerprint with the dashboard state, so a reload
// never serves a view computed from the previous dataset.
package cache

import (
	"context"
	"fmt"

	"combinepulse/internal/dashboard"
)

// ViewCache stores rendered views by key
type ViewCache interface {
	// Get returns the cached view. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) (*dashboard.View, bool, error)
	Set(ctx context.Context, key string, view *dashboard.View) error
	// Purge removes every cached view
	Purge(ctx context.Context) (int64, error)
	Close() error
}

// ViewKey builds the cache key of a state rendered under a dataset and policy
func ViewKey(fingerprint string, state dashboard.State, policy dashboard.Policy) string {
	if len(fingerprint) > 16 {
		fingerprint = fingerprint[:16]
	}
	return fmt.Sprintf("%s:%d:%t:%s", fingerprint, policy.TopPicks, policy.SkipSentinelPercentile, state.Key())
}

// Noop is a ViewCache that never stores anything
type Noop struct{}

func (Noop) Get(context.Context, string) (*dashboard.View, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, *dashboard.View) error { return nil }
func (Noop) Purge(context.Context) (int64, error) { return 0, nil }
func (Noop) Close() error { return nil }
