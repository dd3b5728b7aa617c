// Package cache defines the port interface for the derived-value read cache.
//
// The ledger treats cached balances as disposable: every mutating ledger
// path deletes the affected keys before it returns, so a cache miss always
// falls back to recomputing the value from the entry log.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value cache with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
