// Package storage defines the backend contract shared by the memory and
// remote (Redis) stores.
//
// Every operation comes in a blocking form and a context-aware form. The
// blocking form serves plain synchronous callers; the context form serves
// callers that can be suspended and cancelled. Both must give identical
// semantics:
//
//   - Set writes or overwrites the entry for (fnID, key) unconditionally.
//   - Get returns (nil, nil) when skip is true, without touching storage,
//     or when no live entry exists. Expired entries are never returned.
//   - Clear drops every entry the store owns.
//
// Namespacing by fnID keeps equal argument fingerprints of different
// functions apart.
package storage

import (
	"context"
	"time"
)

// Storage must be safe for concurrent use.
type Storage interface {
	Set(fnID, key string, result any, ttl time.Duration) error
	SetContext(ctx context.Context, fnID, key string, result any, ttl time.Duration) error

	Get(fnID, key string, skip bool) (*Entry, error)
	GetContext(ctx context.Context, fnID, key string, skip bool) (*Entry, error)

	Clear(ctx context.Context) error
}

// ExpiryChecker is implemented by stores that expose explicit staleness
// checks. IsExpired is true when the entry is absent or expired.
type ExpiryChecker interface {
	IsExpired(fnID, key string) (bool, error)
	IsExpiredContext(ctx context.Context, fnID, key string) (bool, error)
}

// Closer is implemented by stores that own background resources.
type Closer interface {
	Close(ctx context.Context) error
}
