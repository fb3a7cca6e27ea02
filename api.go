package cachify

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/cachify/fingerprint"
	"github.com/unkn0wn-root/cachify/locks"
	"github.com/unkn0wn-root/cachify/log"
	"github.com/unkn0wn-root/cachify/storage"
)

type (
	Logger = log.Logger
	Fields = log.Fields

	Call      = fingerprint.Call
	Signature = fingerprint.Signature
	KeyFunc   = fingerprint.KeyFunc
)

// Options configure a Cache. Only Storage is required.
type Options struct {
	Storage storage.Storage // memory.New(...) or redis.New(...)

	Logger Logger // if nil, log.Nop is used
	Hooks  Hooks  // if nil, NopHooks is used

	// Tracing wraps every memoized call in a span.
	Tracing        bool
	TracerProvider trace.TracerProvider // nil => otel global provider
}

// SkipFunc decides per call whether the cached entry is bypassed. A skipped
// call still computes under the key lock and refreshes the stored entry.
type SkipFunc func(call Call) bool

func SkipAlways(Call) bool { return true }
func SkipNever(Call) bool  { return false }

// SkipIf returns cond as a SkipFunc, or SkipNever when cond is nil.
func SkipIf(cond func(call Call) bool) SkipFunc {
	if cond == nil {
		return SkipNever
	}
	return cond
}

// FuncOptions tune one memoized function.
type FuncOptions struct {
	// Name overrides the function identity used to namespace keys. Defaults to
	// the fully qualified Go symbol name of the wrapped function.
	Name string
	// TTL of stored results. 0 (storage.NoExpiry) keeps them forever.
	TTL time.Duration
	// IgnoreFields are parameter names left out of the key.
	IgnoreFields []string
	// KeyFunc replaces argument fingerprinting; its result is hashed instead.
	KeyFunc KeyFunc
	// SkipCache bypasses cached entries for the calls it selects. nil => SkipNever.
	SkipCache SkipFunc
}

// Result is what Go delivers once a cooperative call completes.
type Result[R any] struct {
	Value R
	Err   error
}

// Cache owns the storage, both lock registries and the ambient logger,
// hooks and tracer shared by every function memoized against it.
type Cache struct {
	store storage.Storage
	log   Logger
	hooks Hooks

	tracer trace.Tracer

	mutexes    locks.Mutexes
	semaphores locks.Semaphores
}

// Storage returns the backend the cache writes to.
func (c *Cache) Storage() storage.Storage { return c.store }

// Reset clears storage and forgets every lock. Call it only while no
// memoized call is running on c; a call in flight during Reset may compute
// concurrently with a later call for the same key.
func (c *Cache) Reset(ctx context.Context) error {
	err := c.store.Clear(ctx)
	c.mutexes.Reset()
	c.semaphores.Reset()
	return err
}

// Close releases storage resources (the memory sweeper) when the backend has any.
func (c *Cache) Close(ctx context.Context) error {
	if cl, ok := c.store.(storage.Closer); ok {
		return cl.Close(ctx)
	}
	return nil
}
