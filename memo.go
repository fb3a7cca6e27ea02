package cachify

import (
	"context"

	"github.com/cockroachdb/errors"
)

var errNilFunc = errors.New("cachify: function is required")

// Func is a memoized function for blocking callers.
type Func[R any] struct {
	f  *flight[R]
	fn func(Call) (R, error)
}

// Memoize wraps fn. sig declares fn's parameters and drives the key; it may
// be nil when opts.KeyFunc is set.
func Memoize[R any](c *Cache, sig *Signature, fn func(call Call) (R, error), opts FuncOptions) (*Func[R], error) {
	return memoize(c, sig, fn, opts, fn)
}

func memoize[R any](c *Cache, sig *Signature, fn func(Call) (R, error), opts FuncOptions, ident any) (*Func[R], error) {
	if fn == nil {
		return nil, errNilFunc
	}
	f, err := newFlight[R](c, sig, opts, ident)
	if err != nil {
		return nil, err
	}
	return &Func[R]{f: f, fn: fn}, nil
}

// Call returns the cached result for call or computes and stores it. Only
// one caller per key computes at a time; the others wait and reuse its result.
func (m *Func[R]) Call(call Call) (R, error) {
	return m.f.run(context.Background(), m.f.c.blocking(), call, func(context.Context) (R, error) {
		return m.fn(call)
	})
}

// Key returns the cache key for call without touching storage.
func (m *Func[R]) Key(call Call) (string, error) { return m.f.engine.Key(call) }

// FunctionID is the namespace the function's entries are stored under.
func (m *Func[R]) FunctionID() string { return m.f.id }

// IsCached reports whether a live entry exists for call.
func (m *Func[R]) IsCached(call Call) (bool, error) {
	return m.f.isCached(context.Background(), m.f.c.blocking(), call)
}

// ContextFunc is a memoized function for context-aware callers. Waiting for
// the key lock and storage round trips stop when ctx is done.
type ContextFunc[R any] struct {
	f  *flight[R]
	fn func(context.Context, Call) (R, error)
}

// MemoizeContext wraps fn for the cooperative path. It shares key format,
// storage and function identity rules with Memoize, but uses its own lock
// registry.
func MemoizeContext[R any](c *Cache, sig *Signature, fn func(ctx context.Context, call Call) (R, error), opts FuncOptions) (*ContextFunc[R], error) {
	return memoizeContext(c, sig, fn, opts, fn)
}

func memoizeContext[R any](c *Cache, sig *Signature, fn func(context.Context, Call) (R, error), opts FuncOptions, ident any) (*ContextFunc[R], error) {
	if fn == nil {
		return nil, errNilFunc
	}
	f, err := newFlight[R](c, sig, opts, ident)
	if err != nil {
		return nil, err
	}
	return &ContextFunc[R]{f: f, fn: fn}, nil
}

func (m *ContextFunc[R]) Call(ctx context.Context, call Call) (R, error) {
	return m.f.run(ctx, m.f.c.cooperative(), call, func(ctx context.Context) (R, error) {
		return m.fn(ctx, call)
	})
}

// Go runs Call in its own goroutine. The channel receives exactly one Result.
func (m *ContextFunc[R]) Go(ctx context.Context, call Call) <-chan Result[R] {
	ch := make(chan Result[R], 1)
	go func() {
		v, err := m.Call(ctx, call)
		ch <- Result[R]{Value: v, Err: err}
	}()
	return ch
}

func (m *ContextFunc[R]) Key(call Call) (string, error) { return m.f.engine.Key(call) }
func (m *ContextFunc[R]) FunctionID() string            { return m.f.id }

func (m *ContextFunc[R]) IsCached(ctx context.Context, call Call) (bool, error) {
	return m.f.isCached(ctx, m.f.c.cooperative(), call)
}
