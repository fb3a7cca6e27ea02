package cachify

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/cachify/fingerprint"
	"github.com/unkn0wn-root/cachify/internal/keys"
	"github.com/unkn0wn-root/cachify/storage"
)

// flight is the per-function state shared by both call paths.
type flight[R any] struct {
	c      *Cache
	id     string
	engine *fingerprint.Engine
	ttl    time.Duration
	skip   SkipFunc
}

func newFlight[R any](c *Cache, sig *Signature, opts FuncOptions, fn any) (*flight[R], error) {
	if c == nil {
		return nil, errors.New("cachify: cache is required")
	}
	if sig == nil && opts.KeyFunc == nil {
		return nil, errors.New("cachify: signature is required unless KeyFunc is set")
	}
	if !isFunc(fn) {
		return nil, errNilFunc
	}
	id := opts.Name
	if id == "" {
		id = functionID(fn)
	}
	if id == "" {
		return nil, errors.New("cachify: cannot name the wrapped function; set FuncOptions.Name")
	}
	if strings.IndexByte(id, 0) >= 0 {
		return nil, errors.Newf("cachify: function name %q contains a NUL byte", id)
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = storage.NoExpiry
	}
	return &flight[R]{
		c:      c,
		id:     id,
		engine: fingerprint.NewEngine(sig, opts.IgnoreFields, opts.KeyFunc),
		ttl:    ttl,
		skip:   SkipIf(opts.SkipCache),
	}, nil
}

// run is the memoization algorithm: look up, lock, look up again, compute,
// store. The key lock is released on every path, panics included, and a
// failed computation is returned unchanged and never stored.
func (f *flight[R]) run(ctx context.Context, b binding, call Call, compute func(context.Context) (R, error)) (out R, err error) {
	ctx, span := f.c.tracer.Start(ctx, "cachify.call", trace.WithAttributes(
		attribute.String("cachify.function", f.id),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var zero R
	key, err := f.engine.Key(call)
	if err != nil {
		return zero, err
	}
	skip := f.skip(call)
	span.SetAttributes(attribute.String("cachify.key", key), attribute.Bool("cachify.skip", skip))

	if v, ok, err := f.lookup(ctx, b, key, skip); err != nil || ok {
		span.SetAttributes(attribute.Bool("cachify.hit", ok))
		return v, err
	}

	release, err := b.lock(ctx, keys.Lock(f.id, key))
	if err != nil {
		return zero, err
	}
	defer release()

	// another caller may have stored the result while we waited
	if v, ok, err := f.lookup(ctx, b, key, skip); err != nil || ok {
		span.SetAttributes(attribute.Bool("cachify.hit", ok))
		return v, err
	}
	span.SetAttributes(attribute.Bool("cachify.hit", false))
	f.c.hooks.CacheMiss(f.id)

	start := time.Now()
	v, err := compute(ctx)
	f.c.hooks.Computed(f.id, time.Since(start), err)
	if err != nil {
		return zero, err
	}

	if err := b.set(ctx, f.id, key, v, f.ttl); err != nil {
		f.c.hooks.StorageError(f.id, "set", err)
		f.c.log.Warn("cachify: storing result failed", Fields{"fn": f.id, "key": key, "err": err})
		return zero, err
	}
	return v, nil
}

// lookup reads a live entry and resolves it to R. A result that cannot be
// resolved counts as a miss.
func (f *flight[R]) lookup(ctx context.Context, b binding, key string, skip bool) (R, bool, error) {
	var zero R
	e, err := b.get(ctx, f.id, key, skip)
	if err != nil {
		f.c.hooks.StorageError(f.id, "get", err)
		f.c.log.Warn("cachify: reading cached result failed", Fields{"fn": f.id, "key": key, "err": err})
		return zero, false, err
	}
	if e == nil {
		return zero, false, nil
	}
	v, err := resolve[R](e.Result())
	if err != nil {
		f.c.hooks.DecodeFailed(f.id, err)
		f.c.log.Debug("cachify: cached result not decodable, recomputing", Fields{"fn": f.id, "key": key, "err": err})
		return zero, false, nil
	}
	f.c.hooks.CacheHit(f.id)
	return v, true, nil
}

func (f *flight[R]) isCached(ctx context.Context, b binding, call Call) (bool, error) {
	key, err := f.engine.Key(call)
	if err != nil {
		return false, err
	}
	e, err := b.get(ctx, f.id, key, false)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

// resolve turns a stored result back into R. Memory entries hold R itself;
// remote entries hold an Encoded payload.
func resolve[R any](res any) (R, error) {
	var out R
	switch v := res.(type) {
	case storage.Encoded:
		err := v.Decode(&out)
		return out, err
	case R:
		return v, nil
	case nil:
		return out, nil
	}
	return out, errors.Newf("cachify: cached %T is not %T", res, out)
}
