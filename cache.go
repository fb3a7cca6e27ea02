package cachify

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/unkn0wn-root/cachify/log"
	"github.com/unkn0wn-root/cachify/storage"
)

const tracerName = "github.com/unkn0wn-root/cachify"

// New builds a Cache over opts.Storage.
func New(opts Options) (*Cache, error) {
	if opts.Storage == nil {
		return nil, errors.New("cachify: storage is required")
	}
	c := &Cache{
		store: opts.Storage,
		log:   coalesce[Logger](opts.Logger, log.Nop{}),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
	}
	if opts.Tracing {
		tp := opts.TracerProvider
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		c.tracer = tp.Tracer(tracerName)
	} else {
		c.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	return c, nil
}

// binding is the capability set one call path runs with. The blocking path
// uses the mutex registry and the plain storage calls; the cooperative path
// uses the semaphore registry and the context-aware storage calls. Both run
// the same algorithm.
type binding struct {
	lock func(ctx context.Context, key string) (release func(), err error)
	get  func(ctx context.Context, fnID, key string, skip bool) (*storage.Entry, error)
	set  func(ctx context.Context, fnID, key string, result any, ttl time.Duration) error
}

func (c *Cache) blocking() binding {
	return binding{
		lock: func(_ context.Context, key string) (func(), error) {
			return c.mutexes.Lock(key), nil
		},
		get: func(_ context.Context, fnID, key string, skip bool) (*storage.Entry, error) {
			return c.store.Get(fnID, key, skip)
		},
		set: func(_ context.Context, fnID, key string, result any, ttl time.Duration) error {
			return c.store.Set(fnID, key, result, ttl)
		},
	}
}

func (c *Cache) cooperative() binding {
	return binding{
		lock: c.semaphores.Acquire,
		get:  c.store.GetContext,
		set:  c.store.SetContext,
	}
}
