// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/cachify"
//	"github.com/unkn0wn-root/cachify/hooks/async"
//	"github.com/unkn0wn-root/cachify/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery:  100, // sample logs: ~every 100th hit
//	    MissEvery: 10,
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	c, _ := cachify.New(cachify.Options{
//	    Storage: redis.New(nil),
//	    Hooks:   hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"
	"time"

	"github.com/unkn0wn-root/cachify"
)

// Hooks forwards events to inner on worker goroutines. Events are dropped
// when the queue is full.
type Hooks struct {
	inner   cachify.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped func()
}

var _ cachify.Hooks = (*Hooks)(nil)

func New(inner cachify.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}
	if inner == nil {
		inner = cachify.NopHooks{}
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen), dropped: func() {}}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// OnDrop registers a callback run synchronously for every dropped event.
// Call it before the hooks are in use.
func (h *Hooks) OnDrop(f func()) {
	if f != nil {
		h.dropped = f
	}
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped()
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped()
	}
}

func (h *Hooks) CacheHit(fn string)  { h.try(func() { h.inner.CacheHit(fn) }) }
func (h *Hooks) CacheMiss(fn string) { h.try(func() { h.inner.CacheMiss(fn) }) }
func (h *Hooks) Computed(fn string, took time.Duration, err error) {
	h.try(func() { h.inner.Computed(fn, took, err) })
}
func (h *Hooks) StorageError(fn, op string, err error) {
	h.try(func() { h.inner.StorageError(fn, op, err) })
}
func (h *Hooks) DecodeFailed(fn string, err error) {
	h.try(func() { h.inner.DecodeFailed(fn, err) })
}
