// Package memory is the process-local storage backend. Results are kept as
// live Go values; nothing is serialized.
//
// Expired entries are dropped lazily on Get and eagerly by a background
// sweeper that scans the whole map every SweepInterval.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/cachify/log"
	"github.com/unkn0wn-root/cachify/storage"
)

// DefaultSweepInterval is how often the sweeper scans for expired entries.
const DefaultSweepInterval = 10 * time.Second

type slot struct {
	fn  string
	key string
}

// Options tune a Store. The zero value is usable.
type Options struct {
	// SweepInterval between sweeper passes. 0 => DefaultSweepInterval,
	// negative => no background sweeper (Sweep can still be called).
	SweepInterval time.Duration
	Logger        log.Logger
	// Clock overrides time.Now for expiry checks and entry timestamps.
	Clock func() time.Time
}

// Store is a single process-wide mapping from (function, key) to entry.
type Store struct {
	mu      sync.RWMutex
	entries map[slot]*storage.Entry

	log log.Logger
	now func() time.Time

	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var (
	_ storage.Storage = (*Store)(nil)
	_ storage.Closer  = (*Store)(nil)
)

// New returns a Store and starts its sweeper unless disabled.
func New(opts Options) *Store {
	s := &Store{
		entries: make(map[slot]*storage.Entry),
		log:     log.OrNop(opts.Logger),
		now:     opts.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	interval := opts.SweepInterval
	if interval == 0 {
		interval = DefaultSweepInterval
	}
	if interval > 0 {
		s.ticker = time.NewTicker(interval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go s.sweepLoop()
	}
	return s
}

func (s *Store) Set(fnID, key string, result any, ttl time.Duration) error {
	e := storage.RestoreEntry(result, ttl, s.now())
	s.mu.Lock()
	s.entries[slot{fnID, key}] = e
	s.mu.Unlock()
	return nil
}

func (s *Store) SetContext(ctx context.Context, fnID, key string, result any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Set(fnID, key, result, ttl)
}

func (s *Store) Get(fnID, key string, skip bool) (*storage.Entry, error) {
	if skip {
		return nil, nil
	}
	k := slot{fnID, key}
	s.mu.RLock()
	e, ok := s.entries[k]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if e.ExpiredAt(s.now()) {
		s.mu.Lock()
		// a concurrent Set may have replaced it
		if cur, ok := s.entries[k]; ok && cur == e {
			delete(s.entries, k)
		}
		s.mu.Unlock()
		return nil, nil
	}
	return e, nil
}

func (s *Store) GetContext(ctx context.Context, fnID, key string, skip bool) (*storage.Entry, error) {
	if skip {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Get(fnID, key, false)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.entries = make(map[slot]*storage.Entry)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep runs one sweeper pass and returns the number of removed entries.
func (s *Store) Sweep() int {
	now := s.now()
	var expired []slot

	s.mu.RLock()
	for k, e := range s.entries {
		if e.ExpiredAt(now) {
			expired = append(expired, k)
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	removed := 0
	s.mu.Lock()
	for _, k := range expired {
		if e, ok := s.entries[k]; ok && e.ExpiredAt(now) {
			delete(s.entries, k)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.log.Debug("cachify: memory sweep removed expired entries", log.Fields{"removed": removed})
	}
	return removed
}

func (s *Store) sweepLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			s.Sweep()
		case <-s.stopCh:
			return
		}
	}
}

// Close stops the sweeper. Entries stay readable.
// Safe to call multiple times.
func (s *Store) Close(context.Context) error {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.ticker.Stop()
			s.wg.Wait()
		}
	})
	return nil
}
