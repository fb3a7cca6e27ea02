package cachify

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A live entry answered the call, before or after waiting on the key lock.
	CacheHit(fnID string)
	// No live entry after the locked re-check; the function is about to run.
	CacheMiss(fnID string)
	// The wrapped function returned. Failed computations are never stored.
	Computed(fnID string, took time.Duration, err error)
	// Storage returned an error. op ∈ {"get", "set"}
	StorageError(fnID, op string, err error)
	// A stored result could not be decoded into the function's result type
	// and was treated as a miss.
	DecodeFailed(fnID string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) CacheHit(string)                       {}
func (NopHooks) CacheMiss(string)                      {}
func (NopHooks) Computed(string, time.Duration, error) {}
func (NopHooks) StorageError(string, string, error)    {}
func (NopHooks) DecodeFailed(string, error)            {}
