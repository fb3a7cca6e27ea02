package storage

import (
	"time"

	"github.com/unkn0wn-root/cachify/codec"
)

// NoExpiry marks an entry that never expires.
const NoExpiry time.Duration = 0

// Entry is one cached result. Entries are immutable: a write always replaces
// the previous entry for the key with a fresh one.
type Entry struct {
	result    any
	ttl       time.Duration
	createdAt time.Time
}

// NewEntry stamps result with the current time.
func NewEntry(result any, ttl time.Duration) *Entry {
	return RestoreEntry(result, ttl, time.Now())
}

// RestoreEntry rebuilds an entry read back from a remote store.
func RestoreEntry(result any, ttl time.Duration, createdAt time.Time) *Entry {
	if ttl < 0 {
		ttl = NoExpiry
	}
	return &Entry{result: result, ttl: ttl, createdAt: createdAt}
}

func (e *Entry) Result() any          { return e.result }
func (e *Entry) TTL() time.Duration   { return e.ttl }
func (e *Entry) CreatedAt() time.Time { return e.createdAt }

// ExpiresAt returns the zero time for entries without a TTL.
func (e *Entry) ExpiresAt() time.Time {
	if e.ttl == NoExpiry {
		return time.Time{}
	}
	return e.createdAt.Add(e.ttl)
}

// IsExpired reports whether the TTL has elapsed. It reads the clock on every call.
func (e *Entry) IsExpired() bool { return e.ExpiredAt(time.Now()) }

// ExpiredAt is IsExpired against an explicit clock reading.
func (e *Entry) ExpiredAt(now time.Time) bool {
	return e.ttl != NoExpiry && now.Sub(e.createdAt) > e.ttl
}

// Encoded is the result held by entries that came back from a byte store.
// Decode it into the caller's concrete type.
type Encoded struct {
	Data  []byte
	Codec codec.Codec
}

// Decode unmarshals the payload into v, which must be a non-nil pointer.
func (e Encoded) Decode(v any) error {
	c := e.Codec
	if c == nil {
		c = codec.Default
	}
	return c.Unmarshal(e.Data, v)
}
