package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestHitSampling(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{HitEvery: 5})
	for i := 0; i < 20; i++ {
		h.CacheHit("pkg.f")
	}
	if n := strings.Count(buf.String(), "cachify.hit"); n != 4 {
		t.Fatalf("logged %d hits, want 4", n)
	}
}

func TestComputedLevels(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{SlowCompute: time.Second})

	h.Computed("f", time.Millisecond, nil)
	h.Computed("f", 2*time.Second, nil)
	h.Computed("f", time.Millisecond, errors.New("boom"))

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG msg=cachify.computed",
		"level=INFO msg=cachify.compute_slow",
		"level=INFO msg=cachify.compute_failed",
		"err=boom",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestStorageErrorWarns(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{})
	h.StorageError("f", "get", errors.New("down"))
	if !strings.Contains(buf.String(), "level=WARN msg=cachify.storage_error fn=f op=get err=down") {
		t.Fatalf("unexpected log: %s", buf.String())
	}
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{})
	h.CacheHit("f")
	h.CacheMiss("f")
	h.Computed("f", 0, nil)
	h.StorageError("f", "set", errors.New("x"))
	h.DecodeFailed("f", errors.New("x"))
}
