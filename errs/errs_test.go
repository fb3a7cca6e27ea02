package errs

import (
	"io"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestSentinelMatching(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{InvalidKey(make(chan int), nil), ErrInvalidCacheKey},
		{Serialization(func() {}, io.ErrUnexpectedEOF), ErrSerialization},
		{NotConfigured("sync client missing"), ErrBackendConfiguration},
		{Remote("get", io.EOF), ErrRemoteStore},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Fatalf("%v: expected to match %v", tc.err, tc.sentinel)
		}
		wrapped := errors.Wrap(tc.err, "outer")
		if !errors.Is(wrapped, tc.sentinel) {
			t.Fatalf("wrapped %v: expected to match %v", wrapped, tc.sentinel)
		}
	}
}

func TestRemoteKeepsCause(t *testing.T) {
	err := Remote("set", io.EOF)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("cause lost: %v", err)
	}
	var rse *RemoteStoreError
	if !errors.As(err, &rse) || rse.Op != "set" {
		t.Fatalf("expected RemoteStoreError for set, got %#v", err)
	}
	if !strings.Contains(err.Error(), "remote set") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if Remote("get", nil) != nil {
		t.Fatalf("nil cause must stay nil")
	}
}

func TestMessagesNameTheType(t *testing.T) {
	err := InvalidKey(make(chan int), nil)
	if !strings.Contains(err.Error(), "chan int") {
		t.Fatalf("type not named: %q", err.Error())
	}
	err = Serialization(struct{ F func() }{}, nil)
	if !strings.Contains(err.Error(), "struct { F func() }") {
		t.Fatalf("type not named: %q", err.Error())
	}
}
