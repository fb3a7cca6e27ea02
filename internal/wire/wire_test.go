package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func mustDecode(t *testing.T, b []byte) Frame {
	t.Helper()
	f, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return f
}

func TestRoundTripKeepsMetadata(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 123, time.UTC)
	cases := []struct {
		ttl     time.Duration
		payload []byte
	}{
		{0, nil},
		{time.Second, []byte("hello")},
		{90 * time.Minute, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		f := mustDecode(t, Encode(created, tc.ttl, tc.payload))
		if !f.CreatedAt.Equal(created) {
			t.Fatalf("created mismatch: got %v want %v", f.CreatedAt, created)
		}
		if f.TTL != tc.ttl {
			t.Fatalf("ttl mismatch: got %v want %v", f.TTL, tc.ttl)
		}
		if !bytes.Equal(f.Payload, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", f.Payload, tc.payload)
		}
	}
}

func TestNegativeTTLEncodesAsNoExpiry(t *testing.T) {
	f := mustDecode(t, Encode(time.Now(), -time.Second, []byte("x")))
	if f.TTL != 0 {
		t.Fatalf("ttl = %v, want 0", f.TTL)
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := Encode(time.Now(), time.Second, []byte("x"))
	enc = append(enc, 0xDE, 0xAD)
	if _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestCorruptHeadersAndLengths(t *testing.T) {
	enc := Encode(time.Now(), time.Second, []byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// ttl lives at offset 13..21 (4 magic +1 ver +8 created)
	negTTL := append([]byte(nil), enc...)
	binary.BigEndian.PutUint64(negTTL[13:21], uint64(1)<<63)
	if _, err := Decode(negTTL); err == nil {
		t.Fatalf("expected error on negative ttl")
	}

	tooLong := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(tooLong[21:25], uint32(len("abc")+1))
	if _, err := Decode(tooLong); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}

	if _, err := Decode(enc[:len(enc)-1]); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
	if _, err := Decode([]byte("pickle?")); err == nil {
		t.Fatalf("expected error on foreign bytes")
	}
}
