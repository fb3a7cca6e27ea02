package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("cachify: corrupt entry")
	magic4     = [...]byte{'C', 'F', 'Y', 'E'}
)

const hdr = 4 + 1 + 8 + 8 + 4

// Frame is the decoded form of a remote entry.
type Frame struct {
	CreatedAt time.Time
	TTL       time.Duration // 0 => no expiry
	Payload   []byte
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | created_at(i64 be, unix nanos) | ttl(i64 be, nanos) | vlen(u32 be) | payload(vlen)
func Encode(createdAt time.Time, ttl time.Duration, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdr + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(createdAt.UnixNano()))
	buf.Write(u8[:])

	if ttl < 0 {
		ttl = 0
	}
	binary.BigEndian.PutUint64(u8[:], uint64(ttl))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode parses an entry frame. The returned payload aliases b.
// Trailing bytes are rejected.
func Decode(b []byte) (Frame, error) {
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return Frame{}, ErrCorrupt
	}
	off := 5

	created := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	ttl := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	if ttl < 0 {
		return Frame{}, ErrCorrupt
	}

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off {
		return Frame{}, ErrCorrupt
	}

	return Frame{
		CreatedAt: time.Unix(0, created),
		TTL:       time.Duration(ttl),
		Payload:   b[off : off+vlen],
	}, nil
}
