// Package codec converts cached results to and from bytes for the remote
// backend. The memory backend keeps results as live Go values and never
// touches a codec.
package codec

// Codec encodes a result to bytes and decodes bytes into a pointer target.
//
// Unmarshal always receives a non-nil pointer (e.g. *User for a func that
// returns User).
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, v any) error
}

// Default is the codec used when none is configured.
var Default Codec = Msgpack{}
