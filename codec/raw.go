package codec

import "fmt"

// Bytes is an identity codec for []byte results. Marshal/Unmarshal pass the
// slice through unchanged.
type Bytes struct{}

var _ Codec = Bytes{}

func (Bytes) Marshal(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("bytes codec: %T is not []byte", v)
	}
	return b, nil
}

func (Bytes) Unmarshal(b []byte, v any) error {
	p, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("bytes codec: cannot decode into %T", v)
	}
	*p = b
	return nil
}

// String is a trivial codec for Go string results. By convention this assumes
// UTF-8 and performs no validation.
type String struct{}

var _ Codec = String{}

func (String) Marshal(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("string codec: %T is not string", v)
	}
	return []byte(s), nil
}

func (String) Unmarshal(b []byte, v any) error {
	p, ok := v.(*string)
	if !ok {
		return fmt.Errorf("string codec: cannot decode into %T", v)
	}
	*p = string(b)
	return nil
}
