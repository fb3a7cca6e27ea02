package codec

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/proto"
)

// Protobuf encodes results that are proto.Message values. Functions returning
// *mypb.User can use it directly; the decode target **mypb.User is allocated
// on the fly.
type Protobuf struct{}

var _ Codec = Protobuf{}

func (Protobuf) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("protobuf codec: %T is not a proto.Message", v)
	}
	return proto.Marshal(m)
}

func (Protobuf) Unmarshal(b []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return proto.Unmarshal(b, m)
	}
	// v is a pointer to a message pointer (e.g. **mypb.User).
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Pointer {
		return fmt.Errorf("protobuf codec: cannot decode into %T", v)
	}
	msg := reflect.New(rv.Elem().Type().Elem())
	m, ok := msg.Interface().(proto.Message)
	if !ok {
		return fmt.Errorf("protobuf codec: cannot decode into %T", v)
	}
	if err := proto.Unmarshal(b, m); err != nil {
		return err
	}
	rv.Elem().Set(msg)
	return nil
}
