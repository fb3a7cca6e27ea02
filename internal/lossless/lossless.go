// Package lossless rejects values that struct-walking encoders (CBOR,
// msgpack, JSON) would encode with silently missing data.
//
// Those encoders skip unexported struct fields without an error, so two
// different values can encode to the same bytes. Check walks a value and
// reports the first struct type that has unexported fields and no custom
// marshaling of its own. Embedded structs are inlined by those encoders and
// are checked field by field.
package lossless

import (
	"encoding"
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
)

// ErrHiddenFields marks values with unexported struct fields.
var ErrHiddenFields = errors.New("lossless: value has unexported struct fields")

// maxDepth bounds the walk; deeper values are left to the encoder.
const maxDepth = 64

var marshalers = []reflect.Type{
	reflect.TypeOf((*cbor.Marshaler)(nil)).Elem(),
	reflect.TypeOf((*msgpack.Marshaler)(nil)).Elem(),
	reflect.TypeOf((*msgpack.CustomEncoder)(nil)).Elem(),
	reflect.TypeOf((*json.Marshaler)(nil)).Elem(),
	reflect.TypeOf((*encoding.BinaryMarshaler)(nil)).Elem(),
	reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem(),
	reflect.TypeOf((*proto.Message)(nil)).Elem(),
}

// Check returns an error marked with ErrHiddenFields when v holds a struct
// with unexported fields anywhere inside it. Types that marshal themselves
// are trusted and not descended into, time.Time and proto messages among
// them.
func Check(v any) error {
	w := walker{seen: make(map[visit]struct{})}
	return w.walk(reflect.ValueOf(v), 0)
}

type visit struct {
	ptr uintptr
	typ reflect.Type
}

type walker struct {
	seen map[visit]struct{}
}

func (w walker) walk(v reflect.Value, depth int) error {
	if !v.IsValid() || depth > maxDepth {
		return nil
	}
	t := v.Type()
	if custom(t) {
		return nil
	}
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		k := visit{v.Pointer(), t}
		if _, ok := w.seen[k]; ok {
			return nil
		}
		w.seen[k] = struct{}{}
		return w.walk(v.Elem(), depth+1)
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return w.walk(v.Elem(), depth+1)
	case reflect.Struct:
		return w.fields(v, depth)
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := w.walk(v.Index(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Map:
		it := v.MapRange()
		for it.Next() {
			if err := w.walk(it.Key(), depth+1); err != nil {
				return err
			}
			if err := w.walk(it.Value(), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// fields checks a struct's fields. Embedded structs are flattened into the
// parent by the encoders, so their fields are checked inline and their own
// marshalers do not count.
func (w walker) fields(v reflect.Value, depth int) error {
	if depth > maxDepth {
		return nil
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name == "_" {
			continue
		}
		fv := v.Field(i)
		if embedded(f) {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if err := w.fields(fv, depth+1); err != nil {
				return err
			}
			continue
		}
		if !f.IsExported() {
			return errors.Wrapf(ErrHiddenFields, "%s.%s is unexported", t, f.Name)
		}
		if err := w.walk(fv, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// custom reports types that marshal themselves. A method promoted from an
// embedded field does not count.
func custom(t reflect.Type) bool {
	for _, m := range marshalers {
		if !implements(t, m) {
			continue
		}
		if !promotes(t, m) {
			return true
		}
	}
	return false
}

func implements(t, m reflect.Type) bool {
	return t.Implements(m) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(m))
}

func promotes(t, m reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.Anonymous && implements(f.Type, m) {
			return true
		}
	}
	return false
}

// embedded reports anonymous struct fields, by value or by pointer.
func embedded(f reflect.StructField) bool {
	if !f.Anonymous {
		return false
	}
	t := f.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}
