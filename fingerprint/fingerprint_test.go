package fingerprint

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/unkn0wn-root/cachify/errs"
)

type point struct {
	X, Y int
}

type account struct {
	ID    string
	Point *point
	Seen  time.Time
}

type opaque struct {
	id   int
	name string
}

type stamped struct {
	time.Time
	Label string
}

func mustKey(t *testing.T, e *Engine, call Call) string {
	t.Helper()
	k, err := e.Key(call)
	if err != nil {
		t.Fatalf("Key(%+v): %v", call, err)
	}
	return k
}

func TestKeyShape(t *testing.T) {
	e := NewEngine(MustSignature(Arg("a"), Arg("b")), nil, nil)
	k := mustKey(t, e, Args(2, 3))
	if len(k) != 2*DigestSize {
		t.Fatalf("key %q has %d chars, want %d", k, len(k), 2*DigestSize)
	}
}

func TestDeterministic(t *testing.T) {
	sig := MustSignature(Arg("name"), Arg("tags"), Arg("p"), Keywords("opts"))
	call := Call{
		Args: []any{"x", []string{"a", "b"}, point{1, 2}},
		Kwargs: map[string]any{
			"z": map[string]int{"k1": 1, "k2": 2, "k3": 3},
			"a": 1.5,
		},
	}
	want := mustKey(t, NewEngine(sig, nil, nil), call)
	for i := 0; i < 50; i++ {
		// a fresh engine each time; map iteration order must not leak into the key
		if got := mustKey(t, NewEngine(sig, nil, nil), call); got != want {
			t.Fatalf("iteration %d: key %q != %q", i, got, want)
		}
	}
}

func TestDiscrimination(t *testing.T) {
	e := NewEngine(MustSignature(Arg("a"), Arg("b")), nil, nil)
	seen := make(map[string][2]int, 10000)
	for a := 0; a < 100; a++ {
		for b := 0; b < 100; b++ {
			k := mustKey(t, e, Args(a, b))
			if prev, dup := seen[k]; dup {
				t.Fatalf("collision: %v and %v -> %s", prev, [2]int{a, b}, k)
			}
			seen[k] = [2]int{a, b}
		}
	}
}

func TestCompositeValuesDiffer(t *testing.T) {
	e := NewEngine(MustSignature(Arg("v")), nil, nil)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	vals := []any{
		point{1, 2},
		point{2, 1},
		point{},
		&point{3, 4},
		account{ID: "a"},
		account{ID: "b"},
		account{ID: "a", Point: &point{1, 2}},
		account{ID: "a", Point: &point{1, 3}},
		account{ID: "a", Seen: base},
		account{ID: "a", Seen: base.Add(time.Nanosecond)},
		base,
		base.Add(500 * time.Millisecond),
		base.Add(time.Second),
		base.Format(time.RFC3339Nano),
		map[string]any{"a": map[string]int{"x": 1}},
		map[string]any{"a": map[string]int{"x": 2}},
		map[string]any{"a": map[string]int{"y": 1}},
		map[string]any{"a": []any{map[string]int{"x": 1}}},
		[]point{{1, 2}, {3, 4}},
		[]point{{3, 4}, {1, 2}},
	}
	seen := map[string]any{}
	for _, v := range vals {
		k := mustKey(t, e, Args(v))
		if prev, dup := seen[k]; dup {
			t.Fatalf("%#v and %#v share key", prev, v)
		}
		seen[k] = v
	}
}

func TestSubSecondTimes(t *testing.T) {
	e := NewEngine(MustSignature(Arg("at")), nil, nil)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if mustKey(t, e, Args(at)) == mustKey(t, e, Args(at.Add(500*time.Millisecond))) {
		t.Fatal("times 500ms apart share a key")
	}
	if mustKey(t, e, Args(at)) != mustKey(t, e, Args(at.Add(0))) {
		t.Fatal("equal times produced different keys")
	}
}

func TestUnexportedFieldsRejected(t *testing.T) {
	e := NewEngine(MustSignature(Arg("v")), nil, nil)
	for _, v := range []any{
		opaque{1, "a"},
		&opaque{2, "b"},
		[]any{opaque{}},
		map[string]any{"k": opaque{}},
		stamped{Time: time.Now(), Label: "flattened"},
	} {
		_, err := e.Key(Args(v))
		if !errors.Is(err, errs.ErrInvalidCacheKey) {
			t.Fatalf("%#v: err = %v, want invalid cache key", v, err)
		}
	}
	if _, err := Digest(opaque{1, "a"}); !errors.Is(err, errs.ErrInvalidCacheKey) {
		t.Fatalf("Digest err = %v, want invalid cache key", err)
	}
	// time.Time has unexported fields but marshals itself
	mustKey(t, e, Args(account{ID: "ok", Seen: time.Now()}))
}

func TestValueKindsDiffer(t *testing.T) {
	e := NewEngine(MustSignature(Arg("v")), nil, nil)
	vals := []any{1, 1.0, "1", true, []int{1}, nil, []byte("1")}
	seen := map[string]any{}
	for _, v := range vals {
		k := mustKey(t, e, Args(v))
		if prev, dup := seen[k]; dup {
			t.Fatalf("%#v and %#v share key", prev, v)
		}
		seen[k] = v
	}
}

func TestPositionalAndNamedAgree(t *testing.T) {
	e := NewEngine(MustSignature(Arg("a"), Arg("b")), nil, nil)
	byPos := mustKey(t, e, Args(2, 3))
	byName := mustKey(t, e, Call{Kwargs: map[string]any{"b": 3, "a": 2}})
	mixed := mustKey(t, e, Call{Args: []any{2}, Kwargs: map[string]any{"b": 3}})
	if byPos != byName || byPos != mixed {
		t.Fatalf("keys differ: %s %s %s", byPos, byName, mixed)
	}
	if swapped := mustKey(t, e, Args(3, 2)); swapped == byPos {
		t.Fatal("argument order must matter")
	}
}

func TestDefaultsApplied(t *testing.T) {
	e := NewEngine(MustSignature(Arg("a"), ArgDefault("b", 10)), nil, nil)
	if mustKey(t, e, Args(1)) != mustKey(t, e, Args(1, 10)) {
		t.Fatal("omitting a default must equal passing it")
	}
	if mustKey(t, e, Args(1)) == mustKey(t, e, Args(1, 11)) {
		t.Fatal("non-default value must change the key")
	}
}

func TestIgnoreFields(t *testing.T) {
	sig := MustSignature(Arg("a"), Arg("b"), Arg("logger"))
	e := NewEngine(sig, []string{"logger"}, nil)
	k1 := mustKey(t, e, Args(1, 2, "stdout"))
	k2 := mustKey(t, e, Args(1, 2, "stderr"))
	if k1 != k2 {
		t.Fatal("ignored field changed the key")
	}
	if k1 == mustKey(t, e, Args(1, 3, "stdout")) {
		t.Fatal("non-ignored field did not change the key")
	}
}

func TestIgnoreVariadic(t *testing.T) {
	e := NewEngine(MustSignature(Arg("a"), Variadic("rest")), []string{"rest"}, nil)
	if mustKey(t, e, Args(1)) != mustKey(t, e, Args(1, "x", "y")) {
		t.Fatal("ignored variadic contributed to key")
	}
}

func TestKwargsOrderIrrelevant(t *testing.T) {
	e := NewEngine(MustSignature(Arg("a"), Keywords("kw")), nil, nil)
	a := Call{Args: []any{1}, Kwargs: map[string]any{"x": 1, "y": 2, "z": 3}}
	b := Call{Args: []any{1}, Kwargs: map[string]any{"z": 3, "x": 1, "y": 2}}
	if mustKey(t, e, a) != mustKey(t, e, b) {
		t.Fatal("kwargs order changed the key")
	}
}

func TestVariadicSpread(t *testing.T) {
	e := NewEngine(MustSignature(Arg("a"), Variadic("rest")), nil, nil)
	items, err := e.Items(Args(1, "x", "y"))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 || items[1] != "x" || items[2] != "y" {
		t.Fatalf("items = %#v", items)
	}
	if mustKey(t, e, Args(1, "x", "y")) == mustKey(t, e, Args(1, "y", "x")) {
		t.Fatal("variadic order must matter")
	}
}

func TestKeyFunc(t *testing.T) {
	kf := func(c Call) any { return c.Args[0] }
	e := NewEngine(MustSignature(Arg("id"), Arg("noise")), nil, kf)
	if mustKey(t, e, Args("u1", 1)) != mustKey(t, e, Args("u1", 2)) {
		t.Fatal("key func result should be the only key material")
	}
	want, _ := Digest("u1")
	if got := mustKey(t, e, Args("u1", 1)); got != want {
		t.Fatalf("key = %s, want Digest(u1) = %s", got, want)
	}
}

func TestUnencodable(t *testing.T) {
	e := NewEngine(MustSignature(Arg("v")), nil, nil)
	for _, v := range []any{func() {}, make(chan int), complex(1, 2)} {
		_, err := e.Key(Args(v))
		if !errors.Is(err, errs.ErrInvalidCacheKey) {
			t.Fatalf("%T: err = %v, want invalid cache key", v, err)
		}
		var ik *errs.InvalidCacheKeyError
		if !errors.As(err, &ik) || ik.Type != "[]interface {}" {
			t.Fatalf("%T: error = %#v", v, ik)
		}
	}

	kf := NewEngine(nil, nil, func(Call) any { return func() {} })
	_, err := kf.Key(Call{})
	var ik *errs.InvalidCacheKeyError
	if !errors.As(err, &ik) || ik.Type != "func()" {
		t.Fatalf("key func error = %v, want type func()", err)
	}
}

func TestBindErrors(t *testing.T) {
	sig := MustSignature(Arg("a"), Arg("b"))
	cases := []Call{
		Args(1, 2, 3),
		{Args: []any{1}, Kwargs: map[string]any{"a": 1}},
		{Kwargs: map[string]any{"c": 1}},
	}
	for _, c := range cases {
		if _, err := sig.Bind(c); !errors.Is(err, ErrBadCall) {
			t.Fatalf("Bind(%+v) err = %v, want ErrBadCall", c, err)
		}
	}
}

func TestBindPartial(t *testing.T) {
	sig := MustSignature(Arg("a"), Arg("b"), Variadic("rest"), Keywords("kw"))
	b, err := sig.Bind(Call{Kwargs: map[string]any{"b": 2, "extra": true}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Lookup("a"); ok {
		t.Fatal("missing required param should be absent")
	}
	if v, _ := b.Lookup("b"); v != 2 {
		t.Fatalf("b = %v", v)
	}
	if v, _ := b.Lookup("rest"); len(v.([]any)) != 0 {
		t.Fatalf("rest = %v, want empty", v)
	}
	if v, _ := b.Lookup("kw"); v.(map[string]any)["extra"] != true {
		t.Fatalf("kw = %v", v)
	}
}

func TestSignatureValidation(t *testing.T) {
	bad := [][]Param{
		{Arg("")},
		{Arg("a"), Arg("a")},
		{Variadic("r"), Arg("a")},
		{Variadic("r"), Variadic("s")},
		{Keywords("k"), Arg("a")},
		{Keywords("k"), Keywords("j")},
		{{Name: "x", Kind: Kind(9)}},
		{{Name: "r", Kind: VarPositional, HasDefault: true}},
	}
	for _, ps := range bad {
		if _, err := NewSignature(ps...); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("NewSignature(%+v) err = %v, want ErrBadSignature", ps, err)
		}
	}
	if _, err := NewSignature(Arg("a"), ArgDefault("b", 1), Variadic("r"), Keywords("k")); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}
