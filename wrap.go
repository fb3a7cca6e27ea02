package cachify

import (
	"context"

	"github.com/unkn0wn-root/cachify/fingerprint"
)

// The WrapN helpers memoize ordinary Go functions. Parameter names become
// the signature, so IgnoreFields and keys work as with Memoize, and the
// wrapped function keeps its own identity.
//
//	add, _ := cachify.Wrap2(c, func(a, b int) (int, error) { return a + b, nil }, "a", "b",
//	    cachify.FuncOptions{TTL: time.Minute})
//	sum, err := add(2, 3)

func Wrap1[A, R any](c *Cache, fn func(A) (R, error), a string, opts FuncOptions) (func(A) (R, error), error) {
	sig, err := signature(a)
	if err != nil {
		return nil, err
	}
	m, err := memoize(c, sig, func(call Call) (R, error) {
		return fn(arg[A](call, 0))
	}, opts, fn)
	if err != nil {
		return nil, err
	}
	return func(x A) (R, error) { return m.Call(fingerprint.Args(x)) }, nil
}

func Wrap2[A, B, R any](c *Cache, fn func(A, B) (R, error), a, b string, opts FuncOptions) (func(A, B) (R, error), error) {
	sig, err := signature(a, b)
	if err != nil {
		return nil, err
	}
	m, err := memoize(c, sig, func(call Call) (R, error) {
		return fn(arg[A](call, 0), arg[B](call, 1))
	}, opts, fn)
	if err != nil {
		return nil, err
	}
	return func(x A, y B) (R, error) { return m.Call(fingerprint.Args(x, y)) }, nil
}

func Wrap3[A, B, C, R any](c *Cache, fn func(A, B, C) (R, error), a, b, cc string, opts FuncOptions) (func(A, B, C) (R, error), error) {
	sig, err := signature(a, b, cc)
	if err != nil {
		return nil, err
	}
	m, err := memoize(c, sig, func(call Call) (R, error) {
		return fn(arg[A](call, 0), arg[B](call, 1), arg[C](call, 2))
	}, opts, fn)
	if err != nil {
		return nil, err
	}
	return func(x A, y B, z C) (R, error) { return m.Call(fingerprint.Args(x, y, z)) }, nil
}

func Wrap1Context[A, R any](c *Cache, fn func(context.Context, A) (R, error), a string, opts FuncOptions) (func(context.Context, A) (R, error), error) {
	sig, err := signature(a)
	if err != nil {
		return nil, err
	}
	m, err := memoizeContext(c, sig, func(ctx context.Context, call Call) (R, error) {
		return fn(ctx, arg[A](call, 0))
	}, opts, fn)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, x A) (R, error) { return m.Call(ctx, fingerprint.Args(x)) }, nil
}

func Wrap2Context[A, B, R any](c *Cache, fn func(context.Context, A, B) (R, error), a, b string, opts FuncOptions) (func(context.Context, A, B) (R, error), error) {
	sig, err := signature(a, b)
	if err != nil {
		return nil, err
	}
	m, err := memoizeContext(c, sig, func(ctx context.Context, call Call) (R, error) {
		return fn(ctx, arg[A](call, 0), arg[B](call, 1))
	}, opts, fn)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, x A, y B) (R, error) { return m.Call(ctx, fingerprint.Args(x, y)) }, nil
}

func signature(names ...string) (*Signature, error) {
	params := make([]fingerprint.Param, len(names))
	for i, n := range names {
		params[i] = fingerprint.Arg(n)
	}
	return fingerprint.NewSignature(params...)
}

// arg reads positional value i; nil interface values become the zero T.
func arg[T any](call Call, i int) T {
	v, _ := call.Args[i].(T)
	return v
}
