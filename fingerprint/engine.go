// Package fingerprint turns a call's bound arguments into a stable cache key.
//
// Arguments are bound against an explicit Signature, flattened into an
// ordered item list, encoded with deterministic CBOR and hashed with
// BLAKE2b-128. The hex digest is the key. Equal arguments always produce the
// same key, in any process. Values CBOR cannot encode, and structs with
// unexported fields CBOR would silently drop, are rejected with an
// InvalidCacheKeyError rather than keyed by identity.
package fingerprint

import (
	"encoding/hex"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/unkn0wn-root/cachify/errs"
	"github.com/unkn0wn-root/cachify/internal/lossless"
)

// DigestSize is the key digest length in bytes. Keys are twice as many hex chars.
const DigestSize = 16

// KeyFunc derives the key material for a call. Its result is encoded and
// hashed exactly like bound arguments.
type KeyFunc func(call Call) any

// Times keep full nanosecond precision and carry tag 0 so they never share
// a key with the equivalent string.
var encMode = func() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	opts.TimeTag = cbor.EncTagRequired
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Engine computes keys for one memoized function.
type Engine struct {
	sig     *Signature
	ignore  map[string]struct{}
	keyFunc KeyFunc
}

// NewEngine builds an engine. A nil sig accepts only empty calls. When
// keyFunc is set it replaces argument binding entirely and ignore has no
// effect.
func NewEngine(sig *Signature, ignore []string, keyFunc KeyFunc) *Engine {
	if sig == nil {
		sig, _ = NewSignature()
	}
	e := &Engine{sig: sig, keyFunc: keyFunc}
	if len(ignore) > 0 {
		e.ignore = make(map[string]struct{}, len(ignore))
		for _, name := range ignore {
			e.ignore[name] = struct{}{}
		}
	}
	return e
}

// Signature returns the signature the engine binds against.
func (e *Engine) Signature() *Signature { return e.sig }

// Key returns the hex fingerprint of call.
func (e *Engine) Key(call Call) (string, error) {
	if e.keyFunc != nil {
		return Digest(e.keyFunc(call))
	}
	items, err := e.Items(call)
	if err != nil {
		return "", err
	}
	return Digest(items)
}

// Items is the key material for call: ignored params are dropped,
// VarPositional values are spread in order, VarKeyword entries become
// [name, value] pairs sorted by name and every other param becomes a
// [name, value] pair.
func (e *Engine) Items(call Call) ([]any, error) {
	bound, err := e.sig.Bind(call)
	if err != nil {
		return nil, err
	}
	items := make([]any, 0, len(bound))
	for _, a := range bound {
		if _, skip := e.ignore[a.Name]; skip {
			continue
		}
		switch a.Kind {
		case VarPositional:
			items = append(items, a.Value.([]any)...)
		case VarKeyword:
			kw := a.Value.(map[string]any)
			names := make([]string, 0, len(kw))
			for name := range kw {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				items = append(items, []any{name, kw[name]})
			}
		default:
			items = append(items, []any{a.Name, a.Value})
		}
	}
	return items, nil
}

// Digest encodes v with deterministic CBOR and returns its BLAKE2b-128 hex digest.
func Digest(v any) (string, error) {
	if err := lossless.Check(v); err != nil {
		return "", errs.InvalidKey(v, err)
	}
	b, err := encMode.Marshal(v)
	if err != nil {
		return "", errs.InvalidKey(v, err)
	}
	h, err := blake2b.New(DigestSize, nil)
	if err != nil {
		return "", errors.Wrap(err, "fingerprint: blake2b")
	}
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil)), nil
}
