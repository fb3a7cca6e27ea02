// Package errs holds the error taxonomy shared by the fingerprint engine,
// the storage backends and the memoization layer.
//
// Every concrete error type matches its sentinel through errors.Is, so callers
// can branch on the class without caring about the concrete wrapper:
//
//	if errors.Is(err, errs.ErrRemoteStore) { ... }
package errs

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidCacheKey marks arguments or key-function results that cannot
	// be encoded deterministically.
	ErrInvalidCacheKey = errors.New("cachify: invalid cache key")
	// ErrSerialization marks results that cannot be encoded for remote storage.
	ErrSerialization = errors.New("cachify: serialization failed")
	// ErrBackendConfiguration marks a backend used without the client it needs.
	ErrBackendConfiguration = errors.New("cachify: backend not configured")
	// ErrRemoteStore marks network or protocol failures talking to the remote store.
	ErrRemoteStore = errors.New("cachify: remote store error")
)

// InvalidCacheKeyError reports a value that the canonical encoder refused.
type InvalidCacheKeyError struct {
	Type string // Go type of the offending value
	Err  error
}

func (e *InvalidCacheKeyError) Error() string {
	if e.Err == nil {
		return "cachify: invalid cache key: cannot encode value of type " + e.Type
	}
	return "cachify: invalid cache key: cannot encode value of type " + e.Type + ": " + e.Err.Error()
}

func (e *InvalidCacheKeyError) Unwrap() error        { return e.Err }
func (e *InvalidCacheKeyError) Is(target error) bool { return target == ErrInvalidCacheKey }

// SerializationError reports a result that the storage codec refused.
// It is never silenced by an error policy.
type SerializationError struct {
	Type string
	Err  error
}

func (e *SerializationError) Error() string {
	msg := "cachify: failed to serialize cache entry: object of type " + e.Type +
		" cannot be encoded; ensure the cached result is serializable"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SerializationError) Unwrap() error        { return e.Err }
func (e *SerializationError) Is(target error) bool { return target == ErrSerialization }

// BackendConfigurationError reports a missing client or configuration.
type BackendConfigurationError struct {
	Reason string
}

func (e *BackendConfigurationError) Error() string {
	return "cachify: backend configuration: " + e.Reason
}

func (e *BackendConfigurationError) Is(target error) bool { return target == ErrBackendConfiguration }

// RemoteStoreError wraps a client failure together with the storage operation
// that hit it ("get", "set", "is_expired", "clear", ...).
type RemoteStoreError struct {
	Op  string
	Err error
}

func (e *RemoteStoreError) Error() string {
	return errors.Wrapf(e.Err, "cachify: remote %s", e.Op).Error()
}

func (e *RemoteStoreError) Unwrap() error        { return e.Err }
func (e *RemoteStoreError) Is(target error) bool { return target == ErrRemoteStore }

// InvalidKey builds an InvalidCacheKeyError for value v.
func InvalidKey(v any, cause error) error {
	return &InvalidCacheKeyError{Type: typeName(v), Err: cause}
}

// Serialization builds a SerializationError for value v.
func Serialization(v any, cause error) error {
	return &SerializationError{Type: typeName(v), Err: cause}
}

// NotConfigured builds a BackendConfigurationError.
func NotConfigured(format string, args ...any) error {
	return &BackendConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// Remote wraps err as a RemoteStoreError for op. A nil err stays nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteStoreError{Op: op, Err: err}
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}
