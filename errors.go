package cachify

import "github.com/unkn0wn-root/cachify/errs"

type (
	InvalidCacheKeyError      = errs.InvalidCacheKeyError
	SerializationError        = errs.SerializationError
	BackendConfigurationError = errs.BackendConfigurationError
	RemoteStoreError          = errs.RemoteStoreError
)

var (
	ErrInvalidCacheKey      = errs.ErrInvalidCacheKey
	ErrSerialization        = errs.ErrSerialization
	ErrBackendConfiguration = errs.ErrBackendConfiguration
	ErrRemoteStore          = errs.ErrRemoteStore
)
