// Package redis is the remote storage backend. Entries are framed with their
// creation time and TTL, encoded with the configured codec and written under
// "{prefix}:{fnID}:{key}".
//
// Blocking calls use Config.SyncClient and context-aware calls use
// Config.AsyncClient. A call on a path whose client is missing fails with a
// BackendConfigurationError regardless of the error policy.
package redis

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/cachify/codec"
	"github.com/unkn0wn-root/cachify/errs"
	"github.com/unkn0wn-root/cachify/internal/keys"
	"github.com/unkn0wn-root/cachify/internal/lossless"
	"github.com/unkn0wn-root/cachify/internal/wire"
	"github.com/unkn0wn-root/cachify/log"
	"github.com/unkn0wn-root/cachify/storage"
)

// clearBatch is the SCAN COUNT hint and the DEL batch size used by Clear.
const clearBatch = 500

// Store reads its configuration from Settings on every operation.
type Store struct {
	settings *Settings
}

var (
	_ storage.Storage       = (*Store)(nil)
	_ storage.ExpiryChecker = (*Store)(nil)
)

// New returns a Store bound to settings, or to Default when settings is nil.
func New(settings *Settings) *Store {
	if settings == nil {
		settings = Default
	}
	return &Store{settings: settings}
}

func (s *Store) syncClient() (Config, goredis.UniversalClient, error) {
	cfg, err := s.settings.Config()
	if err != nil {
		return Config{}, nil, err
	}
	if cfg.SyncClient == nil {
		return Config{}, nil, errs.NotConfigured("redis sync client not set; pass Config.SyncClient to Setup")
	}
	return cfg, cfg.SyncClient, nil
}

func (s *Store) asyncClient() (Config, goredis.UniversalClient, error) {
	cfg, err := s.settings.Config()
	if err != nil {
		return Config{}, nil, err
	}
	if cfg.AsyncClient == nil {
		return Config{}, nil, errs.NotConfigured("redis async client not set; pass Config.AsyncClient to Setup")
	}
	return cfg, cfg.AsyncClient, nil
}

func (s *Store) Set(fnID, key string, result any, ttl time.Duration) error {
	cfg, rdb, err := s.syncClient()
	if err != nil {
		return err
	}
	return set(context.Background(), cfg, rdb, fnID, key, result, ttl)
}

func (s *Store) SetContext(ctx context.Context, fnID, key string, result any, ttl time.Duration) error {
	cfg, rdb, err := s.asyncClient()
	if err != nil {
		return err
	}
	return set(ctx, cfg, rdb, fnID, key, result, ttl)
}

func (s *Store) Get(fnID, key string, skip bool) (*storage.Entry, error) {
	if skip {
		return nil, nil
	}
	cfg, rdb, err := s.syncClient()
	if err != nil {
		return nil, err
	}
	return get(context.Background(), cfg, rdb, fnID, key)
}

func (s *Store) GetContext(ctx context.Context, fnID, key string, skip bool) (*storage.Entry, error) {
	if skip {
		return nil, nil
	}
	cfg, rdb, err := s.asyncClient()
	if err != nil {
		return nil, err
	}
	return get(ctx, cfg, rdb, fnID, key)
}

// IsExpired reports true when no live entry exists for (fnID, key).
func (s *Store) IsExpired(fnID, key string) (bool, error) {
	cfg, rdb, err := s.syncClient()
	if err != nil {
		return true, err
	}
	e, err := get(context.Background(), cfg, rdb, fnID, key)
	return e == nil, err
}

func (s *Store) IsExpiredContext(ctx context.Context, fnID, key string) (bool, error) {
	cfg, rdb, err := s.asyncClient()
	if err != nil {
		return true, err
	}
	e, err := get(ctx, cfg, rdb, fnID, key)
	return e == nil, err
}

// Clear deletes every key under the configured prefix. It prefers the async
// client and falls back to the sync one.
func (s *Store) Clear(ctx context.Context) error {
	cfg, err := s.settings.Config()
	if err != nil {
		return err
	}
	rdb := cfg.AsyncClient
	if rdb == nil {
		rdb = cfg.SyncClient
	}
	if rdb == nil {
		return errs.NotConfigured("redis client not set; pass Config.SyncClient or Config.AsyncClient to Setup")
	}

	var (
		cursor  uint64
		removed int64
	)
	match := keys.Pattern(cfg.KeyPrefix)
	for {
		batch, next, err := rdb.Scan(ctx, cursor, match, clearBatch).Result()
		if err != nil {
			return fail(cfg, "scan", err, nil)
		}
		if len(batch) > 0 {
			n, err := rdb.Del(ctx, batch...).Result()
			if err != nil {
				return fail(cfg, "del", err, nil)
			}
			removed += n
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	cfg.Logger.Debug("cachify: redis cleared", log.Fields{"prefix": cfg.KeyPrefix, "removed": removed})
	return nil
}

func set(ctx context.Context, cfg Config, rdb goredis.UniversalClient, fnID, key string, result any, ttl time.Duration) error {
	if ttl < 0 {
		ttl = storage.NoExpiry
	}
	if walksStructs(cfg.Codec) {
		if err := lossless.Check(result); err != nil {
			return errs.Serialization(result, err)
		}
	}
	payload, err := cfg.Codec.Marshal(result)
	if err != nil {
		return errs.Serialization(result, err)
	}
	k := keys.Remote(cfg.KeyPrefix, fnID, key)
	frame := wire.Encode(cfg.Clock(), ttl, payload)

	if ttl == storage.NoExpiry {
		err = rdb.Set(ctx, k, frame, 0).Err()
	} else {
		err = rdb.SetEx(ctx, k, frame, remoteTTL(ttl, cfg.ExpiryGrace)).Err()
	}
	if err != nil {
		return fail(cfg, "set", err, log.Fields{"key": k})
	}
	return nil
}

func get(ctx context.Context, cfg Config, rdb goredis.UniversalClient, fnID, key string) (*storage.Entry, error) {
	k := keys.Remote(cfg.KeyPrefix, fnID, key)
	b, err := rdb.Get(ctx, k).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fail(cfg, "get", err, log.Fields{"key": k})
	}

	f, err := wire.Decode(b)
	if err != nil {
		cfg.Logger.Debug("cachify: dropping undecodable redis entry", log.Fields{"key": k, "err": err})
		return nil, nil
	}
	e := storage.RestoreEntry(storage.Encoded{Data: f.Payload, Codec: cfg.Codec}, f.TTL, f.CreatedAt)
	if e.ExpiredAt(cfg.Clock()) {
		return nil, nil
	}
	return e, nil
}

// fail applies the error policy to a client error.
func fail(cfg Config, op string, err error, f log.Fields) error {
	wrapped := errs.Remote(op, err)
	if cfg.Raises() {
		return wrapped
	}
	if f == nil {
		f = log.Fields{}
	}
	f["op"] = op
	f["err"] = err
	cfg.Logger.Debug("cachify: redis error suppressed", f)
	return nil
}

// walksStructs reports codecs that encode structs field by field and drop
// unexported fields without complaint. Custom codecs are trusted.
func walksStructs(c codec.Codec) bool {
	for {
		l, ok := c.(codec.Limit)
		if !ok {
			break
		}
		c = l.Inner
	}
	switch c.(type) {
	case codec.Msgpack, codec.CBOR, codec.JSON:
		return true
	}
	return false
}

// remoteTTL rounds ttl+grace up to whole seconds, the resolution of SETEX.
func remoteTTL(ttl, grace time.Duration) time.Duration {
	d := ttl + grace
	if rem := d % time.Second; rem != 0 {
		d += time.Second - rem
	}
	return d
}
