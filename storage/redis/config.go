package redis

import (
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/cachify/codec"
	"github.com/unkn0wn-root/cachify/errs"
	"github.com/unkn0wn-root/cachify/log"
)

// DefaultKeyPrefix namespaces every key written by the remote backend.
const DefaultKeyPrefix = "cachify"

// DefaultExpiryGrace is added to the remote TTL so Redis never evicts an
// entry before the local expiry check would reject it.
const DefaultExpiryGrace = time.Second

// ErrorPolicy decides what happens to remote store failures.
type ErrorPolicy string

const (
	// OnErrorRaise returns remote failures to the caller.
	OnErrorRaise ErrorPolicy = "raise"
	// OnErrorSilent logs remote failures at debug level and treats the
	// operation as a miss. Any policy other than OnErrorRaise behaves this way.
	OnErrorSilent ErrorPolicy = "silent"
)

// Config is the remote backend configuration. Only the client for the call
// path you use is required: SyncClient for blocking calls, AsyncClient for
// context-aware calls. The same client may serve both.
type Config struct {
	SyncClient  goredis.UniversalClient
	AsyncClient goredis.UniversalClient

	KeyPrefix   string        // "" => DefaultKeyPrefix
	OnError     ErrorPolicy   // "" => OnErrorSilent
	ExpiryGrace time.Duration // 0 => DefaultExpiryGrace; negative => none
	Codec       codec.Codec   // nil => codec.Default (msgpack)
	Logger      log.Logger    // nil => log.Nop

	// Clock overrides time.Now for entry timestamps and expiry checks.
	Clock func() time.Time
}

func (c Config) normalize() Config {
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.OnError == "" {
		c.OnError = OnErrorSilent
	}
	if c.ExpiryGrace == 0 {
		c.ExpiryGrace = DefaultExpiryGrace
	} else if c.ExpiryGrace < 0 {
		c.ExpiryGrace = 0
	}
	if c.Codec == nil {
		c.Codec = codec.Default
	}
	c.Logger = log.OrNop(c.Logger)
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Raises reports whether remote failures propagate under this config.
func (c Config) Raises() bool { return c.OnError == OnErrorRaise }

// Settings owns the active remote configuration. Stores read it on every
// operation, so Setup and Reset take effect immediately.
type Settings struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewSettings returns unconfigured settings.
func NewSettings() *Settings { return &Settings{} }

// Setup installs cfg, replacing any previous configuration.
func (s *Settings) Setup(cfg Config) {
	n := cfg.normalize()
	s.mu.Lock()
	s.cfg = &n
	s.mu.Unlock()
}

// Config returns the active configuration, or a BackendConfigurationError if
// Setup was never called (or Reset since).
func (s *Settings) Config() (Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return Config{}, errs.NotConfigured("redis config not set up; call Setup first")
	}
	return *s.cfg, nil
}

// Reset drops the configuration.
func (s *Settings) Reset() {
	s.mu.Lock()
	s.cfg = nil
	s.mu.Unlock()
}

// Default is the process-wide settings used by New(nil) and by the
// package-level Setup, GetConfig and Reset helpers.
var Default = NewSettings()

func Setup(cfg Config)           { Default.Setup(cfg) }
func GetConfig() (Config, error) { return Default.Config() }
func Reset()                     { Default.Reset() }
