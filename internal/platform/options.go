package platform

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/crm"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterMemory = "memory"
	AdapterRedis  = "redis"
	AdapterSQLite = "sqlite"
)

// options holds the internal configuration for a workspace.
type options struct {
	storage      core.Storage
	logger       *slog.Logger
	adapter      string
	ids          crm.IDGenerator
	clock        func() time.Time
	readOnly     bool
	mustExist    bool
	redisOptions *redis.Options
	keyPrefix    string
	errorHandler func(error)
}

// Option defines a functional option for configuring furrow.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: AdapterFS,
		logger:  slog.New(slog.DiscardHandler),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithAdapter selects the storage adapter by name: "fs" (default), "memory",
// "redis" or "sqlite".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithStorage injects a ready-made storage (e.g. a mock). The adapter
// setting is ignored when a storage is given.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithLogger sets the logger for the workspace and its storage.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(ids crm.IDGenerator) Option {
	return func(o *options) {
		o.ids = ids
	}
}

// WithClock sets the time source used to stamp notes.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithReadOnly enables read-only mode for the fs, sqlite and redis adapters.
// In this mode:
// 1. Save and Delete return core.ErrReadOnly.
// 2. Initialization creates nothing: the data directory or database must exist.
// The memory adapter rejects it with core.ErrValidation.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithMustExist makes Initialize fail when the fs data directory is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithRedisOptions sets the go-redis client options for the redis adapter.
// They take precedence over the address passed to Open.
func WithRedisOptions(opts *redis.Options) Option {
	return func(o *options) {
		o.redisOptions = opts
	}
}

// WithKeyPrefix sets the key namespace for the redis adapter.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}

// WithWatcherErrorHandler registers a callback for errors in the fs Watch
// loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
