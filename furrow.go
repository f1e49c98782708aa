package furrow

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aretw0/furrow/internal/platform"
	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/crm"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Workspace is a public alias for the CRM workspace.
type Workspace = crm.Workspace

// --- Configuration ---

// Option defines a functional option for configuring furrow.
type Option = platform.Option

// WithAdapter selects the storage adapter by name ("fs", "memory", "redis", "sqlite").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithStorage allows injecting a custom storage adapter.
func WithStorage(s core.Storage) Option {
	return platform.WithStorage(s)
}

// WithLogger sets the logger for the workspace.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(ids crm.IDGenerator) Option {
	return platform.WithIDGenerator(ids)
}

// WithClock sets the time source used to stamp notes.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// WithReadOnly makes Save and Delete fail with core.ErrReadOnly. It applies to
// the fs, sqlite and redis adapters; memory rejects it.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithRedisOptions sets the client options for the redis adapter.
func WithRedisOptions(opts *redis.Options) Option {
	return platform.WithRedisOptions(opts)
}

// WithKeyPrefix sets the key namespace for the redis adapter.
func WithKeyPrefix(prefix string) Option {
	return platform.WithKeyPrefix(prefix)
}

// WithWatcherErrorHandler registers a callback for fs watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// Open creates a workspace over the storage selected by opts.
func Open(ctx context.Context, uri string, opts ...Option) (*Workspace, error) {
	return platform.Open(ctx, uri, opts...)
}

// OpenStorage returns an initialized storage without wrapping it in a workspace.
func OpenStorage(ctx context.Context, uri string, opts ...Option) (core.Storage, error) {
	return platform.OpenStorage(ctx, uri, opts...)
}

// Close releases resources held by the workspace storage.
func Close(ws *Workspace) error {
	return platform.Close(ws.Storage())
}

// --- Utils ---

// FindRoot looks upwards for a .furrow directory or furrow.yaml file.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
