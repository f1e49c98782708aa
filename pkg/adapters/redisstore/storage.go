// Package redisstore provides a core.Storage backed by Redis string keys.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/introspection"
	"github.com/redis/go-redis/v9"

	"github.com/aretw0/furrow/pkg/core"
)

// DefaultPrefix namespaces every key written by this adapter.
const DefaultPrefix = "furrow"

// Storage implements core.Storage using GET/SET/DEL on "<prefix>:<key>".
type Storage struct {
	rdb      *redis.Client
	prefix   string
	logger   *slog.Logger
	readOnly bool
}

// Config holds the configuration for the Redis storage.
type Config struct {
	Options *redis.Options
	Prefix  string
	Logger  *slog.Logger
	// ReadOnly makes Save and Delete return core.ErrReadOnly.
	ReadOnly bool
}

// NewStorage returns a Storage using its own client built from config.Options.
func NewStorage(config Config) *Storage {
	opts := config.Options
	if opts == nil {
		opts = &redis.Options{Addr: "localhost:6379"}
	}
	s := NewStorageWithClient(redis.NewClient(opts), config.Prefix, config.Logger)
	s.readOnly = config.ReadOnly
	return s
}

// NewStorageWithClient wraps an existing client.
func NewStorageWithClient(rdb *redis.Client, prefix string, logger *slog.Logger) *Storage {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{rdb: rdb, prefix: prefix, logger: logger}
}

func (s *Storage) key(key string) string {
	return s.prefix + ":" + key
}

// Initialize verifies the server is reachable.
func (s *Storage) Initialize(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("key %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	if key == "" {
		return fmt.Errorf("empty key: %w", core.ErrValidation)
	}
	if err := s.rdb.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	s.logger.Debug("saved collection", "key", key, "bytes", len(data))
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Storage) Close() error {
	return s.rdb.Close()
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Addr     string `json:"addr"`
	Prefix   string `json:"prefix"`
	ReadOnly bool   `json:"read_only"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	return StorageState{Addr: s.rdb.Options().Addr, Prefix: s.prefix, ReadOnly: s.readOnly}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string { return "redis-storage" }

var _ core.Storage = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
