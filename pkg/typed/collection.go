// Package typed provides the record store: a type-safe, JSON-serialized view
// of one named collection in a core.Storage.
package typed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/aretw0/furrow/pkg/core"
)

// Collection wraps a core.Storage key to provide type-safe access.
//
// Load never fails because of bad data: an absent key or a payload that does
// not decode into T yields the seed value instead. Only storage errors are
// returned.
type Collection[T any] struct {
	store  core.Storage
	key    string
	seed   func() T
	logger *slog.Logger

	mu sync.Mutex // serializes Update
}

// NewCollection creates a typed collection for key.
// seed may be nil, in which case the zero value of T is the default.
func NewCollection[T any](store core.Storage, key string, seed func() T, logger *slog.Logger) *Collection[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collection[T]{store: store, key: key, seed: seed, logger: logger}
}

// Key returns the storage key of the collection.
func (c *Collection[T]) Key() string { return c.key }

// Load returns the persisted collection, or the seed if it is absent or unparseable.
func (c *Collection[T]) Load(ctx context.Context) (T, error) {
	data, err := c.store.Load(ctx, c.key)
	if errors.Is(err, core.ErrNotFound) {
		return c.fallback(), nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("load %s: %w", c.key, err)
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return c.fallback(), nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("discarding unparseable collection", "key", c.key, "error", err)
		return c.fallback(), nil
	}
	return v, nil
}

// Save serializes the whole collection and replaces the stored value.
func (c *Collection[T]) Save(ctx context.Context, v T) error {
	data, err := marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", c.key, err)
	}
	if err := c.store.Save(ctx, c.key, data); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}

// Update loads the collection, applies fn and saves the result, all under the
// collection lock. If fn returns an error nothing is saved.
func (c *Collection[T]) Update(ctx context.Context, fn func(T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.Load(ctx)
	if err != nil {
		return current, err
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if err := c.Save(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

func (c *Collection[T]) fallback() T {
	if c.seed == nil {
		var zero T
		return zero
	}
	return c.seed()
}

// marshal encodes v, writing nil slices and maps as empty JSON containers
// so that a later Load sees an empty collection rather than "null".
func marshal[T any](v T) ([]byte, error) {
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return []byte("[]"), nil
		}
	case reflect.Map:
		if rv.IsNil() {
			return []byte("{}"), nil
		}
	}
	return json.Marshal(v)
}
