// Package memory provides a process-local core.Storage, the closest
// equivalent of a browser's local storage. It is the default for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/furrow/pkg/core"
)

// Storage implements core.Storage over a map.
type Storage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewStorage creates an empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{data: make(map[string][]byte)}
}

func (s *Storage) Initialize(ctx context.Context) error { return nil }

func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, core.ErrNotFound)
	}
	return append([]byte(nil), v...), nil
}

func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("empty key: %w", core.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Keys int `json:"keys"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StorageState{Keys: len(s.data)}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string { return "memory-storage" }

var _ core.Storage = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
