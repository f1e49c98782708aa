package core

import "context"

// Storage defines the contract for persisting named collections.
// Keys are flat names ("clients", "deals") and values are opaque
// serialized payloads. Adhering to this interface keeps the record store
// independent of the medium (filesystem, memory, Redis, SQLite).
type Storage interface {
	// Load returns the payload stored under key.
	// It returns an error wrapping ErrNotFound when the key is absent.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save persists data under key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Initialize ensures the underlying medium is ready (e.g., create directories, schema migration).
	Initialize(ctx context.Context) error
}

// Watchable defines an interface for storages that can report external changes.
type Watchable interface {
	// Watch emits an Event for every key matching pattern that changes
	// until ctx is cancelled. The channel is closed on shutdown.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
