package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/furrow/internal/atomicfile"
	"github.com/aretw0/furrow/pkg/core"
)

// FileExt is the extension of every collection file.
const FileExt = ".json"

// Storage implements core.Storage with one JSON file per key.
type Storage struct {
	Path   string
	config Config
	cache  *cache

	mu            sync.RWMutex
	watcherActive bool
	lastEvent     *time.Time
}

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path      string
	MustExist bool
	ReadOnly  bool
	Logger    *slog.Logger
	// ErrorHandler receives runtime watcher failures that are otherwise only logged.
	ErrorHandler func(error)
}

// NewStorage creates a new filesystem-backed storage.
// It performs no I/O until Initialize or the first operation.
func NewStorage(config Config) *Storage {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{
		Path:   config.Path,
		config: config,
		cache:  newCache(),
	}
}

// Initialize ensures the data directory exists.
// In read-only mode, or when MustExist is set, the directory is only checked.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", s.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat data path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", s.Path)
		}
		return nil
	}

	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Load reads the collection file for key.
//
// Workflow:
//  1. Stat the file. Absent files map to core.ErrNotFound.
//  2. Cache hit (same mtime) returns the cached bytes without reading.
//  3. Cache miss reads the file and refreshes the cache.
func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.filename(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.cache.Delete(key)
		return nil, fmt.Errorf("key %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", key, err)
	}

	if data, hit := s.cache.Get(key, info.ModTime()); hit {
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	s.cache.Set(key, data, info.ModTime())
	s.config.Logger.Debug("loaded collection file", "key", key, "bytes", len(data))
	return data, nil
}

// Save writes data to the collection file for key atomically.
func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	path, err := s.filename(key)
	if err != nil {
		return err
	}

	if err := atomicfile.Write(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if info, err := os.Stat(path); err == nil {
		s.cache.Set(key, data, info.ModTime())
	} else {
		s.cache.Delete(key)
	}
	return nil
}

// Delete removes the collection file for key.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	path, err := s.filename(key)
	if err != nil {
		return err
	}

	s.cache.Delete(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (s *Storage) filename(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.Path, key+FileExt), nil
}

// ValidateKey rejects keys that cannot be mapped to a single file in the
// data directory.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key: %w", core.ErrValidation)
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." || atomicfile.IsTemp(key) {
		return fmt.Errorf("invalid key %q: %w", key, core.ErrValidation)
	}
	return nil
}

func keyFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if filepath.Ext(name) != FileExt || atomicfile.IsTemp(name) {
		return "", false
	}
	return strings.TrimSuffix(name, FileExt), true
}

var _ core.Storage = (*Storage)(nil)
