package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/aretw0/furrow/pkg/adapters/fs"
	"github.com/aretw0/furrow/pkg/adapters/memory"
	"github.com/aretw0/furrow/pkg/adapters/redisstore"
	"github.com/aretw0/furrow/pkg/adapters/sqlite"
	"github.com/aretw0/furrow/pkg/core"
	"github.com/aretw0/furrow/pkg/crm"
)

// Open creates a workspace over the configured storage.
//
//	ws, err := furrow.Open("./data", furrow.WithAdapter("sqlite"))
//
// The uri argument is adapter-specific: a directory for "fs", a database file
// for "sqlite", an address or redis:// URL for "redis". It is ignored by
// "memory".
func Open(ctx context.Context, uri string, opts ...Option) (*crm.Workspace, error) {
	o := applyOptions(opts)
	store, err := openStorage(ctx, uri, o)
	if err != nil {
		return nil, err
	}
	return crm.NewWorkspace(store, crm.Config{
		Logger: o.logger,
		IDs:    o.ids,
		Clock:  o.clock,
	}), nil
}

// OpenStorage returns the initialized storage selected by opts.
func OpenStorage(ctx context.Context, uri string, opts ...Option) (core.Storage, error) {
	return openStorage(ctx, uri, applyOptions(opts))
}

func openStorage(ctx context.Context, uri string, o *options) (core.Storage, error) {
	// 1. Injected storage wins
	if o.storage != nil {
		return o.storage, nil
	}

	// 2. Build from adapter name
	var store core.Storage
	var err error
	switch o.adapter {
	case AdapterFS:
		store, err = initFS(uri, o)
	case AdapterMemory:
		if o.readOnly {
			return nil, fmt.Errorf("read-only mode has no meaning for the memory adapter: %w", core.ErrValidation)
		}
		store = memory.NewStorage()
	case AdapterRedis:
		store, err = initRedis(uri, o)
	case AdapterSQLite:
		store, err = initSQLite(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	// 3. Run initialization
	if err := store.Initialize(ctx); err != nil {
		return nil, errors.Join(err, Close(store))
	}
	o.logger.Debug("storage ready", "adapter", o.adapter, "uri", uri)
	return store, nil
}

func initFS(path string, o *options) (core.Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("fs adapter requires a data directory")
	}
	if o.readOnly {
		o.logger.Debug("running in READ-ONLY mode", "path", path)
	}
	return fs.NewStorage(fs.Config{
		Path:         path,
		MustExist:    o.mustExist,
		ReadOnly:     o.readOnly,
		Logger:       o.logger,
		ErrorHandler: o.errorHandler,
	}), nil
}

func initSQLite(path string, o *options) (core.Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite adapter requires a database file")
	}
	if o.readOnly {
		o.logger.Debug("running in READ-ONLY mode", "path", path)
		return sqlite.OpenReadOnly(path)
	}
	if !o.mustExist {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return sqlite.Open(path)
}

func initRedis(uri string, o *options) (core.Storage, error) {
	ropts := o.redisOptions
	if ropts == nil {
		switch {
		case strings.HasPrefix(uri, "redis://"), strings.HasPrefix(uri, "rediss://"):
			parsed, err := redis.ParseURL(uri)
			if err != nil {
				return nil, fmt.Errorf("invalid redis url: %w", err)
			}
			ropts = parsed
		case uri != "":
			ropts = &redis.Options{Addr: uri}
		}
	}
	return redisstore.NewStorage(redisstore.Config{
		Options:  ropts,
		Prefix:   o.keyPrefix,
		Logger:   o.logger,
		ReadOnly: o.readOnly,
	}), nil
}

// Close releases resources held by store, if it holds any.
func Close(store core.Storage) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
