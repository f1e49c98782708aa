package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Config is the file and environment configuration of the CLI.
// Layers apply in order: defaults, furrow.yaml, FURROW_* variables.
// Command-line flags are applied last by the caller.
//
// ReadOnly is honoured by the fs, sqlite and redis adapters and rejected
// for memory.
type Config struct {
	Adapter  string      `yaml:"adapter" env:"FURROW_ADAPTER"`
	Data     string      `yaml:"data" env:"FURROW_DATA"`
	ReadOnly bool        `yaml:"read_only" env:"FURROW_READ_ONLY"`
	Verbose  bool        `yaml:"verbose" env:"FURROW_VERBOSE"`
	Redis    RedisConfig `yaml:"redis"`

	// Path is the config file that was applied, if any.
	Path string `yaml:"-"`
}

// RedisConfig configures the redis adapter.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"FURROW_REDIS_ADDR"`
	Password string `yaml:"password" env:"FURROW_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"FURROW_REDIS_DB"`
	Prefix   string `yaml:"prefix" env:"FURROW_REDIS_PREFIX"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Adapter: AdapterFS,
		Data:    DataDir,
	}
}

// LoadConfig resolves the configuration.
//
// When path is empty the workspace root is searched from startDir: the data
// directory defaults to <root>/.furrow and <root>/furrow.yaml is read if
// present. A relative data path in a config file is resolved against the
// file's directory.
func LoadConfig(path, startDir string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		if root, err := FindRoot(startDir); err == nil {
			cfg.Data = filepath.Join(root, DataDir)
			if file, ok := configIn(root); ok {
				path = file
			}
		}
	}

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	before := c.Data
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}
	if c.Data != before && c.Data != "" && !filepath.IsAbs(c.Data) {
		c.Data = filepath.Join(filepath.Dir(path), c.Data)
	}
	c.Path = path
	return nil
}

// SQLiteFile is the database file name used when Data names a directory.
const SQLiteFile = "furrow.db"

// URI returns the adapter-specific location passed to Open.
func (c Config) URI() string {
	switch c.Adapter {
	case AdapterRedis:
		return c.Redis.Addr
	case AdapterSQLite:
		switch filepath.Ext(c.Data) {
		case ".db", ".sqlite", ".sqlite3":
			return c.Data
		}
		return filepath.Join(c.Data, SQLiteFile)
	}
	return c.Data
}

// Options converts the configuration into workspace options.
func (c Config) Options() []Option {
	opts := []Option{
		WithAdapter(c.Adapter),
		WithReadOnly(c.ReadOnly),
	}
	if c.Adapter == AdapterRedis {
		if c.Redis.Prefix != "" {
			opts = append(opts, WithKeyPrefix(c.Redis.Prefix))
		}
		if c.Redis.Password != "" || c.Redis.DB != 0 {
			addr := c.Redis.Addr
			if addr == "" {
				addr = "localhost:6379"
			}
			opts = append(opts, WithRedisOptions(&redis.Options{
				Addr:     addr,
				Password: c.Redis.Password,
				DB:       c.Redis.DB,
			}))
		}
	}
	return opts
}
