package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio"
	"github.com/kelseyhightower/envconfig"
	"github.com/odvcencio/gitox/pkg/object"
)

// EnvPrefix prefixes environment overrides, e.g. GITOX_CORE_COMPRESSION.
const EnvPrefix = "gitox"

// Config stores repository-local settings read from .gitox/config.toml.
type Config struct {
	Core CoreConfig `toml:"core"`
	User UserConfig `toml:"user"`
	Log  LogConfig  `toml:"log"`
}

// Environment keys are built from the field names under EnvPrefix
// (GITOX_CORE_CACHE_SIZE). No envconfig name tags: those also make
// envconfig read the bare, unprefixed variable.
type CoreConfig struct {
	Compression string `toml:"compression"`
	Workers     int    `toml:"workers"` // 0 means one per CPU
	CacheSize   int    `toml:"cache_size" split_words:"true"`
}

type UserConfig struct {
	SigningKey string `toml:"signing_key" split_words:"true"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			Compression: string(object.CompressionNone),
			CacheSize:   object.DefaultCacheSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// StoreOptions translates the core settings into object store options.
func (c *Config) StoreOptions() ([]object.StoreOption, error) {
	compression, err := object.ParseCompression(c.Core.Compression)
	if err != nil {
		return nil, fmt.Errorf("config: core.compression: %w", err)
	}
	if c.Core.CacheSize < 0 {
		return nil, fmt.Errorf("config: core.cache_size must not be negative")
	}
	return []object.StoreOption{
		object.WithCompression(compression),
		object.WithCacheSize(c.Core.CacheSize),
	}, nil
}

func configPath(gitoxDir string) string {
	return filepath.Join(gitoxDir, "config.toml")
}

// LoadConfig reads .gitox/config.toml and applies GITOX_* environment
// overrides. A missing file yields the defaults; unknown keys are an error.
func LoadConfig(gitoxDir string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(configPath(gitoxDir), cfg)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("read config: unknown keys: %s", strings.Join(keys, ", "))
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("read config: env: %w", err)
	}
	if _, err := cfg.StoreOptions(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfig reads the repository's config file, including environment
// overrides.
func (r *Repo) ReadConfig() (*Config, error) {
	if r.GitoxDir == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(r.GitoxDir)
}

// WriteConfig atomically writes .gitox/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if r.GitoxDir == "" {
		return fmt.Errorf("write config: repository has no metadata directory")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if _, err := cfg.StoreOptions(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}
	if err := renameio.WriteFile(configPath(r.GitoxDir), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
