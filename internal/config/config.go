// Package config loads anchorlayout settings from an optional config file
// and ANCHORLAYOUT_* environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment, then command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/matzehuels/anchorlayout/pkg/layout"
)

// EnvPrefix prefixes every environment variable, e.g. ANCHORLAYOUT_LOG_LEVEL.
const EnvPrefix = "ANCHORLAYOUT"

// Config is the full application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Layout LayoutConfig `mapstructure:"layout"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Server ServerConfig `mapstructure:"server"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LayoutConfig holds pass defaults. Width and Height size the canvas of
// scenes that do not set one.
type LayoutConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
	Width    int `mapstructure:"width"`
	Height   int `mapstructure:"height"`
}

// CacheConfig selects and tunes the cache backend. A non-empty RedisAddr
// selects Redis; otherwise entries live under Dir.
type CacheConfig struct {
	Dir       string        `mapstructure:"dir"`
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

// ServerConfig configures the HTTP render service.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("layout.max_depth", layout.DefaultMaxDepth)
	v.SetDefault("layout.width", 0)
	v.SetDefault("layout.height", 0)

	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", "0s")
	v.SetDefault("cache.redis_addr", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := FromViper(v)
	if err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// Load reads the config file at path, or searches the working directory and
// dirs for anchorlayout.{toml,yaml,json} when path is empty. A missing
// search-path file is not an error; a missing explicit file is.
func Load(path string, dirs ...string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("anchorlayout")
		v.AddConfigPath(".")
		for _, d := range dirs {
			v.AddConfigPath(d)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Layout.MaxDepth < 1 {
		return fmt.Errorf("layout.max_depth must be a positive integer")
	}
	if c.Layout.Width < 0 || c.Layout.Height < 0 {
		return fmt.Errorf("layout.width and layout.height must not be negative")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be a positive integer")
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
