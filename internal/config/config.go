// Package config loads the server configuration from a YAML or JSON file
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port      string   `yaml:"port"`
	AssetsDir string   `yaml:"assets_dir"`
	AssetsURL string   `yaml:"assets_url"`
	OutputDir string   `yaml:"output_dir"`
	PublicURL string   `yaml:"public_url"`
	FontDirs  []string `yaml:"font_dirs"`
	LogLevel  string   `yaml:"log_level"`
	Session   Session  `yaml:"session"`
}

type Session struct {
	Backend string        `yaml:"backend"` // "memory" or "redis"
	TTL     time.Duration `yaml:"ttl"`
	Redis   Redis         `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:      "8080",
		AssetsDir: "assets",
		OutputDir: "output",
		PublicURL: "http://localhost:8080",
		LogLevel:  "info",
		Session: Session{
			Backend: "memory",
			TTL:     24 * time.Hour,
			Redis:   Redis{Addr: "localhost:6379", Prefix: "postcards:session:"},
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	} else if b, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config config.yaml: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config config.yaml: %w", err)
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := getenv("POSTCARDS_ASSETS"); v != "" {
		c.AssetsDir = v
	}
	if v := getenv("POSTCARDS_ASSETS_URL"); v != "" {
		c.AssetsURL = v
	}
	if v := getenv("POSTCARDS_OUTPUT"); v != "" {
		c.OutputDir = v
	}
	if v := getenv("POSTCARDS_PUBLIC_URL"); v != "" {
		c.PublicURL = v
	}
	if v := getenv("POSTCARDS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("POSTCARDS_SESSION_BACKEND"); v != "" {
		c.Session.Backend = v
	}
	if v := getenv("POSTCARDS_REDIS_ADDR"); v != "" {
		c.Session.Redis.Addr = v
	}
	if v := getenv("POSTCARDS_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("POSTCARDS_REDIS_DB: %w", err)
		}
		c.Session.Redis.DB = n
	}
	return nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: port is required")
	}
	if c.AssetsDir == "" {
		return errors.New("config: assets_dir is required")
	}
	if c.OutputDir == "" {
		return errors.New("config: output_dir is required")
	}
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.Redis.Addr == "" {
			return errors.New("config: session.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown session backend %q", c.Session.Backend)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return l, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}

// Logger builds the process logger.
func (c *Config) Logger() *slog.Logger {
	level, _ := c.Level()
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
