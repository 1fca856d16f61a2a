package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all lifelog configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Journal  JournalConfig  `yaml:"journal"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	Secret     string        `yaml:"secret"`      // HMAC key for session tokens
	TokenTTL   time.Duration `yaml:"token_ttl"`   // e.g. "72h"
	CookieName string        `yaml:"cookie_name"` // session cookie set on login
}

type LogConfig struct {
	Debug      bool   `yaml:"debug"`
	File       string `yaml:"file"` // empty logs to stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type JournalConfig struct {
	SleepTitle   string `yaml:"sleep_title"` // log title whose entries form the sleep index
	PageSize     int    `yaml:"page_size"`
	TabulateDays int    `yaml:"tabulate_days"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 8000,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Auth: AuthConfig{
			TokenTTL:   72 * time.Hour,
			CookieName: "lifelog_session",
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Journal: JournalConfig{
			SleepTitle:   "睡眠",
			PageSize:     20,
			TabulateDays: 14,
		},
	}
}

// DefaultPath returns ~/.lifelog/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".lifelog", "config.yaml"), nil
}

// Load builds a Config from defaults, the YAML file at path (if it exists),
// a .env file in the working directory (if it exists), and finally LIFELOG_*
// environment variables. Later sources win.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LIFELOG_BIND"); v != "" {
		c.Server.Bind = v
	}
	if v := os.Getenv("LIFELOG_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LIFELOG_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LIFELOG_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("LIFELOG_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv("LIFELOG_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LIFELOG_TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = ttl
	}
	if v := os.Getenv("LIFELOG_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LIFELOG_DEBUG: %w", err)
		}
		c.Log.Debug = debug
	}
	if v := os.Getenv("LIFELOG_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	return nil
}

// Validate checks settings the server cannot run without.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is not set (config file or LIFELOG_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Journal.PageSize <= 0 {
		return fmt.Errorf("journal.page_size must be positive, got %d", c.Journal.PageSize)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
