// Package config loads the client configuration from an optional file, a
// .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// Config is the full client configuration.
type Config struct {
	Env      string `yaml:"env" env:"DUEL_ENV" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"DUEL_LOG_LEVEL" env-default:"info"`

	Server    Server    `yaml:"server"`
	Reconnect Reconnect `yaml:"reconnect"`
	Game      Game      `yaml:"game"`
	Session   Session   `yaml:"session"`
	Status    Status    `yaml:"status"`
}

// Server locates the game server.
type Server struct {
	URL              string        `yaml:"url" env:"DUEL_SERVER_URL" env-default:"ws://localhost:8080/ws"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout" env:"DUEL_HANDSHAKE_TIMEOUT" env-default:"10s"`
}

// Reconnect is the automatic reconnect policy.
type Reconnect struct {
	BaseDelay   time.Duration `yaml:"base_delay" env:"DUEL_RECONNECT_BASE" env-default:"1s"`
	MaxDelay    time.Duration `yaml:"max_delay" env:"DUEL_RECONNECT_MAX" env-default:"10s"`
	MaxAttempts int           `yaml:"max_attempts" env:"DUEL_RECONNECT_ATTEMPTS" env-default:"5"`
}

// Game holds gameplay tunables.
type Game struct {
	ReturnToLobbyDelay time.Duration `yaml:"return_to_lobby_delay" env:"DUEL_RETURN_DELAY" env-default:"3s"`
	CountdownInterval  time.Duration `yaml:"countdown_interval" env:"DUEL_COUNTDOWN_INTERVAL" env-default:"100ms"`
	LeaderboardLimit   int           `yaml:"leaderboard_limit" env:"DUEL_LEADERBOARD_LIMIT" env-default:"100"`
}

// Session configures local session persistence.
type Session struct {
	Store         string        `yaml:"store" env:"DUEL_SESSION_STORE" env-default:"memory"`
	SQLitePath    string        `yaml:"sqlite_path" env:"DUEL_SQLITE_PATH" env-default:"duel.db"`
	RedisAddr     string        `yaml:"redis_addr" env:"DUEL_REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"DUEL_REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"DUEL_REDIS_DB" env-default:"0"`
	TTL           time.Duration `yaml:"ttl" env:"DUEL_SESSION_TTL" env-default:"24h"`
	Restore       bool          `yaml:"restore" env:"DUEL_SESSION_RESTORE" env-default:"true"`
}

// Status configures the local control API.
type Status struct {
	Enabled bool   `yaml:"enabled" env:"DUEL_STATUS_ENABLED" env-default:"false"`
	Addr    string `yaml:"addr" env:"DUEL_STATUS_ADDR" env-default:"127.0.0.1:8787"`
}

// Load reads .env (if present), then path (if non-empty), then the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := read(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string, cfg *Config) error {
	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hujson", ".jsonc", ".json":
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		std, err := hujson.Standardize(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if err := yaml.Unmarshal(std, cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	default:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("server.url must be ws:// or wss://, got %q", c.Server.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("server.url has no host: %q", c.Server.URL)
	}
	if c.Reconnect.BaseDelay <= 0 {
		return errors.New("reconnect.base_delay must be positive")
	}
	if c.Reconnect.MaxDelay < c.Reconnect.BaseDelay {
		return errors.New("reconnect.max_delay must not be below reconnect.base_delay")
	}
	if c.Reconnect.MaxAttempts < 1 {
		return errors.New("reconnect.max_attempts must be at least 1")
	}
	switch c.Session.Store {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("session.store must be memory, sqlite or redis, got %q", c.Session.Store)
	}
	return nil
}

// IsLocal reports whether the client runs in the local development
// environment.
func (c *Config) IsLocal() bool {
	return c.Env == "" || c.Env == "local"
}
