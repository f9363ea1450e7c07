package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	// EnvPath overrides the config file location.
	EnvPath = "FINQ_CONFIG"

	defaultConfigPath     = "~/.config/finq/config.toml"
	defaultBackendURL     = "http://127.0.0.1:54321"
	defaultDBPath         = "~/.finq/finq.db"
	defaultReplayInterval = 10 * time.Second
	defaultCheckInterval  = 5 * time.Second
	defaultRequestTimeout = 30 * time.Second
)

// Config represents the finq client configuration.
type Config struct {
	BackendURL  string        `toml:"backend_url"`
	APIKey      string        `toml:"api_key"`
	UserID      string        `toml:"user_id"`
	// AccessToken is the session's bearer token; the API key is sent when empty.
	AccessToken string        `toml:"access_token"`
	DBPath      string        `toml:"db_path"`
	Replay      ReplayConfig  `toml:"replay"`
	Network     NetworkConfig `toml:"network"`
}

// ReplayConfig tunes the offline queue processor.
type ReplayConfig struct {
	Interval    Duration `toml:"interval"`
	MaxAttempts int      `toml:"max_attempts"`
}

// NetworkConfig tunes connectivity detection and remote calls.
type NetworkConfig struct {
	CheckInterval  Duration `toml:"check_interval"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BackendURL: defaultBackendURL,
		DBPath:     mustExpand(defaultDBPath),
		Replay: ReplayConfig{
			Interval:    Duration{defaultReplayInterval},
			MaxAttempts: 1,
		},
		Network: NetworkConfig{
			CheckInterval:  Duration{defaultCheckInterval},
			RequestTimeout: Duration{defaultRequestTimeout},
		},
	}
}

// Load reads the config file, falling back to defaults when it is missing.
// An empty path resolves to $FINQ_CONFIG, then ~/.config/finq/config.toml.
func Load(path string) (Config, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", resolved, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	resolved, err := ResolvePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(resolved, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports settings the client cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("backend_url is required")
	}
	if c.Replay.MaxAttempts < 1 {
		return fmt.Errorf("replay.max_attempts must be at least 1, got %d", c.Replay.MaxAttempts)
	}
	if c.Replay.Interval.Duration <= 0 {
		return fmt.Errorf("replay.interval must be positive")
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.BackendURL = strings.TrimSpace(c.BackendURL)
	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}
	c.DBPath = mustExpand(c.DBPath)
	if c.Network.CheckInterval.Duration <= 0 {
		c.Network.CheckInterval.Duration = defaultCheckInterval
	}
	if c.Network.RequestTimeout.Duration <= 0 {
		c.Network.RequestTimeout.Duration = defaultRequestTimeout
	}
}

// ResolvePath returns the absolute config file path.
func ResolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv(EnvPath)
	}
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	if path == ":memory:" {
		return path
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
