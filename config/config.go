// Package config loads the application configuration of the visionchat
// command from a YAML file and VISIONCHAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppName names the config directory and the env prefix.
const AppName = "visionchat"

// Config stores all configuration of the application.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	History HistoryConfig `mapstructure:"history"`
	Window  WindowConfig  `mapstructure:"window"`
	AI      AIConfig      `mapstructure:"ai"`
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
}

// StorageConfig selects the backend of the state document.
type StorageConfig struct {
	Backend string      `mapstructure:"backend"` // "file", "bolt", "sqlite", "redis", "memory"
	Path    string      `mapstructure:"path"`    // file, bolt and sqlite location
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig stores redis connection details.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Namespace string `mapstructure:"namespace"` // empty: derived from the profile path
}

// HistoryConfig bounds the chat history.
type HistoryConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// WindowConfig holds the window persistence limits.
type WindowConfig struct {
	Debounce  time.Duration `mapstructure:"debounce"`
	MinWidth  int           `mapstructure:"min_width"`
	MinHeight int           `mapstructure:"min_height"`
	MaxFactor int           `mapstructure:"max_factor"`
	Display   DisplayConfig `mapstructure:"display"`
}

// DisplayConfig is the work area of the primary display. A zero width or
// height means unknown; loaded geometry is then only held to the minimum size.
type DisplayConfig struct {
	X      int `mapstructure:"x"`
	Y      int `mapstructure:"y"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Known reports whether a work area is configured.
func (d DisplayConfig) Known() bool {
	return d.Width > 0 && d.Height > 0
}

// AIConfig configures the vision model.
type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// HTTPConfig configures the optional HTTP transport.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"` // empty disables it
}

// DefaultDataDir returns the per-user profile directory.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, AppName)
}

// LoadConfig reads configPath, or config.yaml from the working directory and
// the profile directory when configPath is empty. A missing config file is
// not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultDataDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.path", filepath.Join(DefaultDataDir(), "state.json"))
	v.SetDefault("storage.redis.addr", "127.0.0.1:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.namespace", "")

	v.SetDefault("history.capacity", 1000)

	v.SetDefault("window.debounce", "500ms")
	v.SetDefault("window.min_width", 800)
	v.SetDefault("window.min_height", 600)
	v.SetDefault("window.max_factor", 2)
	v.SetDefault("window.display.x", 0)
	v.SetDefault("window.display.y", 0)
	v.SetDefault("window.display.width", 0)
	v.SetDefault("window.display.height", 0)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "doubao-seed-1-6-vision-250815")
	v.SetDefault("ai.timeout", "3m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("http.addr", "")

	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values LoadConfig cannot type-check.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "bolt", "sqlite", "memory":
		if c.Storage.Backend != "memory" && c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend)
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.History.Capacity <= 0 {
		return fmt.Errorf("history.capacity must be positive, got %d", c.History.Capacity)
	}
	if c.Window.Display.Width < 0 || c.Window.Display.Height < 0 {
		return fmt.Errorf("window.display size must not be negative, got %dx%d", c.Window.Display.Width, c.Window.Display.Height)
	}
	if c.Window.Debounce <= 0 {
		return fmt.Errorf("window.debounce must be positive, got %s", c.Window.Debounce)
	}
	return nil
}
