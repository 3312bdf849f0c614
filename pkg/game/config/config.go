// Package config loads the client's settings from a YAML file with
// DARKMANOR_* environment overrides, and persists player preferences.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	engineinput "darkmanor/pkg/engine/input"
)

const (
	MinTileSize = 12
	MaxTileSize = 64
)

// Config is the client configuration.
type Config struct {
	APIURL   string `yaml:"api_url" env:"API_URL"`
	Renderer string `yaml:"renderer" env:"RENDERER"`

	AutosavePeriod     time.Duration `yaml:"autosave_period" env:"AUTOSAVE_PERIOD"`
	PauseStopsAutosave bool          `yaml:"pause_stops_autosave" env:"PAUSE_STOPS_AUTOSAVE"`
	GuestDelay         time.Duration `yaml:"guest_delay" env:"GUEST_DELAY"`
	RequestTimeout     time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	HealthWait         time.Duration `yaml:"health_wait" env:"HEALTH_WAIT"`

	TileSize  int    `yaml:"tile_size" env:"TILE_SIZE"`
	LocaleDir string `yaml:"locale_dir" env:"LOCALE_DIR"`
	Language  string `yaml:"language" env:"LANGUAGE"`
	LevelFile string `yaml:"level_file" env:"LEVEL_FILE"`

	// Bindings maps an action name ("Move North", "notebook") to a key code.
	Bindings map[string]string `yaml:"bindings,omitempty"`

	path string
	mu   sync.Mutex
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		APIURL:         "http://localhost:8000",
		Renderer:       "ebiten",
		AutosavePeriod: 60 * time.Second,
		GuestDelay:     3 * time.Second,
		RequestTimeout: 10 * time.Second,
		HealthWait:     15 * time.Second,
		TileSize:       24,
		Language:       "en_US",
	}
}

var (
	currentMu sync.Mutex
	current   *Config
)

// Current returns the configuration loaded last, or the defaults.
func Current() *Config {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current == nil {
		current = Default()
	}
	return current
}

func setCurrent(c *Config) {
	currentMu.Lock()
	current = c
	currentMu.Unlock()
}

// DefaultPath is the preferences file under the user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "darkmanor", "config.yaml")
}

// Load reads path over the defaults, applies environment overrides and
// makes the result Current. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "DARKMANOR_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setCurrent(cfg)
	return cfg, nil
}

// Validate checks the values that have a fixed range.
func (c *Config) Validate() error {
	switch c.Renderer {
	case "ebiten", "tui":
	default:
		return fmt.Errorf("renderer %q: want ebiten or tui", c.Renderer)
	}
	if c.AutosavePeriod <= 0 {
		return fmt.Errorf("autosave_period must be positive, got %v", c.AutosavePeriod)
	}
	if c.TileSize < MinTileSize || c.TileSize > MaxTileSize {
		return fmt.Errorf("tile_size %d out of range [%d, %d]", c.TileSize, MinTileSize, MaxTileSize)
	}
	for name := range c.Bindings {
		if _, ok := engineinput.ParseAction(name); !ok {
			return fmt.Errorf("bindings: unknown action %q", name)
		}
	}
	return nil
}

// ApplyBindings installs the configured key bindings.
func (c *Config) ApplyBindings() {
	for name, code := range c.Bindings {
		if act, ok := engineinput.ParseAction(name); ok {
			engineinput.SetSingleBinding(act, code)
		}
	}
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// SetTileSize records the renderer's zoom level and writes it back to the
// preferences file, if there is one.
func (c *Config) SetTileSize(size int) error {
	if size < MinTileSize || size > MaxTileSize {
		return fmt.Errorf("tile size %d out of range", size)
	}
	c.mu.Lock()
	c.TileSize = size
	c.mu.Unlock()
	return c.Save()
}

// Save writes the configuration to its file.
func (c *Config) Save() error {
	if c.path == "" {
		return nil
	}
	c.mu.Lock()
	raw, err := yaml.Marshal(c)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, raw, 0o644)
}
