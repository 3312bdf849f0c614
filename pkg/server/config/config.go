// Package config loads the persistence server settings from the
// environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls the persistence server.
type Config struct {
	Addr   string `env:"DARKMANOR_SERVER_ADDR" envDefault:":8000"`
	DBPath string `env:"DARKMANOR_DB_PATH"     envDefault:"data/darkmanor.db"`

	// JWTSecret signs session tokens. When empty a random secret is used and
	// sessions do not survive a restart.
	JWTSecret string        `env:"DARKMANOR_JWT_SECRET"`
	TokenTTL  time.Duration `env:"DARKMANOR_TOKEN_TTL" envDefault:"30m"`

	CORSOrigins   []string `env:"DARKMANOR_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080,http://127.0.0.1:8080"`
	SecureCookies bool     `env:"DARKMANOR_SECURE_COOKIES"`
	BcryptCost    int      `env:"DARKMANOR_BCRYPT_COST" envDefault:"10"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("listen address is required")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("database path is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range [4, 31]", c.BcryptCost)
	}
	return nil
}
