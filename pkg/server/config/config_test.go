package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":8000" || cfg.TokenTTL != 30*time.Minute || cfg.BcryptCost != 10 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DARKMANOR_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("DARKMANOR_TOKEN_TTL", "5m")
	t.Setenv("DARKMANOR_CORS_ORIGINS", "https://manor.example")
	t.Setenv("DARKMANOR_SECURE_COOKIES", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != "127.0.0.1:9999" || cfg.TokenTTL != 5*time.Minute || !cfg.SecureCookies {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://manor.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero ttl", "DARKMANOR_TOKEN_TTL", "0s"},
		{"cost too low", "DARKMANOR_BCRYPT_COST", "2"},
		{"not a duration", "DARKMANOR_TOKEN_TTL", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("Load() error = nil")
			}
		})
	}
}
