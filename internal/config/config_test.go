package config

import (
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("KEY_RATE_TTL", "30m")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.KeyRateTTL != 30*time.Minute {
		t.Errorf("expected ttl 30m, got %s", cfg.KeyRateTTL)
	}
	if len(cfg.EncryptionKey) != 32 {
		t.Errorf("expected 32 byte key, got %d", len(cfg.EncryptionKey))
	}
	if cfg.MoneyPlaces != 2 {
		t.Errorf("expected 2 money places, got %d", cfg.MoneyPlaces)
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"ENCRYPTION_KEY": "abcd",
		"BANK_MARGIN":    "five",
		"MONEY_PLACES":   "-1",
		"JWT_SECRET":     "",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := NewConfig(); err == nil {
				t.Errorf("expected error for %s=%q", key, val)
			}
		})
	}
}
