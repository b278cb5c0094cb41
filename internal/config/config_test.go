package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Mongo.Database != "parcel_portal" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SignIn.MaxAttempts != 5 || cfg.SignIn.LockoutWindow != 15*time.Minute {
		t.Fatalf("unexpected sign-in defaults: %+v", cfg.SignIn)
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.Submit.DedupTTL != 10*time.Minute {
		t.Fatalf("unexpected ttl defaults: %+v", cfg)
	}
	if cfg.IsProduction() {
		t.Fatalf("default env reported as production")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":          "secret",
		"ENV":                 "production",
		"SIGNIN_MAX_ATTEMPTS": "3",
		"VERIFY_BASE_URL":     "https://parcels.example.com",
		"TOKEN_TTL":           "2h",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() || cfg.SignIn.MaxAttempts != 3 || cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Verify.BaseURL != "https://parcels.example.com" {
		t.Fatalf("unexpected base url %q", cfg.Verify.BaseURL)
	}
}

func TestLoadFrom_MissingSecret(t *testing.T) {
	if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}
