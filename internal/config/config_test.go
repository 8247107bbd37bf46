package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BUDGETBOOK_PG_DSN", "postgres://localhost/budgetbook")
	t.Setenv("BUDGETBOOK_JWT_SECRET", "")
	t.Setenv("BUDGETBOOK_TOKEN_TTL", "")
	t.Setenv("BUDGETBOOK_BCRYPT_COST", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr %s", cfg.Addr)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("unexpected ttl %s", cfg.TokenTTL)
	}
	if !cfg.UsingInsecureSecret() {
		t.Fatal("expected insecure dev secret fallback")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BUDGETBOOK_PG_DSN", "postgres://localhost/budgetbook")
	t.Setenv("BUDGETBOOK_JWT_SECRET", "s3cret")
	t.Setenv("BUDGETBOOK_TOKEN_TTL", "30m")
	t.Setenv("BUDGETBOOK_BCRYPT_COST", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected ttl %s", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("unexpected cost %d", cfg.BcryptCost)
	}
	if cfg.UsingInsecureSecret() {
		t.Fatal("secret should not be flagged insecure")
	}
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("BUDGETBOOK_PG_DSN", "postgres://localhost/budgetbook")
	t.Setenv("BUDGETBOOK_TOKEN_TTL", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid ttl")
	}
}
