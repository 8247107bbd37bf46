package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// InsecureDevSecret is used when BUDGETBOOK_JWT_SECRET is unset. Startup logs
// a warning instead of failing so local development works out of the box.
const InsecureDevSecret = "default-secret-change-in-production"

const (
	defaultAddr     = ":8080"
	defaultIssuer   = "budgetbook"
	defaultTokenTTL = 7 * 24 * time.Hour
	defaultCost     = 10
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Addr        string
	DatabaseURL string

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	BcryptCost int

	RateBurst  int
	RatePerSec int
}

// Load reads configuration from the environment. The only hard requirement is
// the database DSN; everything else has a development default.
func Load() (Config, error) {
	cfg := Config{
		Addr:        fallback(os.Getenv("BUDGETBOOK_ADDR"), defaultAddr),
		DatabaseURL: strings.TrimSpace(os.Getenv("BUDGETBOOK_PG_DSN")),
		JWTSecret:   strings.TrimSpace(os.Getenv("BUDGETBOOK_JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("BUDGETBOOK_JWT_ISSUER"), defaultIssuer),
		TokenTTL:    defaultTokenTTL,
		BcryptCost:  defaultCost,
		RateBurst:   20,
		RatePerSec:  10,
	}

	if raw := strings.TrimSpace(os.Getenv("BUDGETBOOK_TOKEN_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("invalid BUDGETBOOK_TOKEN_TTL %q", raw)
		}
		cfg.TokenTTL = ttl
	}
	if raw := strings.TrimSpace(os.Getenv("BUDGETBOOK_BCRYPT_COST")); raw != "" {
		cost, err := strconv.Atoi(raw)
		if err != nil || cost < 4 || cost > 31 {
			return Config{}, fmt.Errorf("invalid BUDGETBOOK_BCRYPT_COST %q", raw)
		}
		cfg.BcryptCost = cost
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = InsecureDevSecret
	}

	return cfg, nil
}

// UsingInsecureSecret reports whether the signing secret is the built-in
// development fallback.
func (c Config) UsingInsecureSecret() bool {
	return c.JWTSecret == InsecureDevSecret
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
