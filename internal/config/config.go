package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Environment names accepted by Load.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const envPrefix = "USERHUB_"

// Config carries all runtime settings. It is built once at startup and passed
// by reference into each component; no package reads the environment ad hoc.
type Config struct {
	Addr string
	Env  string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthSecret string
	TokenTTL   time.Duration
	BcryptCost int

	RateLimitWindow time.Duration
	RateLimitMax    int64

	CacheTTL time.Duration
}

// Load reads configuration from the environment (a local .env file is picked
// up first if present) and validates it. Any missing or malformed required
// setting fails startup deterministically rather than failing per-request.
func Load() (*Config, error) {
	// Best effort: absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:            getenv("ADDR", ":8080"),
		Env:             strings.ToLower(getenv("ENV", EnvProduction)),
		DatabaseDSN:     getenv("PG_DSN", ""),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		AuthSecret:      getenv("AUTH_SECRET", ""),
		TokenTTL:        time.Hour,
		RateLimitWindow: time.Minute,
		RateLimitMax:    10,
		CacheTTL:        5 * time.Minute,
	}

	var missing []string
	if cfg.DatabaseDSN == "" {
		missing = append(missing, envPrefix+"PG_DSN")
	}
	if cfg.AuthSecret == "" {
		missing = append(missing, envPrefix+"AUTH_SECRET")
	}
	raw := getenv("BCRYPT_COST", "")
	if raw == "" {
		missing = append(missing, envPrefix+"BCRYPT_COST")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}

	cost, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %sBCRYPT_COST must be an integer: %w", envPrefix, err)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("config: %sBCRYPT_COST must be between %d and %d", envPrefix, bcrypt.MinCost, bcrypt.MaxCost)
	}
	cfg.BcryptCost = cost

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, fmt.Errorf("config: %sENV must be %q or %q", envPrefix, EnvDevelopment, EnvProduction)
	}

	if raw := getenv("REDIS_DB", ""); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("config: %sREDIS_DB must be an integer: %w", envPrefix, err)
		}
		cfg.RedisDB = db
	}
	if raw := getenv("TOKEN_TTL", ""); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("config: %sTOKEN_TTL must be a positive duration", envPrefix)
		}
		cfg.TokenTTL = ttl
	}
	if raw := getenv("RATE_LIMIT_WINDOW", ""); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil || window <= 0 {
			return nil, fmt.Errorf("config: %sRATE_LIMIT_WINDOW must be a positive duration", envPrefix)
		}
		cfg.RateLimitWindow = window
	}
	if raw := getenv("RATE_LIMIT_MAX", ""); raw != "" {
		max, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || max <= 0 {
			return nil, fmt.Errorf("config: %sRATE_LIMIT_MAX must be a positive integer", envPrefix)
		}
		cfg.RateLimitMax = max
	}
	if raw := getenv("CACHE_TTL", ""); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("config: %sCACHE_TTL must be a positive duration", envPrefix)
		}
		cfg.CacheTTL = ttl
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
// Stack traces in error responses are enabled only in this mode.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.Env == EnvDevelopment
}

// Validate rechecks invariants on an already constructed Config. Useful for
// wiring code that builds a Config by hand (tests, embedded setups).
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil config")
	}
	if c.DatabaseDSN == "" {
		return errors.New("config: database DSN is required")
	}
	if c.AuthSecret == "" {
		return errors.New("config: auth secret is required")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("config: rate limit window and max must be positive")
	}
	if c.CacheTTL <= 0 {
		return errors.New("config: cache TTL must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		return v
	}
	return def
}
