package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "Instacash"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultStorePath     = "instacash.json"
	defaultSessionTTL    = 30 * time.Minute
	defaultShutdownDelay = 10 * time.Second
	defaultIdemTTL       = 24 * time.Hour
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	// DatabaseURL selects the Postgres backend when set. When empty the
	// service runs against the snapshot-file store at StorePath.
	DatabaseURL string
	// RedisURL enables redis-backed sessions, idempotency and login rate
	// limiting. When empty sessions are held in process memory.
	RedisURL  string
	StorePath string

	// SeedBalance is credited to every freshly registered account, in minor
	// units. The default of zero matches registration policy in production;
	// demo deployments may set it to hand out play money.
	SeedBalance int64
	// AllowSelfTransfer permits transfers where sender and receiver are the
	// same account. Off by default.
	AllowSelfTransfer bool

	SessionTTL     time.Duration
	IdempotencyTTL time.Duration
	ShutdownPeriod time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		StorePath:      getEnv("WALLET_STORE_PATH", defaultStorePath),
		SessionTTL:     defaultSessionTTL,
		IdempotencyTTL: defaultIdemTTL,
		ShutdownPeriod: defaultShutdownDelay,
	}

	if v := os.Getenv("SEED_BALANCE"); v != "" {
		amount, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SEED_BALANCE: %w", err)
		}
		if amount < 0 {
			return Config{}, fmt.Errorf("SEED_BALANCE must not be negative")
		}
		cfg.SeedBalance = amount
	}

	if v := os.Getenv("ALLOW_SELF_TRANSFER"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ALLOW_SELF_TRANSFER: %w", err)
		}
		cfg.AllowSelfTransfer = allow
	}

	var err error
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
