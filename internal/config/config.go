package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "PollGate"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultVerificationTTL = 60 * time.Second
	defaultTokenTTL        = 15 * time.Minute
	defaultSendPerMin      = 5
	devTokenSecret         = "pollgate-dev-secret"

	verifTTLSecondsEnvVar  = "VERIFICATION_TTL_SECONDS"
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment
// variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	TokenSecret     string
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
	VerificationTTL time.Duration
	TokenTTL        time.Duration
	SendPerMin      int
}

// Load reads configuration from the environment. PostgreSQL, Redis and a real
// token secret are mandatory outside development; a dev environment falls
// back to in-memory stores and a fixed secret.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		TokenSecret:     os.Getenv("TOKEN_SECRET"),
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,
		VerificationTTL: defaultVerificationTTL,
		TokenTTL:        defaultTokenTTL,
		SendPerMin:      defaultSendPerMin,
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv(verifTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", verifTTLSecondsEnvVar, err)
		}
		cfg.VerificationTTL = time.Duration(seconds) * time.Second
	}

	if v := os.Getenv("SEND_RATE_LIMIT_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SEND_RATE_LIMIT_PER_MIN: %w", err)
		}
		cfg.SendPerMin = n
	}

	if cfg.IsDev() {
		if cfg.TokenSecret == "" {
			cfg.TokenSecret = devTokenSecret
		}
		return cfg, nil
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}
	if cfg.TokenSecret == "" {
		return Config{}, fmt.Errorf("TOKEN_SECRET must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// IsDev reports whether the environment allows in-memory fallbacks.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
