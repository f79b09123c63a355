package config

import (
	"os"
	"strings"
	"time"
)

type HTTPConfig struct {
	Addr string
}

type AppConfig struct {
	ServiceName string
	Env         string
	LogLevel    string
	HTTP        HTTPConfig

	DatabaseURL    string
	JWTSecret      string
	AccessTokenTTL time.Duration
	NATSURL        string

	// SweepInterval controls the periodic aggregate reconciliation sweep.
	// Zero disables the sweep.
	SweepInterval time.Duration
}

// Load reads the service configuration from the environment.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName: envString("SERVICE_NAME", "movem"),
		Env:         envString("APP_ENV", "development"),
		LogLevel:    envString("LOG_LEVEL", "info"),
		HTTP: HTTPConfig{
			Addr: envString("HTTP_ADDR", ":8080"),
		},
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AccessTokenTTL: envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		NATSURL:        strings.TrimSpace(os.Getenv("NATS_URL")),
		SweepInterval:  envDuration("STATS_SWEEP_INTERVAL", 0),
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production requirements
// (Postgres mandatory, no in-memory fallbacks).
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func envString(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
