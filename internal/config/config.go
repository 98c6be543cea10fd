// Package config holds the runtime configuration read from the environment.
package config

import (
	"os"
	"time"
)

// Config carries everything cmd/main.go needs to wire the server.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string
	// DatabaseDSN is the PostgreSQL connection string.
	DatabaseDSN string
	// RedisAddr is the host:port of the Redis instance backing the
	// pub/sub backbone and ephemeral state.
	RedisAddr string
	// RedisPassword may be empty for unauthenticated instances.
	RedisPassword string
	// JWTSecret signs access tokens. Must be overridden in production.
	JWTSecret string
	// TokenTTL bounds the lifetime of issued access tokens.
	TokenTTL time.Duration
	// LogLevel is a zerolog level name ("debug", "info", ...).
	LogLevel string
}

// Load reads configuration from the environment, falling back to local
// development defaults that match docker-compose.
func Load() Config {
	return Config{
		Addr:          ":" + getEnv("PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=user password=password dbname=drinkbuddies port=5432 sslmode=disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		TokenTTL:      getDuration("TOKEN_TTL", 30*time.Minute),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
