package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	FieldEncryptionKey string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	MaxDocumentSizeMB  int
	LogLevel           string
	LogFormat          string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		FieldEncryptionKey: getEnv("FIELD_ENCRYPTION_KEY", ""),
		AccessTokenTTL:     defaultAccessTokenTTL,
		RefreshTokenTTL:    defaultRefreshTokenTTL,
		MaxDocumentSizeMB:  20,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(cfg.JWTSecret))
	}

	// The encryption key guards stored banking credentials. A missing or
	// malformed key stops the process before it accepts any traffic.
	if cfg.FieldEncryptionKey == "" {
		return nil, fmt.Errorf("FIELD_ENCRYPTION_KEY is required")
	}
	keyBytes, err := hex.DecodeString(cfg.FieldEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("FIELD_ENCRYPTION_KEY must be valid hex: %w", err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("FIELD_ENCRYPTION_KEY must be exactly 64 hex characters (32 bytes), got %d bytes", len(keyBytes))
	}

	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be a valid duration: %w", err)
		}
		if ttl <= 0 || ttl > time.Hour {
			return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be between 0 and 1h, got %s", ttl)
		}
		cfg.AccessTokenTTL = ttl
	}

	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("REFRESH_TOKEN_TTL must be a valid duration: %w", err)
		}
		if ttl < time.Hour {
			return nil, fmt.Errorf("REFRESH_TOKEN_TTL must be at least 1h, got %s", ttl)
		}
		cfg.RefreshTokenTTL = ttl
	}

	if v := os.Getenv("MAX_DOCUMENT_SIZE_MB"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 || size > 100 {
			return nil, fmt.Errorf("MAX_DOCUMENT_SIZE_MB must be an integer between 1 and 100, got %q", v)
		}
		cfg.MaxDocumentSizeMB = size
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with production hardening
// (secure cookies, mandatory encryption key).
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
