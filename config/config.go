// Package config loads runtime settings for the recipebook server from the
// environment. A .env file, if present, is loaded by main before Load runs.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	DefaultJWTSecret = "dev-secret"
)

// Config holds runtime settings.
//
// JWTSecret signs bearer tokens (HS256); the default is for local development only.
type Config struct {
	Addr            string
	Storage         string
	MongoURI        string
	MongoDatabase   string
	JWTSecret       string
	TokenTTL        time.Duration
	UploadDir       string
	MaxUploadBytes  int64
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTL        time.Duration
	ListCacheSize   int
	RateLimitRPS    float64
	RateLimitBurst  int
	TrustedProxies  []string
	AllowedOrigins  []string
	LogLevel        string
	ShutdownTimeout time.Duration
}

func Load() Config {
	addr := envString("ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":10000"
		}
	}

	return Config{
		Addr:            addr,
		Storage:         strings.ToLower(envString("STORAGE", StorageMongo)),
		MongoURI:        envString("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   envString("MONGODB_DATABASE", "recipebook"),
		JWTSecret:       envString("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:        envDuration("TOKEN_TTL", 24*time.Hour),
		UploadDir:       envString("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:  envInt64("MAX_UPLOAD_BYTES", 10<<20),
		RedisAddr:       envString("REDIS_ADDR", ""),
		RedisPassword:   envString("REDIS_PASSWORD", ""),
		RedisDB:         envInt("REDIS_DB", 0),
		CacheTTL:        envDuration("CACHE_TTL", 5*time.Minute),
		ListCacheSize:   envInt("LIST_CACHE_SIZE", 128),
		RateLimitRPS:    envFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  envInt("RATE_LIMIT_BURST", 10),
		TrustedProxies:  envList("TRUSTED_PROXIES", nil),
		AllowedOrigins:  envList("CORS_ORIGINS", []string{"*"}),
		LogLevel:        strings.ToLower(envString("LOG_LEVEL", "info")),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate rejects settings that are only safe for local development when they
// are used against persistent storage.
func (c Config) Validate() error {
	if c.Storage == StorageMongo && c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set when STORAGE=mongo")
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
