package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB       DatabaseConfig
	Redis    RedisConfig
	Commerce CommerceConfig
	Yoco     YocoConfig
	Catalog  CatalogConfig
	Worker   WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters for the product
// mirror store.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CommerceConfig contains endpoints and credentials for the headless
// commerce backend (GraphQL catalog + REST orders).
type CommerceConfig struct {
	GraphQLURL     string
	RESTBaseURL    string
	ConsumerKey    string
	ConsumerSecret string
	WebhookSecret  string
}

// YocoConfig contains credentials for the Yoco payment gateway.
type YocoConfig struct {
	BaseURL   string
	SecretKey string
	Currency  string
}

// CatalogConfig tunes the catalog browsing engine.
type CatalogConfig struct {
	// PriceFilterCompat restores the legacy behavior of treating unpriced
	// products as price zero when evaluating a price filter.
	PriceFilterCompat bool
	SessionTTL        time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	SyncInterval        time.Duration
	SessionReapInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Commerce backend
	cfg.Commerce = CommerceConfig{
		GraphQLURL:     getEnv("COMMERCE_GRAPHQL_URL", ""),
		RESTBaseURL:    getEnv("COMMERCE_REST_URL", ""),
		ConsumerKey:    getEnv("COMMERCE_CONSUMER_KEY", ""),
		ConsumerSecret: getEnv("COMMERCE_CONSUMER_SECRET", ""),
		WebhookSecret:  getEnv("COMMERCE_WEBHOOK_SECRET", ""),
	}

	// Yoco payment gateway
	cfg.Yoco = YocoConfig{
		BaseURL:   getEnv("YOCO_BASE_URL", "https://online.yoco.com/v1"),
		SecretKey: getEnv("YOCO_SECRET_KEY", ""),
		Currency:  getEnv("YOCO_CURRENCY", "ZAR"),
	}

	// Catalog engine
	cfg.Catalog.PriceFilterCompat = getEnvBool("PRICE_FILTER_COMPAT", false)

	var err error
	if cfg.Catalog.SessionTTL, err = parseDurationEnv("CATALOG_SESSION_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_SESSION_TTL: %w", err)
	}

	// Workers (durations)
	if cfg.Worker.SyncInterval, err = parseDurationEnv("SYNC_INTERVAL", "15m"); err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL: %w", err)
	}
	if cfg.Worker.SessionReapInterval, err = parseDurationEnv("SESSION_REAP_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_REAP_INTERVAL: %w", err)
	}

	// Basic validation.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if cfg.Commerce.GraphQLURL == "" {
		return nil, errors.New("COMMERCE_GRAPHQL_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for session tokens")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvBool returns the value of an environment variable as a boolean or a default if empty/invalid.
func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
