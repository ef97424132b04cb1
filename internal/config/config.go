// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bakery-popup/internal/pkg/jwt"
)

// Offer store backends
const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

type AppConfig struct {
	// Server
	HTTPAddr       string
	AllowedOrigins []string

	// Offer store
	StoreBackend            string
	DatabaseURL             string
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	// Redis; more than one address means cluster mode
	RedisAddrs   []string
	RedisPass    string
	FeedCacheTTL time.Duration

	// Rate limits, per minute; 0 disables
	ActivationLimitPerMinute int64
	SaveLimitPerMinute       int64

	// JWT
	JWT jwt.Config

	MetricsNamespace string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8000"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),

		StoreBackend:            strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		RedisAddrs:   getEnvSlice("REDIS_ADDR", nil),
		RedisPass:    getEnv("REDIS_PASS", ""),
		FeedCacheTTL: getEnvDuration("FEED_CACHE_TTL", 30*time.Second),

		ActivationLimitPerMinute: getEnvInt("ACTIVATION_LIMIT_PER_MINUTE", 30),
		SaveLimitPerMinute:       getEnvInt("SAVE_LIMIT_PER_MINUTE", 20),

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", "/app/secrets/jwt_private.pem"),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", "/app/secrets/jwt_public.pem"),
			Issuer:   getEnv("JWT_ISSUER", "bakery-popup"),
			Audience: getEnv("JWT_AUDIENCE", "popup-operators"),
			TTL:      getEnvDuration("JWT_TTL", 12*time.Hour),
			KID:      getEnv("JWT_KID", "popup-key"),
		},

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "bakery_popup"),
	}
}

// Validate reports settings the selected backend cannot run without.
func (c AppConfig) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", c.StoreBackend)
		}
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the %s backend", c.StoreBackend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
