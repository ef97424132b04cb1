package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "STORE_BACKEND", "REDIS_ADDR", "FEED_CACHE_TTL", "ALLOWED_ORIGINS", "ACTIVATION_LIMIT_PER_MINUTE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, ":8000", cfg.HTTPAddr)
	require.Equal(t, BackendPostgres, cfg.StoreBackend)
	require.Empty(t, cfg.RedisAddrs)
	require.Equal(t, 30*time.Second, cfg.FeedCacheTTL)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	require.Equal(t, int64(30), cfg.ActivationLimitPerMinute)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Firestore")
	t.Setenv("FIREBASE_PROJECT_ID", "bakery-prod")
	t.Setenv("REDIS_ADDR", "redis-a:6379, redis-b:6379,")
	t.Setenv("FEED_CACHE_TTL", "2m")
	t.Setenv("SAVE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()
	require.Equal(t, BackendFirestore, cfg.StoreBackend)
	require.Equal(t, []string{"redis-a:6379", "redis-b:6379"}, cfg.RedisAddrs)
	require.Equal(t, 2*time.Minute, cfg.FeedCacheTTL)
	require.Equal(t, int64(20), cfg.SaveLimitPerMinute)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	require.Error(t, AppConfig{StoreBackend: BackendPostgres}.Validate())
	require.NoError(t, AppConfig{StoreBackend: BackendPostgres, DatabaseURL: "postgres://x"}.Validate())
	require.Error(t, AppConfig{StoreBackend: BackendFirestore}.Validate())
	require.NoError(t, AppConfig{StoreBackend: BackendMemory}.Validate())
	require.Error(t, AppConfig{StoreBackend: "mongo"}.Validate())
}
