package config_test

import (
	"testing"
	"time"

	"github.com/jhoicas/inventario-sync/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.DB.MaxConns)
	assert.Equal(t, 8, cfg.DB.MaxConcurrentWrites)
	assert.Equal(t, "2024-10", cfg.Shopify.APIVersion)
	assert.Equal(t, 100, cfg.Sync.MetricsBatchSize)
	assert.Equal(t, time.Hour, cfg.Sync.Interval)
	assert.True(t, cfg.Sync.ResumeOnStart)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "./docs/swagger.json", cfg.HTTP.SwaggerFile)
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "20")
	t.Setenv("DB_MAX_CONCURRENT_WRITES", "12")
	t.Setenv("SYNC_INTERVAL", "15m")
	t.Setenv("SYNC_LOCK_TTL", "90")
	t.Setenv("SHOPIFY_REQUESTS_PER_SECOND", "1.5")
	t.Setenv("SYNC_RESUME", "false")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 20, cfg.DB.MaxConns)
	assert.Equal(t, 12, cfg.DB.MaxConcurrentWrites)
	assert.Equal(t, 15*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 90*time.Second, cfg.Sync.LockTTL)
	assert.InDelta(t, 1.5, cfg.Shopify.RequestsPerSecond, 0.0001)
	assert.False(t, cfg.Sync.ResumeOnStart)
}

func TestLoad_EscriturasDebenDejarConexionesLibres(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "8")
	t.Setenv("DB_MAX_CONCURRENT_WRITES", "8")

	_, err := config.Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_CONCURRENT_WRITES")
}

func TestLoad_EscriturasPositivas(t *testing.T) {
	t.Setenv("DB_MAX_CONCURRENT_WRITES", "0")

	_, err := config.Load()

	require.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	withURL := config.DBConfig{DatabaseURL: "postgres://u:p@db:5432/x"}
	assert.Equal(t, "postgres://u:p@db:5432/x", withURL.ConnectionString())

	built := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/inv?sslmode=disable", built.ConnectionString())
}
