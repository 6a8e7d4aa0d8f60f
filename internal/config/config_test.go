package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "mongodb://localhost:27017/", cfg.MongoURI)
	assert.Equal(t, "SoccerScore", cfg.MongoDatabase)
	assert.Equal(t, "https://app.sportdataapi.com/api/v1/soccer", cfg.SportDataBaseURL)
	assert.Equal(t, 30*time.Second, cfg.SportDataTimeout)
	assert.Equal(t, 5000, cfg.APIPort)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.SyncOnStartup)
	assert.Empty(t, cfg.SyncCron)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
}

func TestRequireAPIKey(t *testing.T) {
	assert.Error(t, (&Config{}).RequireAPIKey())
	assert.NoError(t, (&Config{SportDataAPIKey: "k"}).RequireAPIKey())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/soccer")
	t.Setenv("SPORTDATA_API_KEY", "key")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("SYNC_CRON", "0 */6 * * *")
	t.Setenv("API_PORT", "8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "0 */6 * * *", cfg.SyncCron)
	assert.Equal(t, 8080, cfg.APIPort)
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			StoreDriver:                DriverMemory,
			CacheBackend:               CacheMemory,
			SportDataRequestsPerMinute: 60,
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.StoreDriver = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.StoreDriver = DriverPostgres
	assert.Error(t, cfg.Validate(), "postgres needs DATABASE_URL")

	cfg = base()
	cfg.CacheBackend = "memcached"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.CacheBackend = CacheRedis
	cfg.CacheEnabled = true
	assert.Error(t, cfg.Validate(), "redis needs REDIS_URL")

	cfg = base()
	cfg.SportDataRequestsPerMinute = 0
	assert.Error(t, cfg.Validate())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "DEBUG"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warning"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "error"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: ""}).SlogLevel())
}
