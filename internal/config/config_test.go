package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenLifespan)
	assert.Equal(t, "profile.events", cfg.Kafka.ProfileTopic)
	assert.Equal(t, StorageCloudinary, cfg.Storage.Provider)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxImageSize)
	assert.Equal(t, LLMOllama, cfg.LLM.Provider)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("app:\n  port: \"9000\"\nstore:\n  driver: mongo\nauth:\n  jwt_secret: from-file\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("REDIS_CACHE_TTL", "30s")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, StoreDriverMongo, cfg.Store.Driver)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Store.Driver = StoreDriverMemory
		c.Auth.JWTSecret = "secret"
		c.Storage.Provider = StorageNone
		c.LLM.Provider = LLMNone
		return c
	}

	t.Run("memory store without dsn", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		c := valid()
		c.Store.Driver = "cassandra"
		assert.ErrorContains(t, c.Validate(), "unknown store driver")
	})

	t.Run("postgres needs dsn", func(t *testing.T) {
		c := valid()
		c.Store.Driver = StoreDriverPostgres
		assert.ErrorContains(t, c.Validate(), "DB_DSN")
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		c := valid()
		c.Auth.JWTSecret = ""
		assert.ErrorContains(t, c.Validate(), "JWT_SECRET")
	})

	t.Run("unknown llm provider", func(t *testing.T) {
		c := valid()
		c.LLM.Provider = "gpt"
		assert.ErrorContains(t, c.Validate(), "unknown llm provider")
	})
}
