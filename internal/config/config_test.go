package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "captions.db", cfg.Database.Path)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 15, cfg.Search.Budget)
	assert.Equal(t, time.Hour, cfg.Search.CacheTTL)
	assert.Equal(t, "youtube.com", cfg.Search.Platform)
}

func TestLoadOverridesFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("database.path", "/tmp/other.db")
	viper.Set("search.budget", 25)
	viper.Set("search.cache_ttl", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, 25, cfg.Search.Budget)
	assert.Equal(t, 30*time.Minute, cfg.Search.CacheTTL)
}

func TestEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CAPSEARCH_DB_PATH", "/data/captions.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Vision.APIKey)
	assert.Equal(t, "/data/captions.db", cfg.Database.Path)
}
