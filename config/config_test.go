package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	v := viper.New()
	require.NoError(t, BindFlags(fs, v))
	require.NoError(t, fs.Parse(args))
	return Load(v)
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr)
	assert.Equal(t, "http://localhost:8000", cfg.Url())
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 10, cfg.MaxConnections)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 25, cfg.MaxBatchSize)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.Equal(t, 128, cfg.CacheMaxItems)
	assert.Equal(t, DefaultLanguages, cfg.Languages)
	assert.Empty(t, cfg.FactSheetTypes)
	assert.Equal(t, 8, cfg.MaxNestingDepth)
	assert.Equal(t, 2*time.Minute, cfg.TokenTTL)

	assert.EqualError(t, cfg.RequireServer(), "missing parameter --token-secret")
}

func TestFlags(t *testing.T) {
	cfg, err := load(t,
		"--host", "127.0.0.1",
		"--port", "9090",
		"--token-secret", "s3cret",
		"--cache-enabled",
		"--cache-ttl", "1m",
		"--languages", "en,de",
		"--fact-sheet-types", "Application",
		"--fact-sheet-types", "ITComponent",
	)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9090", cfg.Url())
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"en", "de"}, cfg.Languages)
	assert.Equal(t, []string{"Application", "ITComponent"}, cfg.FactSheetTypes)
	assert.NoError(t, cfg.RequireServer())
}

func TestEnvironment(t *testing.T) {
	t.Setenv("POLLCREATOR_CACHE_ENABLED", "true")
	t.Setenv("POLLCREATOR_MAX_BATCH_SIZE", "5")
	t.Setenv("POLLCREATOR_LANGUAGES", "fr, it")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 5, cfg.MaxBatchSize)
	assert.Equal(t, []string{"fr", "it"}, cfg.Languages)

	// flags win over the environment
	cfg, err = load(t, "--max-batch-size", "7")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxBatchSize)
}

func TestInvalid(t *testing.T) {
	_, err := load(t, "--max-batch-size", "0")
	assert.Error(t, err)

	_, err = load(t, "--port", "70000")
	assert.Error(t, err)
}
