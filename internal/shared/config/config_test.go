package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsPerService(t *testing.T) {
	t.Setenv("SERVICE_NAME", "leaderboard-worker")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "leaderboard-worker", cfg.ServiceName)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "", cfg.HTTPPort)
	assert.Equal(t, "9102", cfg.MetricsPort)
	assert.Equal(t, "prediction_created", cfg.TopicPredictionCreated)
	assert.Equal(t, "match_result_updated", cfg.TopicMatchResultUpdated)
	assert.Equal(t, 4, cfg.RecomputeConcurrency)
	assert.Equal(t, uint(3), cfg.EventRetryAttempts)
	assert.Zero(t, cfg.RefreshInterval)
}

func TestLoadReadsTypedEnv(t *testing.T) {
	t.Setenv("SERVICE_NAME", "leaderboard-service")
	t.Setenv("RECOMPUTE_CONCURRENCY", "0")
	t.Setenv("REFRESH_INTERVAL", "90s")
	t.Setenv("EVENT_RETRY_ATTEMPTS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8085", cfg.HTTPPort)
	assert.Equal(t, 1, cfg.RecomputeConcurrency, "concurrency is clamped to at least one worker")
	assert.Equal(t, 90*time.Second, cfg.RefreshInterval)
	assert.Equal(t, uint(3), cfg.EventRetryAttempts)
}

func TestLoadAppliesYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := "mongo_database: pools_test\nrefresh_interval: 5m\nrecompute_concurrency: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("SERVICE_NAME", "leaderboard-service")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pools_test", cfg.MongoDatabase)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI, "keys missing from the file keep the env value")
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 8, cfg.RecomputeConcurrency)
}

func TestLoadFailsOnMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoadClampsRetryAttempts(t *testing.T) {
	t.Run("negative env", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", "")
		t.Setenv("EVENT_RETRY_ATTEMPTS", "-2")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, uint(1), cfg.EventRetryAttempts)
	})

	t.Run("zero in yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("event_retry_attempts: 0\n"), 0o600))
		t.Setenv("CONFIG_FILE", path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, uint(1), cfg.EventRetryAttempts)
	})
}
