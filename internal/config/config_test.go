package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourts/casesearch/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://casesearch.courts.state.md.us", cfg.Portal.BaseURL)
	assert.Equal(t, 8, cfg.Crawler.Concurrency)
	assert.Equal(t, "unbounded", cfg.Crawler.RetryPolicy)
	assert.Equal(t, 10, cfg.Ingest.Partitions)
	assert.Equal(t, 1000, cfg.Ingest.BatchLimit)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.PortalTimeout())
	assert.Equal(t, time.Second, cfg.RetryDelay())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
portal:
  base_url: http://localhost:8080
crawler:
  concurrency: 2
  retry_policy: exponential
  max_retries: 5
db:
  dsn: postgres://harvester@localhost/casesearch
ingest:
  partitions: 4
  batch_limit: 50
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Portal.BaseURL)
	assert.Equal(t, 2, cfg.Crawler.Concurrency)
	assert.Equal(t, "exponential", cfg.Crawler.RetryPolicy)
	assert.Equal(t, 5, cfg.Crawler.MaxRetries)
	assert.Equal(t, "postgres://harvester@localhost/casesearch", cfg.DB.DSN)
	assert.Equal(t, 4, cfg.Ingest.Partitions)
	assert.Equal(t, 50, cfg.Ingest.BatchLimit)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
crawler:
  concurrency: 0
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crawler.concurrency")
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.Ingest.BatchLimit = 0
	assert.Error(t, cfg.Validate())

	cfg.Ingest.BatchLimit = 100
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Server.Enabled = false
	assert.NoError(t, cfg.Validate())
}
