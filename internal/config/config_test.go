package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	require.NotEmpty(t, cfg.DatabasePath)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 20, cfg.FlushBatchSize)
	require.Equal(t, 5, cfg.FlushMaxRounds)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SYNC_API_BASE_URL", "https://api.example.com")
	t.Setenv("SYNC_USER_ID", "user-42")
	t.Setenv("SYNC_HTTP_TIMEOUT", "3s")
	t.Setenv("SYNC_FLUSH_BATCH_SIZE", "7")

	cfg := Load()
	require.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	require.Equal(t, "user-42", cfg.UserID)
	require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 7, cfg.FlushBatchSize)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SYNC_FLUSH_BATCH_SIZE", "lots")
	t.Setenv("SYNC_HTTP_TIMEOUT", "soon")

	cfg := Load()
	require.Equal(t, 20, cfg.FlushBatchSize)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
}

func TestLoadFileLayersOverEnvironment(t *testing.T) {
	t.Setenv("SYNC_API_BASE_URL", "https://env.example.com")
	t.Setenv("SYNC_USER_ID", "env-user")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: https://file.example.com
flush_max_rounds: 3
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	// File values win where set; env fills the rest.
	require.Equal(t, "https://file.example.com", cfg.APIBaseURL)
	require.Equal(t, "env-user", cfg.UserID)
	require.Equal(t, 3, cfg.FlushMaxRounds)
	require.Equal(t, 20, cfg.FlushBatchSize)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
