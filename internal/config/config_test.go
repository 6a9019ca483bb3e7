package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/auditdeck/auditdeck/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolateHome(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, constants.TaskPollInterval, cfg.PollInterval)
	assert.True(t, cfg.IncludeThinking)
	assert.True(t, cfg.IncludeToolCalls)
	assert.Equal(t, 8089, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.APIEndpoint)
}

func TestLoadFromFile(t *testing.T) {
	home := isolateHome(t)

	dir := filepath.Join(home, "."+constants.ProjectName)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	content := `api_endpoint: https://audit.example.com
api_key: secret
history_limit: 1000
poll_interval: 10s
include_thinking: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://audit.example.com", cfg.APIEndpoint)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 1000, cfg.HistoryLimit)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.False(t, cfg.IncludeThinking)
}

func TestLoadEnvOverride(t *testing.T) {
	isolateHome(t)
	t.Setenv("AUDITDECK_API_ENDPOINT", "http://localhost:8089")
	t.Setenv("AUDITDECK_HISTORY_LIMIT", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8089", cfg.APIEndpoint)
	assert.Equal(t, 42, cfg.HistoryLimit)
}

func TestLoadValidation(t *testing.T) {
	t.Run("rejects malformed endpoint", func(t *testing.T) {
		isolateHome(t)
		t.Setenv("AUDITDECK_API_ENDPOINT", "not a url")

		_, err := Load()
		assert.ErrorContains(t, err, "invalid configuration")
	})

	t.Run("rejects out of range history limit", func(t *testing.T) {
		isolateHome(t)
		t.Setenv("AUDITDECK_HISTORY_LIMIT", "100000")

		_, err := Load()
		assert.ErrorContains(t, err, "invalid configuration")
	})
}

func TestSaveRoundTrip(t *testing.T) {
	isolateHome(t)

	require.NoError(t, Save(&Config{
		APIEndpoint:  "https://audit.example.com",
		APIKey:       "secret",
		HistoryLimit: 750,
	}))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://audit.example.com", cfg.APIEndpoint)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 750, cfg.HistoryLimit)
}
