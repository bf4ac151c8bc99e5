package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8080", c.ServerURL)
	assert.Equal(t, 16000, c.SampleRate)
	assert.Equal(t, 1, c.Channels)
	assert.Equal(t, 1500*time.Millisecond, c.AutoCloseDelay)
	assert.True(t, c.Notifications)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"server_url": "http://file.example",
		"channels":   2,
	})
	t.Setenv("TALKFLO_SERVER_URL", "http://env.example")
	t.Setenv("TALKFLO_POLL_MAX_INTERVAL", "9s")
	t.Setenv("TALKFLO_NOTIFICATIONS", "false")

	cfg, err := LoadConfig([]string{"notes", "list", "-c", path})
	require.NoError(t, err)

	assert.Equal(t, "http://env.example", cfg.ServerURL)
	assert.Equal(t, 2, cfg.Channels)
	assert.Equal(t, 9*time.Second, cfg.PollMaxInterval)
	assert.False(t, cfg.Notifications)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig([]string{"-c", "/does/not/exist.json"})
	assert.Error(t, err)
}
