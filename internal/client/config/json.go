package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Chris-Obeng/talkflo-app1/internal/flagx"
	"github.com/Chris-Obeng/talkflo-app1/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Notifications
// is a pointer so an absent key keeps the current value.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	TokenFile           string         `json:"token_file"`
	RecordingsDir       string         `json:"recordings_dir"`
	SampleRate          int            `json:"sample_rate"`
	Channels            int            `json:"channels"`
	PollInitialInterval timex.Duration `json:"poll_initial_interval"`
	PollMaxInterval     timex.Duration `json:"poll_max_interval"`
	AutoCloseDelay      timex.Duration `json:"auto_close_delay"`
	Notifications       *bool          `json:"notifications"`
}

func toJson(c *Config) *JsonConfig {
	notify := c.Notifications
	return &JsonConfig{
		ServerURL:           c.ServerURL,
		TokenFile:           c.TokenFile,
		RecordingsDir:       c.RecordingsDir,
		SampleRate:          c.SampleRate,
		Channels:            c.Channels,
		PollInitialInterval: timex.Duration{Duration: c.PollInitialInterval},
		PollMaxInterval:     timex.Duration{Duration: c.PollMaxInterval},
		AutoCloseDelay:      timex.Duration{Duration: c.AutoCloseDelay},
		Notifications:       &notify,
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.ServerURL = j.ServerURL
	c.TokenFile = j.TokenFile
	c.RecordingsDir = j.RecordingsDir
	c.SampleRate = j.SampleRate
	c.Channels = j.Channels
	c.PollInitialInterval = j.PollInitialInterval.Duration
	c.PollMaxInterval = j.PollMaxInterval.Duration
	c.AutoCloseDelay = j.AutoCloseDelay.Duration
	if j.Notifications != nil {
		c.Notifications = *j.Notifications
	}
}

// parseJson overlays the file named by -c/--config. Keys absent from the
// file keep their current values.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := toJson(cfg)
	if err := json.Unmarshal(data, jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	jc.apply(cfg)
	return nil
}
