package config

import (
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "TALKFLO"

// parseEnv overlays TALKFLO_<KEY> variables named after the JSON keys.
func parseEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)

	str := func(key string, dst *string) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	dur := func(key string, dst *time.Duration) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}
	num := func(key string, dst *int) {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	str("server_url", &cfg.ServerURL)
	str("token_file", &cfg.TokenFile)
	str("recordings_dir", &cfg.RecordingsDir)
	num("sample_rate", &cfg.SampleRate)
	num("channels", &cfg.Channels)
	dur("poll_initial_interval", &cfg.PollInitialInterval)
	dur("poll_max_interval", &cfg.PollMaxInterval)
	dur("auto_close_delay", &cfg.AutoCloseDelay)

	_ = v.BindEnv("notifications")
	if v.IsSet("notifications") {
		cfg.Notifications = v.GetBool("notifications")
	}
}
