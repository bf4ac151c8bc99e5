// Package config loads runtime configuration for the Talkflo CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or --config.
//  3. TALKFLO_* environment variables (TALKFLO_SERVER_URL, ...).
//
// Command flags such as --server are applied by the cli package on top.
//
// # JSON schema
//
// Intervals go through timex.Duration, so "500ms" and integer nanoseconds
// both work:
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "token_file": "~/.talkflo/token.json",
//	  "recordings_dir": "~/.talkflo/recordings",
//	  "sample_rate": 16000,
//	  "channels": 1,
//	  "poll_initial_interval": "500ms",
//	  "poll_max_interval": "5s",
//	  "auto_close_delay": "1.5s",
//	  "notifications": true
//	}
package config
