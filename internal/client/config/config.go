package config

import "time"

// Config holds runtime settings for the Talkflo CLI.
type Config struct {
	ServerURL     string
	TokenFile     string
	RecordingsDir string

	SampleRate int
	Channels   int

	PollInitialInterval time.Duration
	PollMaxInterval     time.Duration
	AutoCloseDelay      time.Duration
	Notifications       bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.TokenFile = "~/.talkflo/token.json"
	c.RecordingsDir = "~/.talkflo/recordings"

	c.SampleRate = 16000
	c.Channels = 1

	c.PollInitialInterval = 500 * time.Millisecond
	c.PollMaxInterval = 5 * time.Second
	c.AutoCloseDelay = 1500 * time.Millisecond
	c.Notifications = true
}

// LoadConfig applies defaults, then the JSON file named in args (usually
// os.Args[1:]), then the environment.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	return cfg, nil
}
