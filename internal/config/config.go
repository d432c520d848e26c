package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Stream    StreamConfig    `yaml:"stream"`
	History   HistoryConfig   `yaml:"history"`
	Announcer AnnouncerConfig `yaml:"announcer"`
	Mock      MockConfig      `yaml:"mock"`
}

type StreamConfig struct {
	URL        string        `yaml:"url"`
	Token      string        `yaml:"token"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
	MaxRetries int           `yaml:"max_retries"`
}

type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

type AnnouncerConfig struct {
	MinInterval time.Duration `yaml:"min_interval"`
	QueueSize   int           `yaml:"queue_size"`
}

// MockConfig drives the mockhive development backend.
type MockConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	StatsInterval time.Duration `yaml:"stats_interval"`
	StreamMaxAge  time.Duration `yaml:"stream_max_age"`
	AuthToken     string        `yaml:"auth_token"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Stream: StreamConfig{
			URL:        "http://127.0.0.1:5050/events",
			BaseDelay:  time.Second,
			MaxDelay:   30 * time.Second,
			MaxRetries: 8,
		},
		History: HistoryConfig{
			Capacity: 50,
		},
		Announcer: AnnouncerConfig{
			MinInterval: 3 * time.Second,
			QueueSize:   5,
		},
		Mock: MockConfig{
			Host:          "127.0.0.1",
			Port:          5050,
			TickInterval:  700 * time.Millisecond,
			StatsInterval: 5 * time.Second,
			StreamMaxAge:  2 * time.Minute,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
