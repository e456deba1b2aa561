package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file
const (
	EnvAPIURL     = "BULKMSG_API_URL"
	EnvAPIToken   = "BULKMSG_API_TOKEN"
	EnvMonitorURL = "BULKMSG_MONITOR_URL"
	EnvMonitorKey = "BULKMSG_MONITOR_KEY"
)

// DefaultPreviewLimit caps one audience preview. Server-enforced as well.
const DefaultPreviewLimit = 5000

type Config struct {
	API      APIConfig      `yaml:"api"`
	Campaign CampaignConfig `yaml:"campaign"`
	Session  SessionConfig  `yaml:"session"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Token        string        `yaml:"token"`
	Timeout      time.Duration `yaml:"timeout"`
	RateLimit    float64       `yaml:"rate_limit"` // requests per second, 0 = unlimited
	PreviewLimit int           `yaml:"preview_limit"`
}

type CampaignConfig struct {
	CreatedBy          string   `yaml:"created_by"`
	IntervalMinutes    int      `yaml:"interval_minutes"`
	MaxMessagesPerHour int      `yaml:"max_messages_per_hour"`
	ImageMaxBytes      int64    `yaml:"image_max_bytes"`
	ImageTypes         []string `yaml:"image_types"`
}

type SessionConfig struct {
	Path string `yaml:"path"`
}

type MonitorConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	// URL of a running serve instance whose polling campaign commands pause
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	APIKey     string `yaml:"api_key"` // empty = no auth on /api/v1
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads, defaults and validates the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(cfg)
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a configuration without a file, from environment and defaults only
func FromEnv() (*Config, error) {
	cfg := &Config{}
	applyEnv(cfg)
	setDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv(EnvMonitorURL); v != "" {
		cfg.Monitor.URL = v
	}
	if v := os.Getenv(EnvMonitorKey); v != "" {
		cfg.Monitor.APIKey = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.PreviewLimit == 0 {
		cfg.API.PreviewLimit = DefaultPreviewLimit
	}
	if cfg.Campaign.IntervalMinutes == 0 {
		cfg.Campaign.IntervalMinutes = 1
	}
	if cfg.Campaign.MaxMessagesPerHour == 0 {
		cfg.Campaign.MaxMessagesPerHour = 60
	}
	if cfg.Campaign.ImageMaxBytes == 0 {
		cfg.Campaign.ImageMaxBytes = 5 << 20
	}
	if len(cfg.Campaign.ImageTypes) == 0 {
		cfg.Campaign.ImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	if cfg.Campaign.CreatedBy == "" {
		cfg.Campaign.CreatedBy = "admin"
	}
	if cfg.Session.Path == "" {
		cfg.Session.Path = defaultSessionPath()
	}
	if cfg.Monitor.PollInterval == 0 {
		cfg.Monitor.PollInterval = 30 * time.Second
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8089"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "bulkmsg", "session.db")
	}
	return filepath.Join(home, ".bulkmsg", "session.db")
}

func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required (or set %s)", EnvAPIURL)
	}
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute http(s) URL")
	}
	if cfg.Monitor.URL != "" {
		u, err := url.Parse(cfg.Monitor.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("monitor.url must be an absolute http(s) URL")
		}
	}
	if cfg.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}
	if cfg.API.PreviewLimit < 0 {
		return fmt.Errorf("api.preview_limit must be positive")
	}
	if cfg.Campaign.IntervalMinutes < 0 {
		return fmt.Errorf("campaign.interval_minutes must be positive")
	}
	if cfg.Campaign.MaxMessagesPerHour < 0 {
		return fmt.Errorf("campaign.max_messages_per_hour must be positive")
	}
	if cfg.Campaign.ImageMaxBytes < 0 {
		return fmt.Errorf("campaign.image_max_bytes must be positive")
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text")
	}
	return nil
}
