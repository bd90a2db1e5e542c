// Package config provides YAML-based configuration loading for Shopline.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Shopline configuration, loaded from shopline.yaml.
type Config struct {
	Plant     string           `yaml:"plant"`
	MySQL     MySQLConfig      `yaml:"mysql"`
	Dashboard DashboardConfig  `yaml:"dashboard"`
	Sync      SyncConfig       `yaml:"sync"`
	Notify    NotifyConfig     `yaml:"notify"`
	Downtime  []DowntimeWindow `yaml:"downtime"`
}

// MySQLConfig holds connection settings for the MySQL server.
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DashboardConfig holds settings for the schedule read API.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// SyncConfig controls the changefeed worker.
type SyncConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxBackoff   time.Duration `yaml:"max_backoff"`
}

// NotifyConfig holds outbound notification settings. Tokens left empty
// disable the corresponding sink.
type NotifyConfig struct {
	SlackToken     string `yaml:"slack_token"`
	SlackChannel   string `yaml:"slack_channel"`
	DiscordToken   string `yaml:"discord_token"`
	DiscordChannel string `yaml:"discord_channel"`
}

// DowntimeWindow declares a pre-planned downtime window on a resource.
// Cron is a standard 5-field expression for the window start.
type DowntimeWindow struct {
	ResourceID string `yaml:"resource"`
	Cron       string `yaml:"cron"`
	Minutes    int    `yaml:"minutes"`
	Reason     string `yaml:"reason"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.MySQL.Host == "" {
		c.MySQL.Host = "127.0.0.1"
	}
	if c.MySQL.Port == 0 {
		c.MySQL.Port = 3306
	}
	if c.MySQL.User == "" {
		c.MySQL.User = "root"
	}
	if c.MySQL.Database == "" && c.Plant != "" {
		c.MySQL.Database = "shopline_" + c.Plant
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Sync.PollInterval == 0 {
		c.Sync.PollInterval = 2 * time.Second
	}
	if c.Sync.MaxBackoff == 0 {
		c.Sync.MaxBackoff = time.Minute
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Plant == "" {
		errs = append(errs, "plant is required")
	}
	for i, w := range c.Downtime {
		if w.ResourceID == "" {
			errs = append(errs, fmt.Sprintf("downtime[%d].resource is required", i))
		}
		if w.Cron == "" {
			errs = append(errs, fmt.Sprintf("downtime[%d].cron is required", i))
		}
		if w.Minutes <= 0 {
			errs = append(errs, fmt.Sprintf("downtime[%d].minutes must be positive", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
