// Package config provides YAML-based configuration loading for Studytrack.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Studytrack configuration, loaded from studytrack.yaml.
type Config struct {
	Timezone          string `yaml:"timezone"`
	SessionMinSeconds int    `yaml:"session_min_seconds"`
	PollSeconds       int    `yaml:"poll_seconds"`
	FlushSeconds      int    `yaml:"flush_seconds"`
	PostCron          string `yaml:"post_cron"`
	DisplayLimit      int    `yaml:"display_limit"`
	Compliments       bool   `yaml:"compliments"`
	ComplimentsFile   string `yaml:"compliments_file"`
	QuotesFile        string `yaml:"quotes_file"`

	Store     StoreConfig     `yaml:"store"`
	Discord   DiscordConfig   `yaml:"discord"`
	Slack     SlackConfig     `yaml:"slack"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Aliases   []AliasGroup    `yaml:"aliases"`
}

// StoreConfig holds connection settings for the duration store backend.
// Driver "sqlite" uses Path; driver "mysql" uses Host/Port/Database.
type StoreConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
}

// DiscordConfig holds the Discord connection and channel settings.
type DiscordConfig struct {
	Token          string `yaml:"token"`
	TokenFile      string `yaml:"token_file"`
	GuildID        string `yaml:"guild_id"`
	VoiceChannelID string `yaml:"voice_channel_id"`
	PostChannelID  string `yaml:"post_channel_id"`
}

// SlackConfig holds the optional Slack leaderboard mirror settings.
type SlackConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// DashboardConfig holds the admin HTTP server settings.
type DashboardConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// AliasGroup merges a set of member usernames into one canonical identity.
type AliasGroup struct {
	Primary string   `yaml:"primary"`
	Members []string `yaml:"members"`
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
	if c.Timezone == "" {
		c.Timezone = "Asia/Tashkent"
	}
	if c.SessionMinSeconds == 0 {
		c.SessionMinSeconds = 300
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 30
	}
	if c.FlushSeconds == 0 {
		c.FlushSeconds = 600
	}
	if c.PostCron == "" {
		c.PostCron = "0 22 * * *"
	}
	if c.DisplayLimit == 0 {
		c.DisplayLimit = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		c.Store.Path = "study.db"
	}
	if c.Store.Driver == "mysql" {
		if c.Store.Host == "" {
			c.Store.Host = "127.0.0.1"
		}
		if c.Store.Port == 0 {
			c.Store.Port = 3306
		}
		if c.Store.Database == "" {
			c.Store.Database = "studytrack"
		}
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Store.Driver != "sqlite" && c.Store.Driver != "mysql" {
		errs = append(errs, fmt.Sprintf("store.driver %q is not supported (sqlite or mysql)", c.Store.Driver))
	}
	if c.Discord.GuildID == "" {
		errs = append(errs, "discord.guild_id is required")
	}
	if c.Discord.VoiceChannelID == "" {
		errs = append(errs, "discord.voice_channel_id is required")
	}
	if c.SessionMinSeconds < 0 {
		errs = append(errs, "session_min_seconds must not be negative")
	}
	for i, g := range c.Aliases {
		if g.Primary == "" {
			errs = append(errs, fmt.Sprintf("aliases[%d].primary is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Location resolves the configured timezone name.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GroupKey identifies the tracked group for the auto-reset check: if the
// configured guild/channel pair changes, all persisted totals are reset.
func (c *Config) GroupKey() string {
	return c.Discord.GuildID + ":" + c.Discord.VoiceChannelID
}

// BotToken returns the Discord bot token, either inline or from token_file.
func (c *Config) BotToken() (string, error) {
	if c.Discord.Token != "" {
		return c.Discord.Token, nil
	}
	if c.Discord.TokenFile == "" {
		return "", fmt.Errorf("config: discord token not configured (set discord.token or discord.token_file, or run `st login`)")
	}
	data, err := os.ReadFile(c.Discord.TokenFile)
	if err != nil {
		return "", fmt.Errorf("config: read token file %s: %w", c.Discord.TokenFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// PollInterval returns the roster snapshot poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// FlushInterval returns the checkpoint flush interval for long sessions.
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushSeconds) * time.Second
}

// Threshold returns the per-session qualification gate as a duration.
func (c *Config) Threshold() time.Duration {
	return time.Duration(c.SessionMinSeconds) * time.Second
}
