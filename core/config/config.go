package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DiscordConfig holds Discord bot related settings.
type DiscordConfig struct {
	Token string `yaml:"token" envconfig:"DISCORD_TOKEN"`
	// Prefix is the text-command prefix, defaults to "!".
	Prefix string `yaml:"prefix" envconfig:"DISCORD_PREFIX"`
}

// WebsiteConfig specifies the remote ingestion endpoint for published posts.
type WebsiteConfig struct {
	APIURL string `yaml:"api_url" envconfig:"API_URL"`
	// UploadTimeoutSeconds bounds a single upload request; 0 -> default (10s).
	UploadTimeoutSeconds int `yaml:"upload_timeout_seconds" envconfig:"API_UPLOAD_TIMEOUT_SECONDS"`
}

// WebConfig specifies the liveness web server settings.
type WebConfig struct {
	Port int `yaml:"port" envconfig:"PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// RateLimitConfig holds settings for per-user inbound rate limiting.
// Limiting is disabled when IntervalMS is zero.
type RateLimitConfig struct {
	IntervalMS int `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
}

const (
	// DefaultAPIURL is used when no website endpoint is configured.
	DefaultAPIURL = "http://localhost:5000/api/upload"
	// DefaultWebPort serves the liveness endpoints when PORT is unset.
	DefaultWebPort = 8080
	// DefaultPrefix is the command prefix understood by the bot.
	DefaultPrefix = "!"
)

// Config aggregates the configuration of the whole bot process.
// Channels seeds the category -> destination channel mapping; it is
// intentionally not written back on runtime updates.
type Config struct {
	Discord   DiscordConfig     `yaml:"discord"`
	Website   WebsiteConfig     `yaml:"website"`
	Web       WebConfig         `yaml:"web"`
	Logging   LoggingConfig     `yaml:"logging"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Channels  map[string]string `yaml:"channels"`
}

// Load reads configuration from an optional YAML file and environment variables.
// A missing file is not an error; the environment alone can fully configure the bot.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		case os.IsNotExist(err):
			// env-only configuration
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Discord.Token) == "" {
		return fmt.Errorf("discord token is required")
	}

	if strings.TrimSpace(cfg.Discord.Prefix) == "" {
		cfg.Discord.Prefix = DefaultPrefix
	}

	api := strings.TrimSpace(cfg.Website.APIURL)
	if api == "" {
		api = DefaultAPIURL
	}
	if _, err := url.ParseRequestURI(api); err != nil {
		return fmt.Errorf("invalid website.api_url %q: %w", cfg.Website.APIURL, err)
	}
	cfg.Website.APIURL = api

	if cfg.Website.UploadTimeoutSeconds < 0 {
		return fmt.Errorf("website.upload_timeout_seconds must be >= 0")
	}

	if cfg.Web.Port == 0 {
		cfg.Web.Port = DefaultWebPort
	}
	if cfg.Web.Port < 0 || cfg.Web.Port > 65535 {
		return fmt.Errorf("web.port must be within 1..65535")
	}

	if cfg.RateLimit.IntervalMS < 0 {
		return fmt.Errorf("rate_limit.interval_ms must be >= 0")
	}

	for tag, id := range cfg.Channels {
		cfg.Channels[tag] = strings.TrimSpace(id)
	}
	return nil
}
