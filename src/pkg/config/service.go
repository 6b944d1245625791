package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// NewConfig loads the service configuration from the environment, using
// envFile (when it exists) for variables not already set.
func NewConfig(envFile string) (*Config, error) {
	if envFile != "" {
		envMap, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
		for k, v := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, v)
			}
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("github.token", "")
	v.SetDefault("github.webhook_secret", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.requests_per_second", 10.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("trace.enabled", false)
	v.SetDefault("trace.output_dir", "./output")

	v.SetDefault("bot.dry_run", false)
	v.SetDefault("bot.preview_template", "")
	v.SetDefault("bot.installation_concurrency", 4)
}

// bindEnvs accepts the token under both names the gh tooling uses
func bindEnvs(v *viper.Viper) error {
	if err := v.BindEnv("github.token", "GITHUB_TOKEN", "GH_TOKEN"); err != nil {
		return fmt.Errorf("bind env: %w", err)
	}
	return nil
}

// Validate checks the settings every command needs
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got: %s", c.Logging.Format)
	}
	if c.GitHub.RequestsPerSecond < 0 {
		return fmt.Errorf("github.requests_per_second must not be negative")
	}
	if c.Bot.InstallationConcurrency < 1 {
		return fmt.Errorf("bot.installation_concurrency must be at least 1")
	}
	return nil
}

// ValidateServe checks the settings the webhook server needs
func (c *Config) ValidateServe() error {
	if c.GitHub.Token == "" {
		return fmt.Errorf("github token is required (GITHUB_TOKEN or GH_TOKEN)")
	}
	if c.GitHub.WebhookSecret == "" {
		return fmt.Errorf("webhook secret is required (GITHUB_WEBHOOK_SECRET)")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// ConfigureLogging applies the logging settings to the standard logrus logger
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if c.Logging.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
