package config

import "time"

// FeatureFlag names a per-repository switch
type FeatureFlag string

const (
	// FlagFailingCI adds the failing CI label when checks fail
	FlagFailingCI FeatureFlag = "enableFailingCI"
	// FlagNetlifyPlaceholder adds an empty preview section to new PRs
	FlagNetlifyPlaceholder FeatureFlag = "enableNetlifyPlaceholder"
)

// defaultFeatureFlags apply when a repository does not set a flag
var defaultFeatureFlags = map[FeatureFlag]bool{
	FlagFailingCI:          true,
	FlagNetlifyPlaceholder: false,
}

// RepoConfig is the per-repository configuration file
type RepoConfig struct {
	FeatureFlags map[FeatureFlag]bool `yaml:"featureFlags"`
}

// Config is the service configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Logging LoggingConfig `mapstructure:"logging"`
	Trace   TraceConfig   `mapstructure:"trace"`
	Bot     BotConfig     `mapstructure:"bot"`
}

// ServerConfig configures the webhook receiver
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GitHubConfig configures API access
type GitHubConfig struct {
	Token             string  `mapstructure:"token"`
	WebhookSecret     string  `mapstructure:"webhook_secret"`
	BaseURL           string  `mapstructure:"base_url"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// LoggingConfig configures logrus
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// TraceConfig configures the span report
type TraceConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	OutputDir string `mapstructure:"output_dir"`
}

// BotConfig configures bot behaviour
type BotConfig struct {
	DryRun          bool   `mapstructure:"dry_run"`
	PreviewTemplate string `mapstructure:"preview_template"`
	// InstallationConcurrency bounds repositories bootstrapped at once
	InstallationConcurrency int `mapstructure:"installation_concurrency"`
}
