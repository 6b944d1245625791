package config

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var logger = log.WithField("package", "config")

// REPO_CONFIG_FILENAME is the per-repository config, read from the default branch
const REPO_CONFIG_FILENAME = ".github/actual-gh-bot.yml"

// ConfigLoader defines the interface for loading per-repository configuration
type ConfigLoader interface {
	// ParseRepoConfig parses the repository configuration from YAML
	ParseRepoConfig(data []byte) (*RepoConfig, error)
	// PruneUnknownFlags removes flags the bot does not know and returns them
	PruneUnknownFlags(config *RepoConfig) []FeatureFlag
}

// Loader handles loading configuration files
type Loader struct{}

// Ensure Loader implements ConfigLoader
var _ ConfigLoader = (*Loader)(nil)

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// DefaultRepoConfig returns the configuration used when a repository has none
func DefaultRepoConfig() *RepoConfig {
	flags := make(map[FeatureFlag]bool, len(defaultFeatureFlags))
	for k, v := range defaultFeatureFlags {
		flags[k] = v
	}
	return &RepoConfig{FeatureFlags: flags}
}

// ParseRepoConfig parses YAML and fills unset flags with defaults. Unknown
// flags are dropped with a warning; the known ones still apply.
func (l *Loader) ParseRepoConfig(data []byte) (*RepoConfig, error) {
	var parsed RepoConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}

	for _, flag := range l.PruneUnknownFlags(&parsed) {
		logger.WithField("flag", flag).Warn("Ignoring unknown feature flag in repo config")
	}

	config := DefaultRepoConfig()
	for k, v := range parsed.FeatureFlags {
		config.FeatureFlags[k] = v
	}
	return config, nil
}

func (l *Loader) PruneUnknownFlags(config *RepoConfig) []FeatureFlag {
	var unknown []FeatureFlag
	for flag := range config.FeatureFlags {
		if _, known := defaultFeatureFlags[flag]; !known {
			unknown = append(unknown, flag)
		}
	}
	for _, flag := range unknown {
		delete(config.FeatureFlags, flag)
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return unknown
}

// Enabled reports whether flag is on; unknown flags are off
func (c *RepoConfig) Enabled(flag FeatureFlag) bool {
	if c == nil {
		return defaultFeatureFlags[flag]
	}
	if v, ok := c.FeatureFlags[flag]; ok {
		return v
	}
	return defaultFeatureFlags[flag]
}
