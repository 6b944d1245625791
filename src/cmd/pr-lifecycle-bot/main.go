package main

import (
	"fmt"
	"os"

	"github.com/gh-nvat/pr-lifecycle-bot/src/internal/runner"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/config"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/github"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
	"github.com/spf13/cobra"
)

const SERVICE_NAME = "pr-lifecycle-bot"

var (
	Version   = "dev"
	BuildTime = "unknown"
)

type rootOptions struct {
	envFile string
	dryRun  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   SERVICE_NAME,
		Short: "GitHub bot that keeps pull request labels and body sections up to date",
		Long: `pr-lifecycle-bot listens for GitHub webhooks and keeps each pull request's
lifecycle labels (WIP, ready for review, approved, changes requested, merged,
failing CI) and automated body sections (deploy previews) in sync.`,
		Version:       fmt.Sprintf("%s (built: %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file with service settings")
	cmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "Log GitHub writes instead of performing them")

	cmd.AddCommand(
		newServeCmd(opts),
		newSyncCmd(opts),
		newEnsureLabelsCmd(opts),
	)
	return cmd
}

// loadConfig reads the service config and applies the shared flags
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.NewConfig(opts.envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dryRun {
		cfg.Bot.DryRun = true
	}
	cfg.ConfigureLogging()
	return cfg, nil
}

// newGitHubClient builds the shared, rate limited API client
func newGitHubClient(cfg *config.Config) (*github.Client, error) {
	if cfg.GitHub.Token == "" {
		return nil, fmt.Errorf("github token is required (GITHUB_TOKEN or GH_TOKEN)")
	}
	client, err := github.NewClient(cfg.GitHub.Token, cfg.GitHub.BaseURL, cfg.GitHub.RequestsPerSecond)
	if err != nil {
		return nil, fmt.Errorf("GitHub authentication failed: %w", err)
	}
	return client, nil
}

func newRunner(cfg *config.Config, client *github.Client, repo models.RepoRef, deliveryID string) (*runner.Runner, error) {
	return runner.NewRunner(client.ForRepo(repo), repo, &runner.Options{
		DryRun:          cfg.Bot.DryRun,
		DeliveryID:      deliveryID,
		PreviewTemplate: cfg.Bot.PreviewTemplate,
	})
}

// newHandlerFactory builds one runner per repository and delivery
func newHandlerFactory(cfg *config.Config, client *github.Client) runner.HandlerFactory {
	return func(repo models.RepoRef, deliveryID string) (runner.EventHandler, error) {
		return newRunner(cfg, client, repo, deliveryID)
	}
}
