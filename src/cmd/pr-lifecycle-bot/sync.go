package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/github"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

type syncOptions struct {
	repo     string
	prNumber int
}

func newSyncCmd(root *rootOptions) *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Recompute the lifecycle labels of one pull request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.prNumber <= 0 {
				return fmt.Errorf("--pr must be a positive pull request number")
			}
			repo, err := github.ParseOwnerRepo(opts.repo)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			client, err := newGitHubClient(cfg)
			if err != nil {
				return err
			}
			r, err := newRunner(cfg, client, repo, uuid.NewString())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			fmt.Printf("📥 Fetching PR #%d from %s...\n", opts.prNumber, cyan(repo.String()))
			pr, err := client.ForRepo(repo).GetPR(ctx, opts.prNumber)
			if err != nil {
				return fmt.Errorf("failed to get PR info: %w", err)
			}

			result, err := r.SyncLabels(ctx, pr, "")
			if err != nil {
				return fmt.Errorf("failed to sync labels: %w", err)
			}

			fmt.Printf("   Current:  %s\n", formatLabels(result.Current))
			fmt.Printf("   Computed: %s\n", formatLabels(result.Desired))
			switch {
			case !result.Changed:
				fmt.Println(green("✅ Labels already up to date"))
			case cfg.Bot.DryRun:
				fmt.Println(yellow("⚠️  Dry run, labels not written"))
			default:
				fmt.Println(green("✅ Labels updated"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.repo, "repo", "", "GitHub repository (e.g., org/repo) (required)")
	cmd.Flags().IntVar(&opts.prNumber, "pr", 0, "Pull request number (required)")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("pr")
	return cmd
}

func formatLabels(labels []string) string {
	if len(labels) == 0 {
		return "(none)"
	}
	return strings.Join(labels, ", ")
}
