package main

import (
	"fmt"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/github"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newEnsureLabelsCmd(root *rootOptions) *cobra.Command {
	var repoName string

	cmd := &cobra.Command{
		Use:   "ensure-labels",
		Short: "Create or recolour the bot labels in a repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := github.ParseOwnerRepo(repoName)
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

			fmt.Printf("🏷️  Ensuring labels in %s...\n", cyan(repo.String()))
			if err := r.EnsureLabels(cmd.Context()); err != nil {
				return fmt.Errorf("failed to ensure labels: %w", err)
			}
			fmt.Println(green("✅ Labels are in place"))
			return nil
		},
	}

	cmd.Flags().StringVar(&repoName, "repo", "", "GitHub repository (e.g., org/repo) (required)")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}
