package github

import (
	"fmt"
	"strings"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
	"github.com/google/go-github/v66/github"
)

// ParseOwnerRepo parses a repository string into owner and repository
// Example: "owner/repository" -> "owner", "repository"
// Example: "owner/repository/subpath" -> "owner", "repository"
func ParseOwnerRepo(repo string) (models.RepoRef, error) {
	parts := strings.Split(repo, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return models.RepoRef{}, fmt.Errorf("invalid repository format: %s", repo)
	}
	return models.RepoRef{Owner: parts[0], Name: parts[1]}, nil
}

func ShortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// ToPullRequest converts an API or webhook pull request to the model
func ToPullRequest(pr *github.PullRequest) *models.PullRequest {
	out := &models.PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		Author:  pr.GetUser().GetLogin(),
		BaseRef: pr.GetBase().GetRef(),
		HeadSHA: pr.GetHead().GetSHA(),
		State:   pr.GetState(),
		Draft:   pr.GetDraft(),
		Labels:  make([]string, 0, len(pr.Labels)),
	}
	if pr.MergedAt != nil {
		mergedAt := pr.MergedAt.Time
		out.MergedAt = &mergedAt
	}
	for _, l := range pr.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	return out
}

// RepoRefOf returns the owner/name of a webhook repository.
// Installation payloads carry only the full name.
func RepoRefOf(repo *github.Repository) (models.RepoRef, error) {
	if owner := repo.GetOwner().GetLogin(); owner != "" && repo.GetName() != "" {
		return models.RepoRef{Owner: owner, Name: repo.GetName()}, nil
	}
	return ParseOwnerRepo(repo.GetFullName())
}
