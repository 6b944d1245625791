package runner

import (
	"context"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
)

// EventHandler handles the webhook events of one repository
type EventHandler interface {
	// HandlePullRequest reacts to a pull_request action
	HandlePullRequest(ctx context.Context, action string, pr *models.PullRequest) error

	// HandleReview assigns the reviewer and recomputes labels
	HandleReview(ctx context.Context, pr *models.PullRequest, reviewer string) error

	// HandleComment assigns a commenter on a pull request
	HandleComment(ctx context.Context, pr *models.PullRequest, commenter string) error

	// HandleIssueComment assigns a commenter on the pull request with number
	HandleIssueComment(ctx context.Context, number int, commenter string) error

	// HandleCheckSuite recomputes labels once a check suite completes
	HandleCheckSuite(ctx context.Context, number int, headSHA string) error

	// HandleCheckRun refreshes the deploy preview section
	HandleCheckRun(ctx context.Context, number int, headSHA string) error

	// EnsureLabels creates or recolours the catalog labels in the repository
	EnsureLabels(ctx context.Context) error
}
