package labels

import (
	"context"
	"fmt"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "labels")

// ReviewStatus is the aggregate outcome of the reviews on a pull request
type ReviewStatus string

const (
	StatusChangesRequested   ReviewStatus = ReviewStatus(KeyChangesRequested)
	StatusNeedsMoreApprovals ReviewStatus = ReviewStatus(KeyNeedsMoreApprovals)
	StatusApproved           ReviewStatus = ReviewStatus(KeyApproved)
	StatusReadyForReview     ReviewStatus = ReviewStatus(KeyReadyForReview)
)

// Key returns the catalog key labelling this status
func (s ReviewStatus) Key() Key {
	return Key(s)
}

// ReviewSource is the part of the GitHub API the classifier reads from
type ReviewSource interface {
	ListReviews(ctx context.Context, number int) ([]models.Review, error)
	GetCollaboratorPermission(ctx context.Context, login string) (string, error)
	GetRequiredApprovalCount(ctx context.Context, branch string) (int, error)
}

// Classifier reduces the reviews of a pull request to a ReviewStatus
type Classifier struct {
	source ReviewSource
}

// NewClassifier creates a classifier reading from source
func NewClassifier(source ReviewSource) *Classifier {
	return &Classifier{source: source}
}

// Status fetches the reviews of pr and classifies them.
//
// Steps run sequentially because each one filters the input of the next:
// head-commit filter, latest review per reviewer, permission filter, then the
// required approval count of the base branch. Failing to read branch protection
// counts as zero required approvals; every other API failure is returned.
func (c *Classifier) Status(ctx context.Context, pr *models.PullRequest) (ReviewStatus, error) {
	reviews, err := c.source.ListReviews(ctx, pr.Number)
	if err != nil {
		return "", fmt.Errorf("failed to list reviews: %w", err)
	}

	eligible := EligibleReviews(reviews, pr.HeadSHA)
	if len(eligible) == 0 {
		return StatusReadyForReview, nil
	}

	latest := LatestPerReviewer(eligible)

	permitted := make([]models.Review, 0, len(latest))
	for _, r := range latest {
		permission, err := c.source.GetCollaboratorPermission(ctx, r.ReviewerLogin)
		if err != nil {
			return "", fmt.Errorf("failed to get permission for %s: %w", r.ReviewerLogin, err)
		}
		if HasPushPermission(permission) {
			permitted = append(permitted, r)
		}
	}
	logger.WithField("pr", pr.Number).
		WithField("eligible", len(eligible)).
		WithField("reviewers", len(latest)).
		WithField("permitted", len(permitted)).
		Debug("Filtered reviews")

	if len(permitted) == 0 {
		return StatusReadyForReview, nil
	}
	// a change request wins regardless of the approval count, so skip the
	// branch protection lookup
	if hasChangesRequested(permitted) {
		return StatusChangesRequested, nil
	}

	return Classify(permitted, c.requiredApprovals(ctx, pr.BaseRef)), nil
}

// requiredApprovals is fail-open: branch protection is often unset or unreadable
func (c *Classifier) requiredApprovals(ctx context.Context, branch string) int {
	count, err := c.source.GetRequiredApprovalCount(ctx, branch)
	if err != nil {
		logger.WithField("branch", branch).WithField("error", err).Warn("Failed to read branch protection, assuming no required approvals")
		return 0
	}
	return count
}

// Classify computes the status from the latest review of each permitted reviewer
func Classify(latest []models.Review, requiredApprovals int) ReviewStatus {
	if len(latest) == 0 {
		return StatusReadyForReview
	}
	if hasChangesRequested(latest) {
		return StatusChangesRequested
	}

	approvals := 0
	for _, r := range latest {
		if r.State == models.ReviewStateApproved {
			approvals++
		}
	}

	if approvals < requiredApprovals {
		return StatusNeedsMoreApprovals
	}
	if approvals > 0 {
		return StatusApproved
	}
	return StatusReadyForReview
}

// EligibleReviews keeps approvals and change requests made against headSHA.
// Reviews of superseded commits are dropped.
func EligibleReviews(reviews []models.Review, headSHA string) []models.Review {
	eligible := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.CommitSHA != headSHA {
			continue
		}
		if r.State != models.ReviewStateApproved && r.State != models.ReviewStateChangesRequested {
			continue
		}
		eligible = append(eligible, r)
	}
	return eligible
}

// LatestPerReviewer keeps the most recent review of every reviewer.
//
// When two reviews of the same reviewer share a timestamp, the one later in
// the input wins; GitHub lists reviews in submission order. Reviews without a
// reviewer id or submission time are ignored. The result is ordered by the
// first appearance of each reviewer.
func LatestPerReviewer(reviews []models.Review) []models.Review {
	order := make([]int64, 0)
	latest := make(map[int64]models.Review)

	for _, r := range reviews {
		if r.ReviewerID == 0 || r.SubmittedAt.IsZero() {
			continue
		}
		current, seen := latest[r.ReviewerID]
		if !seen {
			order = append(order, r.ReviewerID)
			latest[r.ReviewerID] = r
			continue
		}
		if !r.SubmittedAt.Before(current.SubmittedAt) {
			latest[r.ReviewerID] = r
		}
	}

	out := make([]models.Review, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out
}

// HasPushPermission reports whether a repository permission allows pushing
func HasPushPermission(permission string) bool {
	return permission == "write" || permission == "admin"
}

func hasChangesRequested(reviews []models.Review) bool {
	for _, r := range reviews {
		if r.State == models.ReviewStateChangesRequested {
			return true
		}
	}
	return false
}
