package runner

import (
	"context"
	"fmt"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/config"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/labels"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/sections"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/trace"
)

const (
	ActionOpened           = "opened"
	ActionReopened         = "reopened"
	ActionEdited           = "edited"
	ActionSynchronize      = "synchronize"
	ActionClosed           = "closed"
	ActionConvertedToDraft = "converted_to_draft"
	ActionReadyForReview   = "ready_for_review"
)

// WIP_TITLE_PREFIX is prepended to new pull requests that are not drafts
const WIP_TITLE_PREFIX = "[WIP] "

func (r *Runner) HandlePullRequest(ctx context.Context, action string, pr *models.PullRequest) error {
	ctx, span := trace.StartSpan(ctx, "HandlePullRequest")
	defer span.End()

	entry := r.log.WithField("pr", pr.Number).WithField("action", action)

	switch action {
	case ActionOpened, ActionReopened:
		if err := r.markWIP(ctx, pr); err != nil {
			return err
		}
		if r.repoConfig(ctx).Enabled(config.FlagNetlifyPlaceholder) {
			if err := r.addPreviewPlaceholder(ctx, pr); err != nil {
				return err
			}
		}
	case ActionReadyForReview:
		if err := r.unmarkWIP(ctx, pr); err != nil {
			return err
		}
	case ActionEdited, ActionSynchronize, ActionClosed, ActionConvertedToDraft:
	default:
		entry.Debug("Ignoring pull request action")
		return nil
	}

	_, err := r.SyncLabels(ctx, pr, "")
	return err
}

// markWIP prefixes the title unless the PR is already a draft or marked WIP
func (r *Runner) markWIP(ctx context.Context, pr *models.PullRequest) error {
	if pr.Draft || labels.IsWIP(pr.Title) {
		return nil
	}
	title := WIP_TITLE_PREFIX + pr.Title
	if err := r.client.SetTitle(ctx, pr.Number, title); err != nil {
		return err
	}
	pr.Title = title
	r.log.WithField("pr", pr.Number).Info("Marked pull request as WIP")
	return nil
}

func (r *Runner) unmarkWIP(ctx context.Context, pr *models.PullRequest) error {
	if !labels.IsWIP(pr.Title) {
		return nil
	}
	title := labels.StripWIP(pr.Title)
	if err := r.client.SetTitle(ctx, pr.Number, title); err != nil {
		return err
	}
	pr.Title = title
	r.log.WithField("pr", pr.Number).Info("Removed WIP prefix")
	return nil
}

func (r *Runner) addPreviewPlaceholder(ctx context.Context, pr *models.PullRequest) error {
	body, err := r.preview.EnsurePlaceholder(pr.Body)
	if err != nil {
		return err
	}
	return r.writeBody(ctx, pr, body)
}

func (r *Runner) writeBody(ctx context.Context, pr *models.PullRequest, body string) error {
	if body == pr.Body {
		r.log.WithField("pr", pr.Number).Debug("Body unchanged, skipping update")
		return nil
	}
	if err := r.client.SetBody(ctx, pr.Number, body); err != nil {
		return err
	}
	pr.Body = body
	return nil
}

func (r *Runner) HandleReview(ctx context.Context, pr *models.PullRequest, reviewer string) error {
	ctx, span := trace.StartSpan(ctx, "HandleReview")
	defer span.End()

	r.autoAssign(ctx, pr, reviewer)
	_, err := r.SyncLabels(ctx, pr, "")
	return err
}

func (r *Runner) HandleComment(ctx context.Context, pr *models.PullRequest, commenter string) error {
	r.autoAssign(ctx, pr, commenter)
	return nil
}

func (r *Runner) HandleIssueComment(ctx context.Context, number int, commenter string) error {
	pr, err := r.client.GetPR(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}
	return r.HandleComment(ctx, pr, commenter)
}

func (r *Runner) HandleCheckSuite(ctx context.Context, number int, headSHA string) error {
	ctx, span := trace.StartSpan(ctx, "HandleCheckSuite")
	defer span.End()

	pr, err := r.client.GetPR(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}
	_, err = r.SyncLabels(ctx, pr, headSHA)
	return err
}

// HandleCheckRun rebuilds the deploy preview section from the Netlify check
// runs of headSHA
func (r *Runner) HandleCheckRun(ctx context.Context, number int, headSHA string) error {
	ctx, span := trace.StartSpan(ctx, "HandleCheckRun")
	defer span.End()

	pr, err := r.client.GetPR(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to get pull request #%d: %w", number, err)
	}
	if headSHA == "" {
		headSHA = pr.HeadSHA
	}

	runs, err := r.client.ListCheckRunsForRef(ctx, headSHA)
	if err != nil {
		return fmt.Errorf("failed to list check runs: %w", err)
	}
	links := sections.CollectPreviewLinks(runs)

	body, err := r.preview.Upsert(pr.Body, links)
	if err != nil {
		return err
	}
	r.log.WithField("pr", pr.Number).WithField("previews", len(links)).Info("Updating deploy preview section")
	return r.writeBody(ctx, pr, body)
}
