package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/github"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/sections"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/trace"
	gogithub "github.com/google/go-github/v66/github"
)

// Webhook event names handled by the bot
const (
	EventPing                     = "ping"
	EventPullRequest              = "pull_request"
	EventPullRequestReview        = "pull_request_review"
	EventPullRequestReviewComment = "pull_request_review_comment"
	EventIssueComment             = "issue_comment"
	EventCheckSuite               = "check_suite"
	EventCheckRun                 = "check_run"
	EventInstallation             = "installation"
	EventInstallationRepositories = "installation_repositories"
)

var supportedEvents = map[string]bool{
	EventPing:                     true,
	EventPullRequest:              true,
	EventPullRequestReview:        true,
	EventPullRequestReviewComment: true,
	EventIssueComment:             true,
	EventCheckSuite:               true,
	EventCheckRun:                 true,
	EventInstallation:             true,
	EventInstallationRepositories: true,
}

// ErrMalformedPayload is returned when a supported event cannot be decoded
var ErrMalformedPayload = errors.New("malformed webhook payload")

// HandlerFactory builds the handler for one repository and delivery
type HandlerFactory func(repo models.RepoRef, deliveryID string) (EventHandler, error)

// Dispatcher decodes webhook deliveries and routes them to a handler
type Dispatcher struct {
	factory     HandlerFactory
	concurrency int
}

func NewDispatcher(factory HandlerFactory, concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{factory: factory, concurrency: concurrency}
}

// Supported reports whether eventType is routed anywhere
func Supported(eventType string) bool {
	return supportedEvents[eventType]
}

// Dispatch handles one delivery. Unsupported events and actions are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, eventType, deliveryID string, payload []byte) error {
	entry := logger.WithField("event", eventType).WithField("delivery", deliveryID)
	if !Supported(eventType) {
		entry.Debug("Ignoring unsupported event")
		return nil
	}

	event, err := gogithub.ParseWebHook(eventType, payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	repoName := ""
	if withRepo, ok := event.(interface{ GetRepo() *gogithub.Repository }); ok {
		repoName = withRepo.GetRepo().GetFullName()
	}
	ctx, span := trace.StartSpan(ctx, "Dispatch", trace.Delivery(deliveryID, eventType, repoName)...)
	defer span.End()

	switch e := event.(type) {
	case *gogithub.PingEvent:
		entry.WithField("hook", e.GetHookID()).Info("Received ping")
		return nil

	case *gogithub.PullRequestEvent:
		h, err := d.handlerFor(e.GetRepo(), deliveryID)
		if err != nil {
			return err
		}
		return h.HandlePullRequest(ctx, e.GetAction(), github.ToPullRequest(e.GetPullRequest()))

	case *gogithub.PullRequestReviewEvent:
		h, err := d.handlerFor(e.GetRepo(), deliveryID)
		if err != nil {
			return err
		}
		return h.HandleReview(ctx, github.ToPullRequest(e.GetPullRequest()), e.GetReview().GetUser().GetLogin())

	case *gogithub.PullRequestReviewCommentEvent:
		if e.GetAction() != "created" {
			break
		}
		h, err := d.handlerFor(e.GetRepo(), deliveryID)
		if err != nil {
			return err
		}
		return h.HandleComment(ctx, github.ToPullRequest(e.GetPullRequest()), e.GetComment().GetUser().GetLogin())

	case *gogithub.IssueCommentEvent:
		if e.GetAction() != "created" || e.GetIssue() == nil || !e.GetIssue().IsPullRequest() {
			break
		}
		h, err := d.handlerFor(e.GetRepo(), deliveryID)
		if err != nil {
			return err
		}
		return h.HandleIssueComment(ctx, e.GetIssue().GetNumber(), e.GetComment().GetUser().GetLogin())

	case *gogithub.CheckSuiteEvent:
		suite := e.GetCheckSuite()
		if e.GetAction() != "completed" || len(suite.PullRequests) == 0 {
			break
		}
		h, err := d.handlerFor(e.GetRepo(), deliveryID)
		if err != nil {
			return err
		}
		return h.HandleCheckSuite(ctx, suite.PullRequests[0].GetNumber(), suite.GetHeadSHA())

	case *gogithub.CheckRunEvent:
		run := e.GetCheckRun()
		app := run.GetApp()
		if e.GetAction() != "completed" || len(run.PullRequests) == 0 || !sections.IsNetlifyApp(app.GetSlug(), app.GetName()) {
			break
		}
		h, err := d.handlerFor(e.GetRepo(), deliveryID)
		if err != nil {
			return err
		}
		return h.HandleCheckRun(ctx, run.PullRequests[0].GetNumber(), run.GetHeadSHA())

	case *gogithub.InstallationEvent:
		switch e.GetAction() {
		case "created", "new_permissions_accepted", "unsuspend":
			return d.ensureLabels(ctx, e.Repositories, deliveryID)
		}

	case *gogithub.InstallationRepositoriesEvent:
		if e.GetAction() == "added" {
			return d.ensureLabels(ctx, e.RepositoriesAdded, deliveryID)
		}
	}

	entry.Debug("Ignoring event action")
	return nil
}

func (d *Dispatcher) handlerFor(repo *gogithub.Repository, deliveryID string) (EventHandler, error) {
	ref, err := github.RepoRefOf(repo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return d.factory(ref, deliveryID)
}

func (d *Dispatcher) ensureLabels(ctx context.Context, repos []*gogithub.Repository, deliveryID string) error {
	refs := make([]models.RepoRef, 0, len(repos))
	for _, repo := range repos {
		ref, err := github.RepoRefOf(repo)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		refs = append(refs, ref)
	}
	return EnsureLabelsForInstallation(ctx, refs, d.factory, deliveryID, d.concurrency)
}
