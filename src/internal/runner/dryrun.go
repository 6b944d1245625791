package runner

import (
	"context"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/diff"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/github"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"

	log "github.com/sirupsen/logrus"
)

// dryRunClient reads through to GitHub and logs every write instead of sending it
type dryRunClient struct {
	github.GitHubClient
	differ *diff.Differ
	log    *log.Entry
}

// make dryRunClient implement GitHubClient
var _ github.GitHubClient = (*dryRunClient)(nil)

func newDryRunClient(client github.GitHubClient, entry *log.Entry) *dryRunClient {
	return &dryRunClient{
		GitHubClient: client,
		differ:       diff.NewDiffer(),
		log:          entry.WithField("dry_run", true),
	}
}

func (c *dryRunClient) SetLabels(ctx context.Context, number int, labels []string) error {
	c.log.WithField("pr", number).WithField("labels", labels).Info("Would replace labels")
	return nil
}

// SetBody logs a unified diff of the body change
func (c *dryRunClient) SetBody(ctx context.Context, number int, body string) error {
	entry := c.log.WithField("pr", number)

	current, err := c.GitHubClient.GetPR(ctx, number)
	if err != nil {
		entry.WithField("error", err).Warn("Failed to read current body, cannot diff")
		entry.Info("Would update body")
		return nil
	}

	bodyDiff, err := c.differ.Diff(current.Body, body)
	if err != nil {
		return err
	}
	added, deleted, _ := diff.CalcLineChanges(bodyDiff)
	entry.WithField("added", added).WithField("deleted", deleted).Info("Would update body")
	entry.Debug(bodyDiff)
	return nil
}

func (c *dryRunClient) SetTitle(ctx context.Context, number int, title string) error {
	c.log.WithField("pr", number).WithField("title", title).Info("Would update title")
	return nil
}

func (c *dryRunClient) AddAssignee(ctx context.Context, number int, login string) error {
	c.log.WithField("pr", number).WithField("user", login).Info("Would add assignee")
	return nil
}

func (c *dryRunClient) CreateLabel(ctx context.Context, label models.Label) error {
	c.log.WithField("label", label.Name).WithField("color", label.Color).Info("Would create label")
	return nil
}

func (c *dryRunClient) UpdateLabel(ctx context.Context, label models.Label) error {
	c.log.WithField("label", label.Name).WithField("color", label.Color).Info("Would update label")
	return nil
}
