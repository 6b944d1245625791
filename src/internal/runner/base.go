package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/config"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/github"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/labels"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/sections"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/template"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/trace"

	log "github.com/sirupsen/logrus"
)

var logger *log.Entry = log.WithFields(log.Fields{
	"package": "runner",
})

// Runner handles one delivery for one repository. It keeps no state between
// deliveries; every label write is recomputed from a fresh snapshot.
type Runner struct {
	client  github.GitHubClient
	repo    models.RepoRef
	options *Options

	catalog    *labels.Catalog
	classifier *labels.Classifier
	loader     *config.Loader
	preview    *sections.PreviewSection

	log *log.Entry
}

// make Runner implement EventHandler
var _ EventHandler = (*Runner)(nil)

// SyncResult describes one label computation
type SyncResult struct {
	Keys    []labels.Key
	Current []string
	Desired []string
	Changed bool
}

func NewRunner(client github.GitHubClient, repo models.RepoRef, options *Options) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("GitHub client is not initialized")
	}
	if options == nil {
		options = &Options{}
	}

	entry := logger.WithField("repo", repo.String())
	if options.DeliveryID != "" {
		entry = entry.WithField("delivery", options.DeliveryID)
	}

	if options.DryRun {
		client = newDryRunClient(client, entry)
	}

	return &Runner{
		client:     client,
		repo:       repo,
		options:    options,
		catalog:    labels.Default,
		classifier: labels.NewClassifier(client),
		loader:     config.NewLoader(),
		preview:    sections.NewPreviewSection(template.NewRenderer(), options.PreviewTemplate),
		log:        entry,
	}, nil
}

// repoConfig reads the repository config; a missing or broken file yields defaults
func (r *Runner) repoConfig(ctx context.Context) *config.RepoConfig {
	data, err := r.client.GetFileContent(ctx, config.REPO_CONFIG_FILENAME)
	if err != nil {
		if !errors.Is(err, github.ErrNotFound) {
			r.log.WithField("error", err).Warn("Failed to read repo config, using defaults")
		}
		return config.DefaultRepoConfig()
	}

	cfg, err := r.loader.ParseRepoConfig(data)
	if err != nil {
		r.log.WithField("error", err).Warn("Invalid repo config, using defaults")
		return config.DefaultRepoConfig()
	}
	return cfg
}

// RequiredLabels computes the catalog keys pr should carry. Review and CI
// lookups only happen when the decision depends on them. ciSHA overrides the
// commit whose checks are inspected.
func (r *Runner) RequiredLabels(ctx context.Context, pr *models.PullRequest, ciSHA string) ([]labels.Key, error) {
	state := labels.StateOf(pr)
	if !labels.NeedsReviewStatus(state) {
		return labels.Decide(state, "", nil, false), nil
	}

	status, err := r.classifier.Status(ctx, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to compute review status: %w", err)
	}

	includeCI := r.repoConfig(ctx).Enabled(config.FlagFailingCI)
	var ciFailed *bool
	if includeCI {
		if ciSHA == "" {
			ciSHA = pr.HeadSHA
		}
		failed, err := r.hasFailingCI(ctx, ciSHA)
		if err != nil {
			return nil, err
		}
		ciFailed = &failed
	}

	return labels.Decide(state, status, ciFailed, includeCI), nil
}

func (r *Runner) hasFailingCI(ctx context.Context, sha string) (bool, error) {
	runs, err := r.client.ListCheckRunsForRef(ctx, sha)
	if err != nil {
		return false, fmt.Errorf("failed to list check runs for %s: %w", github.ShortSHA(sha), err)
	}
	return labels.HasFailingCI(runs), nil
}

// SyncLabels recomputes the labels of pr and replaces the bot-managed ones,
// keeping foreign labels. Nothing is written when the set is unchanged.
func (r *Runner) SyncLabels(ctx context.Context, pr *models.PullRequest, ciSHA string) (*SyncResult, error) {
	ctx, span := trace.StartSpan(ctx, "SyncLabels")
	defer span.End()

	keys, err := r.RequiredLabels(ctx, pr, ciSHA)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		Keys:    keys,
		Current: pr.Labels,
		Desired: r.catalog.Apply(pr.Labels, keys),
	}
	result.Changed = !sameLabels(result.Current, result.Desired)

	entry := r.log.WithField("pr", pr.Number).WithField("keys", keys)
	if !result.Changed {
		entry.Info("SyncLabels: labels already up to date")
		return result, nil
	}

	if err := r.client.SetLabels(ctx, pr.Number, result.Desired); err != nil {
		return nil, err
	}
	entry.WithField("labels", result.Desired).Info("SyncLabels: labels replaced")
	return result, nil
}

// autoAssign assigns login to pr when they belong to the org. Failures are
// logged and dropped; assignment must never block labelling.
func (r *Runner) autoAssign(ctx context.Context, pr *models.PullRequest, login string) {
	entry := r.log.WithField("pr", pr.Number).WithField("user", login)
	if login == "" || login == pr.Author {
		return
	}

	member, err := r.client.IsOrgMember(ctx, login)
	if err != nil {
		entry.WithField("error", err).Warn("Failed to check org membership, skipping assignment")
		return
	}
	if !member {
		entry.Debug("Not an org member, skipping assignment")
		return
	}

	if err := r.client.AddAssignee(ctx, pr.Number, login); err != nil {
		entry.WithField("error", err).Warn("Failed to add assignee")
		return
	}
	entry.Info("Assigned user")
}

func sameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
