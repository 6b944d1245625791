package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
	"golang.org/x/sync/errgroup"
)

// EnsureLabels creates missing catalog labels and fixes the colour of
// existing ones. Labels are processed one at a time; the first failure stops.
func (r *Runner) EnsureLabels(ctx context.Context) error {
	existing, err := r.client.ListLabels(ctx)
	if err != nil {
		return err
	}

	byName := make(map[string]models.Label, len(existing))
	for _, l := range existing {
		byName[l.Name] = l
	}

	for _, entry := range r.catalog.All() {
		want := entry.Model()
		have, ok := byName[want.Name]
		switch {
		case !ok:
			if err := r.client.CreateLabel(ctx, want); err != nil {
				return err
			}
			r.log.WithField("label", want.Name).Info("Created label")
		case !strings.EqualFold(strings.TrimPrefix(have.Color, "#"), strings.TrimPrefix(want.Color, "#")):
			if err := r.client.UpdateLabel(ctx, want); err != nil {
				return err
			}
			r.log.WithField("label", want.Name).Info("Updated label colour")
		}
	}
	return nil
}

// EnsureLabelsForInstallation bootstraps the catalog in every repository.
// Repositories run concurrently up to limit; a failure in one does not stop
// the others and the first error is returned.
func EnsureLabelsForInstallation(ctx context.Context, repos []models.RepoRef, factory HandlerFactory, deliveryID string, limit int) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			h, err := factory(repo, deliveryID)
			if err != nil {
				return err
			}
			if err := h.EnsureLabels(ctx); err != nil {
				logger.WithField("repo", repo.String()).WithField("error", err).Error("Failed to ensure labels")
				return fmt.Errorf("failed to ensure labels in %s: %w", repo, err)
			}
			return nil
		})
	}
	return g.Wait()
}
