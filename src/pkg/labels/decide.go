package labels

import "github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"

// State is the snapshot of a pull request the decision is made on
type State struct {
	Lifecycle      models.Lifecycle
	IsDraft        bool
	HasWIPMarker   bool
	HeadSHA        string
	BaseBranch     string
	ExistingLabels []string
}

// StateOf builds the decision snapshot of pr
func StateOf(pr *models.PullRequest) State {
	return State{
		Lifecycle:      pr.Lifecycle(),
		IsDraft:        pr.Draft,
		HasWIPMarker:   IsWIP(pr.Title),
		HeadSHA:        pr.HeadSHA,
		BaseBranch:     pr.BaseRef,
		ExistingLabels: pr.Labels,
	}
}

// NeedsReviewStatus reports whether Decide will look at the review status
// for state. Callers use it to skip the review API calls.
func NeedsReviewStatus(state State) bool {
	return state.Lifecycle == models.LifecycleOpen && !state.IsDraft && !state.HasWIPMarker
}

// Decide computes the bot-managed labels a pull request should carry.
//
// Rules apply in order and the first match wins:
//   - merged: {merged}
//   - closed without merge: {}
//   - draft or WIP title: {wip}
//   - CI failing (only when includeCI): {approved, failingCI} if approved, else {failingCI}
//   - otherwise: the label of the review status
//
// ciFailed is nil when the CI outcome is unknown, which counts as not failing.
func Decide(state State, status ReviewStatus, ciFailed *bool, includeCI bool) []Key {
	switch state.Lifecycle {
	case models.LifecycleMerged:
		return []Key{KeyMerged}
	case models.LifecycleUnmerged:
		return []Key{}
	}

	if state.IsDraft || state.HasWIPMarker {
		return []Key{KeyWIP}
	}

	if status == "" {
		status = StatusReadyForReview
	}

	if includeCI && ciFailed != nil && *ciFailed {
		if status == StatusApproved {
			return []Key{KeyApproved, KeyFailingCI}
		}
		return []Key{KeyFailingCI}
	}

	return []Key{status.Key()}
}
