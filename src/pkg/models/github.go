package models

import (
	"fmt"
	"time"
)

// Lifecycle is the open/closed/merged state of a pull request
type Lifecycle string

const (
	LifecycleOpen     Lifecycle = "open"
	LifecycleMerged   Lifecycle = "closed-merged"
	LifecycleUnmerged Lifecycle = "closed-unmerged"
)

// ReviewState is the state GitHub reports for a submitted review
type ReviewState string

const (
	ReviewStateApproved         ReviewState = "APPROVED"
	ReviewStateChangesRequested ReviewState = "CHANGES_REQUESTED"
)

// RepoRef identifies a repository by owner and name
type RepoRef struct {
	Owner string
	Name  string
}

func (r RepoRef) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// PullRequest represents GitHub pull request information
type PullRequest struct {
	Number   int
	Title    string
	Body     string
	Author   string
	BaseRef  string
	HeadSHA  string
	State    string // "open" or "closed"
	Draft    bool
	MergedAt *time.Time
	Labels   []string
}

// Lifecycle derives the lifecycle from the state and merge timestamp.
// A closed PR is merged iff it carries a merge timestamp.
func (p *PullRequest) Lifecycle() Lifecycle {
	if p.State != "closed" {
		return LifecycleOpen
	}
	if p.MergedAt != nil {
		return LifecycleMerged
	}
	return LifecycleUnmerged
}

// Review represents a submitted pull request review
type Review struct {
	ID            int64
	ReviewerID    int64
	ReviewerLogin string
	State         ReviewState
	SubmittedAt   time.Time
	CommitSHA     string
}

// CheckRun represents a check run reported against a commit
type CheckRun struct {
	Name       string
	AppSlug    string
	AppName    string
	Status     string
	Conclusion string
	DetailsURL string
	HTMLURL    string
}

// Label represents a repository label
type Label struct {
	Name        string
	Color       string
	Description string
}
