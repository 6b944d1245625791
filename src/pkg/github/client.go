package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var logger = log.WithField("package", "github")

// GitHubClient defines the GitHub API operations the bot needs on one repository
type GitHubClient interface {
	// GetPR retrieves pull request information
	GetPR(ctx context.Context, number int) (*models.PullRequest, error)
	// ListReviews retrieves all reviews of a pull request
	ListReviews(ctx context.Context, number int) ([]models.Review, error)
	// GetCollaboratorPermission returns the repository permission of a user
	GetCollaboratorPermission(ctx context.Context, login string) (string, error)
	// GetRequiredApprovalCount returns the approvals branch protection requires
	GetRequiredApprovalCount(ctx context.Context, branch string) (int, error)
	// ListCheckRunsForRef retrieves the check runs of a commit
	ListCheckRunsForRef(ctx context.Context, sha string) ([]models.CheckRun, error)
	// SetLabels replaces every label of a pull request
	SetLabels(ctx context.Context, number int, labels []string) error
	// SetBody updates the body of a pull request
	SetBody(ctx context.Context, number int, body string) error
	// SetTitle updates the title of a pull request
	SetTitle(ctx context.Context, number int, title string) error
	// AddAssignee assigns a user to a pull request
	AddAssignee(ctx context.Context, number int, login string) error
	// IsOrgMember reports whether a user belongs to the repository owner org
	IsOrgMember(ctx context.Context, login string) (bool, error)
	// GetFileContent reads a file from the default branch
	GetFileContent(ctx context.Context, path string) ([]byte, error)
	// ListLabels retrieves the labels defined in the repository
	ListLabels(ctx context.Context) ([]models.Label, error)
	// CreateLabel defines a new repository label
	CreateLabel(ctx context.Context, label models.Label) error
	// UpdateLabel changes an existing repository label
	UpdateLabel(ctx context.Context, label models.Label) error
}

// ErrNotFound is returned when the API answers 404
var ErrNotFound = errors.New("not found")

// Client handles GitHub API interactions using go-github
type Client struct {
	client  *github.Client
	limiter *rate.Limiter
}

// RepoClient is a Client bound to one repository
type RepoClient struct {
	*Client
	owner string
	repo  string
}

// Ensure RepoClient implements GitHubClient
var _ GitHubClient = (*RepoClient)(nil)

// NewClient creates a new GitHub client authenticated with token.
// baseURL targets GitHub Enterprise when set; requestsPerSecond throttles calls.
func NewClient(token, baseURL string, requestsPerSecond float64) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token not found. Set GH_TOKEN or GITHUB_TOKEN environment variable")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to set GitHub base URL: %w", err)
		}
	}

	return newClient(client, requestsPerSecond), nil
}

func newClient(client *github.Client, requestsPerSecond float64) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// ForRepo binds the client to owner/repo
func (c *Client) ForRepo(repo models.RepoRef) *RepoClient {
	return &RepoClient{Client: c, owner: repo.Owner, repo: repo.Name}
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// GetPR retrieves pull request information
func (c *RepoClient) GetPR(ctx context.Context, number int) (*models.PullRequest, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	pr, _, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get PR: %w", err)
	}

	return ToPullRequest(pr), nil
}

// ListReviews retrieves all reviews of a pull request
func (c *RepoClient) ListReviews(ctx context.Context, number int) ([]models.Review, error) {
	opts := &github.ListOptions{PerPage: 100}

	var allReviews []models.Review
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		reviews, resp, err := c.client.PullRequests.ListReviews(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews: %w", err)
		}

		for _, r := range reviews {
			allReviews = append(allReviews, models.Review{
				ID:            r.GetID(),
				ReviewerID:    r.GetUser().GetID(),
				ReviewerLogin: r.GetUser().GetLogin(),
				State:         models.ReviewState(r.GetState()),
				SubmittedAt:   r.GetSubmittedAt().Time,
				CommitSHA:     r.GetCommitID(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allReviews, nil
}

// GetCollaboratorPermission returns the repository permission of a user
func (c *RepoClient) GetCollaboratorPermission(ctx context.Context, login string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	level, _, err := c.client.Repositories.GetPermissionLevel(ctx, c.owner, c.repo, login)
	if err != nil {
		return "", fmt.Errorf("failed to get permission level: %w", err)
	}
	return level.GetPermission(), nil
}

// GetRequiredApprovalCount returns the approvals branch protection requires.
// An unprotected branch requires none.
func (c *RepoClient) GetRequiredApprovalCount(ctx context.Context, branch string) (int, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	protection, _, err := c.client.Repositories.GetBranchProtection(ctx, c.owner, c.repo, branch)
	if err != nil {
		if errors.Is(err, github.ErrBranchNotProtected) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get branch protection: %w", err)
	}

	reviews := protection.GetRequiredPullRequestReviews()
	if reviews == nil {
		return 0, nil
	}
	return reviews.RequiredApprovingReviewCount, nil
}

// ListCheckRunsForRef retrieves the check runs of a commit
func (c *RepoClient) ListCheckRunsForRef(ctx context.Context, sha string) ([]models.CheckRun, error) {
	opts := &github.ListCheckRunsOptions{ListOptions: github.ListOptions{PerPage: 100}}

	var allRuns []models.CheckRun
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		result, resp, err := c.client.Checks.ListCheckRunsForRef(ctx, c.owner, c.repo, sha, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list check runs: %w", err)
		}

		for _, run := range result.CheckRuns {
			allRuns = append(allRuns, models.CheckRun{
				Name:       run.GetName(),
				AppSlug:    run.GetApp().GetSlug(),
				AppName:    run.GetApp().GetName(),
				Status:     run.GetStatus(),
				Conclusion: run.GetConclusion(),
				DetailsURL: run.GetDetailsURL(),
				HTMLURL:    run.GetHTMLURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRuns, nil
}

// SetLabels replaces every label of a pull request
func (c *RepoClient) SetLabels(ctx context.Context, number int, labels []string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if labels == nil {
		labels = []string{}
	}
	_, _, err := c.client.Issues.ReplaceLabelsForIssue(ctx, c.owner, c.repo, number, labels)
	if err != nil {
		return fmt.Errorf("failed to set labels: %w", err)
	}
	logger.WithField("pr", number).WithField("labels", labels).Debug("Replaced labels")
	return nil
}

// SetBody updates the body of a pull request
func (c *RepoClient) SetBody(ctx context.Context, number int, body string) error {
	return c.editPR(ctx, number, &github.PullRequest{Body: github.String(body)})
}

// SetTitle updates the title of a pull request
func (c *RepoClient) SetTitle(ctx context.Context, number int, title string) error {
	return c.editPR(ctx, number, &github.PullRequest{Title: github.String(title)})
}

func (c *RepoClient) editPR(ctx context.Context, number int, update *github.PullRequest) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, number, update)
	if err != nil {
		return fmt.Errorf("failed to update PR: %w", err)
	}
	return nil
}

// AddAssignee assigns a user to a pull request
func (c *RepoClient) AddAssignee(ctx context.Context, number int, login string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, _, err := c.client.Issues.AddAssignees(ctx, c.owner, c.repo, number, []string{login})
	if err != nil {
		return fmt.Errorf("failed to add assignee: %w", err)
	}
	return nil
}

// IsOrgMember reports whether a user belongs to the repository owner org
func (c *RepoClient) IsOrgMember(ctx context.Context, login string) (bool, error) {
	if err := c.wait(ctx); err != nil {
		return false, err
	}
	member, _, err := c.client.Organizations.IsMember(ctx, c.owner, login)
	if err != nil {
		return false, fmt.Errorf("failed to check org membership: %w", err)
	}
	return member, nil
}

// GetFileContent reads a file from the default branch.
// Returns ErrNotFound when the file does not exist.
func (c *RepoClient) GetFileContent(ctx context.Context, path string) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	file, _, resp, err := c.client.Repositories.GetContents(ctx, c.owner, c.repo, path, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contents: %w", err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode contents: %w", err)
	}
	return []byte(content), nil
}

// ListLabels retrieves the labels defined in the repository
func (c *RepoClient) ListLabels(ctx context.Context) ([]models.Label, error) {
	opts := &github.ListOptions{PerPage: 100}

	var allLabels []models.Label
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		labels, resp, err := c.client.Issues.ListLabels(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}

		for _, l := range labels {
			allLabels = append(allLabels, models.Label{
				Name:        l.GetName(),
				Color:       l.GetColor(),
				Description: l.GetDescription(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allLabels, nil
}

// CreateLabel defines a new repository label
func (c *RepoClient) CreateLabel(ctx context.Context, label models.Label) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, _, err := c.client.Issues.CreateLabel(ctx, c.owner, c.repo, toGitHubLabel(label))
	if err != nil {
		return fmt.Errorf("failed to create label %q: %w", label.Name, err)
	}
	return nil
}

// UpdateLabel changes an existing repository label
func (c *RepoClient) UpdateLabel(ctx context.Context, label models.Label) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, _, err := c.client.Issues.EditLabel(ctx, c.owner, c.repo, label.Name, toGitHubLabel(label))
	if err != nil {
		return fmt.Errorf("failed to update label %q: %w", label.Name, err)
	}
	return nil
}

func toGitHubLabel(label models.Label) *github.Label {
	l := &github.Label{
		Name:  github.String(label.Name),
		Color: github.String(label.Color),
	}
	if label.Description != "" {
		l.Description = github.String(label.Description)
	}
	return l
}
