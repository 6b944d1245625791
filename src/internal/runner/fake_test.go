package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/github"
	"github.com/gh-nvat/pr-lifecycle-bot/src/pkg/models"
)

// fakeClient is an in-memory GitHubClient that records writes
type fakeClient struct {
	mu sync.Mutex

	prs         map[int]*models.PullRequest
	reviews     []models.Review
	permissions map[string]string
	required    int
	requiredErr error
	checkRuns   map[string][]models.CheckRun
	members     map[string]bool
	memberErr   error
	assignErr   error
	repoConfig  string
	labels      []models.Label

	errs map[string]error

	setLabels  map[int][]string
	bodies     map[int]string
	titles     map[int]string
	assignees  map[int][]string
	created    []models.Label
	updated    []models.Label
	checkedSHA []string
}

var _ github.GitHubClient = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{
		prs:         map[int]*models.PullRequest{},
		permissions: map[string]string{},
		checkRuns:   map[string][]models.CheckRun{},
		members:     map[string]bool{},
		errs:        map[string]error{},
		setLabels:   map[int][]string{},
		bodies:      map[int]string{},
		titles:      map[int]string{},
		assignees:   map[int][]string{},
	}
}

func (f *fakeClient) fail(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[method]
}

func (f *fakeClient) GetPR(ctx context.Context, number int) (*models.PullRequest, error) {
	if err := f.fail("GetPR"); err != nil {
		return nil, err
	}
	pr, ok := f.prs[number]
	if !ok {
		return nil, fmt.Errorf("pr %d: %w", number, github.ErrNotFound)
	}
	cp := *pr
	return &cp, nil
}

func (f *fakeClient) ListReviews(ctx context.Context, number int) ([]models.Review, error) {
	if err := f.fail("ListReviews"); err != nil {
		return nil, err
	}
	return f.reviews, nil
}

func (f *fakeClient) GetCollaboratorPermission(ctx context.Context, login string) (string, error) {
	if p, ok := f.permissions[login]; ok {
		return p, nil
	}
	return "read", nil
}

func (f *fakeClient) GetRequiredApprovalCount(ctx context.Context, branch string) (int, error) {
	return f.required, f.requiredErr
}

func (f *fakeClient) ListCheckRunsForRef(ctx context.Context, sha string) ([]models.CheckRun, error) {
	if err := f.fail("ListCheckRunsForRef"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkedSHA = append(f.checkedSHA, sha)
	return f.checkRuns[sha], nil
}

func (f *fakeClient) SetLabels(ctx context.Context, number int, labels []string) error {
	if err := f.fail("SetLabels"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLabels[number] = labels
	return nil
}

func (f *fakeClient) SetBody(ctx context.Context, number int, body string) error {
	if err := f.fail("SetBody"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[number] = body
	return nil
}

func (f *fakeClient) SetTitle(ctx context.Context, number int, title string) error {
	if err := f.fail("SetTitle"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles[number] = title
	return nil
}

func (f *fakeClient) AddAssignee(ctx context.Context, number int, login string) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignees[number] = append(f.assignees[number], login)
	return nil
}

func (f *fakeClient) IsOrgMember(ctx context.Context, login string) (bool, error) {
	if f.memberErr != nil {
		return false, f.memberErr
	}
	return f.members[login], nil
}

func (f *fakeClient) GetFileContent(ctx context.Context, path string) ([]byte, error) {
	if f.repoConfig == "" {
		return nil, fmt.Errorf("%s: %w", path, github.ErrNotFound)
	}
	return []byte(f.repoConfig), nil
}

func (f *fakeClient) ListLabels(ctx context.Context) ([]models.Label, error) {
	if err := f.fail("ListLabels"); err != nil {
		return nil, err
	}
	return f.labels, nil
}

func (f *fakeClient) CreateLabel(ctx context.Context, label models.Label) error {
	if err := f.fail("CreateLabel"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, label)
	return nil
}

func (f *fakeClient) UpdateLabel(ctx context.Context, label models.Label) error {
	if err := f.fail("UpdateLabel"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, label)
	return nil
}
