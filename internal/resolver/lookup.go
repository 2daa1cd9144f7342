package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v59/github"
	"github.com/quantmind-br/repozip/internal/domain"
	gitclient "github.com/quantmind-br/repozip/internal/git"
)

// GitHubLookup reads default_branch from the GitHub REST API
type GitHubLookup struct {
	client *github.Client
}

// GitHubLookupOptions contains options for creating a GitHubLookup
type GitHubLookupOptions struct {
	HTTPClient *http.Client
	BaseURL    string // defaults to https://api.github.com/
	UserAgent  string
}

// NewGitHubLookup creates a new GitHubLookup
func NewGitHubLookup(opts GitHubLookupOptions) (*GitHubLookup, error) {
	client := github.NewClient(opts.HTTPClient)

	if opts.BaseURL != "" {
		baseURL, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
		}
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		client.BaseURL = baseURL
	}
	if opts.UserAgent != "" {
		client.UserAgent = opts.UserAgent
	}

	return &GitHubLookup{client: client}, nil
}

func (l *GitHubLookup) Name() string {
	return "github-api"
}

// DefaultBranch implements domain.BranchLookup
func (l *GitHubLookup) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	repository, _, err := l.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		var errorResponse *github.ErrorResponse
		if errors.As(err, &errorResponse) && errorResponse.Response != nil {
			return "", fmt.Errorf("repository lookup returned %d: %w", errorResponse.Response.StatusCode, err)
		}
		return "", fmt.Errorf("repository lookup failed: %w", err)
	}

	branch := repository.GetDefaultBranch()
	if branch == "" {
		return "", fmt.Errorf("repository %s/%s reports no default branch", owner, repo)
	}
	return branch, nil
}

// RemoteLookup asks the git remote which branch HEAD points to
type RemoteLookup struct {
	client  gitclient.Client
	baseURL string
}

// NewRemoteLookup creates a RemoteLookup for repositories under baseURL
// (e.g. https://github.com)
func NewRemoteLookup(client gitclient.Client, baseURL string) *RemoteLookup {
	if client == nil {
		client = gitclient.NewClient()
	}
	return &RemoteLookup{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (l *RemoteLookup) Name() string {
	return "ls-remote"
}

// DefaultBranch implements domain.BranchLookup
func (l *RemoteLookup) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	refs, err := l.client.ListRemoteContext(ctx, fmt.Sprintf("%s/%s/%s.git", l.baseURL, owner, repo))
	if err != nil {
		return "", err
	}
	return gitclient.HeadBranch(refs)
}

var (
	_ domain.BranchLookup = (*GitHubLookup)(nil)
	_ domain.BranchLookup = (*RemoteLookup)(nil)
)
