// Package github fetches pull request diffs and posts review results back.
package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v59/github"
	"golang.org/x/oauth2"

	"github.com/revmux/revmux/internal/config"
)

// Client wraps the GitHub API for the operations a review run needs.
type Client struct {
	client *github.Client
}

// NewClient creates a GitHub API client from config. An enterprise API URL
// is honored when set; a failure to build the enterprise client falls back
// to the public endpoint.
func NewClient(cfg config.GitHubConfig) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = timeout

	var client *github.Client
	if cfg.APIURL != "" && cfg.APIURL != "https://api.github.com" {
		var err error
		client, err = github.NewEnterpriseClient(cfg.APIURL, cfg.APIURL, tc)
		if err != nil {
			client = github.NewClient(tc)
		}
	} else {
		client = github.NewClient(tc)
	}

	return &Client{client: client}
}

// GetPullRequest fetches a pull request's metadata.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("owner and repo must be provided")
	}

	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	return pr, err
}

// GetPullRequestDiff fetches the unified diff of a pull request.
func (c *Client) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	if owner == "" || repo == "" {
		return "", fmt.Errorf("owner and repo must be provided")
	}

	diff, _, err := c.client.PullRequests.GetRaw(ctx, owner, repo, number,
		github.RawOptions{Type: github.Diff})
	return diff, err
}

// CreateIssueComment posts a general comment on a pull request.
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number,
		&github.IssueComment{Body: github.String(body)})
	return err
}

// ValidateRepoAccess checks whether the token can see the repository.
func (c *Client) ValidateRepoAccess(ctx context.Context, owner, repo string) error {
	_, resp, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return fmt.Errorf("repository %s/%s not found or no access", owner, repo)
		}
		return fmt.Errorf("validating repository access: %w", err)
	}

	return nil
}
