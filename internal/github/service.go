package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/revmux/revmux/internal/config"
	"github.com/revmux/revmux/internal/loggy"
	"github.com/revmux/revmux/internal/review"
)

// PullRequestChange is a pull request's diff plus the metadata reviewers
// want in their prompt context.
type PullRequestChange struct {
	Owner       string
	Repo        string
	Number      int
	Title       string
	Description string
	BaseBranch  string
	HeadSHA     string
	FileCount   int
	Diff        string
}

// Context converts the change metadata to reviewer context.
func (p *PullRequestChange) Context() *review.Context {
	return &review.Context{
		RepoName:      fmt.Sprintf("%s/%s", p.Owner, p.Repo),
		PRTitle:       p.Title,
		PRDescription: p.Description,
		TargetBranch:  p.BaseBranch,
		FileCount:     p.FileCount,
		Platform:      "github",
	}
}

// Service provides the GitHub side of a review run.
type Service struct {
	client *Client
	logger *loggy.Logger
}

// NewService creates a new GitHub service.
func NewService(cfg config.GitHubConfig, logger *loggy.Logger) *Service {
	return &Service{
		client: NewClient(cfg),
		logger: logger,
	}
}

// FetchPullRequest retrieves a pull request's diff and metadata in one go.
func (s *Service) FetchPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequestChange, error) {
	pr, err := s.client.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("getting pull request: %w", err)
	}

	diff, err := s.client.GetPullRequestDiff(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("getting pull request diff: %w", err)
	}

	change := &PullRequestChange{
		Owner:       owner,
		Repo:        repo,
		Number:      number,
		Title:       pr.GetTitle(),
		Description: pr.GetBody(),
		BaseBranch:  pr.GetBase().GetRef(),
		HeadSHA:     pr.GetHead().GetSHA(),
		FileCount:   pr.GetChangedFiles(),
		Diff:        diff,
	}

	s.logger.Debug("fetched pull request",
		"repo", fmt.Sprintf("%s/%s", owner, repo),
		"number", number,
		"files", change.FileCount,
		"diff_bytes", len(diff))

	return change, nil
}

// PostResultComment publishes a rendered review result as a PR comment.
func (s *Service) PostResultComment(ctx context.Context, owner, repo string, number int, body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("empty comment body")
	}

	if err := s.client.CreateIssueComment(ctx, owner, repo, number, body); err != nil {
		return fmt.Errorf("posting comment: %w", err)
	}

	s.logger.Info("posted review comment",
		"pr_url", fmt.Sprintf("https://github.com/%s/%s/pull/%d", owner, repo, number))

	return nil
}

// ExtractRepoDetailsFromURL extracts owner and repo from a Git remote URL.
// HTTPS and SSH forms are supported, with or without a .git suffix.
func ExtractRepoDetailsFromURL(gitURL string) (owner, repo string, err error) {
	if gitURL == "" {
		return "", "", fmt.Errorf("empty Git URL")
	}

	gitURL = strings.TrimSuffix(gitURL, ".git")

	var rest string
	switch {
	case strings.Contains(gitURL, "github.com/"):
		parts := strings.SplitN(gitURL, "github.com/", 2)
		rest = parts[1]
	case strings.Contains(gitURL, "github.com:"):
		parts := strings.SplitN(gitURL, "github.com:", 2)
		rest = parts[1]
	default:
		return "", "", fmt.Errorf("unsupported Git URL format: %s", gitURL)
	}

	ownerRepo := strings.Split(rest, "/")
	if len(ownerRepo) < 2 || ownerRepo[0] == "" || ownerRepo[1] == "" {
		return "", "", fmt.Errorf("could not extract owner/repo from URL: %s", gitURL)
	}

	return ownerRepo[0], ownerRepo[1], nil
}
