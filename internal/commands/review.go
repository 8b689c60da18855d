// Package commands defines the CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/revmux/revmux/internal/app"
	"github.com/revmux/revmux/internal/git"
	"github.com/revmux/revmux/internal/github"
	"github.com/revmux/revmux/internal/loggy"
	"github.com/revmux/revmux/internal/report"
	"github.com/revmux/revmux/internal/review"
)

// ReviewCommand returns the CLI command that runs a multi-provider review.
func ReviewCommand() *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: "Review a change set with every configured AI provider",
		Description: "Dispatches the diff to all enabled providers in parallel, computes a\n" +
			"consensus verdict, and prints the merged findings. With no source flag,\n" +
			"staged changes in the current repository are reviewed.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "providers",
				Aliases: []string{"p"},
				Usage:   "Providers to dispatch to (default: all enabled)",
			},
			&cli.Float64Flag{
				Name:  "threshold",
				Usage: "Agreement ratio a verdict must reach (0.0-1.0]",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-provider timeout (e.g. 90s)",
			},
			&cli.StringFlag{
				Name:  "diff",
				Usage: "Read the diff from a file, or '-' for stdin",
			},
			&cli.BoolFlag{
				Name:    "staged",
				Aliases: []string{"s"},
				Usage:   "Review staged changes (default when no other source is given)",
			},
			&cli.StringFlag{
				Name:    "commit",
				Aliases: []string{"c"},
				Usage:   "Review the changes introduced by a commit",
			},
			&cli.StringFlag{
				Name:    "branch",
				Aliases: []string{"b"},
				Usage:   "Review a branch against the base branch",
			},
			&cli.StringFlag{
				Name:    "base-branch",
				Aliases: []string{"bb"},
				Usage:   "Base branch for branch reviews",
				Value:   "main",
			},
			&cli.IntFlag{
				Name:  "pr",
				Usage: "Review a GitHub pull request by number",
			},
			&cli.StringFlag{
				Name:  "owner",
				Usage: "GitHub repository owner (with --pr)",
			},
			&cli.StringFlag{
				Name:  "repo",
				Usage: "GitHub repository name (with --pr)",
			},
			&cli.BoolFlag{
				Name:  "post",
				Usage: "Post the result as a PR comment (with --pr)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit the aggregated result as JSON",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Disable colors and markdown styling",
			},
			&cli.BoolFlag{
				Name:  "fail",
				Usage: "Exit non-zero when the verdict is needs_review or worse",
			},
		},
		Action: reviewAction,
	}
}

func reviewAction(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	diff, rc, prRef, err := resolveChange(c, application)
	if err != nil {
		return err
	}

	if strings.TrimSpace(diff) == "" {
		return fmt.Errorf("no changes to review")
	}

	providers := c.StringSlice("providers")
	if len(providers) == 0 {
		providers = application.Config.DefaultProviders
	}

	result, err := application.Review.Run(c.Context, diff, rc, review.Options{
		Providers: providers,
		Threshold: c.Float64("threshold"),
		Timeout:   c.Duration("timeout"),
	})
	if err != nil {
		return err
	}

	if err := emitResult(c, result); err != nil {
		return err
	}

	if c.Bool("post") {
		if prRef == nil {
			return fmt.Errorf("--post requires --pr")
		}
		body := report.Markdown(result)
		if err := application.GitHub.PostResultComment(c.Context, prRef.owner, prRef.repo, prRef.number, body); err != nil {
			return err
		}
	}

	if c.Bool("fail") && blockingVerdict(result.Consensus.Verdict) {
		return cli.Exit(fmt.Sprintf("review verdict: %s", result.Consensus.Verdict), 1)
	}

	return nil
}

// prReference identifies the pull request a run reviewed, for posting back.
type prReference struct {
	owner  string
	repo   string
	number int
}

// resolveChange picks the diff source. Precedence: explicit diff input,
// then a pull request, then commit, branch, and finally staged changes.
func resolveChange(c *cli.Context, application *app.App) (string, *review.Context, *prReference, error) {
	if path := c.String("diff"); path != "" {
		diff, err := readDiffInput(path)
		if err != nil {
			return "", nil, nil, err
		}
		return diff, &review.Context{Platform: "local"}, nil, nil
	}

	if number := c.Int("pr"); number > 0 {
		owner, repo := c.String("owner"), c.String("repo")
		if owner == "" || repo == "" {
			inferred, err := inferRepoFromOrigin(application)
			if err != nil {
				return "", nil, nil, fmt.Errorf("--pr needs --owner and --repo (could not infer them: %w)", err)
			}
			owner, repo = inferred.owner, inferred.repo
			loggy.Debug("inferred repository from origin remote", "owner", owner, "repo", repo)
		}

		change, err := application.GitHub.FetchPullRequest(c.Context, owner, repo, number)
		if err != nil {
			return "", nil, nil, err
		}

		return change.Diff, change.Context(), &prReference{owner: owner, repo: repo, number: number}, nil
	}

	return localChange(c, application)
}

// repoDetails identifies a GitHub repository.
type repoDetails struct {
	owner string
	repo  string
}

// inferRepoFromOrigin derives owner/repo from the working directory's
// origin remote, so --pr can be used without --owner/--repo inside a clone.
func inferRepoFromOrigin(application *app.App) (repoDetails, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return repoDetails{}, fmt.Errorf("getting working directory: %w", err)
	}

	if !application.Git.HasGitRepo(cwd) {
		return repoDetails{}, fmt.Errorf("no git repository in %s", cwd)
	}
	if err := application.Git.InitRepo(cwd); err != nil {
		return repoDetails{}, err
	}

	originURL, err := application.Git.OriginURL()
	if err != nil {
		return repoDetails{}, err
	}

	owner, repo, err := github.ExtractRepoDetailsFromURL(originURL)
	if err != nil {
		return repoDetails{}, err
	}

	return repoDetails{owner: owner, repo: repo}, nil
}

// localChange extracts a diff from the repository in the working directory.
func localChange(c *cli.Context, application *app.App) (string, *review.Context, *prReference, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, nil, fmt.Errorf("getting working directory: %w", err)
	}

	if err := application.Git.InitRepo(cwd); err != nil {
		return "", nil, nil, err
	}

	req := git.DiffRequest{DiffType: git.DiffTypeStaged}
	rc := &review.Context{
		RepoName: filepath.Base(cwd),
		Platform: "local",
	}

	switch {
	case c.String("commit") != "":
		req = git.DiffRequest{DiffType: git.DiffTypeCommit, CommitID: c.String("commit")}
	case c.String("branch") != "":
		if err := checkBranches(application.Git, c.String("base-branch"), c.String("branch")); err != nil {
			return "", nil, nil, err
		}
		req = git.DiffRequest{
			DiffType:  git.DiffTypeBranch,
			BaseRef:   c.String("base-branch"),
			TargetRef: c.String("branch"),
		}
		rc.TargetBranch = c.String("base-branch")
	}

	result, err := application.Git.GetDiff(req)
	if err != nil {
		return "", nil, nil, err
	}

	rc.FileCount = result.FileCount()
	if result.CommitInfo != nil {
		rc.PRTitle = strings.SplitN(strings.TrimSpace(result.CommitInfo.Message), "\n", 2)[0]
	}

	loggy.Debug("local diff extracted",
		"type", req.DiffType,
		"files", result.FileCount(),
		"languages", result.Languages())

	return result.UnifiedPatch(), rc, nil, nil
}

// checkBranches verifies both sides of a branch diff exist locally, so an
// unknown name fails with the available branches instead of a plumbing error.
func checkBranches(gitService *git.Service, names ...string) error {
	branches, err := gitService.ListBranches()
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(branches))
	for _, b := range branches {
		known[b] = true
	}

	for _, name := range names {
		if !known[name] {
			return fmt.Errorf("unknown branch %q (local branches: %s)", name, strings.Join(branches, ", "))
		}
	}

	return nil
}

func readDiffInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading diff from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading diff file: %w", err)
	}
	return string(data), nil
}

func emitResult(c *cli.Context, result *review.AggregatedResult) error {
	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	renderer := report.NewRenderer(os.Stdout, c.Bool("plain"))
	return renderer.Render(result)
}

// blockingVerdict reports whether a verdict should fail a gated run.
func blockingVerdict(v review.Verdict) bool {
	return v == review.VerdictNeedsReview || v == review.VerdictCriticalVulnerabilities
}
