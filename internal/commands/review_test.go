package commands

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revmux/revmux/internal/app"
	"github.com/revmux/revmux/internal/git"
	"github.com/revmux/revmux/internal/loggy"
)

func runGit(t *testing.T, repoPath string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = repoPath
	require.NoError(t, cmd.Run(), "git %v failed", args)
}

func setupRepo(t *testing.T) string {
	t.Helper()

	repoPath := t.TempDir()
	runGit(t, repoPath, "init")
	runGit(t, repoPath, "config", "user.name", "Test User")
	runGit(t, repoPath, "config", "user.email", "test@example.com")
	runGit(t, repoPath, "commit", "--allow-empty", "-m", "Initial commit")
	return repoPath
}

func TestInferRepoFromOrigin(t *testing.T) {
	repoPath := setupRepo(t)
	runGit(t, repoPath, "remote", "add", "origin", "git@github.com:octo/widget.git")
	t.Chdir(repoPath)

	application := &app.App{Git: git.NewService(loggy.NewNoopLogger())}

	details, err := inferRepoFromOrigin(application)
	require.NoError(t, err)
	assert.Equal(t, "octo", details.owner)
	assert.Equal(t, "widget", details.repo)
}

func TestInferRepoFromOriginNoRepo(t *testing.T) {
	t.Chdir(t.TempDir())

	application := &app.App{Git: git.NewService(loggy.NewNoopLogger())}

	_, err := inferRepoFromOrigin(application)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no git repository")
}

func TestInferRepoFromOriginNonGitHubRemote(t *testing.T) {
	repoPath := setupRepo(t)
	runGit(t, repoPath, "remote", "add", "origin", "https://gitlab.com/octo/widget.git")
	t.Chdir(repoPath)

	application := &app.App{Git: git.NewService(loggy.NewNoopLogger())}

	_, err := inferRepoFromOrigin(application)
	require.Error(t, err)
}

func TestCheckBranches(t *testing.T) {
	repoPath := setupRepo(t)
	runGit(t, repoPath, "branch", "feature")

	svc := git.NewService(loggy.NewNoopLogger())
	require.NoError(t, svc.InitRepo(repoPath))

	branches, err := svc.ListBranches()
	require.NoError(t, err)
	require.NotEmpty(t, branches)

	require.NoError(t, checkBranches(svc, "feature"))

	err = checkBranches(svc, "feature", "no-such-branch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown branch "no-such-branch"`)
	assert.Contains(t, err.Error(), "feature")
}

func TestBlockingVerdict(t *testing.T) {
	assert.True(t, blockingVerdict("needs_review"))
	assert.True(t, blockingVerdict("critical_vulnerabilities"))
	assert.False(t, blockingVerdict("approve"))
	assert.False(t, blockingVerdict("abstain"))
}
