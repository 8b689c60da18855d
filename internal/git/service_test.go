package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revmux/revmux/internal/loggy"
)

// setupTempGitRepo creates a throwaway repository with one initial commit.
func setupTempGitRepo(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()

	runGit(t, tempDir, "init")
	runGit(t, tempDir, "config", "user.name", "Test User")
	runGit(t, tempDir, "config", "user.email", "test@example.com")

	createFile(t, tempDir, "README.md", "# Test Repository\n")
	runGit(t, tempDir, "add", "README.md")
	runGit(t, tempDir, "commit", "-m", "Initial commit")

	return tempDir
}

func runGit(t *testing.T, repoPath string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = repoPath
	out, err := cmd.Output()
	require.NoError(t, err, "git %v failed", args)
	return strings.TrimSpace(string(out))
}

func createFile(t *testing.T, repoPath, filename, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, filename), []byte(content), 0644))
}

func newTestService(t *testing.T, repoPath string) *Service {
	t.Helper()

	svc := NewService(loggy.NewNoopLogger())
	require.NoError(t, svc.InitRepo(repoPath))
	return svc
}

func TestHasGitRepo(t *testing.T) {
	repoPath := setupTempGitRepo(t)
	svc := NewService(loggy.NewNoopLogger())

	assert.True(t, svc.HasGitRepo(repoPath))
	assert.False(t, svc.HasGitRepo(t.TempDir()))
}

func TestOriginURL(t *testing.T) {
	repoPath := setupTempGitRepo(t)
	runGit(t, repoPath, "remote", "add", "origin", "https://github.com/octo/widget.git")

	svc := newTestService(t, repoPath)
	url, err := svc.OriginURL()
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/octo/widget.git", url)
}

func TestOriginURLNoRemote(t *testing.T) {
	repoPath := setupTempGitRepo(t)

	svc := newTestService(t, repoPath)
	_, err := svc.OriginURL()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "origin")
}

func TestGetDiffRequiresInit(t *testing.T) {
	svc := NewService(loggy.NewNoopLogger())

	_, err := svc.GetDiff(DiffRequest{DiffType: DiffTypeStaged})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestGetStagedDiff(t *testing.T) {
	repoPath := setupTempGitRepo(t)

	createFile(t, repoPath, "main.go", "package main\n\nfunc main() {}\n")
	runGit(t, repoPath, "add", "main.go")

	svc := newTestService(t, repoPath)
	result, err := svc.GetDiff(DiffRequest{DiffType: DiffTypeStaged})
	require.NoError(t, err)

	require.Equal(t, 1, result.FileCount())
	file := result.Files[0]
	assert.Equal(t, "main.go", file.Path)
	assert.Equal(t, ChangeTypeAdded, file.ChangeType)
	assert.Contains(t, file.Patch, "+package main")
	assert.Equal(t, "Go", file.Language)

	patch := result.UnifiedPatch()
	assert.Contains(t, patch, "--- a/main.go")
	assert.Contains(t, patch, "+++ b/main.go")
}

func TestGetStagedDiffIgnoresUnstaged(t *testing.T) {
	repoPath := setupTempGitRepo(t)

	createFile(t, repoPath, "untracked.txt", "not staged\n")

	svc := newTestService(t, repoPath)
	result, err := svc.GetDiff(DiffRequest{DiffType: DiffTypeStaged})
	require.NoError(t, err)

	assert.Zero(t, result.FileCount())
	assert.Empty(t, result.UnifiedPatch())
}

func TestGetCommitDiff(t *testing.T) {
	repoPath := setupTempGitRepo(t)

	createFile(t, repoPath, "feature.go", "package feature\n")
	runGit(t, repoPath, "add", "feature.go")
	runGit(t, repoPath, "commit", "-m", "Add feature")
	hash := runGit(t, repoPath, "rev-parse", "HEAD")

	svc := newTestService(t, repoPath)
	result, err := svc.GetDiff(DiffRequest{DiffType: DiffTypeCommit, CommitID: hash})
	require.NoError(t, err)

	require.Equal(t, 1, result.FileCount())
	assert.Equal(t, "feature.go", result.Files[0].Path)
	assert.Equal(t, ChangeTypeAdded, result.Files[0].ChangeType)

	require.NotNil(t, result.CommitInfo)
	assert.Equal(t, hash, result.CommitInfo.Hash)
	assert.Equal(t, "Test User", result.CommitInfo.Author)
	assert.Contains(t, result.CommitInfo.Message, "Add feature")
}

func TestGetCommitDiffAbbreviatedHash(t *testing.T) {
	repoPath := setupTempGitRepo(t)

	createFile(t, repoPath, "feature.go", "package feature\n")
	runGit(t, repoPath, "add", "feature.go")
	runGit(t, repoPath, "commit", "-m", "Add feature")
	hash := runGit(t, repoPath, "rev-parse", "HEAD")

	svc := newTestService(t, repoPath)
	result, err := svc.GetDiff(DiffRequest{DiffType: DiffTypeCommit, CommitID: hash[:8]})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FileCount())
}

func TestGetCommitDiffInitialCommit(t *testing.T) {
	repoPath := setupTempGitRepo(t)
	hash := runGit(t, repoPath, "rev-parse", "HEAD")

	svc := newTestService(t, repoPath)
	result, err := svc.GetDiff(DiffRequest{DiffType: DiffTypeCommit, CommitID: hash})
	require.NoError(t, err)

	// The initial commit diffs against the empty tree: files appear added.
	require.Equal(t, 1, result.FileCount())
	assert.Equal(t, ChangeTypeAdded, result.Files[0].ChangeType)
}

func TestGetBranchDiff(t *testing.T) {
	repoPath := setupTempGitRepo(t)
	defaultBranch := runGit(t, repoPath, "rev-parse", "--abbrev-ref", "HEAD")

	runGit(t, repoPath, "checkout", "-b", "feature")
	createFile(t, repoPath, "feature.go", "package feature\n")
	runGit(t, repoPath, "add", "feature.go")
	runGit(t, repoPath, "commit", "-m", "Add feature")

	svc := newTestService(t, repoPath)
	result, err := svc.GetDiff(DiffRequest{
		DiffType:  DiffTypeBranch,
		BaseRef:   defaultBranch,
		TargetRef: "feature",
	})
	require.NoError(t, err)

	require.Equal(t, 1, result.FileCount())
	assert.Equal(t, "feature.go", result.Files[0].Path)
	assert.Equal(t, ChangeTypeAdded, result.Files[0].ChangeType)
}

func TestGetBranchDiffUnknownBranch(t *testing.T) {
	repoPath := setupTempGitRepo(t)

	svc := newTestService(t, repoPath)
	_, err := svc.GetDiff(DiffRequest{
		DiffType:  DiffTypeBranch,
		BaseRef:   "does-not-exist",
		TargetRef: "also-missing",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestListBranches(t *testing.T) {
	repoPath := setupTempGitRepo(t)
	runGit(t, repoPath, "branch", "feature")

	svc := newTestService(t, repoPath)
	branches, err := svc.ListBranches()
	require.NoError(t, err)

	assert.Contains(t, branches, "feature")
	assert.Len(t, branches, 2)
}

func TestDiffResultLanguages(t *testing.T) {
	result := &DiffResult{Files: []ChangedFile{
		{Path: "a.go", Language: "Go"},
		{Path: "b.go", Language: "Go"},
		{Path: "c.py", Language: "Python"},
		{Path: "notes.txt"},
	}}

	assert.Equal(t, []string{"Go", "Python"}, result.Languages())
}
