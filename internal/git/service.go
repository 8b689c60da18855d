package git

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/revmux/revmux/internal/loggy"
)

// Service extracts diffs from a local Git repository.
type Service struct {
	logger *loggy.Logger
	repo   *git.Repository
}

// NewService creates a new Git service.
func NewService(logger *loggy.Logger) *Service {
	return &Service{logger: logger}
}

// InitRepo opens the repository rooted at repoPath.
func (s *Service) InitRepo(repoPath string) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("opening git repo: %w", err)
	}

	s.repo = repo
	return nil
}

// HasGitRepo reports whether path contains a valid Git repository.
func (s *Service) HasGitRepo(path string) bool {
	_, err := git.PlainOpen(path)
	return err == nil
}

func (s *Service) ensureRepo() error {
	if s.repo == nil {
		return fmt.Errorf("git repository not initialized")
	}
	return nil
}

// GetDiff extracts the diff described by req.
func (s *Service) GetDiff(req DiffRequest) (*DiffResult, error) {
	if err := s.ensureRepo(); err != nil {
		return nil, err
	}

	switch req.DiffType {
	case DiffTypeStaged:
		return s.getStagedDiff()
	case DiffTypeCommit:
		return s.getCommitDiff(req.CommitID)
	case DiffTypeBranch:
		return s.getBranchDiff(req.BaseRef, req.TargetRef)
	default:
		return nil, fmt.Errorf("unsupported diff type: %s", req.DiffType)
	}
}

// getStagedDiff diffs the index against HEAD.
func (s *Service) getStagedDiff() (*DiffResult, error) {
	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("getting worktree status: %w", err)
	}

	var files []ChangedFile
	for filePath, fileStatus := range status {
		if fileStatus.Staging == git.Unmodified || fileStatus.Staging == git.Untracked {
			continue
		}

		changeType := changeTypeFromStatus(fileStatus.Staging)
		patch, err := s.stagedFilePatch(worktree, filePath, changeType)
		if err != nil {
			s.logger.Warn("skipping staged file", "path", filePath, "error", err)
			continue
		}

		files = append(files, annotateLanguage(ChangedFile{
			Path:       filePath,
			ChangeType: changeType,
			Patch:      patch,
		}))
	}

	s.logger.Debug("staged diff extracted", "files", len(files))

	return &DiffResult{Files: files}, nil
}

// getCommitDiff diffs a commit against its first parent, or against the
// empty tree for an initial commit.
func (s *Service) getCommitDiff(commitID string) (*DiffResult, error) {
	hash, err := s.resolveCommit(commitID)
	if err != nil {
		return nil, err
	}

	commit, err := s.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("getting commit object: %w", err)
	}

	commitTree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("getting commit tree: %w", err)
	}

	parentTree := &object.Tree{}
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("getting parent commit: %w", err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, fmt.Errorf("getting parent tree: %w", err)
		}
	}

	changes, err := parentTree.Diff(commitTree)
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	files := s.processChanges(changes)

	return &DiffResult{
		Files: files,
		CommitInfo: &Commit{
			Hash:      commit.Hash.String(),
			Author:    commit.Author.Name,
			Email:     commit.Author.Email,
			Message:   commit.Message,
			Timestamp: commit.Author.When,
		},
	}, nil
}

// getBranchDiff diffs targetRef against baseRef.
func (s *Service) getBranchDiff(baseRef, targetRef string) (*DiffResult, error) {
	baseTree, err := s.branchTree(baseRef)
	if err != nil {
		return nil, fmt.Errorf("resolving base branch %q: %w", baseRef, err)
	}

	targetTree, err := s.branchTree(targetRef)
	if err != nil {
		return nil, fmt.Errorf("resolving target branch %q: %w", targetRef, err)
	}

	changes, err := baseTree.Diff(targetTree)
	if err != nil {
		return nil, fmt.Errorf("diffing branches: %w", err)
	}

	return &DiffResult{Files: s.processChanges(changes)}, nil
}

func (s *Service) branchTree(name string) (*object.Tree, error) {
	ref, err := s.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		return nil, fmt.Errorf("getting reference: %w", err)
	}

	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting commit: %w", err)
	}

	return commit.Tree()
}

// resolveCommit accepts full and abbreviated hashes.
func (s *Service) resolveCommit(commitID string) (plumbing.Hash, error) {
	if len(commitID) == 40 {
		return plumbing.NewHash(commitID), nil
	}

	hash, err := s.repo.ResolveRevision(plumbing.Revision(commitID))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving revision %q: %w", commitID, err)
	}
	return *hash, nil
}

// processChanges converts go-git changes to ChangedFile records. A file that
// fails to produce a patch is skipped rather than failing the whole diff.
func (s *Service) processChanges(changes object.Changes) []ChangedFile {
	var files []ChangedFile

	for _, change := range changes {
		file, err := s.processChange(change)
		if err != nil {
			s.logger.Warn("skipping change", "from", change.From.Name, "to", change.To.Name, "error", err)
			continue
		}
		files = append(files, file)
	}

	return files
}

func (s *Service) processChange(change *object.Change) (ChangedFile, error) {
	fromName := filepath.Clean(change.From.Name)
	toName := filepath.Clean(change.To.Name)

	path := toName
	if change.To.Name == "" {
		path = fromName
	}

	patch, err := change.Patch()
	if err != nil {
		return ChangedFile{}, fmt.Errorf("generating patch: %w", err)
	}

	file := ChangedFile{
		Path:       path,
		ChangeType: changeTypeFromChange(change),
		Patch:      patch.String(),
	}
	if change.From.Name != "" && change.To.Name != "" && fromName != toName {
		file.OldPath = fromName
		file.ChangeType = ChangeTypeRenamed
	}

	return annotateLanguage(file), nil
}

func changeTypeFromChange(change *object.Change) ChangeType {
	switch {
	case change.From.TreeEntry.Hash.IsZero() && !change.To.TreeEntry.Hash.IsZero():
		return ChangeTypeAdded
	case !change.From.TreeEntry.Hash.IsZero() && change.To.TreeEntry.Hash.IsZero():
		return ChangeTypeDeleted
	default:
		return ChangeTypeModified
	}
}

func changeTypeFromStatus(code git.StatusCode) ChangeType {
	switch code {
	case git.Added:
		return ChangeTypeAdded
	case git.Deleted:
		return ChangeTypeDeleted
	case git.Renamed:
		return ChangeTypeRenamed
	default:
		return ChangeTypeModified
	}
}

// annotateLanguage tags the file with its detected language, using the file
// name and whatever patch content is available.
func annotateLanguage(file ChangedFile) ChangedFile {
	lang := enry.GetLanguage(filepath.Base(file.Path), []byte(file.Patch))
	if lang != "" && !enry.IsVendor(file.Path) {
		file.Language = lang
	}
	return file
}

// stagedFilePatch builds a unified diff for one staged file against HEAD.
func (s *Service) stagedFilePatch(worktree *git.Worktree, filePath string, changeType ChangeType) (string, error) {
	var staged string
	if changeType != ChangeTypeDeleted {
		f, err := worktree.Filesystem.Open(filePath)
		if err != nil {
			return "", fmt.Errorf("opening file: %w", err)
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		staged = string(content)
	}

	head, err := s.headFileContent(filePath)
	if err != nil {
		return "", err
	}

	return buildPatch(filePath, head, staged), nil
}

// headFileContent returns the file's content at HEAD, or empty when the
// file (or HEAD itself) does not exist yet.
func (s *Service) headFileContent(filePath string) (string, error) {
	headRef, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	headCommit, err := s.repo.CommitObject(headRef.Hash())
	if err != nil {
		return "", fmt.Errorf("getting HEAD commit: %w", err)
	}

	headTree, err := headCommit.Tree()
	if err != nil {
		return "", fmt.Errorf("getting HEAD tree: %w", err)
	}

	headFile, err := headTree.File(filePath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("getting file from HEAD: %w", err)
	}

	return headFile.Contents()
}

// buildPatch emits a whole-file unified diff between two versions. Reviewers
// only need added and removed lines in context, not a minimal hunk set.
func buildPatch(filePath, oldContent, newContent string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "--- a/%s\n", filePath)
	fmt.Fprintf(&b, "+++ b/%s\n", filePath)

	oldLines := splitLines(oldContent)
	newLines := splitLines(newContent)

	fmt.Fprintf(&b, "@@ -1,%d +1,%d @@\n", len(oldLines), len(newLines))
	for _, line := range oldLines {
		fmt.Fprintf(&b, "-%s\n", line)
	}
	for _, line := range newLines {
		fmt.Fprintf(&b, "+%s\n", line)
	}

	return b.String()
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// OriginURL returns the first URL of the origin remote.
func (s *Service) OriginURL() (string, error) {
	if err := s.ensureRepo(); err != nil {
		return "", err
	}

	remote, err := s.repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("getting origin remote: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("origin remote has no URL")
	}

	return urls[0], nil
}

// ListBranches returns the local branch names.
func (s *Service) ListBranches() ([]string, error) {
	if err := s.ensureRepo(); err != nil {
		return nil, err
	}

	branchIter, err := s.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("getting branches: %w", err)
	}

	var branches []string
	err = branchIter.ForEach(func(ref *plumbing.Reference) error {
		branches = append(branches, strings.TrimPrefix(ref.Name().String(), "refs/heads/"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating branches: %w", err)
	}

	return branches, nil
}
