// Package git extracts reviewable diffs from a local repository.
package git

import (
	"strings"
	"time"
)

// DiffType represents the source of a diff
type DiffType string

const (
	// DiffTypeStaged represents staged changes in the repository
	DiffTypeStaged DiffType = "staged"
	// DiffTypeCommit represents changes introduced by one commit
	DiffTypeCommit DiffType = "commit"
	// DiffTypeBranch represents changes between two branches
	DiffTypeBranch DiffType = "branch"
)

// ChangeType represents the type of change to a file
type ChangeType string

const (
	// ChangeTypeAdded represents a file that was added
	ChangeTypeAdded ChangeType = "added"
	// ChangeTypeModified represents a file that was modified
	ChangeTypeModified ChangeType = "modified"
	// ChangeTypeDeleted represents a file that was deleted
	ChangeTypeDeleted ChangeType = "deleted"
	// ChangeTypeRenamed represents a file that was renamed
	ChangeTypeRenamed ChangeType = "renamed"
)

// ChangedFile is one file's worth of a diff.
type ChangedFile struct {
	Path       string     `json:"path"`
	OldPath    string     `json:"old_path,omitempty"` // Only set for renames
	ChangeType ChangeType `json:"change_type"`
	Patch      string     `json:"patch,omitempty"`
	Language   string     `json:"language,omitempty"`
}

// Commit captures the metadata of a reviewed commit.
type Commit struct {
	Hash      string    `json:"hash"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// DiffRequest selects which diff to extract.
type DiffRequest struct {
	DiffType  DiffType `json:"diff_type"`
	CommitID  string   `json:"commit_id,omitempty"`
	BaseRef   string   `json:"base_ref,omitempty"`   // Branch diffs: comparison base
	TargetRef string   `json:"target_ref,omitempty"` // Branch diffs: branch under review
}

// DiffResult is an extracted diff ready to hand to reviewers.
type DiffResult struct {
	Files      []ChangedFile `json:"files"`
	CommitInfo *Commit       `json:"commit_info,omitempty"`
}

// FileCount returns the number of changed files.
func (r *DiffResult) FileCount() int {
	return len(r.Files)
}

// UnifiedPatch concatenates the per-file patches into one reviewable diff.
func (r *DiffResult) UnifiedPatch() string {
	var b strings.Builder
	for _, f := range r.Files {
		if f.Patch == "" {
			continue
		}
		b.WriteString(f.Patch)
		if !strings.HasSuffix(f.Patch, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Languages returns the distinct detected languages across changed files.
func (r *DiffResult) Languages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range r.Files {
		if f.Language == "" || seen[f.Language] {
			continue
		}
		seen[f.Language] = true
		out = append(out, f.Language)
	}
	return out
}
