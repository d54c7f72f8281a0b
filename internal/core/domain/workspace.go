package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Workspace is everything loaded from the workspace files: the root directory,
// the module registry and the configured rules.
type Workspace struct {
	Root     string
	Registry *Registry
	Config   Config
}

// CompareMode selects which revisions a change source compares.
type CompareMode string

const (
	// CompareCommit diffs PreviousRef against CurrentRef.
	CompareCommit CompareMode = "commit"
	// CompareWorking diffs the working tree against HEAD, including untracked files.
	CompareWorking CompareMode = "working"
	// CompareStaged diffs the index against HEAD.
	CompareStaged CompareMode = "staged"
	// CompareBranch diffs HEAD against its merge base with PreviousRef.
	CompareBranch CompareMode = "branch"
)

// ParseCompareMode parses a compare mode name. Empty selects CompareCommit.
func ParseCompareMode(s string) (CompareMode, error) {
	switch m := CompareMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return CompareCommit, nil
	case CompareCommit, CompareWorking, CompareStaged, CompareBranch:
		return m, nil
	default:
		err := zerr.Wrap(ErrInvalidConfig, "compare mode must be one of commit, working, staged, branch")
		return "", zerr.With(err, "compare", s)
	}
}

// ChangeRequest describes which changes a change source should resolve.
type ChangeRequest struct {
	// Root is the workspace root. Returned paths are relative to it.
	Root string
	// PreviousRef is the revision to compare against.
	PreviousRef string
	// CurrentRef is the revision being built. Empty means HEAD.
	CurrentRef string
	// Mode selects the comparison.
	Mode CompareMode
	// ForceAll short-circuits to AllChanged.
	ForceAll bool
}
