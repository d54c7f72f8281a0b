package domain

import "strings"

// ChangeSet is either an ordered list of changed file paths or the AllChanged
// sentinel, used when no comparable prior state exists.
type ChangeSet struct {
	all   bool
	files []string
}

// AllChanged returns the sentinel change set that marks every module as affected.
func AllChanged() ChangeSet {
	return ChangeSet{all: true}
}

// NewChangeSet builds a change set from paths. Paths are normalized; empty
// entries and duplicates are dropped while first-seen order is preserved.
func NewChangeSet(paths ...string) ChangeSet {
	seen := make(map[string]struct{}, len(paths))
	files := make([]string, 0, len(paths))
	for _, p := range paths {
		n := NormalizePath(p)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		files = append(files, n)
	}
	return ChangeSet{files: files}
}

// IsAll reports whether this is the AllChanged sentinel.
func (c ChangeSet) IsAll() bool {
	return c.all
}

// Files returns a copy of the changed paths. It is empty for AllChanged.
func (c ChangeSet) Files() []string {
	out := make([]string, len(c.files))
	copy(out, c.files)
	return out
}

// Len returns the number of changed paths.
func (c ChangeSet) Len() int {
	return len(c.files)
}

// IsEmpty reports whether nothing changed.
func (c ChangeSet) IsEmpty() bool {
	return !c.all && len(c.files) == 0
}

// String implements fmt.Stringer.
func (c ChangeSet) String() string {
	if c.all {
		return "ALL_CHANGED"
	}
	return "[" + strings.Join(c.files, ", ") + "]"
}
