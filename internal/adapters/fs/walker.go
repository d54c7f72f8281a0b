// Package fs provides file system adapters for walking the workspace and
// fingerprinting its module layout.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/affected/internal/core/domain"
)

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	domain.GitDirName:      true,
	".jj":                  true,
	"node_modules":         true,
	domain.AffectedDirName: true,
}

// Walker provides directory walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkDirs yields root and every directory below it, skipping version control,
// dependency and store directories. Unreadable directories are skipped.
func (w *Walker) WalkDirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && w.ShouldSkip(d.Name()) {
				return filepath.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// ShouldSkip reports whether a directory with the given base name is excluded.
func (w *Walker) ShouldSkip(name string) bool {
	return skipDirs[name]
}
