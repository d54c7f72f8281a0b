package domain

import "path/filepath"

const (
	// AffectedDirName is the name of the internal workspace directory.
	AffectedDirName = ".affected"

	// StoreDirName is the name of the run record store directory.
	StoreDirName = "store"

	// ModuleFileName is the name of the per-module configuration file.
	ModuleFileName = "affected.yaml"

	// WorkFileName is the name of the workspace configuration file.
	WorkFileName = "affected.work.yaml"

	// GitDirName is the directory that marks a git repository root.
	GitDirName = ".git"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStorePath returns the default path for the run record store.
// It joins .affected and store.
func DefaultStorePath() string {
	return filepath.Join(AffectedDirName, StoreDirName)
}
