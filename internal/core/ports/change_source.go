package ports

import (
	"context"
	"io"

	"go.trai.ch/affected/internal/core/domain"
)

// ChangeSource resolves the set of changed files between two states of the workspace.
//
//go:generate mockgen -source=change_source.go -destination=mocks/mock_change_source.go -package=mocks
type ChangeSource interface {
	// ResolveChanges returns the changed paths, relative to req.Root.
	// It returns domain.AllChanged when no comparable prior state exists.
	// Failures wrap domain.ErrChangeResolution and must abort the computation.
	ResolveChanges(ctx context.Context, req domain.ChangeRequest) (domain.ChangeSet, error)

	// Revision resolves ref (HEAD when empty) to a stable revision identifier.
	Revision(ctx context.Context, root, ref string) (string, error)
}

// PatchReader extracts changed paths from a unified diff.
type PatchReader interface {
	// ChangedFiles returns every path touched by the patch, in patch order.
	ChangedFiles(r io.Reader) (domain.ChangeSet, error)
}
