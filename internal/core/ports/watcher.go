package ports

import (
	"context"
	"iter"
)

// WatchEvent is a batch of paths that changed inside the watched workspace.
// Paths are relative to the watched root and slash separated.
type WatchEvent struct {
	Paths []string
}

// Watcher observes the workspace and reports debounced batches of changed paths.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start begins watching root recursively.
	Start(ctx context.Context, root string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator over debounced change batches.
	// The iterator ends after Stop or when the context passed to Start is done.
	Events() iter.Seq[WatchEvent]
}
