package ports

import "go.trai.ch/affected/internal/core/domain"

// RunRecordStore persists the last successful run per target task.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type RunRecordStore interface {
	// Get retrieves the run record for a given target task.
	// Returns nil, nil if not found.
	Get(root, target string) (*domain.RunRecord, error)

	// Put stores the run record.
	Put(root string, record domain.RunRecord) error
}
