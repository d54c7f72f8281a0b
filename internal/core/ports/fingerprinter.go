package ports

import "go.trai.ch/affected/internal/core/domain"

// Fingerprinter identifies a workspace's module layout so a stored run can be
// checked against the current one.
//
//go:generate mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint returns a stable hash of the registry and the files that declare it.
	Fingerprint(ws *domain.Workspace) (string, error)
}
