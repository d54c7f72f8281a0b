package ports

import "go.trai.ch/affected/internal/core/domain"

// WorkspaceLoader defines the interface for loading the module registry and rules.
//
//go:generate mockgen -source=workspace_loader.go -destination=mocks/mock_workspace_loader.go -package=mocks
type WorkspaceLoader interface {
	// Load reads the workspace containing cwd and returns its registry and configuration.
	Load(cwd string) (*domain.Workspace, error)

	// DiscoverRoot walks up from cwd to find the workspace root.
	// Returns the directory containing affected.work.yaml.
	DiscoverRoot(cwd string) (string, error)
}
