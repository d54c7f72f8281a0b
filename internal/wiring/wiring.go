// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/affected/internal/adapters/cas"
	_ "go.trai.ch/affected/internal/adapters/config"
	_ "go.trai.ch/affected/internal/adapters/fs"
	_ "go.trai.ch/affected/internal/adapters/git"
	_ "go.trai.ch/affected/internal/adapters/linear"
	_ "go.trai.ch/affected/internal/adapters/logger"
	_ "go.trai.ch/affected/internal/adapters/patch"
	_ "go.trai.ch/affected/internal/adapters/shell"
	_ "go.trai.ch/affected/internal/adapters/telemetry"
	_ "go.trai.ch/affected/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/affected/internal/app"
	_ "go.trai.ch/affected/internal/engine/affected"
	_ "go.trai.ch/affected/internal/engine/scheduler"
)
