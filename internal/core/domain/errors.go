package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidConfig is the category for every fatal configuration validation failure.
	// Specific failures wrap it so callers can test with errors.Is.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrChangeResolution is returned when the change source cannot produce a ChangeSet.
	ErrChangeResolution = zerr.New("failed to resolve changed files")

	// ErrDuplicateModule is returned when two modules share the same id.
	ErrDuplicateModule = zerr.New("duplicate module id")

	// ErrDuplicateModuleDir is returned when two modules claim the identical directory.
	ErrDuplicateModuleDir = zerr.New("duplicate module directory")

	// ErrUnknownDependency is returned when a dependency edge references a module that does not exist.
	ErrUnknownDependency = zerr.New("dependency references unknown module")

	// ErrCycleDetected is returned when a cycle is detected in the module dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrMissingModuleName is returned when a module file does not declare a module id.
	ErrMissingModuleName = zerr.New("missing module name")

	// ErrInvalidModuleName is returned when a module id contains invalid characters.
	ErrInvalidModuleName = zerr.New("module name can only contain alphanumeric characters, hyphens and underscores")

	// ErrConfigReadFailed is returned when a workspace or module file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when a workspace or module file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no workfile is found walking up from the working directory.
	ErrConfigNotFound = zerr.New("could not find affected.work.yaml")

	// ErrGitRootNotFound is returned when no .git directory exists above the workspace root.
	ErrGitRootNotFound = zerr.New("could not find git root")

	// ErrStoreCreateFailed is returned when the run record store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create run record store directory")

	// ErrStoreReadFailed is returned when the run record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read run record")

	// ErrStoreUnmarshalFailed is returned when the run record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal run record")

	// ErrStoreMarshalFailed is returned when the run record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal run record")

	// ErrStoreWriteFailed is returned when the run record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write run record")

	// ErrTaskExecutionFailed is returned when a module's task exits unsuccessfully.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrRunFailed is returned when one or more affected modules failed to run their task.
	ErrRunFailed = zerr.New("run failed")

	// ErrFingerprintFailed is returned when the registry fingerprint cannot be computed.
	ErrFingerprintFailed = zerr.New("failed to fingerprint registry")

	// ErrWatcherStartFailed is returned when the file system watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start watcher")
)
