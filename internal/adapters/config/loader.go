// Package config loads the workspace registry and rules from YAML files and
// layers flag and environment overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var validModuleNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Loader implements ports.WorkspaceLoader using YAML files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// DiscoverRoot walks up from cwd and returns the first directory holding a workfile.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir := filepath.Clean(cwd)
	for {
		if _, err := os.Stat(filepath.Join(currentDir, domain.WorkFileName)); err == nil {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, ""), "cwd", cwd)
		}
		currentDir = parentDir
	}
}

// Load reads the workfile above cwd and every module file it references.
func (l *Loader) Load(cwd string) (*domain.Workspace, error) {
	root, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	var workfile Workfile
	if err := readAndUnmarshalYAML(filepath.Join(root, domain.WorkFileName), &workfile); err != nil {
		return nil, err
	}

	modulePaths, err := resolveModulePaths(root, workfile.Modules)
	if err != nil {
		return nil, err
	}

	modules, err := l.loadModules(root, modulePaths)
	if err != nil {
		return nil, err
	}

	registry, err := domain.NewRegistry(modules...)
	if err != nil {
		return nil, err
	}

	return &domain.Workspace{
		Root:     root,
		Registry: registry,
		Config:   workfile.toConfig(),
	}, nil
}

func (w *Workfile) toConfig() domain.Config {
	return domain.Config{
		TargetTask:         w.Target,
		AlwaysRun:          domain.NewInternedStrings(w.AlwaysRun),
		NeverRun:           domain.NewInternedStrings(w.NeverRun),
		AllowList:          domain.NewInternedStrings(w.AllowList),
		AffectsAllPatterns: slices.Clone(w.AffectsAll),
		IgnoredPatterns:    slices.Clone(w.Ignored),
		Mode:               domain.Mode(w.Mode),
		Debug:              w.Debug,
	}
}

// resolveModulePaths expands the workfile globs into a sorted, deduplicated
// list of absolute paths.
func resolveModulePaths(root string, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "glob pattern failed"), "pattern", pattern)
		}
		for _, match := range matches {
			seen[filepath.Clean(match)] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths, nil
}

func (l *Loader) loadModules(root string, modulePaths []string) ([]domain.Module, error) {
	modules := make([]domain.Module, 0, len(modulePaths))
	moduleDirs := make(map[string]string, len(modulePaths))

	for _, modulePath := range modulePaths {
		mod, ok, err := l.loadModule(root, modulePath)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if existing, exists := moduleDirs[mod.ID.String()]; exists {
			err := zerr.With(zerr.Wrap(domain.ErrDuplicateModule, ""), "module", mod.ID.String())
			err = zerr.With(err, "first_occurrence", existing)
			return nil, zerr.With(err, "duplicate_at", mod.Dir)
		}
		moduleDirs[mod.ID.String()] = mod.Dir

		modules = append(modules, mod)
	}

	return modules, nil
}

// loadModule reads the module file in modulePath. It reports false for
// matches that are not directories or hold no module file.
func (l *Loader) loadModule(root, modulePath string) (domain.Module, bool, error) {
	info, err := os.Stat(modulePath)
	if err != nil {
		return domain.Module{}, false, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", modulePath)
	}
	if !info.IsDir() {
		return domain.Module{}, false, nil
	}

	relPath, err := filepath.Rel(root, modulePath)
	if err != nil {
		return domain.Module{}, false, zerr.Wrap(err, "module directory is outside the workspace")
	}
	dir := domain.NormalizePath(filepath.ToSlash(relPath))

	moduleFilePath := filepath.Join(modulePath, domain.ModuleFileName)
	if _, statErr := os.Stat(moduleFilePath); os.IsNotExist(statErr) {
		l.Logger.Warn(fmt.Sprintf("%s missing in %s, skipping", domain.ModuleFileName, displayDir(dir)))
		return domain.Module{}, false, nil
	}

	var modulefile Modulefile
	if err := readAndUnmarshalYAML(moduleFilePath, &modulefile); err != nil {
		return domain.Module{}, false, zerr.With(err, "directory", displayDir(dir))
	}

	if err := validateModulefile(&modulefile, dir); err != nil {
		return domain.Module{}, false, err
	}

	return domain.Module{
		ID:           domain.NewInternedString(modulefile.Module),
		Dir:          dir,
		Dependencies: domain.NewInternedStrings(canonicalizeStrings(modulefile.DependsOn)),
		Tasks:        buildTasks(modulefile.Tasks, modulePath),
	}, true, nil
}

func validateModulefile(modulefile *Modulefile, dir string) error {
	if modulefile.Module == "" {
		return zerr.With(zerr.Wrap(domain.ErrMissingModuleName, ""), "directory", displayDir(dir))
	}

	if !validModuleNameRegex.MatchString(modulefile.Module) {
		err := zerr.With(zerr.Wrap(domain.ErrInvalidModuleName, ""), "module", modulefile.Module)
		return zerr.With(err, "directory", displayDir(dir))
	}

	for _, dep := range modulefile.DependsOn {
		if !validModuleNameRegex.MatchString(dep) {
			err := zerr.With(zerr.Wrap(domain.ErrInvalidModuleName, ""), "dependency", dep)
			return zerr.With(err, "module", modulefile.Module)
		}
	}

	return nil
}

func buildTasks(dtos map[string]*TaskDTO, modulePath string) map[string]domain.Task {
	if len(dtos) == 0 {
		return nil
	}

	tasks := make(map[string]domain.Task, len(dtos))
	for name, dto := range dtos {
		if dto == nil {
			dto = &TaskDTO{}
		}
		tasks[name] = domain.Task{
			Name:        domain.NewInternedString(name),
			Command:     slices.Clone(dto.Cmd),
			Environment: dto.Environment,
			WorkingDir:  resolveTaskWorkingDir(modulePath, dto.WorkingDir),
		}
	}
	return tasks
}

// resolveTaskWorkingDir defaults to the module directory; relative paths are
// taken from it.
func resolveTaskWorkingDir(modulePath, configured string) string {
	switch {
	case configured == "":
		return modulePath
	case filepath.IsAbs(configured):
		return filepath.Clean(configured)
	default:
		return filepath.Clean(filepath.Join(modulePath, configured))
	}
}

func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return slices.Compact(sorted)
}

func displayDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is built from the discovered workspace root
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.With(zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}

	return nil
}
