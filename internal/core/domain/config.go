package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Mode selects whether dependents of directly affected modules are included.
type Mode string

const (
	// ModeOnlyDirect limits the affected set to modules owning a changed file.
	ModeOnlyDirect Mode = "ONLY_DIRECT"
	// ModeIncludeDependents adds every transitive dependent of a directly affected module.
	ModeIncludeDependents Mode = "INCLUDE_DEPENDENTS"
)

// ModulePathSeparator is the prefix a target task name must not start with.
const ModulePathSeparator = ":"

// ParseMode accepts the mode names case-insensitively, with "-" or "_" as
// word separator. ONLY_DIRECTLY is accepted as an alias. An empty string
// yields the default, ModeIncludeDependents.
func ParseMode(s string) (Mode, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch norm {
	case "":
		return ModeIncludeDependents, nil
	case string(ModeIncludeDependents):
		return ModeIncludeDependents, nil
	case string(ModeOnlyDirect), "ONLY_DIRECTLY":
		return ModeOnlyDirect, nil
	default:
		err := zerr.Wrap(ErrInvalidConfig, "mode must be either ONLY_DIRECT or INCLUDE_DEPENDENTS")
		return "", zerr.With(err, "mode", s)
	}
}

// Config holds the operator's rules for one computation.
type Config struct {
	TargetTask         string
	AlwaysRun          []InternedString
	NeverRun           []InternedString
	AllowList          []InternedString
	AffectsAllPatterns []string
	IgnoredPatterns    []string
	Mode               Mode
	Debug              bool
}

// EffectiveMode returns the configured mode in canonical form, defaulting to
// ModeIncludeDependents. Call Validate first; an unparseable mode also yields the default.
func (c *Config) EffectiveMode() Mode {
	m, err := ParseMode(string(c.Mode))
	if err != nil {
		return ModeIncludeDependents
	}
	return m
}

// Validate checks the rules that must hold before any computation starts.
// Every failure wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TargetTask) == "" {
		return zerr.Wrap(ErrInvalidConfig, "target task name is required")
	}
	if strings.HasPrefix(c.TargetTask, ModulePathSeparator) {
		err := zerr.Wrap(ErrInvalidConfig, "target task name must not start with \""+ModulePathSeparator+"\"")
		return zerr.With(err, "target", c.TargetTask)
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if _, err := NewPatternClassifier(c.AffectsAllPatterns, c.IgnoredPatterns); err != nil {
		return err
	}
	return nil
}
