// Package affected computes which modules must run their target task for a set of changes.
package affected

import (
	"context"
	"fmt"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// registryCacheSize bounds how many registries keep a memoized ownership index.
	registryCacheSize = 4
	// ownerCacheSize bounds the memoized path lookups per registry.
	ownerCacheSize = 4096
)

// Engine computes DecisionSets. It holds no per-computation state: every call to
// Compute is independent, and the only thing shared between calls is a memo of
// path ownership keyed by registry, which never changes a result.
type Engine struct {
	logger ports.Logger
	tracer ports.Tracer
	owners *lru.Cache[*domain.Registry, *ownerLookup]
}

// NewEngine creates a new Engine.
func NewEngine(logger ports.Logger, tracer ports.Tracer) *Engine {
	owners, err := lru.New[*domain.Registry, *ownerLookup](registryCacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &Engine{
		logger: logger,
		tracer: tracer,
		owners: owners,
	}
}

// Compute runs the phases validate, resolve overrides, classify, map, expand and
// finalize over the given inputs and returns the frozen decisions.
//
// A fatal error is returned before any decision is produced; non-fatal
// conditions are recorded as notices on the result.
func (e *Engine) Compute(
	ctx context.Context,
	reg *domain.Registry,
	changes domain.ChangeSet,
	cfg domain.Config,
) (*domain.DecisionSet, error) {
	ctx, span := e.tracer.Start(ctx, "compute", ports.WithSilent())
	defer span.End()

	c := &computation{
		reg:       reg,
		changes:   changes,
		cfg:       cfg,
		direct:    make(map[domain.InternedString]bool),
		dependent: make(map[domain.InternedString]bool),
	}

	var err error
	e.phase(ctx, "validate", func() { err = c.validate() })
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if cfg.Debug {
		e.printConfig(c)
	}

	e.phase(ctx, "resolve-overrides", c.resolveOverrides)
	e.phase(ctx, "classify", c.classify)

	if c.state == PhaseClassified {
		e.phase(ctx, "map-owners", func() { c.mapOwners(e.lookupFor(reg)) })
		e.phase(ctx, "expand-dependents", c.expand)
	}

	decisions := c.finalize()

	span.SetAttribute("global", c.global)
	span.SetAttribute("direct", len(c.direct))
	span.SetAttribute("dependent", len(c.dependent))
	span.SetAttribute("affected", len(decisions.Affected()))

	e.report(c, decisions)
	return decisions, nil
}

// phase runs fn inside a silent span named after the step.
func (e *Engine) phase(ctx context.Context, name string, fn func()) {
	_, span := e.tracer.Start(ctx, name, ports.WithSilent())
	defer span.End()
	fn()
}

func (e *Engine) lookupFor(reg *domain.Registry) *ownerLookup {
	if l, ok := e.owners.Get(reg); ok {
		return l
	}
	l := newOwnerLookup(reg.OwnershipMapper())
	e.owners.Add(reg, l)
	return l
}

func (e *Engine) printConfig(c *computation) {
	e.logger.Info("configuration:")
	e.logger.Info("  target task: " + c.cfg.TargetTask)
	e.logger.Info("  mode: " + string(c.mode))
	e.logger.Info("  always run: " + joinIDs(c.cfg.AlwaysRun))
	e.logger.Info("  never run: " + joinIDs(c.cfg.NeverRun))
	e.logger.Info("  allow list: " + joinIDs(c.cfg.AllowList))
	e.logger.Info("  affects all: " + strings.Join(c.cfg.AffectsAllPatterns, ", "))
	e.logger.Info("  ignored: " + strings.Join(c.cfg.IgnoredPatterns, ", "))
	e.logger.Info("  changes: " + c.changes.String())
}

func (e *Engine) report(c *computation, d *domain.DecisionSet) {
	for _, n := range d.Notices() {
		switch n.Kind {
		case domain.NoticeUnownedFile:
			if c.cfg.Debug {
				e.logger.Info(n.Message)
			}
		default:
			e.logger.Warn(n.Message)
		}
	}

	if !c.cfg.Debug {
		return
	}

	s := d.Debug()
	e.logger.Info(fmt.Sprintf("global: %t", s.Global))
	e.logger.Info("directly affected: " + strings.Join(s.Direct, ", "))
	e.logger.Info("dependent affected: " + strings.Join(s.Dependent, ", "))
	e.logger.Info("always run: " + strings.Join(s.AlwaysRun, ", "))
	e.logger.Info("never run: " + strings.Join(s.NeverRun, ", "))
	e.logger.Info("allowed: " + strings.Join(s.Allow, ", "))
	e.logger.Info("affected: " + joinIDs(d.Affected()))
}

// computation carries the state of a single Compute call through its phases.
type computation struct {
	reg     *domain.Registry
	changes domain.ChangeSet
	cfg     domain.Config

	state      Phase
	mode       domain.Mode
	classifier *domain.PatternClassifier

	alwaysRun map[domain.InternedString]bool
	neverRun  map[domain.InternedString]bool
	allow     map[domain.InternedString]bool

	global     bool
	candidates []string
	direct     map[domain.InternedString]bool
	dependent  map[domain.InternedString]bool

	notices []domain.Notice
}

func (c *computation) advance(to Phase) {
	if !c.state.canAdvanceTo(to) {
		panic(zerr.With(zerr.With(zerr.New("invalid phase transition"), "from", c.state.String()), "to", to.String()))
	}
	c.state = to
}

func (c *computation) validate() error {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	classifier, err := domain.NewPatternClassifier(c.cfg.AffectsAllPatterns, c.cfg.IgnoredPatterns)
	if err != nil {
		return err
	}
	c.classifier = classifier
	c.mode = c.cfg.EffectiveMode()
	c.advance(PhaseValidated)
	return nil
}

func (c *computation) resolveOverrides() {
	c.alwaysRun = c.resolveOverride("alwaysRun", c.cfg.AlwaysRun)
	c.neverRun = c.resolveOverride("neverRun", c.cfg.NeverRun)
	c.allow = c.resolveOverride("allowList", c.cfg.AllowList)
}

func (c *computation) resolveOverride(field string, ids []domain.InternedString) map[domain.InternedString]bool {
	set := make(map[domain.InternedString]bool, len(ids))
	for _, id := range ids {
		if !c.reg.Has(id) {
			c.notices = append(c.notices, domain.Notice{
				Kind:    domain.NoticeUnknownOverride,
				Message: fmt.Sprintf("%s references unknown module %q, ignoring it", field, id.String()),
				Modules: []string{id.String()},
			})
			continue
		}
		set[id] = true
	}
	return set
}

func (c *computation) classify() {
	defer func() {
		if c.global {
			c.advance(PhaseGlobalShortcut)
		}
	}()

	c.advance(PhaseClassified)

	if c.changes.IsAll() {
		c.global = true
		return
	}

	for _, f := range c.changes.Files() {
		switch c.classifier.Classify(f) {
		case domain.ClassGlobal:
			c.global = true
			c.candidates = nil
			return
		case domain.ClassCandidate:
			c.candidates = append(c.candidates, f)
		case domain.ClassIgnored:
		}
	}
}

func (c *computation) mapOwners(owners *ownerLookup) {
	for _, f := range c.candidates {
		o := owners.ownerOf(f)
		if !o.Found {
			c.notices = append(c.notices, domain.Notice{
				Kind:    domain.NoticeUnownedFile,
				Message: fmt.Sprintf("changed file %q is not owned by any module", f),
				Path:    f,
			})
			continue
		}
		if len(o.Tied) > 0 {
			tied := domain.Strings(o.Tied)
			c.notices = append(c.notices, domain.Notice{
				Kind: domain.NoticeRegistryIntegrity,
				Message: fmt.Sprintf("file %q is claimed by modules %s at the same depth, using %q",
					f, strings.Join(tied, ", "), o.Owner.String()),
				Path:    f,
				Modules: tied,
			})
		}
		c.direct[o.Owner] = true
	}
}

func (c *computation) expand() {
	c.advance(PhaseGraphExpanded)
	if c.mode != domain.ModeIncludeDependents || len(c.direct) == 0 {
		return
	}
	for _, id := range c.reg.Graph().DependentsOf(sortedIDs(c.direct)) {
		c.dependent[id] = true
	}
}

func (c *computation) finalize() *domain.DecisionSet {
	c.advance(PhaseFinalized)

	ids := c.reg.IDs()
	reasons := make(map[domain.InternedString]domain.Reason, len(ids))
	for _, id := range ids {
		reasons[id] = c.decide(id)
	}

	snapshot := domain.DebugSnapshot{
		Direct:    domain.Strings(sortedIDs(c.direct)),
		Dependent: domain.Strings(sortedIDs(c.dependent)),
		Global:    c.global,
		AlwaysRun: domain.Strings(sortedIDs(c.alwaysRun)),
		NeverRun:  domain.Strings(sortedIDs(c.neverRun)),
		Allow:     domain.Strings(sortedIDs(c.allow)),
	}

	return domain.NewDecisionSet(ids, reasons, snapshot, c.notices)
}

// decide applies the precedence: never-run dominates, then the allow list
// restricts, then any of global, direct, dependent or always-run includes.
func (c *computation) decide(id domain.InternedString) domain.Reason {
	switch {
	case c.neverRun[id]:
		return domain.ReasonNeverRun
	case len(c.allow) > 0 && !c.allow[id]:
		return domain.ReasonNotAllowed
	case c.global:
		return domain.ReasonGlobal
	case c.direct[id]:
		return domain.ReasonDirect
	case c.dependent[id]:
		return domain.ReasonDependent
	case c.alwaysRun[id]:
		return domain.ReasonAlwaysRun
	default:
		return domain.ReasonUnaffected
	}
}

func sortedIDs(set map[domain.InternedString]bool) []domain.InternedString {
	out := make([]domain.InternedString, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	slices.SortFunc(out, domain.InternedString.Compare)
	return out
}

func joinIDs(ids []domain.InternedString) string {
	return strings.Join(domain.Strings(ids), ", ")
}
