package domain

import (
	"iter"
	"slices"
	"sync"

	"go.trai.ch/zerr"
)

// Registry is the immutable, ordered set of modules known to one build invocation.
// Modules are kept sorted by id so every derived result is deterministic.
type Registry struct {
	modules []Module
	index   map[InternedString]int

	graphOnce sync.Once
	graph     *DependencyGraph
}

// NewRegistry validates and registers the given modules.
//
// It fails when an id is empty or repeated, when two modules claim the identical
// directory, or when a dependency edge references a module that is not registered.
func NewRegistry(modules ...Module) (*Registry, error) {
	r := &Registry{
		modules: make([]Module, 0, len(modules)),
		index:   make(map[InternedString]int, len(modules)),
	}

	dirs := make(map[string]InternedString, len(modules))
	for _, m := range modules {
		if m.ID.String() == "" {
			return nil, zerr.With(zerr.Wrap(ErrMissingModuleName, ""), "dir", m.Dir)
		}
		if _, exists := r.index[m.ID]; exists {
			return nil, zerr.With(zerr.Wrap(ErrDuplicateModule, ""), "module", m.ID.String())
		}

		m.Dir = NormalizePath(m.Dir)
		if owner, claimed := dirs[m.Dir]; claimed {
			err := zerr.With(zerr.Wrap(ErrDuplicateModuleDir, ""), "dir", m.Dir)
			err = zerr.With(err, "first_module", owner.String())
			return nil, zerr.With(err, "second_module", m.ID.String())
		}
		dirs[m.Dir] = m.ID

		m.Dependencies = slices.Clone(m.Dependencies)
		r.index[m.ID] = len(r.modules)
		r.modules = append(r.modules, m)
	}

	for _, m := range r.modules {
		for _, dep := range m.Dependencies {
			if _, ok := r.index[dep]; !ok {
				err := zerr.With(zerr.Wrap(ErrUnknownDependency, ""), "module", m.ID.String())
				return nil, zerr.With(err, "dependency", dep.String())
			}
		}
	}

	slices.SortFunc(r.modules, func(a, b Module) int {
		return a.ID.Compare(b.ID)
	})
	for i, m := range r.modules {
		r.index[m.ID] = i
	}

	return r, nil
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	return len(r.modules)
}

// Has reports whether id names a registered module.
func (r *Registry) Has(id InternedString) bool {
	_, ok := r.index[id]
	return ok
}

// Get returns the module with the given id.
func (r *Registry) Get(id InternedString) (Module, bool) {
	i, ok := r.index[id]
	if !ok {
		return Module{}, false
	}
	return r.modules[i], true
}

// IDs returns every module id in registry order.
func (r *Registry) IDs() []InternedString {
	ids := make([]InternedString, len(r.modules))
	for i, m := range r.modules {
		ids[i] = m.ID
	}
	return ids
}

// Walk returns an iterator over the modules in registry order.
func (r *Registry) Walk() iter.Seq[Module] {
	return func(yield func(Module) bool) {
		for _, m := range r.modules {
			if !yield(m) {
				return
			}
		}
	}
}

// Graph returns the dependency graph derived from the registry.
// It is built on first use and shared by every later caller.
func (r *Registry) Graph() *DependencyGraph {
	r.graphOnce.Do(func() {
		r.graph = newDependencyGraph(r.modules)
	})
	return r.graph
}
