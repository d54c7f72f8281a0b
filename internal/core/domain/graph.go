// Package domain contains the core models of the affected-module computation:
// the module registry, its dependency graph, path ownership, change classification
// and the resulting decisions.
package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// DependencyGraph holds forward (module -> dependencies) and reverse
// (module -> dependents) adjacency. It is immutable once built and safe for
// concurrent reads.
type DependencyGraph struct {
	order   []InternedString
	forward map[InternedString][]InternedString
	reverse map[InternedString][]InternedString
}

func newDependencyGraph(modules []Module) *DependencyGraph {
	g := &DependencyGraph{
		order:   make([]InternedString, 0, len(modules)),
		forward: make(map[InternedString][]InternedString, len(modules)),
		reverse: make(map[InternedString][]InternedString, len(modules)),
	}

	for _, m := range modules {
		g.order = append(g.order, m.ID)
		deps := slices.Clone(m.Dependencies)
		slices.SortFunc(deps, InternedString.Compare)
		g.forward[m.ID] = slices.Compact(deps)
	}

	// Reverse edges are appended in registry order, so they come out sorted.
	for _, id := range g.order {
		for _, dep := range g.forward[id] {
			g.reverse[dep] = append(g.reverse[dep], id)
		}
	}

	return g
}

// DependenciesOf returns the direct dependencies of id, sorted by id.
func (g *DependencyGraph) DependenciesOf(id InternedString) []InternedString {
	return slices.Clone(g.forward[id])
}

// DirectDependentsOf returns the modules that declare a direct dependency on id, sorted by id.
func (g *DependencyGraph) DirectDependentsOf(id InternedString) []InternedString {
	return slices.Clone(g.reverse[id])
}

// DependentsOf returns the transitive closure of modules depending on any of the seeds.
//
// Traversal is breadth-first over reverse edges and guarded by a visited set, so it
// terminates even if the graph contains a cycle. Seeds are not part of the result
// unless another seed depends on them. The result is sorted by id.
func (g *DependencyGraph) DependentsOf(seeds []InternedString) []InternedString {
	visited := make(map[InternedString]bool, len(g.order))
	queue := make([]InternedString, 0, len(seeds))
	for _, s := range seeds {
		if !visited[s] {
			visited[s] = true
			queue = append(queue, s)
		}
	}

	reached := make(map[InternedString]bool)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, dependent := range g.reverse[cur] {
			reached[dependent] = true
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			queue = append(queue, dependent)
		}
	}

	out := make([]InternedString, 0, len(reached))
	for _, id := range g.order {
		if reached[id] {
			out = append(out, id)
		}
	}
	return out
}

// AffectedIncludingSeeds returns the seeds together with all their transitive dependents.
func (g *DependencyGraph) AffectedIncludingSeeds(seeds []InternedString) []InternedString {
	set := make(map[InternedString]bool, len(seeds))
	for _, s := range seeds {
		set[s] = true
	}
	for _, d := range g.DependentsOf(seeds) {
		set[d] = true
	}

	out := make([]InternedString, 0, len(set))
	for _, id := range g.order {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}

// TopologicalOrder returns the given subset ordered so that every module comes
// after its transitive dependencies. Modules outside the subset are traversed but
// not returned. Ties are broken by id. A reachable cycle is reported as ErrCycleDetected.
func (g *DependencyGraph) TopologicalOrder(subset []InternedString) ([]InternedString, error) {
	in := make(map[InternedString]bool, len(subset))
	for _, id := range subset {
		in[id] = true
	}

	order := make([]InternedString, 0, len(subset))
	state := make(map[InternedString]int, len(subset)) // 0: unvisited, 1: visiting, 2: done
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		state[u] = 1
		path = append(path, u)

		for _, dep := range g.forward[u] {
			switch state[dep] {
			case 1:
				return buildCycleError(path, dep)
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		state[u] = 2
		path = path[:len(path)-1]
		if in[u] {
			order = append(order, u)
		}
		return nil
	}

	for _, id := range g.order {
		if in[id] && state[id] == 0 {
			if err := visit(id); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}

// Validate reports the first dependency cycle in the whole graph, if any.
func (g *DependencyGraph) Validate() error {
	_, err := g.TopologicalOrder(g.order)
	return err
}

// buildCycleError constructs an error with cycle path metadata.
func buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(zerr.Wrap(ErrCycleDetected, ""), "cycle", strings.Join(parts, " -> "))
}
