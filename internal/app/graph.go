package app

import (
	"maps"
	"slices"

	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/zerr"
)

// GraphNode describes one module of the workspace dependency graph.
type GraphNode struct {
	ID           string   `json:"id"`
	Dir          string   `json:"dir"`
	Dependencies []string `json:"dependencies"`
	Dependents   []string `json:"dependents"`
	Tasks        []string `json:"tasks,omitempty"`
}

// Graph returns every module of the workspace found from cwd, dependencies
// first. A dependency cycle is an error.
func (a *App) Graph(cwd string) ([]GraphNode, error) {
	ws, err := a.loader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load workspace")
	}

	reg := ws.Registry
	order, err := reg.Graph().TopologicalOrder(reg.IDs())
	if err != nil {
		return nil, err
	}

	nodes := make([]GraphNode, 0, len(order))
	for _, id := range order {
		m, _ := reg.Get(id)
		nodes = append(nodes, GraphNode{
			ID:           id.String(),
			Dir:          m.Dir,
			Dependencies: domain.Strings(reg.Graph().DependenciesOf(id)),
			Dependents:   domain.Strings(reg.Graph().DirectDependentsOf(id)),
			Tasks:        slices.Sorted(maps.Keys(m.Tasks)),
		})
	}
	return nodes, nil
}
