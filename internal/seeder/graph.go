package seeder

import "fmt"

// DependencyGraph orders columns so that every column is evaluated after the
// columns its rule reads. Ties keep the order columns were added in.
type DependencyGraph struct {
	names []string
	deps  map[string][]string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		deps: make(map[string][]string),
	}
}

func (g *DependencyGraph) AddColumn(name string, deps []string) {
	if _, exists := g.deps[name]; !exists {
		g.names = append(g.names, name)
	}
	g.deps[name] = deps
}

// BuildEvaluationOrder returns a topological order. Dependencies on columns
// that were never added are ignored.
func (g *DependencyGraph) BuildEvaluationOrder() ([]string, error) {
	visited := make(map[string]bool, len(g.names))
	temp := make(map[string]bool)
	order := make([]string, 0, len(g.names))

	var visit func(string) error
	visit = func(name string) error {
		if temp[name] {
			return fmt.Errorf("circular dependency detected involving column: %s", name)
		}
		if visited[name] {
			return nil
		}

		temp[name] = true
		for _, dep := range g.deps[name] {
			if _, known := g.deps[dep]; !known || dep == name {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		temp[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range g.names {
		if !visited[name] {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}
