package modulemanager

import (
	"fmt"
	"sort"
)

// dependencyGraph orders modules so that every module follows the modules
// it depends on.
type dependencyGraph struct {
	nodes map[string]*dependencyNode
}

type dependencyNode struct {
	module       Module
	dependencies []string
}

func buildDependencyGraph(modules map[string]Module) (*dependencyGraph, error) {
	g := &dependencyGraph{nodes: make(map[string]*dependencyNode, len(modules))}

	for id, m := range modules {
		node := &dependencyNode{module: m}
		if dp, ok := m.(DependencyProvider); ok {
			node.dependencies = dp.Dependencies()
		}
		g.nodes[id] = node
	}

	for id, node := range g.nodes {
		for _, dep := range node.dependencies {
			if _, ok := g.nodes[dep]; !ok {
				return nil, fmt.Errorf("module %s depends on non-existent module %s", id, dep)
			}
		}
	}
	return g, nil
}

// initializationOrder returns the modules in dependency order. Ties are
// broken by module ID so the order is stable between runs.
func (g *dependencyGraph) initializationOrder() ([]Module, error) {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(ids))
	order := make([]Module, 0, len(ids))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("circular dependency detected: %v", append(path, id))
		}
		state[id] = visiting

		deps := append([]string(nil), g.nodes[id].dependencies...)
		sort.Strings(deps)
		for _, dep := range deps {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}

		state[id] = done
		order = append(order, g.nodes[id].module)
		return nil
	}

	for _, id := range ids {
		if err := visit(id, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}
