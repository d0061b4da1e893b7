package dag

import (
	"fmt"
	"sort"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
	}
}

// AddNode inserts a node into the graph. A duplicate ID is an error: the
// planner must register exactly one node per unit of work.
func (g *Graph) AddNode(n *Node) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, exists := g.Nodes[n.ID]; exists {
		return fmt.Errorf("duplicate node id: %s", n.ID)
	}
	if n.Deps == nil {
		n.Deps = make(map[string]*Node)
	}
	if n.Dependents == nil {
		n.Dependents = make(map[string]*Node)
	}
	g.Nodes[n.ID] = n
	return nil
}

// AddEdge records that toID depends on fromID. Both endpoints must
// already exist, and self-edges are rejected.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.Nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.Nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.Deps[fromID] = fromNode
	fromNode.Dependents[toID] = toNode

	return nil
}

// Dependencies returns the sorted IDs of the nodes the given node depends
// on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	deps := make([]string, 0, len(n.Deps))
	for depID := range n.Deps {
		deps = append(deps, depID)
	}
	sort.Strings(deps)
	return deps, nil
}

// Dependents returns the sorted IDs of the nodes that depend on the given
// node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.Nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	dependents := make([]string, 0, len(n.Dependents))
	for depID := range n.Dependents {
		dependents = append(dependents, depID)
	}
	sort.Strings(dependents)
	return dependents, nil
}

// SortedIDs returns every node ID in lexical order, for stable planning
// output.
func (g *Graph) SortedIDs() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DetectCycles checks the graph for any cycles. It returns a non-nil
// error if a cycle is found, naming the first node involved.
func (g *Graph) DetectCycles() error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited and known not to be part of a cycle.
	// temporary: currently in the recursion stack.
	// unvisited: everything else.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.ID] {
			return nil
		}
		if temporary[n.ID] {
			return fmt.Errorf("cycle detected involving node '%s'", n.ID)
		}

		temporary[n.ID] = true

		for _, dependent := range n.Dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}

		delete(temporary, n.ID)
		permanent[n.ID] = true

		return nil
	}

	for _, n := range g.Nodes {
		if !permanent[n.ID] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}

	return nil
}
