package workflow

import (
	"context"
	"fmt"
)

// Node is a single step in the conversation graph. A node mutates the
// state in place; it reports an error only for structural failures the
// step could not absorb into the state itself.
type Node interface {
	// Name returns the node's unique identifier in the graph.
	Name() string
	// Run executes the step against the shared turn state.
	Run(ctx context.Context, st *State) error
}

// EdgeFunc decides the next node from the current state. It returns a
// node name or End.
type EdgeFunc func(st *State) string

// Graph holds the fixed conversation topology: named nodes, unconditional
// edges, and conditional edges evaluated against the state after a node
// completes.
type Graph struct {
	nodes       map[string]Node
	edges       map[string]string
	conditional map[string]EdgeFunc
	entry       string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:       make(map[string]Node),
		edges:       make(map[string]string),
		conditional: make(map[string]EdgeFunc),
	}
}

// AddNode adds a node to the graph.
func (g *Graph) AddNode(node Node) {
	g.nodes[node.Name()] = node
}

// AddEdge adds an unconditional edge from one node to another.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = to
}

// AddConditionalEdge attaches a routing function evaluated after the named
// node completes. A conditional edge takes precedence over an
// unconditional one.
func (g *Graph) AddConditionalEdge(from string, fn EdgeFunc) {
	g.conditional[from] = fn
}

// SetEntry sets the entry node.
func (g *Graph) SetEntry(name string) {
	g.entry = name
}

// Entry returns the entry node name.
func (g *Graph) Entry() string {
	return g.entry
}

// Node retrieves a node by name.
func (g *Graph) Node(name string) (Node, bool) {
	node, ok := g.nodes[name]
	return node, ok
}

// NextAfter resolves the node following the named one for the given state.
// It returns End when the graph has no outgoing edge.
func (g *Graph) NextAfter(name string, st *State) string {
	if fn, ok := g.conditional[name]; ok {
		return fn(st)
	}
	if to, ok := g.edges[name]; ok {
		return to
	}
	return End
}

// Validate checks the graph is runnable: an entry exists and every edge
// target resolves to a node or End.
func (g *Graph) Validate() error {
	if g.entry == "" {
		return fmt.Errorf("graph has no entry node")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("entry node not found: %s", g.entry)
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("edge source not found: %s", from)
		}
		if to != End {
			if _, ok := g.nodes[to]; !ok {
				return fmt.Errorf("edge target not found: %s", to)
			}
		}
	}
	return nil
}
