package graph

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vk/taskmesh/internal/node"
)

var (
	// ErrCycle indicates the dependency graph contains a cycle.
	ErrCycle = errors.New("cycle detected")
	// ErrUnknownTask indicates an edge references a task that was never registered.
	ErrUnknownTask = errors.New("unknown task")
	// ErrSelfDependency indicates a task declared itself as a dependency.
	ErrSelfDependency = errors.New("self-referential dependency")
)

// Graph is a collection of task nodes and their dependency edges. All
// operations on the graph are concurrency-safe, though in practice a graph
// is fully built before execution begins and read-only afterwards.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*node.Node
	// deps maps a task name to the set of names it depends on (predecessors).
	deps map[string]map[string]struct{}
	// dependents maps a task name to the set of names depending on it (successors).
	dependents map[string]map[string]struct{}
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[string]*node.Node),
		deps:       make(map[string]map[string]struct{}),
		dependents: make(map[string]map[string]struct{}),
	}
}

// AddNode registers a node under its task name. Re-registering a name
// replaces the previous node, matching map-registry semantics.
func (g *Graph) AddNode(n *node.Node) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	name := n.Name()
	g.nodes[name] = n
	if g.deps[name] == nil {
		g.deps[name] = make(map[string]struct{})
	}
	if g.dependents[name] == nil {
		g.dependents[name] = make(map[string]struct{})
	}
}

// AddEdge creates a directed edge from the `fromName` node to the `toName`
// node, signifying that `toName` depends on `fromName`. An error is returned
// if either endpoint is unregistered or if the edge is self-referential.
func (g *Graph) AddEdge(fromName, toName string) error {
	if fromName == toName {
		return fmt.Errorf("%w: task '%s' depends on itself", ErrSelfDependency, toName)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[toName]; !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownTask, toName)
	}
	if _, ok := g.nodes[fromName]; !ok {
		return fmt.Errorf("%w: task '%s' needs '%s', which is not registered", ErrUnknownTask, toName, fromName)
	}

	g.deps[toName][fromName] = struct{}{}
	g.dependents[fromName][toName] = struct{}{}
	return nil
}

// Node retrieves a registered node by task name.
func (g *Graph) Node(name string) (*node.Node, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns every registered node in no particular order.
func (g *Graph) Nodes() []*node.Node {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	all := make([]*node.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		all = append(all, n)
	}
	return all
}

// Len returns the number of registered nodes.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// Dependencies returns the sorted names of the tasks the given node depends on.
func (g *Graph) Dependencies(name string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return sortedKeys(g.deps[name])
}

// Dependents returns the sorted names of the tasks that depend on the given node.
func (g *Graph) Dependents(name string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return sortedKeys(g.dependents[name])
}

// Roots returns every node with no dependencies. These are the only legal
// starting points of an execution.
func (g *Graph) Roots() []*node.Node {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var roots []*node.Node
	for name, n := range g.nodes {
		if len(g.deps[name]) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// DetectCycles checks the graph for cycles. It returns a non-nil error if a
// cycle is found, naming the first task discovered inside one.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Classic depth-first search over three node sets:
	// permanent: fully visited, known not to be part of a cycle.
	// temporary: currently on the recursion stack.
	// unvisited: everything else.
	permanent := make(map[string]bool, len(g.nodes))
	temporary := make(map[string]bool)

	var visit func(name string) error
	visit = func(name string) error {
		if permanent[name] {
			return nil
		}
		if temporary[name] {
			return fmt.Errorf("%w: involving task '%s'", ErrCycle, name)
		}

		temporary[name] = true
		for dependent := range g.dependents[name] {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, name)
		permanent[name] = true
		return nil
	}

	// Deterministic traversal order keeps error messages stable.
	for _, name := range sortedKeys(g.nodes) {
		if !permanent[name] {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
