// Package graph accumulates the deduplicated type dependency graph.
package graph

import (
	"sort"
	"sync"
)

// Order controls how Edges enumerates the graph.
type Order int

const (
	// Sorted enumerates sources in lexical order, then targets.
	Sorted Order = iota
	// Unordered enumerates in map iteration order.
	Unordered
)

// Edge is a directed dependency from Source to Target.
type Edge struct {
	Source string
	Target string
}

// Graph maps each source identity to the set of its targets. Edges are
// only ever added. A Graph is safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	edges map[string]map[string]struct{}
	n     int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{edges: make(map[string]map[string]struct{})}
}

// Insert adds the edge and reports whether it was new.
func (g *Graph) Insert(source, target string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	set, ok := g.edges[source]
	if !ok {
		set = make(map[string]struct{})
		g.edges[source] = set
	}
	if _, dup := set[target]; dup {
		return false
	}
	set[target] = struct{}{}
	g.n++
	return true
}

// Has reports whether the edge is present.
func (g *Graph) Has(source, target string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.edges[source][target]
	return ok
}

// Len returns the number of distinct edges.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.n
}

// Sources returns every identity with at least one outgoing edge, sorted.
func (g *Graph) Sources() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.edges))
	for s := range g.edges {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Targets returns the targets of source, sorted.
func (g *Graph) Targets(source string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set := g.edges[source]
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Merge adds every edge of other and returns how many were new.
func (g *Graph) Merge(other *Graph) int {
	added := 0
	for _, e := range other.Edges(Unordered) {
		if g.Insert(e.Source, e.Target) {
			added++
		}
	}
	return added
}

// Edges returns a snapshot of all edges.
func (g *Graph) Edges(order Order) []Edge {
	g.mu.RLock()
	out := make([]Edge, 0, g.n)
	for s, set := range g.edges {
		for t := range set {
			out = append(out, Edge{Source: s, Target: t})
		}
	}
	g.mu.RUnlock()

	if order == Sorted {
		sort.Slice(out, func(i, j int) bool {
			if out[i].Source != out[j].Source {
				return out[i].Source < out[j].Source
			}
			return out[i].Target < out[j].Target
		})
	}
	return out
}
