// Package split partitions a large dependency graph into slide-sized groups.
package split

import "github.com/olehluchkiv/javadeps/internal/graph"

// Group represents one slide's content: hub nodes (repeated on every slide)
// plus spoke nodes (unique to this slide).
type Group struct {
	Title     string
	HubKeys   []string // identities of hubs and of other targets the spokes need
	SpokeKeys []string // identities of the dependent types unique to this slide
}

// Splitter splits a dependency graph into groups for slide generation.
type Splitter interface {
	Split(g *graph.Graph) []Group
}

// Options controls splitting behavior.
type Options struct {
	HubThreshold int // min dependents to be a hub; default 3
	ChunkSize    int // max spokes per slide; default 3
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{HubThreshold: 3, ChunkSize: 3}
}
