package split

import (
	"sort"
	"strings"

	"github.com/olehluchkiv/javadeps/internal/graph"
)

// HubAndSpoke implements the hub-and-spoke splitting strategy.
// Widely used types (hubs) repeat on every detail slide, while the types
// depending on them (spokes) are chunked into groups of ChunkSize.
type HubAndSpoke struct {
	opts Options
}

// NewHubAndSpoke creates a hub-and-spoke splitter with the given options.
func NewHubAndSpoke(opts Options) *HubAndSpoke {
	if opts.HubThreshold <= 0 {
		opts.HubThreshold = DefaultOptions().HubThreshold
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultOptions().ChunkSize
	}
	return &HubAndSpoke{opts: opts}
}

// Split implements Splitter. Hubs are targets with at least HubThreshold
// dependents. Every other source is a spoke; spokes are chunked in lexical
// order and each chunk also carries the non-hub targets its spokes point
// at, so every edge is drawn on at least one slide.
func (h *HubAndSpoke) Split(g *graph.Graph) []Group {
	edges := g.Edges(graph.Sorted)
	inDegree := dependentCount(edges)

	hubs := make(map[string]bool)
	for id, n := range inDegree {
		if n >= h.opts.HubThreshold {
			hubs[id] = true
		}
	}

	var spokeKeys []string
	for _, src := range g.Sources() {
		if !hubs[src] {
			spokeKeys = append(spokeKeys, src)
		}
	}

	// If there are no spokes, return a single group with all hubs.
	if len(spokeKeys) == 0 {
		allKeys := sortedKeys(hubs)
		if len(allKeys) == 0 {
			return nil
		}
		return []Group{{
			Title:   "Shared Types",
			HubKeys: allKeys,
		}}
	}

	sortedHubKeys := sortedKeys(hubs)

	var groups []Group
	for _, chunk := range chunkSlice(spokeKeys, h.opts.ChunkSize) {
		chunkSet := make(map[string]bool, len(chunk))
		for _, k := range chunk {
			chunkSet[k] = true
		}

		extra := make(map[string]bool)
		for _, e := range edges {
			if chunkSet[e.Source] && !hubs[e.Target] && !chunkSet[e.Target] {
				extra[e.Target] = true
			}
		}

		hubKeys := make([]string, len(sortedHubKeys))
		copy(hubKeys, sortedHubKeys)
		hubKeys = append(hubKeys, sortedKeys(extra)...)

		groups = append(groups, Group{
			Title:     buildTitle(chunk),
			HubKeys:   hubKeys,
			SpokeKeys: chunk,
		})
	}

	// Edges leaving a hub are drawn on the first slide.
	first := &groups[0]
	present := make(map[string]bool)
	for _, k := range append(first.HubKeys, first.SpokeKeys...) {
		present[k] = true
	}
	for _, e := range edges {
		if hubs[e.Source] && !present[e.Target] {
			present[e.Target] = true
			first.HubKeys = append(first.HubKeys, e.Target)
		}
	}
	return groups
}

// dependentCount counts incoming edges per node.
func dependentCount(edges []graph.Edge) map[string]int {
	counts := make(map[string]int)
	for _, e := range edges {
		counts[e.Target]++
	}
	return counts
}

// chunkSlice splits a slice into chunks of at most size n.
func chunkSlice(items []string, n int) [][]string {
	var chunks [][]string
	for i := 0; i < len(items); i += n {
		end := i + n
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// sortedKeys returns sorted keys from a bool map.
func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildTitle extracts the simple names from identities and joins them.
func buildTitle(keys []string) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		if idx := strings.LastIndex(k, "."); idx >= 0 {
			names[i] = k[idx+1:]
		} else {
			names[i] = k
		}
	}
	return strings.Join(names, ", ")
}
