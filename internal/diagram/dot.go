// Package diagram serializes the dependency graph as Graphviz DOT and
// Mermaid class diagrams.
package diagram

import (
	"fmt"
	"io"
	"strings"

	"github.com/olehluchkiv/javadeps/internal/graph"
)

// DOTOptions controls DOT serialization.
type DOTOptions struct {
	Name    string // graph name, default "G"
	RankDir string // default "LR"
	Sorted  bool   // lexical edge order instead of map order
}

// DefaultDOTOptions returns the options used for console output.
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{Name: "G", RankDir: "LR", Sorted: true}
}

// WriteDOT writes g as a directed graph, one edge statement per line.
func WriteDOT(w io.Writer, g *graph.Graph, opts DOTOptions) error {
	if opts.Name == "" {
		opts.Name = "G"
	}
	if opts.RankDir == "" {
		opts.RankDir = "LR"
	}
	order := graph.Unordered
	if opts.Sorted {
		order = graph.Sorted
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", opts.Name)
	fmt.Fprintf(&b, "  rankdir=%s;\n", opts.RankDir)
	for _, e := range g.Edges(order) {
		fmt.Fprintf(&b, "  %s -> %s;\n", quote(e.Source), quote(e.Target))
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// GenerateDOT returns the DOT text of g.
func GenerateDOT(g *graph.Graph, opts DOTOptions) string {
	var b strings.Builder
	_ = WriteDOT(&b, g, opts)
	return b.String()
}

func quote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
}
