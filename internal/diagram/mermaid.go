package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olehluchkiv/javadeps/internal/graph"
	"github.com/olehluchkiv/javadeps/internal/model"
)

// DiagramOptions controls Mermaid diagram generation.
type DiagramOptions struct {
	MaxMethodsPerBox int  // default 5, 0 means unlimited
	IncludeInit      bool // include %%{init:}%% directive (for standalone .mmd files)
	HideMembers      bool // draw empty boxes, e.g. for overview slides
}

// DefaultDiagramOptions returns sensible defaults for diagram generation.
func DefaultDiagramOptions() DiagramOptions {
	return DiagramOptions{MaxMethodsPerBox: 5}
}

const initDirective = "%%{init: {'theme': 'base', 'themeVariables': {'primaryColor': '#ffffff', 'primaryBorderColor': '#cccccc', 'primaryTextColor': '#000000', 'lineColor': '#555555'}}%%\n"

// GenerateMermaid produces a Mermaid classDiagram with one box per declared
// type and one arrow per dependency edge. Edge targets that are not
// declared in the analyzed tree get an empty external box.
func GenerateMermaid(decls []model.TypeDecl, g *graph.Graph, opts DiagramOptions) string {
	var b strings.Builder

	types := sortedDecls(decls)
	declared := make(map[string]bool, len(types))
	for _, d := range types {
		declared[d.Identity] = true
	}
	edges := g.Edges(graph.Sorted)
	external := externalTargets(edges, declared)

	if opts.IncludeInit {
		b.WriteString(initDirective)
	}
	b.WriteString("classDiagram")
	if len(types) > 0 || len(external) > 0 {
		b.WriteString("\n")
		b.WriteString("    direction LR\n")
		b.WriteString("    classDef interfaceStyle fill:#2374ab,stroke:#1a5a8a,color:#fff,stroke-width:2px,font-weight:bold\n")
		b.WriteString("    classDef implStyle fill:#4a9c6d,stroke:#357a50,color:#fff,stroke-width:2px\n")
		b.WriteString("    classDef externalStyle fill:#eeeeee,stroke:#999999,color:#333,stroke-dasharray:4")
	}

	for _, d := range types {
		b.WriteString("\n")
		writeTypeBlock(&b, d, opts)
	}

	if len(types) > 0 && len(external) > 0 {
		b.WriteString("\n")
	}
	for _, id := range external {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("    class %s", NodeID(id)))
	}

	if (len(types) > 0 || len(external) > 0) && len(edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range edges {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("    %s --> %s", NodeID(e.Source), NodeID(e.Target)))
	}

	if len(types) > 0 || len(external) > 0 {
		b.WriteString("\n")
		for _, d := range types {
			style := "implStyle"
			if d.IsInterface() {
				style = "interfaceStyle"
			}
			b.WriteString(fmt.Sprintf("\n    cssClass \"%s\" %s", NodeID(d.Identity), style))
		}
		for _, id := range external {
			b.WriteString(fmt.Sprintf("\n    cssClass \"%s\" externalStyle", NodeID(id)))
		}
	}

	return b.String()
}

func sortedDecls(decls []model.TypeDecl) []model.TypeDecl {
	out := make([]model.TypeDecl, len(decls))
	copy(out, decls)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Identity < out[j].Identity
	})
	// last declaration wins for duplicate identities
	dedup := out[:0]
	for i, d := range out {
		if i+1 < len(out) && out[i+1].Identity == d.Identity {
			continue
		}
		dedup = append(dedup, d)
	}
	return dedup
}

func externalTargets(edges []graph.Edge, declared map[string]bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range edges {
		for _, id := range []string{e.Source, e.Target} {
			if declared[id] || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// SanitizeSignature rewrites characters that break Mermaid class labels.
// Java generics use Mermaid's tilde notation; annotations and braces are
// dropped.
func SanitizeSignature(sig string) string {
	r := strings.NewReplacer("<", "~", ">", "~", "{", "", "}", "", "@", "")
	return r.Replace(sig)
}

// sanitizeID replaces characters Mermaid does not accept in identifiers.
func sanitizeID(s string) string {
	r := strings.NewReplacer("/", "_", ".", "_", "-", "_", "$", "_", "<", "_", ">", "_", "[", "_", "]", "_", " ", "_", ",", "_")
	return r.Replace(s)
}

// NodeID builds a sanitized node ID from a type identity.
func NodeID(identity string) string {
	return sanitizeID(identity)
}

func stereotype(k model.Kind) string {
	switch k {
	case model.KindInterface:
		return "<<interface>>"
	case model.KindEnum:
		return "<<enumeration>>"
	case model.KindRecord:
		return "<<record>>"
	}
	return ""
}

// writeTypeBlock writes a Mermaid class block for a declared type.
func writeTypeBlock(b *strings.Builder, d model.TypeDecl, opts DiagramOptions) {
	b.WriteString(fmt.Sprintf("    class %s {\n", NodeID(d.Identity)))
	if s := stereotype(d.Kind); s != "" {
		b.WriteString("        " + s + "\n")
	} else if d.IsAbstract() {
		b.WriteString("        <<abstract>>\n")
	}
	if d.File != "" {
		b.WriteString("        %% file: " + d.File + "\n")
	}
	if !opts.HideMembers {
		writeMethodLines(b, d.Methods, opts)
	}
	b.WriteString("    }")
}

// writeMethodLines writes method lines with optional truncation.
func writeMethodLines(b *strings.Builder, methods []model.Method, opts DiagramOptions) {
	limit := len(methods)
	truncated := false
	if opts.MaxMethodsPerBox > 0 && limit > opts.MaxMethodsPerBox {
		limit = opts.MaxMethodsPerBox
		truncated = true
	}

	for i := 0; i < limit; i++ {
		b.WriteString(fmt.Sprintf("        %s\n", methodLine(methods[i])))
	}
	if truncated {
		b.WriteString("        ...\n")
	}
}

func methodLine(m model.Method) string {
	line := visibility(m.Modifiers) + SanitizeSignature(m.Signature())
	if ret := m.Return.Text(); ret != "" && ret != "void" {
		line += " " + SanitizeSignature(ret)
	}
	return line
}

func visibility(m model.Modifiers) string {
	switch {
	case m.Has("public"):
		return "+"
	case m.Has("protected"):
		return "#"
	case m.Has("private"):
		return "-"
	}
	return "~"
}
