package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olehluchkiv/javadeps/internal/diagram/split"
	"github.com/olehluchkiv/javadeps/internal/graph"
	"github.com/olehluchkiv/javadeps/internal/model"
)

// Slide represents one navigable page in the slide deck.
type Slide struct {
	Title   string
	Mermaid string
}

// SlideOptions controls slide deck generation.
type SlideOptions struct {
	Threshold int // node count above which slides activate; 0 = always single
}

// DefaultSlideOptions returns sensible defaults.
func DefaultSlideOptions() SlideOptions {
	return SlideOptions{Threshold: 20}
}

// BuildSlides converts the analysis into slides using the provided Splitter.
// Splitting activates when the declared type count or the edge count reaches
// the threshold. Otherwise it returns a single slide with the full diagram.
func BuildSlides(decls []model.TypeDecl, g *graph.Graph, diagOpts DiagramOptions, splitter split.Splitter, opts SlideOptions) []Slide {
	if opts.Threshold <= 0 || (len(decls) < opts.Threshold && g.Len() < opts.Threshold) {
		return []Slide{{
			Title:   "Full Diagram",
			Mermaid: GenerateMermaid(decls, g, diagOpts),
		}}
	}

	slides := []Slide{{
		Title:   "Package Map",
		Mermaid: GeneratePackageMap(decls, g),
	}}

	for _, grp := range splitter.Split(g) {
		keys := append(append([]string{}, grp.HubKeys...), grp.SpokeKeys...)
		subDecls, sub := Select(decls, g, keys)
		slides = append(slides, Slide{
			Title:   grp.Title,
			Mermaid: GenerateMermaid(subDecls, sub, diagOpts),
		})
	}
	return slides
}

// GeneratePackageMap produces a Mermaid flowchart with one node per package
// and one arrow per package pair linked by at least one type dependency.
func GeneratePackageMap(decls []model.TypeDecl, g *graph.Graph) string {
	pkgOf := make(map[string]string, len(decls))
	for _, d := range decls {
		pkgOf[d.Identity] = d.Package
	}
	packageOf := func(id string) string {
		if p, ok := pkgOf[id]; ok {
			return p
		}
		return model.NamespaceOf(id)
	}

	nodes := make(map[string]bool)
	for _, d := range decls {
		nodes[d.Package] = true
	}
	arrows := make(map[string]bool)
	for _, e := range g.Edges(graph.Unordered) {
		from, to := packageOf(e.Source), packageOf(e.Target)
		nodes[from] = true
		nodes[to] = true
		if from != to {
			arrows[fmt.Sprintf("    %s --> %s", packageID(from), packageID(to))] = true
		}
	}

	names := make([]string, 0, len(nodes))
	for n := range nodes {
		names = append(names, n)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(arrows))
	for a := range arrows {
		lines = append(lines, a)
	}
	sort.Strings(lines)

	var b strings.Builder
	b.WriteString("flowchart LR")
	for _, n := range names {
		label := n
		if label == "" {
			label = "(default package)"
		}
		b.WriteString(fmt.Sprintf("\n    %s[\"%s\"]", packageID(n), label))
	}
	for _, l := range lines {
		b.WriteString("\n")
		b.WriteString(l)
	}
	return b.String()
}

func packageID(pkg string) string {
	return "pkg_" + sanitizeID(pkg)
}
