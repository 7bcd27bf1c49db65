package analysis

import (
	"strings"

	"github.com/olehluchkiv/javadeps/internal/graph"
	"github.com/olehluchkiv/javadeps/internal/model"
)

// FilterOptions narrows a result for presentation.
type FilterOptions struct {
	PackagePrefix string // keep edges with at least one end under this package
	ExcludeJDK    bool   // drop edges into java.* and javax.*
}

// Filter returns a copy of result restricted by opts. The original result
// is not modified. Types are kept when they are under the package prefix
// or take part in a kept edge.
func Filter(result *Result, opts FilterOptions) *Result {
	if opts.PackagePrefix == "" && !opts.ExcludeJDK {
		return result
	}

	pkgOf := make(map[string]string, len(result.Types))
	for _, d := range result.Types {
		pkgOf[d.Identity] = d.Package
	}
	packageOf := func(id string) string {
		if p, ok := pkgOf[id]; ok {
			return p
		}
		return model.NamespaceOf(id)
	}

	filtered := *result
	filtered.Graph = graph.New()
	involved := make(map[string]bool)

	for _, e := range result.Graph.Edges(graph.Unordered) {
		if opts.ExcludeJDK && isJDK(packageOf(e.Target)) {
			continue
		}
		if opts.PackagePrefix != "" &&
			!underPackage(packageOf(e.Source), opts.PackagePrefix) &&
			!underPackage(packageOf(e.Target), opts.PackagePrefix) {
			continue
		}
		filtered.Graph.Insert(e.Source, e.Target)
		involved[e.Source] = true
		involved[e.Target] = true
	}

	filtered.Types = nil
	for _, d := range result.Types {
		if involved[d.Identity] || opts.PackagePrefix == "" || underPackage(d.Package, opts.PackagePrefix) {
			filtered.Types = append(filtered.Types, d)
		}
	}
	return &filtered
}

// isJDK reports whether pkg belongs to the Java platform.
func isJDK(pkg string) bool {
	return underPackage(pkg, "java") || underPackage(pkg, "javax")
}

// underPackage reports whether pkg equals prefix or is nested below it.
func underPackage(pkg, prefix string) bool {
	return pkg == prefix || strings.HasPrefix(pkg, prefix+".")
}
