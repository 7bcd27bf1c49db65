package diagram

import (
	"github.com/olehluchkiv/javadeps/internal/graph"
	"github.com/olehluchkiv/javadeps/internal/model"
)

// InteractiveType holds prepared data for a declared type in the viewer.
type InteractiveType struct {
	ID         string   `json:"id"`
	Identity   string   `json:"identity"`
	Name       string   `json:"name"`
	Package    string   `json:"package"`
	Kind       string   `json:"kind"`
	Methods    []string `json:"methods"`
	SourceFile string   `json:"sourceFile"`
	DependsOn  []string `json:"dependsOn"`
}

// InteractiveEdge holds one dependency between two node IDs.
type InteractiveEdge struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// InteractiveData holds all data the viewer's JSON endpoint returns.
type InteractiveData struct {
	Types       []InteractiveType `json:"types"`
	Edges       []InteractiveEdge `json:"edges"`
	RepoAddress string            `json:"repoAddress"`
}

// PrepareInteractiveData converts declarations and the graph into the data
// structure the viewer needs, computing sanitized node IDs and method
// signatures.
func PrepareInteractiveData(decls []model.TypeDecl, g *graph.Graph, opts DiagramOptions) InteractiveData {
	var data InteractiveData
	for _, d := range sortedDecls(decls) {
		var methods []string
		limit := len(d.Methods)
		if opts.MaxMethodsPerBox > 0 && limit > opts.MaxMethodsPerBox {
			limit = opts.MaxMethodsPerBox
		}
		for i := 0; i < limit; i++ {
			methods = append(methods, d.Methods[i].Signature())
		}
		data.Types = append(data.Types, InteractiveType{
			ID:         NodeID(d.Identity),
			Identity:   d.Identity,
			Name:       d.Name,
			Package:    d.Package,
			Kind:       d.Kind.String(),
			Methods:    methods,
			SourceFile: d.File,
			DependsOn:  g.Targets(d.Identity),
		})
	}
	for _, e := range g.Edges(graph.Sorted) {
		data.Edges = append(data.Edges, InteractiveEdge{
			SourceID: NodeID(e.Source),
			TargetID: NodeID(e.Target),
		})
	}
	return data
}

// Select restricts declarations and edges to the given identities. An edge
// is kept when both of its ends are selected.
func Select(decls []model.TypeDecl, g *graph.Graph, ids []string) ([]model.TypeDecl, *graph.Graph) {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	var subDecls []model.TypeDecl
	for _, d := range decls {
		if keep[d.Identity] {
			subDecls = append(subDecls, d)
		}
	}
	sub := graph.New()
	for _, e := range g.Edges(graph.Unordered) {
		if keep[e.Source] && keep[e.Target] {
			sub.Insert(e.Source, e.Target)
		}
	}
	return subDecls, sub
}

// FilterBySelection keeps the selected types plus everything directly
// connected to them, in either direction.
func FilterBySelection(decls []model.TypeDecl, g *graph.Graph, selected []string) ([]model.TypeDecl, *graph.Graph) {
	sel := make(map[string]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}

	related := make(map[string]bool)
	sub := graph.New()
	for _, e := range g.Edges(graph.Unordered) {
		if sel[e.Source] || sel[e.Target] {
			sub.Insert(e.Source, e.Target)
			related[e.Source] = true
			related[e.Target] = true
		}
	}

	var subDecls []model.TypeDecl
	for _, d := range decls {
		if sel[d.Identity] || related[d.Identity] {
			subDecls = append(subDecls, d)
		}
	}
	return subDecls, sub
}
