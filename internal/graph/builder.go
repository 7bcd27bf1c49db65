package graph

import (
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/olehluchkiv/javadeps/internal/model"
)

// DefaultBaseNamespace is the language's implicit namespace. Edges into it
// are noise in every dependency graph.
const DefaultBaseNamespace = "java.lang"

// Policy decides which candidate references become edges.
type Policy struct {
	BaseNamespace  string
	KeepUnresolved bool // keep unresolved refs, using their text as target
	TypeArguments  bool // also consider generic type arguments
}

// DefaultPolicy keeps only resolved references outside java.lang.
func DefaultPolicy() Policy {
	return Policy{BaseNamespace: DefaultBaseNamespace}
}

// Stats counts candidates per outcome.
type Stats struct {
	Added        atomic.Int64
	Duplicate    atomic.Int64
	NotResolved  atomic.Int64
	SelfEdge     atomic.Int64
	BaseExcluded atomic.Int64
}

// Builder derives edges from extracted declarations into a Graph. Add may
// be called from several goroutines.
type Builder struct {
	g      *Graph
	policy Policy
	stats  *Stats
	logger *slog.Logger
}

// NewBuilder creates a builder writing into g.
func NewBuilder(g *Graph, policy Policy, logger *slog.Logger) *Builder {
	return &Builder{g: g, policy: policy, stats: &Stats{}, logger: logger.With("component", "graph")}
}

// Fork returns a builder with the same policy and counters writing into a
// fresh graph. Forks are merged back with Graph.Merge.
func (b *Builder) Fork() *Builder {
	return &Builder{g: New(), policy: b.policy, stats: b.stats, logger: b.logger}
}

// Graph returns the graph being built.
func (b *Builder) Graph() *Graph { return b.g }

// Stats returns the running candidate counters, shared with every fork.
func (b *Builder) Stats() *Stats { return b.stats }

// Add inserts the edges contributed by decl and returns how many were new.
// Candidates are its supertypes, field types, and method return and
// parameter types.
func (b *Builder) Add(decl model.TypeDecl) int {
	added := 0
	for _, ref := range b.candidates(decl) {
		target, ok := b.accept(decl.Identity, ref)
		if !ok {
			continue
		}
		if b.g.Insert(decl.Identity, target) {
			b.stats.Added.Add(1)
			added++
		} else {
			b.stats.Duplicate.Add(1)
		}
	}
	b.logger.Debug("added type", "type", decl.Identity, "edges", added)
	return added
}

func (b *Builder) candidates(decl model.TypeDecl) []model.TypeRef {
	var refs []model.TypeRef
	add := func(r model.TypeRef) {
		refs = append(refs, r)
		if b.policy.TypeArguments {
			refs = appendArgs(refs, r)
		}
	}
	for _, r := range decl.Extends {
		add(r)
	}
	for _, r := range decl.Implements {
		add(r)
	}
	for _, f := range decl.Fields {
		add(f.Type)
	}
	for _, m := range decl.Methods {
		add(m.Return)
		for _, p := range m.Params {
			add(p.Type)
		}
	}
	return refs
}

// appendArgs flattens nested type arguments and wildcard bounds.
func appendArgs(refs []model.TypeRef, r model.TypeRef) []model.TypeRef {
	for _, a := range r.Args() {
		refs = append(refs, a)
		refs = appendArgs(refs, a)
	}
	return refs
}

// accept applies the filters in order: resolution, self-edge, base
// namespace.
func (b *Builder) accept(source string, ref model.TypeRef) (string, bool) {
	var target string
	switch ref.Kind() {
	case model.Resolved:
		target, _ = ref.Identity()
	case model.Unresolved:
		if !b.policy.KeepUnresolved || ref.Text() == "" {
			b.stats.NotResolved.Add(1)
			return "", false
		}
		target = baseText(ref.Target())
	default:
		b.stats.NotResolved.Add(1)
		return "", false
	}

	if target == source {
		b.stats.SelfEdge.Add(1)
		return "", false
	}
	if b.policy.BaseNamespace != "" && ref.Package() == b.policy.BaseNamespace {
		b.stats.BaseExcluded.Add(1)
		return "", false
	}
	return target, true
}

// baseText strips type arguments, array brackets and varargs dots from a
// textual type.
func baseText(s string) string {
	if i := strings.IndexAny(s, "<["); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(strings.TrimSuffix(s, "..."))
}
