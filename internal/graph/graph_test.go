package graph

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olehluchkiv/javadeps/internal/logging"
	"github.com/olehluchkiv/javadeps/internal/model"
)

func ref(id, pkg string) model.TypeRef {
	return model.ResolvedRef(id, id, pkg)
}

func TestGraph_InsertIdempotent(t *testing.T) {
	g := New()
	assert.True(t, g.Insert("a.A", "a.B"))
	assert.False(t, g.Insert("a.A", "a.B"))
	assert.True(t, g.Insert("a.A", "a.C"))

	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Has("a.A", "a.B"))
	assert.False(t, g.Has("a.B", "a.A"))
	assert.Equal(t, []string{"a.A"}, g.Sources())
	assert.Equal(t, []string{"a.B", "a.C"}, g.Targets("a.A"))
	assert.Empty(t, g.Targets("missing"))
}

func TestGraph_EdgesSorted(t *testing.T) {
	g := New()
	g.Insert("b", "z")
	g.Insert("a", "y")
	g.Insert("b", "c")

	assert.Equal(t, []Edge{{"a", "y"}, {"b", "c"}, {"b", "z"}}, g.Edges(Sorted))
	assert.ElementsMatch(t, g.Edges(Sorted), g.Edges(Unordered))
}

func TestGraph_Merge(t *testing.T) {
	g, other := New(), New()
	g.Insert("a", "b")
	other.Insert("a", "b")
	other.Insert("a", "c")

	assert.Equal(t, 1, g.Merge(other))
	assert.Equal(t, 2, g.Len())
}

func TestGraph_ConcurrentInsert(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				g.Insert("src", fmt.Sprintf("t%d", i))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, g.Len())
}

// A has a field of type B and extends C, where C is in java.lang.
func TestBuilder_BaseNamespaceExcluded(t *testing.T) {
	b := NewBuilder(New(), DefaultPolicy(), logging.Discard())
	b.Add(model.TypeDecl{
		Identity: "p.A",
		Extends:  []model.TypeRef{ref("java.lang.C", "java.lang")},
		Fields:   []model.Field{{Name: "b", Type: ref("p.B", "p")}},
	})

	assert.Equal(t, []Edge{{"p.A", "p.B"}}, b.Graph().Edges(Sorted))
	assert.EqualValues(t, 1, b.Stats().BaseExcluded.Load())
}

// X declares f(Y): Z twice; the edges are stored once.
func TestBuilder_DuplicateCandidates(t *testing.T) {
	f := model.Method{
		Name:   "f",
		Return: ref("p.Z", "p"),
		Params: []model.Param{{Name: "y", Type: ref("p.Y", "p")}},
	}
	b := NewBuilder(New(), DefaultPolicy(), logging.Discard())
	added := b.Add(model.TypeDecl{Identity: "p.X", Methods: []model.Method{f, f}})

	assert.Equal(t, 2, added)
	assert.Equal(t, []Edge{{"p.X", "p.Y"}, {"p.X", "p.Z"}}, b.Graph().Edges(Sorted))
	assert.EqualValues(t, 2, b.Stats().Duplicate.Load())

	// adding the same declaration again changes nothing
	assert.Equal(t, 0, b.Add(model.TypeDecl{Identity: "p.X", Methods: []model.Method{f}}))
	assert.Equal(t, 2, b.Graph().Len())
}

func TestBuilder_Filters(t *testing.T) {
	decl := model.TypeDecl{
		Identity: "p.Node",
		Fields: []model.Field{
			{Name: "next", Type: ref("p.Node", "p")},
			{Name: "count", Type: model.PrimitiveRef("int")},
			{Name: "value", Type: model.TypeVarRef("T")},
			{Name: "ext", Type: model.UnresolvedRef("Widget<String>")},
			{Name: "nested", Type: ref("java.lang.Thread.State", "java.lang")},
			{Name: "items", Type: ref("java.util.List", "java.util").WithArgs([]model.TypeRef{ref("p.Item", "p")})},
		},
	}

	t.Run("default", func(t *testing.T) {
		b := NewBuilder(New(), DefaultPolicy(), logging.Discard())
		b.Add(decl)
		assert.Equal(t, []Edge{{"p.Node", "java.util.List"}}, b.Graph().Edges(Sorted))
		assert.EqualValues(t, 1, b.Stats().SelfEdge.Load())
		assert.EqualValues(t, 3, b.Stats().NotResolved.Load())
	})

	t.Run("keep unresolved", func(t *testing.T) {
		p := DefaultPolicy()
		p.KeepUnresolved = true
		b := NewBuilder(New(), p, logging.Discard())
		b.Add(decl)
		assert.Equal(t, []Edge{{"p.Node", "Widget"}, {"p.Node", "java.util.List"}}, b.Graph().Edges(Sorted))
	})

	t.Run("type arguments", func(t *testing.T) {
		p := DefaultPolicy()
		p.TypeArguments = true
		b := NewBuilder(New(), p, logging.Discard())
		b.Add(decl)
		assert.Equal(t, []Edge{{"p.Node", "java.util.List"}, {"p.Node", "p.Item"}}, b.Graph().Edges(Sorted))
	})
}

func TestBuilder_NoSelfLoopsOrBaseTargets(t *testing.T) {
	b := NewBuilder(New(), DefaultPolicy(), logging.Discard())
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("p.T%d", i)
		b.Add(model.TypeDecl{
			Identity:   id,
			Extends:    []model.TypeRef{ref(id, "p")},
			Implements: []model.TypeRef{ref("java.lang.Runnable", "java.lang"), ref(fmt.Sprintf("p.T%d", (i+1)%5), "p")},
		})
	}
	require.Equal(t, 5, b.Graph().Len())
	for _, e := range b.Graph().Edges(Unordered) {
		assert.NotEqual(t, e.Source, e.Target)
		assert.NotEqual(t, "java.lang", model.NamespaceOf(e.Target))
	}
}

func TestBaseText(t *testing.T) {
	assert.Equal(t, "Widget", baseText("Widget<String>"))
	assert.Equal(t, "a.Widget", baseText("a.Widget[]"))
	assert.Equal(t, "Widget", baseText("Widget..."))
	assert.Equal(t, "Widget", baseText("Widget"))
}

func TestBuilder_Fork(t *testing.T) {
	b := NewBuilder(New(), DefaultPolicy(), logging.Discard())
	b.Add(model.TypeDecl{Identity: "p.A", Fields: []model.Field{{Name: "b", Type: ref("p.B", "p")}}})

	fork := b.Fork()
	fork.Add(model.TypeDecl{
		Identity: "p.C",
		Extends:  []model.TypeRef{ref("java.lang.Object", "java.lang")},
		Fields:   []model.Field{{Name: "a", Type: ref("p.A", "p")}},
	})

	assert.Equal(t, []Edge{{"p.A", "p.B"}}, b.Graph().Edges(Sorted), "fork writes to its own graph")
	assert.Equal(t, []Edge{{"p.C", "p.A"}}, fork.Graph().Edges(Sorted))
	assert.EqualValues(t, 1, b.Stats().BaseExcluded.Load(), "counters are shared")

	assert.Equal(t, 1, b.Graph().Merge(fork.Graph()))
	assert.Equal(t, 2, b.Graph().Len())
}

// java.lang subpackages are ordinary namespaces.
func TestBuilder_BaseNamespaceIsExact(t *testing.T) {
	b := NewBuilder(New(), DefaultPolicy(), logging.Discard())
	b.Add(model.TypeDecl{
		Identity: "c.User",
		Fields: []model.Field{
			{Name: "m", Type: ref("java.lang.reflect.Method", "java.lang.reflect")},
			{Name: "s", Type: ref("java.lang.String", "java.lang")},
		},
	})

	assert.Equal(t, []Edge{{"c.User", "java.lang.reflect.Method"}}, b.Graph().Edges(Sorted))
}
