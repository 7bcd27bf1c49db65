package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olehluchkiv/javadeps/internal/loader"
	"github.com/olehluchkiv/javadeps/internal/logging"
	"github.com/olehluchkiv/javadeps/internal/model"
	"github.com/olehluchkiv/javadeps/internal/parser"
	"github.com/olehluchkiv/javadeps/internal/symbols"
)

// extractAll parses the given sources as one project and extracts every unit.
func extractAll(t *testing.T, srcs ...string) []model.TypeDecl {
	t.Helper()
	p := parser.New(logging.Discard())
	var units []*parser.Unit
	for i, src := range srcs {
		rel := string(rune('A'+i)) + ".java"
		u, err := p.Parse(context.Background(), loader.File{Path: rel, Rel: rel, Content: []byte(src)})
		require.NoError(t, err)
		t.Cleanup(u.Close)
		units = append(units, u)
	}
	kb, err := symbols.LoadKnowledge()
	require.NoError(t, err)
	ix, _ := symbols.BuildIndex(units, kb)
	res, err := symbols.NewResolver(ix, symbols.DefaultCacheSize)
	require.NoError(t, err)

	ex := New(res, logging.Discard())
	var out []model.TypeDecl
	for _, u := range units {
		out = append(out, ex.Extract(u)...)
	}
	return out
}

const ownerSrc = `package com.acme.owner;

import java.util.List;
import java.util.Map;
import com.acme.pet.Pet;

/** An owner. */
@Entity
public abstract class Owner<T> extends Person implements Comparable<Owner<T>>, java.io.Serializable {

    private static final long serialVersionUID = 1L;

    @Column
    protected List<Pet> pets, former;
    int[] scores, matrix[];
    Map<String, ? extends Pet> byName;

    public Owner(String name) {
        super();
    }

    @Override
    public int compareTo(Owner<T> other) {
        return 0;
    }

    public abstract Pet adopt(String name, int... ids);

    static <E> E first(List<E> items) { return items.get(0); }

    public String describe() {
        String s = "owner";

        return s;
    }
}
`

const personSrc = `package com.acme.owner;

public class Person {}
`

const petSrc = `package com.acme.pet;

public interface Pet extends Named {
    int LEGS = 4;
    String name();
}

interface Named {}
`

func find(t *testing.T, decls []model.TypeDecl, identity string) model.TypeDecl {
	t.Helper()
	for _, d := range decls {
		if d.Identity == identity {
			return d
		}
	}
	require.Failf(t, "declaration not found", "%s", identity)
	return model.TypeDecl{}
}

func TestExtract_Class(t *testing.T) {
	decls := extractAll(t, ownerSrc, personSrc, petSrc)
	owner := find(t, decls, "com.acme.owner.Owner")

	assert.Equal(t, "Owner", owner.Name)
	assert.Equal(t, "com.acme.owner", owner.Package)
	assert.Equal(t, model.KindClass, owner.Kind)
	assert.Equal(t, model.Modifiers{"public", "abstract"}, owner.Modifiers)
	assert.Equal(t, []string{"@Entity"}, owner.Annotations)
	assert.True(t, owner.IsAbstract())
	assert.True(t, owner.IsPublic())
	assert.False(t, owner.IsInterface())
	assert.Equal(t, 8, owner.Line)
	assert.Equal(t, []string{"T"}, owner.TypeParams)
	assert.Equal(t, "A.java", owner.File)

	require.Len(t, owner.Extends, 1)
	id, ok := owner.Extends[0].Identity()
	require.True(t, ok)
	assert.Equal(t, "com.acme.owner.Person", id)

	require.Len(t, owner.Implements, 2)
	assert.Equal(t, "Comparable<Owner<T>>", owner.Implements[0].Text())
	id, _ = owner.Implements[0].Identity()
	assert.Equal(t, "java.lang.Comparable", id)
	require.Len(t, owner.Implements[0].Args(), 1)
	id, _ = owner.Implements[0].Args()[0].Identity()
	assert.Equal(t, "com.acme.owner.Owner", id)
	id, _ = owner.Implements[1].Identity()
	assert.Equal(t, "java.io.Serializable", id)
}

func TestExtract_Fields(t *testing.T) {
	owner := find(t, extractAll(t, ownerSrc, personSrc, petSrc), "com.acme.owner.Owner")

	type row struct {
		mods, typ, name string
		kind            model.RefKind
	}
	var got []row
	for _, f := range owner.Fields {
		got = append(got, row{f.Modifiers.String(), f.Type.Text(), f.Name, f.Type.Kind()})
	}
	assert.Equal(t, []row{
		{"private static final", "long", "serialVersionUID", model.Primitive},
		{"protected", "List<Pet>", "pets", model.Resolved},
		{"protected", "List<Pet>", "former", model.Resolved},
		{"", "int[]", "scores", model.Primitive},
		{"", "int[][]", "matrix", model.Primitive},
		{"", "Map<String, ? extends Pet>", "byName", model.Resolved},
	}, got)

	assert.Equal(t, []string{"@Column"}, owner.Fields[1].Annotations)
	assert.Equal(t, 13, owner.Fields[1].Line)

	wildcard := owner.Fields[5].Type.Args()[1]
	assert.Equal(t, model.TypeVariable, wildcard.Kind())
	require.Len(t, wildcard.Args(), 1)
	id, _ := wildcard.Args()[0].Identity()
	assert.Equal(t, "com.acme.pet.Pet", id)
}

func TestExtract_Methods(t *testing.T) {
	owner := find(t, extractAll(t, ownerSrc, personSrc, petSrc), "com.acme.owner.Owner")

	// the constructor is not a method
	require.Len(t, owner.Methods, 4)

	cmp := owner.Methods[0]
	assert.Equal(t, "compareTo", cmp.Name)
	assert.Equal(t, model.Modifiers{"public"}, cmp.Modifiers)
	assert.Equal(t, []string{"@Override"}, cmp.Annotations)
	assert.Equal(t, "int", cmp.Return.Text())
	assert.Equal(t, 22, cmp.Line)
	assert.True(t, cmp.HasBody)
	assert.Equal(t, 1, cmp.BodyLines)
	assert.Equal(t, "compareTo(Owner<T> other)", cmp.Signature())

	adopt := owner.Methods[1]
	assert.False(t, adopt.HasBody)
	assert.Equal(t, 0, adopt.BodyLines)
	require.Len(t, adopt.Params, 2)
	assert.Equal(t, "ids", adopt.Params[1].Name)
	assert.True(t, adopt.Params[1].Varargs)
	assert.Equal(t, "int...", adopt.Params[1].Type.Text())
	id, _ := adopt.Return.Identity()
	assert.Equal(t, "com.acme.pet.Pet", id)

	first := owner.Methods[2]
	assert.Equal(t, model.TypeVariable, first.Return.Kind())
	assert.Equal(t, 0, first.BodyLines)

	describe := owner.Methods[3]
	assert.Equal(t, 3, describe.BodyLines)
}

func TestExtract_InterfaceAndNested(t *testing.T) {
	decls := extractAll(t, petSrc)
	require.Len(t, decls, 2)

	pet := decls[0]
	assert.True(t, pet.IsInterface())
	require.Len(t, pet.Extends, 1)
	id, _ := pet.Extends[0].Identity()
	assert.Equal(t, "com.acme.pet.Named", id)
	require.Len(t, pet.Fields, 1)
	assert.Equal(t, "LEGS", pet.Fields[0].Name)
	require.Len(t, pet.Methods, 1)
	assert.False(t, pet.Methods[0].HasBody)
}

func TestExtract_RecordAndEnum(t *testing.T) {
	decls := extractAll(t, `package geo;

public record Point(int x, Label label) {
    enum Label {
        A, B;
        private int weight;
        int weight() {
            return weight;
        }
    }
}
`)
	require.Len(t, decls, 2)

	point := decls[0]
	assert.Equal(t, model.KindRecord, point.Kind)
	require.Len(t, point.Fields, 2)
	assert.Equal(t, "label", point.Fields[1].Name)
	id, _ := point.Fields[1].Type.Identity()
	assert.Equal(t, "geo.Point.Label", id)
	assert.Empty(t, point.Methods, "nested members stay with the nested type")

	label := decls[1]
	assert.Equal(t, "geo.Point", label.Enclosing)
	require.Len(t, label.Fields, 1)
	require.Len(t, label.Methods, 1)
	assert.Equal(t, 1, label.Methods[0].BodyLines)
}

func TestBodyLines_SingleLine(t *testing.T) {
	decls := extractAll(t, "class A { void f() {} void g() { int x = 1; } }")
	require.Len(t, decls[0].Methods, 2)
	for _, m := range decls[0].Methods {
		assert.Equal(t, 0, m.BodyLines, m.Name)
	}
}
