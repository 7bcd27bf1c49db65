package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, "com.acme.Owner", QualifiedName("com.acme", "Owner"))
	assert.Equal(t, "com.acme.Owner.Pet", QualifiedName("com.acme", "Owner.Pet"))
	assert.Equal(t, "Owner", QualifiedName("", "Owner"))
}

func TestNamespaceOf(t *testing.T) {
	tests := []struct {
		identity string
		want     string
	}{
		{"java.lang.Object", "java.lang"},
		{"java.util.Map.Entry", "java.util"},
		{"Owner", ""},
		{"com.acme.Owner", "com.acme"},
		{"com.acme.owner", "com.acme"},
	}
	for _, tt := range tests {
		t.Run(tt.identity, func(t *testing.T) {
			assert.Equal(t, tt.want, NamespaceOf(tt.identity))
		})
	}
}

func TestModifiers(t *testing.T) {
	m := Modifiers{"public", "static", "final"}
	assert.Equal(t, "public static final", m.String())
	assert.True(t, m.Has("static"))
	assert.False(t, m.Has("abstract"))
	assert.Equal(t, "", Modifiers(nil).String())
}

func TestTypeDeclFlags(t *testing.T) {
	d := TypeDecl{Kind: KindInterface, Modifiers: Modifiers{"public"}}
	assert.True(t, d.IsInterface())
	assert.True(t, d.IsPublic())
	assert.False(t, d.IsAbstract())

	d = TypeDecl{Kind: KindClass, Modifiers: Modifiers{"abstract"}}
	assert.False(t, d.IsInterface())
	assert.False(t, d.IsPublic())
	assert.True(t, d.IsAbstract())
}

func TestTypeRef_Variants(t *testing.T) {
	r := ResolvedRef("List", "java.util.List", "java.util")
	id, ok := r.Identity()
	assert.True(t, ok)
	assert.Equal(t, "java.util.List", id)
	assert.Equal(t, "java.util", r.Package())
	assert.Equal(t, "java.util.List", r.Target())
	assert.Equal(t, Resolved, r.Kind())

	u := UnresolvedRef("org.springframework.ui.Model")
	_, ok = u.Identity()
	assert.False(t, ok)
	assert.Equal(t, "org.springframework.ui", u.Package())
	assert.Equal(t, "org.springframework.ui.Model", u.Target())

	assert.Equal(t, Primitive, PrimitiveRef("int").Kind())
	assert.Equal(t, TypeVariable, TypeVarRef("T").Kind())
}

func TestTypeRef_WithTextKeepsResolution(t *testing.T) {
	r := ResolvedRef("List", "java.util.List", "java.util").WithText("List<String>")
	assert.Equal(t, "List<String>", r.Text())
	id, ok := r.Identity()
	assert.True(t, ok)
	assert.Equal(t, "java.util.List", id)
}

func TestMethodSignature(t *testing.T) {
	m := Method{
		Name: "find",
		Params: []Param{
			{Name: "id", Type: PrimitiveRef("int")},
			{Name: "name", Type: UnresolvedRef("String")},
		},
	}
	assert.Equal(t, "find(int id, String name)", m.Signature())
	assert.Equal(t, "close()", Method{Name: "close"}.Signature())
}
