package model

import "strings"

// Kind is the declaration kind of a Java type.
type Kind int

const (
	KindClass Kind = iota
	KindInterface
	KindEnum
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	default:
		return "class"
	}
}

// Modifiers is the keyword modifier list of a declaration in source order.
// It is a set semantically; order is kept only for display.
type Modifiers []string

// String joins the modifiers with single spaces.
func (m Modifiers) String() string {
	return strings.Join(m, " ")
}

// Has reports whether the keyword kw is present.
func (m Modifiers) Has(kw string) bool {
	for _, s := range m {
		if s == kw {
			return true
		}
	}
	return false
}

// Field is one declared variable of a field declaration.
type Field struct {
	Name        string
	Type        TypeRef
	Modifiers   Modifiers
	Line        int
	Annotations []string
}

// Param is one formal parameter of a method.
type Param struct {
	Name    string
	Type    TypeRef
	Varargs bool
}

// Method is a method declaration. Constructors are not methods.
type Method struct {
	Name        string
	Return      TypeRef
	Params      []Param
	Modifiers   Modifiers
	Line        int
	HasBody     bool
	BodyLines   int // lines strictly between the body braces, 0 without a body
	Annotations []string
}

// Signature renders the method as "name(Type a, Type b)".
func (m Method) Signature() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteString("(")
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type.Text())
		b.WriteString(" ")
		b.WriteString(p.Name)
	}
	b.WriteString(")")
	return b.String()
}

// TypeDecl is the structural record of one class, interface, enum or record.
type TypeDecl struct {
	Name        string
	Package     string
	Identity    string // canonical key, see QualifiedName
	Kind        Kind
	Modifiers   Modifiers
	Line        int // 1-based, -1 when unknown
	Extends     []TypeRef
	Implements  []TypeRef
	Fields      []Field
	Methods     []Method
	Enclosing   string // identity of the enclosing declaration, "" for top level
	TypeParams  []string
	Annotations []string
	File        string
}

func (d TypeDecl) IsInterface() bool { return d.Kind == KindInterface }
func (d TypeDecl) IsAbstract() bool  { return d.Modifiers.Has("abstract") }
func (d TypeDecl) IsPublic() bool    { return d.Modifiers.Has("public") }

// QualifiedName joins a package and a (possibly dotted) local name. With no
// package the local name alone is the identity.
func QualifiedName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// NamespaceOf guesses the package part of a dotted identity using the Java
// naming convention: package segments are lower case, type segments start
// with an upper-case letter. Resolved references carry their package
// explicitly; this is only used for textual targets.
func NamespaceOf(identity string) string {
	parts := strings.Split(identity, ".")
	for i, p := range parts {
		if p != "" && p[0] >= 'A' && p[0] <= 'Z' {
			return strings.Join(parts[:i], ".")
		}
	}
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[:len(parts)-1], ".")
}
