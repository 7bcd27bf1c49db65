package model

// RefKind tags the variant held by a TypeRef.
type RefKind uint8

const (
	// Unresolved is a reference the resolver could not map to a known type.
	Unresolved RefKind = iota
	// Resolved carries a canonical fully-qualified identity.
	Resolved
	// Primitive covers primitive types and void.
	Primitive
	// TypeVariable covers generic type parameters and wildcards.
	TypeVariable
)

func (k RefKind) String() string {
	switch k {
	case Resolved:
		return "resolved"
	case Primitive:
		return "primitive"
	case TypeVariable:
		return "type-variable"
	default:
		return "unresolved"
	}
}

// TypeRef is a textual type reference plus its resolution outcome.
// The zero value is an unresolved empty reference.
type TypeRef struct {
	text     string
	kind     RefKind
	identity string
	pkg      string
	args     []TypeRef
}

func UnresolvedRef(text string) TypeRef { return TypeRef{text: text, kind: Unresolved} }
func PrimitiveRef(text string) TypeRef  { return TypeRef{text: text, kind: Primitive} }
func TypeVarRef(text string) TypeRef    { return TypeRef{text: text, kind: TypeVariable} }

// ResolvedRef builds a reference resolved to identity, declared in pkg.
func ResolvedRef(text, identity, pkg string) TypeRef {
	return TypeRef{text: text, kind: Resolved, identity: identity, pkg: pkg}
}

func (r TypeRef) Kind() RefKind   { return r.kind }
func (r TypeRef) Text() string    { return r.text }
func (r TypeRef) Args() []TypeRef { return r.args }

// Identity returns the canonical identity and true for resolved references.
func (r TypeRef) Identity() (string, bool) {
	if r.kind != Resolved {
		return "", false
	}
	return r.identity, true
}

// Package returns the declaring package of a resolved reference, or the
// conventional namespace guess for an unresolved one.
func (r TypeRef) Package() string {
	if r.kind == Resolved {
		return r.pkg
	}
	return NamespaceOf(r.text)
}

// Target is the graph node name for this reference: the identity when
// resolved, the text otherwise.
func (r TypeRef) Target() string {
	if r.kind == Resolved {
		return r.identity
	}
	return r.text
}

// WithText returns a copy displaying text instead of the looked-up name.
func (r TypeRef) WithText(text string) TypeRef {
	r.text = text
	return r
}

// WithArgs returns a copy carrying the given type arguments.
func (r TypeRef) WithArgs(args []TypeRef) TypeRef {
	r.args = args
	return r
}
