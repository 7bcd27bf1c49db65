package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/olehluchkiv/javadeps/internal/model"
	"github.com/olehluchkiv/javadeps/internal/symbols"
)

var primitiveTypes = map[string]bool{
	"integral_type":       true,
	"floating_point_type": true,
	"boolean_type":        true,
	"void_type":           true,
}

func isTypeNode(n *sitter.Node) bool {
	switch n.Type() {
	case "type_identifier", "scoped_type_identifier", "generic_type",
		"array_type", "annotated_type", "wildcard":
		return true
	}
	return primitiveTypes[n.Type()]
}

// typeRef converts a type node into a reference. The display text is the
// source text with whitespace collapsed; the resolved identity comes from
// the base type with type arguments and array dimensions stripped.
func (x *unitReader) typeRef(scope symbols.Scope, n *sitter.Node) model.TypeRef {
	text := x.text(n)
	switch t := n.Type(); {
	case primitiveTypes[t]:
		return model.PrimitiveRef(text)

	case t == "type_identifier":
		return x.e.res.Resolve(scope, text)

	case t == "scoped_type_identifier":
		return x.e.res.Resolve(scope, compact(text))

	case t == "generic_type":
		var base model.TypeRef
		var args []model.TypeRef
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "type_identifier", "scoped_type_identifier":
				base = x.typeRef(scope, c)
			case "type_arguments":
				args = x.typeArgs(scope, c)
			}
		}
		return base.WithText(text).WithArgs(args)

	case t == "array_type":
		elem := n.ChildByFieldName("element")
		if elem == nil {
			return model.UnresolvedRef(text)
		}
		// an array depends on its element type
		return x.typeRef(scope, elem).WithText(text)

	case t == "annotated_type":
		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			if c := n.NamedChild(i); isTypeNode(c) {
				return x.typeRef(scope, c).WithText(text)
			}
		}

	case t == "wildcard":
		var bounds []model.TypeRef
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); isTypeNode(c) {
				bounds = append(bounds, x.typeRef(scope, c))
			}
		}
		return model.TypeVarRef(text).WithArgs(bounds)
	}
	return model.UnresolvedRef(text)
}

func (x *unitReader) typeArgs(scope symbols.Scope, n *sitter.Node) []model.TypeRef {
	var args []model.TypeRef
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); isTypeNode(c) {
			args = append(args, x.typeRef(scope, c))
		}
	}
	return args
}
