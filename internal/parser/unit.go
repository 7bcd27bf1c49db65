package parser

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/olehluchkiv/javadeps/internal/model"
)

// Unit is one parsed source file (a translation unit). The syntax tree stays
// alive until Close.
type Unit struct {
	Path    string
	Package string // "" for the default package
	Imports []Import

	src  []byte
	tree *sitter.Tree

	declsOnce sync.Once
	decls     []*Declaration
}

// Import is one import declaration.
type Import struct {
	Path     string // dotted name without the trailing ".*"
	Static   bool
	Wildcard bool
	Line     int
}

// Declaration is a class, interface, enum or record declared in a unit.
type Declaration struct {
	Node       *sitter.Node
	Name       string
	Kind       model.Kind
	Local      string // dotted name inside the package, e.g. "Outer.Inner"
	Identity   string
	Outer      *Declaration
	TypeParams []string
	Supertypes []string // extends and implements names as written, without type arguments
}

// Root returns the root node of the syntax tree.
func (u *Unit) Root() *sitter.Node { return u.tree.RootNode() }

// Close releases the syntax tree.
func (u *Unit) Close() {
	if u.tree != nil {
		u.tree.Close()
		u.tree = nil
	}
}

// Text returns the source text covered by n.
func (u *Unit) Text(n *sitter.Node) string {
	return n.Content(u.src)
}

// Declarations returns every type declaration in the unit in document
// pre-order, nested declarations after their enclosing one. Local and
// anonymous classes inside method bodies are not included.
func (u *Unit) Declarations() []*Declaration {
	u.declsOnce.Do(func() {
		u.collect(u.Root(), nil)
	})
	return u.decls
}

var declKinds = map[string]model.Kind{
	"class_declaration":     model.KindClass,
	"interface_declaration": model.KindInterface,
	"enum_declaration":      model.KindEnum,
	"record_declaration":    model.KindRecord,
}

// bodyKinds are the containers whose children can be member declarations.
var bodyKinds = map[string]bool{
	"program":                true,
	"class_body":             true,
	"interface_body":         true,
	"enum_body":              true,
	"enum_body_declarations": true,
}

func (u *Unit) collect(n *sitter.Node, outer *Declaration) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		kind, ok := declKinds[child.Type()]
		if !ok {
			if bodyKinds[child.Type()] {
				u.collect(child, outer)
			}
			continue
		}

		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		d := &Declaration{
			Node:       child,
			Name:       u.Text(nameNode),
			Kind:       kind,
			Outer:      outer,
			TypeParams: u.typeParams(child),
			Supertypes: u.supertypes(child),
		}
		d.Local = d.Name
		if outer != nil {
			d.Local = outer.Local + "." + d.Name
		}
		d.Identity = model.QualifiedName(u.Package, d.Local)
		u.decls = append(u.decls, d)

		if body := child.ChildByFieldName("body"); body != nil {
			u.collect(body, d)
		}
	}
}

// typeParams returns the names declared by a type_parameters child of n.
func (u *Unit) typeParams(n *sitter.Node) []string {
	tp := n.ChildByFieldName("type_parameters")
	if tp == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(tp.NamedChildCount()); i++ {
		param := tp.NamedChild(i)
		if param.Type() != "type_parameter" {
			continue
		}
		for j := 0; j < int(param.NamedChildCount()); j++ {
			c := param.NamedChild(j)
			if c.Type() == "type_identifier" || c.Type() == "identifier" {
				names = append(names, u.Text(c))
				break
			}
		}
	}
	return names
}

// supertypes returns the base names listed in the superclass, extends and
// implements clauses of n.
func (u *Unit) supertypes(n *sitter.Node) []string {
	var names []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		switch child := n.NamedChild(i); child.Type() {
		case "superclass", "extends_interfaces", "super_interfaces":
			names = u.appendTypeNames(names, child)
		}
	}
	return names
}

func (u *Unit) appendTypeNames(names []string, n *sitter.Node) []string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "type_list" {
			names = u.appendTypeNames(names, child)
			continue
		}
		if name := u.baseTypeName(child); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// baseTypeName strips type arguments and annotations from a type node.
func (u *Unit) baseTypeName(n *sitter.Node) string {
	switch n.Type() {
	case "type_identifier", "scoped_type_identifier":
		return compact(u.Text(n))
	case "generic_type":
		if base := lastNamedOfType(n, "type_identifier", "scoped_type_identifier"); base != nil {
			return compact(u.Text(base))
		}
	case "annotated_type":
		if c := n.NamedChild(int(n.NamedChildCount()) - 1); c != nil {
			return u.baseTypeName(c)
		}
	}
	return ""
}

// readHeader fills Package and Imports from the top-level statements.
func (u *Unit) readHeader() {
	root := u.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			if name := lastNamedOfType(child, "identifier", "scoped_identifier"); name != nil {
				u.Package = compact(u.Text(name))
			}
		case "import_declaration":
			u.Imports = append(u.Imports, u.readImport(child))
		}
	}
}

func (u *Unit) readImport(n *sitter.Node) Import {
	imp := Import{Line: int(n.StartPoint().Row) + 1}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.Wildcard = true
		case "identifier", "scoped_identifier":
			imp.Path = compact(u.Text(child))
		}
	}
	return imp
}

func lastNamedOfType(n *sitter.Node, types ...string) *sitter.Node {
	var found *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		for _, t := range types {
			if child.Type() == t {
				found = child
			}
		}
	}
	return found
}

// compact drops all whitespace, for dotted names split across lines.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
