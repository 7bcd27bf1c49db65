// Package extract reads structural metadata out of parsed units: the
// members, supertypes and modifiers of every declared type, with each type
// reference resolved against the project index.
package extract

import (
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/olehluchkiv/javadeps/internal/model"
	"github.com/olehluchkiv/javadeps/internal/parser"
	"github.com/olehluchkiv/javadeps/internal/symbols"
)

// Extractor converts declarations into model.TypeDecl records. It only
// reads units and the resolver, so it may be shared across goroutines.
type Extractor struct {
	res    *symbols.Resolver
	logger *slog.Logger
}

// New creates an Extractor resolving references with res.
func New(res *symbols.Resolver, logger *slog.Logger) *Extractor {
	return &Extractor{res: res, logger: logger.With("component", "extract")}
}

// Extract returns one record per declaration of u, in document order.
func (e *Extractor) Extract(u *parser.Unit) []model.TypeDecl {
	decls := u.Declarations()
	out := make([]model.TypeDecl, 0, len(decls))
	for _, d := range decls {
		out = append(out, e.Declaration(u, d))
	}
	e.logger.Debug("extracted unit", "path", u.Path, "types", len(out))
	return out
}

// Declaration extracts a single declaration of u.
func (e *Extractor) Declaration(u *parser.Unit, d *parser.Declaration) model.TypeDecl {
	x := &unitReader{e: e, u: u, scope: symbols.NewScope(u, d)}

	td := model.TypeDecl{
		Name:       d.Name,
		Package:    u.Package,
		Identity:   d.Identity,
		Kind:       d.Kind,
		Line:       line(d.Node),
		TypeParams: d.TypeParams,
		File:       u.Path,
	}
	if d.Outer != nil {
		td.Enclosing = d.Outer.Identity
	}
	td.Modifiers, td.Annotations = x.modifiers(d.Node)
	x.supertypes(d, &td)

	if d.Kind == model.KindRecord {
		td.Fields = append(td.Fields, x.recordComponents(d.Node)...)
	}
	body := d.Node.ChildByFieldName("body")
	if body != nil {
		x.members(body, &td)
	}
	return td
}

// unitReader carries the per-declaration state of one extraction.
type unitReader struct {
	e     *Extractor
	u     *parser.Unit
	scope symbols.Scope
}

func (x *unitReader) text(n *sitter.Node) string {
	return collapse(x.u.Text(n))
}

func (x *unitReader) supertypes(d *parser.Declaration, td *model.TypeDecl) {
	n := d.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "superclass":
			td.Extends = append(td.Extends, x.typeList(child)...)
		case "extends_interfaces":
			// an interface's supertypes are its extends list
			td.Extends = append(td.Extends, x.typeList(child)...)
		case "super_interfaces":
			td.Implements = append(td.Implements, x.typeList(child)...)
		}
	}
}

// typeList converts every type under n, looking through a type_list wrapper.
func (x *unitReader) typeList(n *sitter.Node) []model.TypeRef {
	var refs []model.TypeRef
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "type_list" {
			refs = append(refs, x.typeList(child)...)
			continue
		}
		if isTypeNode(child) {
			refs = append(refs, x.typeRef(x.scope, child))
		}
	}
	return refs
}

// members walks a class, interface, enum or record body. Nested type
// declarations are skipped: their members belong to them.
func (x *unitReader) members(body *sitter.Node, td *model.TypeDecl) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "field_declaration", "constant_declaration":
			td.Fields = append(td.Fields, x.fields(child)...)
		case "method_declaration":
			td.Methods = append(td.Methods, x.method(child))
		case "enum_body_declarations":
			x.members(child, td)
		}
	}
}

func (x *unitReader) fields(n *sitter.Node) []model.Field {
	mods, anns := x.modifiers(n)
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return nil
	}
	ref := x.typeRef(x.scope, typeNode)

	var out []model.Field
	for i := 0; i < int(n.NamedChildCount()); i++ {
		v := n.NamedChild(i)
		if v.Type() != "variable_declarator" {
			continue
		}
		name := v.ChildByFieldName("name")
		if name == nil {
			continue
		}
		fref := ref
		if dims := v.ChildByFieldName("dimensions"); dims != nil {
			fref = ref.WithText(ref.Text() + compact(x.u.Text(dims)))
		}
		out = append(out, model.Field{
			Name:        x.u.Text(name),
			Type:        fref,
			Modifiers:   mods,
			Line:        line(n),
			Annotations: anns,
		})
	}
	return out
}

func (x *unitReader) recordComponents(n *sitter.Node) []model.Field {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return nil
	}
	var out []model.Field
	for _, p := range x.params(x.scope, params) {
		out = append(out, model.Field{Name: p.Name, Type: p.Type, Line: line(n)})
	}
	return out
}

func (x *unitReader) method(n *sitter.Node) model.Method {
	scope := x.scope.WithTypeParams(typeParamNames(x.u, n))
	m := model.Method{Line: line(n)}
	m.Modifiers, m.Annotations = x.modifiers(n)
	if name := n.ChildByFieldName("name"); name != nil {
		m.Name = x.u.Text(name)
	}
	if t := n.ChildByFieldName("type"); t != nil {
		m.Return = x.typeRef(scope, t)
		if dims := n.ChildByFieldName("dimensions"); dims != nil {
			m.Return = m.Return.WithText(m.Return.Text() + compact(x.u.Text(dims)))
		}
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		m.Params = x.params(scope, params)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		m.HasBody = true
		m.BodyLines = BodyLines(body)
	}
	return m
}

// BodyLines counts the lines strictly between the opening and closing brace
// of a block. Bodies on a single line count as zero.
func BodyLines(block *sitter.Node) int {
	n := int(block.EndPoint().Row) - int(block.StartPoint().Row) - 1
	if n < 0 {
		return 0
	}
	return n
}

func (x *unitReader) params(scope symbols.Scope, n *sitter.Node) []model.Param {
	var out []model.Param
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		switch p.Type() {
		case "formal_parameter":
			param := model.Param{}
			if name := p.ChildByFieldName("name"); name != nil {
				param.Name = x.u.Text(name)
			}
			if t := p.ChildByFieldName("type"); t != nil {
				param.Type = x.typeRef(scope, t)
				if dims := p.ChildByFieldName("dimensions"); dims != nil {
					param.Type = param.Type.WithText(param.Type.Text() + compact(x.u.Text(dims)))
				}
			}
			out = append(out, param)
		case "spread_parameter":
			out = append(out, x.spread(scope, p))
		}
	}
	return out
}

// spread reads a varargs parameter. Its type has no field name: it is the
// first type child, and the name sits in a variable_declarator.
func (x *unitReader) spread(scope symbols.Scope, p *sitter.Node) model.Param {
	param := model.Param{Varargs: true}
	for i := 0; i < int(p.NamedChildCount()); i++ {
		c := p.NamedChild(i)
		switch {
		case c.Type() == "variable_declarator":
			if name := c.ChildByFieldName("name"); name != nil {
				param.Name = x.u.Text(name)
			}
		case c.Type() == "identifier" && param.Name == "":
			param.Name = x.u.Text(c)
		case isTypeNode(c) && param.Type.Text() == "":
			ref := x.typeRef(scope, c)
			param.Type = ref.WithText(ref.Text() + "...")
		}
	}
	return param
}

// modifiers splits a declaration's modifiers node into keywords and
// annotations, both as written.
func (x *unitReader) modifiers(n *sitter.Node) (model.Modifiers, []string) {
	var mods model.Modifiers
	var anns []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		m := n.NamedChild(i)
		if m.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(m.ChildCount()); j++ {
			c := m.Child(j)
			switch {
			case c.Type() == "marker_annotation" || c.Type() == "annotation":
				anns = append(anns, x.text(c))
			case !c.IsNamed():
				mods = append(mods, c.Type())
			}
		}
		break
	}
	return mods, anns
}

func typeParamNames(u *parser.Unit, n *sitter.Node) []string {
	tp := n.ChildByFieldName("type_parameters")
	if tp == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(tp.NamedChildCount()); i++ {
		param := tp.NamedChild(i)
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

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// collapse folds whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// compact removes all whitespace.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
