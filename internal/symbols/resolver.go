package symbols

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/olehluchkiv/javadeps/internal/model"
	"github.com/olehluchkiv/javadeps/internal/parser"
)

// BasePackage is implicitly imported into every unit.
const BasePackage = "java.lang"

// DefaultCacheSize bounds the resolver's memo table.
const DefaultCacheSize = 4096

// Scope is the lexical context a name is resolved in.
type Scope struct {
	Unit       string // unit path, part of the cache key
	Package    string
	Imports    []parser.Import
	Enclosing  []string // enclosing declaration identities, innermost first
	TypeParams []string
}

// NewScope returns the scope of the body of declaration d in unit u.
func NewScope(u *parser.Unit, d *parser.Declaration) Scope {
	s := Scope{Unit: u.Path, Package: u.Package, Imports: u.Imports}
	for cur := d; cur != nil; cur = cur.Outer {
		s.Enclosing = append(s.Enclosing, cur.Identity)
		s.TypeParams = append(s.TypeParams, cur.TypeParams...)
	}
	return s
}

// WithTypeParams returns a copy of s that also sees the given type
// variables, e.g. those of a generic method.
func (s Scope) WithTypeParams(names []string) Scope {
	if len(names) == 0 {
		return s
	}
	tps := make([]string, 0, len(s.TypeParams)+len(names))
	tps = append(tps, names...)
	tps = append(tps, s.TypeParams...)
	s.TypeParams = tps
	return s
}

func (s Scope) key(name string) string {
	inner := ""
	if len(s.Enclosing) > 0 {
		inner = s.Enclosing[0]
	}
	return s.Unit + "|" + s.Package + "|" + inner + "|" + strings.Join(s.TypeParams, ",") + "|" + name
}

func (s Scope) hasTypeParam(name string) bool {
	for _, tp := range s.TypeParams {
		if tp == name {
			return true
		}
	}
	return false
}

// Resolver maps names written in source to canonical identities. It only
// reads the index, so one Resolver can serve many goroutines.
type Resolver struct {
	ix    *Index
	cache *lru.Cache[string, model.TypeRef]
}

// NewResolver creates a resolver over a frozen index. A cacheSize of zero
// disables memoization.
func NewResolver(ix *Index, cacheSize int) (*Resolver, error) {
	r := &Resolver{ix: ix}
	if cacheSize > 0 {
		c, err := lru.New[string, model.TypeRef](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating resolver cache: %w", err)
		}
		r.cache = c
	}
	return r, nil
}

// Resolve resolves a type name (simple or dotted, without type arguments or
// array suffixes) in scope. Names it cannot map come back Unresolved with
// their text intact.
func (r *Resolver) Resolve(scope Scope, name string) model.TypeRef {
	if r.cache == nil {
		return r.resolve(scope, name)
	}
	key := scope.key(name)
	if ref, ok := r.cache.Get(key); ok {
		return ref
	}
	ref := r.resolve(scope, name)
	r.cache.Add(key, ref)
	return ref
}

func (r *Resolver) resolve(scope Scope, name string) model.TypeRef {
	return r.resolveName(scope, name, nil)
}

// resolveName is resolve with the set of (owner, member) pairs already
// searched through supertypes, which breaks inheritance cycles.
func (r *Resolver) resolveName(scope Scope, name string, seen map[string]bool) model.TypeRef {
	if !strings.Contains(name, ".") {
		if scope.hasTypeParam(name) {
			return model.TypeVarRef(name)
		}
		if id, pkg, ok := r.simple(scope, name, seen); ok {
			return model.ResolvedRef(name, id, pkg)
		}
		return model.UnresolvedRef(name)
	}

	if pkg, ok := r.ix.Lookup(name); ok {
		return model.ResolvedRef(name, name, pkg)
	}
	first, rest, _ := strings.Cut(name, ".")
	if scope.hasTypeParam(first) {
		return model.UnresolvedRef(name)
	}
	if id, _, ok := r.simple(scope, first, seen); ok {
		member := id + "." + rest
		if pkg, ok := r.ix.Lookup(member); ok {
			return model.ResolvedRef(name, member, pkg)
		}
	}
	return model.UnresolvedRef(name)
}

// simple applies the lookup order for a single identifier.
func (r *Resolver) simple(scope Scope, name string, seen map[string]bool) (string, string, bool) {
	for _, enc := range scope.Enclosing {
		if enc == name || strings.HasSuffix(enc, "."+name) {
			if e, ok := r.ix.Project(enc); ok {
				return enc, e.Package, true
			}
		}
		if e, ok := r.ix.Project(enc + "." + name); ok {
			return e.Identity, e.Package, true
		}
		if seen == nil {
			seen = make(map[string]bool)
		}
		if id, pkg, ok := r.inherited(enc, name, seen); ok {
			return id, pkg, true
		}
	}

	for _, imp := range scope.Imports {
		if imp.Wildcard || !lastSegmentIs(imp.Path, name) {
			continue
		}
		if pkg, ok := r.ix.Lookup(imp.Path); ok {
			return imp.Path, pkg, true
		}
	}

	if id := model.QualifiedName(scope.Package, name); id != "" {
		if pkg, ok := r.ix.Lookup(id); ok {
			return id, pkg, true
		}
	}

	for _, imp := range scope.Imports {
		if !imp.Wildcard {
			continue
		}
		id := imp.Path + "." + name
		if pkg, ok := r.ix.Lookup(id); ok {
			return id, pkg, true
		}
	}

	id := BasePackage + "." + name
	if pkg, ok := r.ix.Lookup(id); ok {
		return id, pkg, true
	}
	return "", "", false
}

// inherited finds a member type called name declared by a project
// supertype of owner, searching the supertype graph depth first.
func (r *Resolver) inherited(owner, name string, seen map[string]bool) (string, string, bool) {
	key := owner + "|" + name
	if seen[key] {
		return "", "", false
	}
	seen[key] = true

	e, ok := r.ix.Project(owner)
	if !ok {
		return "", "", false
	}
	for _, parent := range e.Supertypes {
		sid, ok := r.resolveName(e.scope, parent, seen).Identity()
		if !ok {
			continue
		}
		if m, ok := r.ix.Project(sid + "." + name); ok {
			return m.Identity, m.Package, true
		}
		if id, pkg, ok := r.inherited(sid, name, seen); ok {
			return id, pkg, true
		}
	}
	return "", "", false
}

func lastSegmentIs(path, name string) bool {
	return path == name || strings.HasSuffix(path, "."+name)
}
