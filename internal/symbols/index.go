// Package symbols resolves Java type references to canonical identities
// against the whole analyzed tree plus built-in JDK knowledge.
package symbols

import (
	"github.com/olehluchkiv/javadeps/internal/model"
	"github.com/olehluchkiv/javadeps/internal/parser"
)

// Entry is a project declaration known to the index.
type Entry struct {
	Identity string
	Package  string
	Local    string
	Kind     model.Kind
	File     string

	// Supertypes are the unresolved extends and implements names, looked
	// up in scope when searching inherited member types.
	Supertypes []string
	scope      Scope
}

// Collision records two declarations sharing one identity. The later one
// (in unit order) wins.
type Collision struct {
	Identity string
	Previous string // file of the overwritten declaration
	Current  string
}

// Index is the frozen knowledge base used during extraction. It is built
// once from every parsed unit and never modified afterwards, so it can be
// read from many goroutines.
type Index struct {
	types map[string]Entry
	kb    *Knowledge
}

// BuildIndex registers every declaration of every unit. It must see the full
// unit set before any extraction starts: a reference in one file may point
// at a type declared in any other.
func BuildIndex(units []*parser.Unit, kb *Knowledge) (*Index, []Collision) {
	ix := &Index{types: make(map[string]Entry), kb: kb}
	if ix.kb == nil {
		ix.kb = NewKnowledge(nil)
	}

	var collisions []Collision
	for _, u := range units {
		for _, d := range u.Declarations() {
			if prev, ok := ix.types[d.Identity]; ok {
				collisions = append(collisions, Collision{
					Identity: d.Identity,
					Previous: prev.File,
					Current:  u.Path,
				})
			}
			ix.types[d.Identity] = Entry{
				Identity: d.Identity,
				Package:  u.Package,
				Local:    d.Local,
				Kind:     d.Kind,
				File:     u.Path,

				Supertypes: d.Supertypes,
				scope:      NewScope(u, d.Outer),
			}
		}
	}
	return ix, collisions
}

// Project returns the project declaration with the given identity.
func (ix *Index) Project(identity string) (Entry, bool) {
	e, ok := ix.types[identity]
	return e, ok
}

// Lookup finds identity among project declarations first, then built-ins,
// and returns its package.
func (ix *Index) Lookup(identity string) (string, bool) {
	if e, ok := ix.types[identity]; ok {
		return e.Package, true
	}
	return ix.kb.Lookup(identity)
}

// Len returns the number of project declarations.
func (ix *Index) Len() int { return len(ix.types) }
