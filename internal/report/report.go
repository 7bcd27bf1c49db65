// Package report renders the human-readable console report.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olehluchkiv/javadeps/internal/model"
	"github.com/olehluchkiv/javadeps/internal/parser"
	"github.com/olehluchkiv/javadeps/internal/symbols"
)

const separator = "---------------------------------------"

// WriteSummary prints the number of units that were analyzed.
func WriteSummary(w io.Writer, parsed int) error {
	_, err := fmt.Fprintf(w, "Parsed %d compilation units.\n", parsed)
	return err
}

// WriteTypes prints one block per declaration.
func WriteTypes(w io.Writer, decls []model.TypeDecl) error {
	var b strings.Builder
	for _, d := range decls {
		writeType(&b, d)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeType(b *strings.Builder, d model.TypeDecl) {
	fmt.Fprintln(b, separator)
	fmt.Fprintf(b, "Class Name: %s\n", d.Name)
	fmt.Fprintf(b, "  Package: %s\n", d.Package)
	fmt.Fprintf(b, "  Is Interface: %t\n", d.IsInterface())
	fmt.Fprintf(b, "  Is Abstract: %t\n", d.IsAbstract())
	fmt.Fprintf(b, "  Is Public: %t\n", d.IsPublic())
	fmt.Fprintf(b, "  Line Number: %d\n", d.Line)
	for _, r := range d.Extends {
		fmt.Fprintf(b, "  Extends: %s\n", r.Text())
	}
	for _, r := range d.Implements {
		fmt.Fprintf(b, "  Implements: %s\n", r.Text())
	}

	fmt.Fprintln(b, "  Fields:")
	for _, f := range d.Fields {
		fmt.Fprintf(b, "    - %s%s %s\n", prefix(f.Modifiers), f.Type.Text(), f.Name)
	}

	fmt.Fprintln(b, "  Methods:")
	for _, m := range d.Methods {
		fmt.Fprintf(b, "    - %s%s %s\n", prefix(m.Modifiers), m.Return.Text(), m.Signature())
		fmt.Fprintf(b, "      Line Number: %d\n", m.Line)
		fmt.Fprintf(b, "      Body Line Count: %d\n", m.BodyLines)
	}
}

func prefix(m model.Modifiers) string {
	if len(m) == 0 {
		return ""
	}
	return m.String() + " "
}

// WriteFailures lists the files excluded from the analysis. Nothing is
// written when there are none.
func WriteFailures(w io.Writer, failures []parser.Failure) error {
	if len(failures) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Skipped %d file(s) that failed to parse:\n", len(failures))
	for _, f := range failures {
		fmt.Fprintf(&b, "  %s\n", f.Error())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCollisions lists identities declared more than once.
func WriteCollisions(w io.Writer, collisions []symbols.Collision) error {
	if len(collisions) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Duplicate type identities (%d), last declaration wins:\n", len(collisions))
	for _, c := range collisions {
		fmt.Fprintf(&b, "  %s: %s overrides %s\n", c.Identity, c.Current, c.Previous)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
