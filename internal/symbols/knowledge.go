package symbols

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/olehluchkiv/javadeps/internal/model"
)

//go:embed jdk.yaml
var jdkYAML []byte

// Knowledge is the built-in part of the resolver knowledge base: types that
// exist without being declared in the analyzed tree.
type Knowledge struct {
	types map[string]string // identity -> package
}

// NewKnowledge builds a knowledge base from package -> local type names.
func NewKnowledge(pkgs map[string][]string) *Knowledge {
	k := &Knowledge{types: make(map[string]string)}
	for pkg, names := range pkgs {
		for _, name := range names {
			k.types[model.QualifiedName(pkg, name)] = pkg
		}
	}
	return k
}

// LoadKnowledge returns the embedded JDK knowledge base.
func LoadKnowledge() (*Knowledge, error) {
	var pkgs map[string][]string
	if err := yaml.Unmarshal(jdkYAML, &pkgs); err != nil {
		return nil, fmt.Errorf("decoding embedded JDK types: %w", err)
	}
	return NewKnowledge(pkgs), nil
}

// Add registers an extra fully-qualified type, e.g. from a library the
// analyzed code depends on. The package is derived from naming convention.
func (k *Knowledge) Add(identity string) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return
	}
	k.types[identity] = model.NamespaceOf(identity)
}

// Lookup returns the package of a known type.
func (k *Knowledge) Lookup(identity string) (string, bool) {
	pkg, ok := k.types[identity]
	return pkg, ok
}

// Len returns the number of known types.
func (k *Knowledge) Len() int { return len(k.types) }
