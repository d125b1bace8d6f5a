// Package resolve implements the name resolver: mapping a textual name
// to a fully qualified name given the current namespace, the imports in
// scope, and the enclosing class context (self/static/parent).
//
// State is kept deliberately free of pkg/symbol so that pkg/symbol can
// depend on pkg/resolve without a cycle; ImportedSymbol is the minimal
// shape the resolver needs from an imported declaration.
package resolve

import (
	"strings"

	"github.com/tidesmith/symbolcore/pkg/phrase"
)

// Kind identifies the symbol kind a name lookup is searching for.
type Kind int

const (
	KindClass Kind = iota
	KindFunction
	KindConstant
)

// ImportedSymbol is the resolver's view of one `use` import: its local
// alias, the kind it was imported as, and the fully qualified name it
// points to.
type ImportedSymbol struct {
	Kind      Kind
	Name      string // local alias (or last segment of the FQN)
	TargetFQN string
}

// State is the name-resolver state described in spec §3: mutated only
// by the symbol reader as it enters namespace/use/class constructs,
// otherwise read-only for queries.
type State struct {
	NamespaceName   string
	ThisNameValue   string
	ThisBaseName    string
	ImportedSymbols []ImportedSymbol
}

// ThisName satisfies langtype.NameResolver.
func (s *State) ThisName() string { return s.ThisNameValue }

// ResolveNotFullyQualifiedClass satisfies langtype.NameResolver by
// fixing kind to Class.
func (s *State) ResolveNotFullyQualifiedClass(name string) string {
	return s.ResolveNotFullyQualified(name, KindClass)
}

// ResolveRelative implements spec §4.2 resolveRelative.
func (s *State) ResolveRelative(n string) string {
	if n == "" {
		return ""
	}
	if s.NamespaceName != "" {
		return s.NamespaceName + "\\" + n
	}
	return n
}

// ResolveNotFullyQualified implements spec §4.2 resolveNotFullyQualified.
func (s *State) ResolveNotFullyQualified(n string, kind Kind) string {
	if n == "" {
		return ""
	}
	switch n {
	case "self", "static":
		return s.ThisNameValue
	case "parent":
		return s.ThisBaseName
	}
	if idx := strings.IndexByte(n, '\\'); idx >= 0 {
		prefix := n[:idx]
		for _, imp := range s.ImportedSymbols {
			if imp.Kind == KindClass && imp.Name == prefix {
				return imp.TargetFQN + n[idx:]
			}
		}
		return s.ResolveRelative(n)
	}
	for _, imp := range s.ImportedSymbols {
		if imp.Kind == kind && imp.Name == n {
			return imp.TargetFQN
		}
	}
	return s.ResolveRelative(n)
}

// NamePhraseToFqn implements spec §4.2 namePhraseToFqn: dispatches on
// the node's phrase kind to decide which resolve strategy applies.
func (s *State) NamePhraseToFqn(node phrase.Node, kind Kind) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case phrase.KindFullyQualifiedName:
		return node.Text()
	case phrase.KindRelativeQualifiedName:
		return s.ResolveRelative(node.Text())
	default: // Qualified, or a bare token name.
		return s.ResolveNotFullyQualified(node.Text(), kind)
	}
}
