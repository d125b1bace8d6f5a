// Package symbol implements the symbol data model (spec §3) and the
// single-traversal symbol reader (spec §4.3) that builds a per-document
// tree of Symbols from a parsed document.
package symbol

import (
	"encoding/json"
	"fmt"

	"github.com/tidesmith/symbolcore/pkg/langtype"
	"github.com/tidesmith/symbolcore/pkg/phrase"
)

// Kind is a Symbol's declaration kind.
type Kind int

const (
	KindNone Kind = iota
	KindClass
	KindInterface
	KindTrait
	KindConstant
	KindProperty
	KindMethod
	KindFunction
	KindParameter
	KindVariable
	KindNamespace
	KindClassConstant
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindClass:
		return "Class"
	case KindInterface:
		return "Interface"
	case KindTrait:
		return "Trait"
	case KindConstant:
		return "Constant"
	case KindProperty:
		return "Property"
	case KindMethod:
		return "Method"
	case KindFunction:
		return "Function"
	case KindParameter:
		return "Parameter"
	case KindVariable:
		return "Variable"
	case KindNamespace:
		return "Namespace"
	case KindClassConstant:
		return "ClassConstant"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Modifiers is a bitset of declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModFinal
	ModAbstract
	ModStatic
	ModReadOnly
	ModWriteOnly
	ModMagic
	ModAnonymous
	ModUse
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

// TypeSource records whether a Symbol's Type came from a type
// declaration (which wins) or a doc-comment annotation.
type TypeSource int

const (
	TypeSourceNone TypeSource = iota
	TypeSourceDeclaration
	TypeSourceDoc
)

// Location pairs a document URI with a source range within it.
type Location struct {
	URI   string       `json:"uri"`
	Range phrase.Range `json:"range"`
}

// AssociatedRef is a lightweight reference to another symbol by kind
// and fully qualified name: a base class, an implemented interface, a
// used trait, or an import target. It never owns the referenced tree;
// the store resolves it back by FQN.
type AssociatedRef struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

// Symbol is a single node of a per-document symbol tree.
type Symbol struct {
	Kind        Kind               `json:"kind"`
	Name        string             `json:"name"`
	Modifiers   Modifiers          `json:"modifiers,omitempty"`
	Type        langtype.TypeString `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Value       string             `json:"value,omitempty"`
	Location    *Location          `json:"location,omitempty"`
	Scope       string             `json:"scope,omitempty"`
	Associated  []AssociatedRef    `json:"associated,omitempty"`
	Children    []*Symbol          `json:"children,omitempty"`
	TypeSource  TypeSource         `json:"typeSource,omitempty"`
}

// AddChild appends c to s's children, setting c.Scope to s.Name per
// the attachment rule (spec §4.3: "on adding a child c to parent p, if
// p.name is non-empty, set c.scope = p.name").
func (s *Symbol) AddChild(c *Symbol) {
	if s.Name != "" {
		c.Scope = s.Name
	}
	s.Children = append(s.Children, c)
}

// Walk visits s and every descendant in pre-order, the order callers
// may rely on per spec §5.
func (s *Symbol) Walk(fn func(*Symbol)) {
	if s == nil {
		return
	}
	fn(s)
	for _, c := range s.Children {
		c.Walk(fn)
	}
}

// Indexable reports whether s should ever be inserted into the symbol
// index (spec §4.4 "non-index filter"): Parameters, non-file-scope
// Variables, Use symbols, and empty-name symbols are excluded.
func (s *Symbol) Indexable() bool {
	if s.Name == "" {
		return false
	}
	if s.Kind == KindParameter {
		return false
	}
	if s.Kind == KindVariable && s.Scope != "" {
		return false
	}
	if s.Modifiers.Has(ModUse) {
		return false
	}
	return true
}

// SymbolTable holds a single document's symbol tree: a root Symbol of
// kind None with an empty name per spec §3.
type SymbolTable struct {
	URI  string  `json:"uri"`
	Root *Symbol `json:"root"`
}

// Count returns the number of Symbols reachable from Root, Root
// included.
func (t *SymbolTable) Count() int {
	n := 0
	t.Root.Walk(func(*Symbol) { n++ })
	return n
}

// Symbols returns every Symbol reachable from Root in pre-order.
func (t *SymbolTable) Symbols() []*Symbol {
	var out []*Symbol
	t.Root.Walk(func(s *Symbol) { out = append(out, s) })
	return out
}

// CreateBuiltIn builds the core's baseline table from a JSON blob with
// the same structure as a serialized Symbol tree: `type` fields are
// stored as strings and rehydrated into TypeStrings automatically via
// TypeString.UnmarshalJSON during the recursive decode.
func CreateBuiltIn(data []byte) (*SymbolTable, error) {
	var table SymbolTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("symbol: decode built-in table: %w", err)
	}
	if table.Root == nil {
		table.Root = &Symbol{Kind: KindNone}
	}
	return &table, nil
}
