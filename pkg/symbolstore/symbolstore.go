// Package symbolstore implements the symbol store described in spec
// §4.5: a map from document URI to SymbolTable, backed by the ordered
// index from pkg/symbolindex, with inheritance-aware member lookup.
//
// Per spec §9 this is where the core's only global mutable state lives;
// callers wrap add/remove with an external lock if interleaved with
// reads from another goroutine — the store itself performs no locking.
package symbolstore

import (
	"errors"
	"strings"

	"github.com/tidesmith/symbolcore/pkg/phrase"
	"github.com/tidesmith/symbolcore/pkg/symbol"
	"github.com/tidesmith/symbolcore/pkg/symbolindex"
)

// ErrDuplicateURI is returned by Add when a table for the URI already
// exists.
var ErrDuplicateURI = errors.New("symbolstore: duplicate uri")

// Filter selects Symbols during a find/match/member-lookup query.
type Filter func(*symbol.Symbol) bool

// TypeQuery pairs a type name with the member predicate to evaluate on
// it, for the multi-type lookup operations.
type TypeQuery struct {
	TypeName  string
	Predicate Filter
}

// Store is the symbol store.
type Store struct {
	tables map[string]*symbol.SymbolTable
	index  *symbolindex.Index
}

// New returns an empty Store.
func New() *Store {
	return &Store{tables: make(map[string]*symbol.SymbolTable), index: symbolindex.New()}
}

// Add indexes every indexable symbol reachable from table.Root and
// registers it under table.URI. Fails with ErrDuplicateURI if a table
// for that URI is already present.
func (st *Store) Add(table *symbol.SymbolTable) error {
	if _, exists := st.tables[table.URI]; exists {
		return ErrDuplicateURI
	}
	st.tables[table.URI] = table
	table.Root.Walk(func(s *symbol.Symbol) { st.index.Add(s) })
	return nil
}

// Remove drops the table for uri, if any, and removes its symbols from
// the index. Idempotent.
func (st *Store) Remove(uri string) {
	table, ok := st.tables[uri]
	if !ok {
		return
	}
	table.Root.Walk(func(s *symbol.Symbol) { st.index.Remove(s) })
	delete(st.tables, uri)
}

// OnParsedDocumentChange replaces the table for doc.URI() by rebuilding
// from the updated parsed document.
func (st *Store) OnParsedDocumentChange(doc phrase.Document) error {
	st.Remove(doc.URI())
	return st.Add(symbol.Create(doc))
}

func passFilter(filter Filter, s *symbol.Symbol) bool {
	return filter == nil || filter(s)
}

// Find returns the first Symbol whose name equals text exactly under
// filter.
func (st *Store) Find(text string, filter Filter) *symbol.Symbol {
	for _, s := range st.index.Find(strings.ToLower(text)) {
		if s.Name == text && passFilter(filter, s) {
			return s
		}
	}
	for _, s := range st.index.Find(strings.ToLower(unqualified(text))) {
		if s.Name == text && passFilter(filter, s) {
			return s
		}
	}
	return nil
}

// Match runs an index query (prefix, or fuzzy-ranked) and applies an
// optional post-filter.
func (st *Store) Match(text string, filter Filter, fuzzy bool) []*symbol.Symbol {
	var out []*symbol.Symbol
	for _, s := range st.index.Match(text, fuzzy) {
		if passFilter(filter, s) {
			out = append(out, s)
		}
	}
	return out
}

func unqualified(name string) string {
	if idx := strings.LastIndexByte(name, '\\'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// findType locates a Class/Interface/Trait symbol by exact fully
// qualified name.
func (st *Store) findType(fqn string) *symbol.Symbol {
	for _, s := range st.index.Find(strings.ToLower(fqn)) {
		if s.Name != fqn {
			continue
		}
		switch s.Kind {
		case symbol.KindClass, symbol.KindInterface, symbol.KindTrait:
			return s
		}
	}
	return nil
}

// LookupTypeMembers implements spec §4.5's member lookup algorithm:
// direct children of typeName matching predicate, plus an
// inheritance walk over associated Class/Trait (and Interface, when
// typeName itself names an Interface) entries, excluding Private
// members once the walk leaves the starting type. Cycle-protected.
func (st *Store) LookupTypeMembers(typeName string, predicate Filter) []*symbol.Symbol {
	start := st.findType(typeName)
	startKind := symbol.KindClass
	if start != nil {
		startKind = start.Kind
	}
	return st.lookupMembers(typeName, predicate, startKind, map[string]bool{})
}

func (st *Store) lookupMembers(typeName string, predicate Filter, startKind symbol.Kind, visited map[string]bool) []*symbol.Symbol {
	if visited[typeName] {
		return nil
	}
	visited[typeName] = true
	t := st.findType(typeName)
	if t == nil {
		return nil
	}
	var out []*symbol.Symbol
	for _, c := range t.Children {
		if passFilter(predicate, c) {
			out = append(out, c)
		}
	}
	excludePrivate := func(s *symbol.Symbol) bool {
		return passFilter(predicate, s) && !s.Modifiers.Has(symbol.ModPrivate)
	}
	for _, assoc := range t.Associated {
		walk := assoc.Kind == symbol.KindClass || assoc.Kind == symbol.KindTrait ||
			(assoc.Kind == symbol.KindInterface && startKind == symbol.KindInterface)
		if !walk {
			continue
		}
		out = append(out, st.lookupMembers(assoc.Name, excludePrivate, startKind, visited)...)
	}
	return out
}

// LookupTypeMember returns the first member matching predicate per
// LookupTypeMembers's walk order, or nil.
func (st *Store) LookupTypeMember(typeName string, predicate Filter) *symbol.Symbol {
	members := st.LookupTypeMembers(typeName, predicate)
	if len(members) == 0 {
		return nil
	}
	return members[0]
}

// LookupMembersOnTypes unions LookupTypeMembers across multiple type
// queries, deduplicated.
func (st *Store) LookupMembersOnTypes(queries []TypeQuery) []*symbol.Symbol {
	seen := map[*symbol.Symbol]bool{}
	var out []*symbol.Symbol
	for _, q := range queries {
		for _, s := range st.LookupTypeMembers(q.TypeName, q.Predicate) {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// LookupMemberOnTypes returns the first match across queries, in
// order, or nil.
func (st *Store) LookupMemberOnTypes(queries []TypeQuery) *symbol.Symbol {
	for _, q := range queries {
		if m := st.LookupTypeMember(q.TypeName, q.Predicate); m != nil {
			return m
		}
	}
	return nil
}

// Stats reports the number of indexed documents, for CLI/status use.
func (st *Store) Stats() (documents int) { return len(st.tables) }
