// Package exprtype implements the expression type resolver from spec
// §4.7: given an expression node, it returns a TypeString by AST
// dispatch on the node's phrase kind, consulting the variable table,
// the symbol store, and the name resolver as each case requires.
package exprtype

import (
	"strings"

	"github.com/tidesmith/symbolcore/pkg/langtype"
	"github.com/tidesmith/symbolcore/pkg/phrase"
	"github.com/tidesmith/symbolcore/pkg/resolve"
	"github.com/tidesmith/symbolcore/pkg/symbol"
	"github.com/tidesmith/symbolcore/pkg/symbolstore"
	"github.com/tidesmith/symbolcore/pkg/vartable"
)

// Resolver is constructed with the triple named in spec §6:
// {nameResolver, symbolStore, variableTable}.
type Resolver struct {
	Names *resolve.State
	Store *symbolstore.Store
	Vars  *vartable.Table
}

// New returns a Resolver wired to the given collaborators.
func New(names *resolve.State, store *symbolstore.Store, vars *vartable.Table) *Resolver {
	return &Resolver{Names: names, Store: store, Vars: vars}
}

// ResolveExpression dispatches on node.Kind() per the table in spec
// §4.7. Unknown or unhandled kinds return an empty TypeString, never
// an error — name resolution and expression typing are total.
func (r *Resolver) ResolveExpression(node phrase.Node) langtype.TypeString {
	if node == nil {
		return langtype.Empty()
	}
	switch node.Kind() {
	case phrase.KindSimpleVariable:
		return r.Vars.GetType(node.Text(), r.Names.ThisNameValue)

	case phrase.KindSubscriptExpression:
		base := node.ChildByField("base")
		return r.ResolveExpression(base).ArrayDereference()

	case phrase.KindScopedCallExpression:
		return r.memberType(node, symbol.KindMethod, symbol.ModStatic, 0, true)

	case phrase.KindScopedPropertyAccessExpression:
		return r.memberType(node, symbol.KindProperty, symbol.ModStatic, 0, true)

	case phrase.KindPropertyAccessExpression:
		return r.memberType(node, symbol.KindProperty, 0, symbol.ModStatic, false)

	case phrase.KindMethodCallExpression:
		return r.memberType(node, symbol.KindMethod, 0, symbol.ModStatic, false)

	case phrase.KindFunctionCallExpression:
		return r.functionCallType(node)

	case phrase.KindTernaryExpression:
		then := r.ResolveExpression(node.ChildByField("then"))
		els := r.ResolveExpression(node.ChildByField("else"))
		return then.Merge(els)

	case phrase.KindSimpleAssignmentExpression, phrase.KindByRefAssignmentExpression:
		return r.ResolveExpression(node.ChildByField("right"))

	case phrase.KindObjectCreationExpression:
		return r.objectCreationType(node)

	case phrase.KindClassTypeDesignator, phrase.KindInstanceOfDesignator:
		return r.classDesignatorType(node)

	case phrase.KindQualifiedName, phrase.KindFullyQualifiedName, phrase.KindRelativeQualifiedName:
		return langtype.New(r.Names.NamePhraseToFqn(node, resolve.KindClass))

	case phrase.KindRelativeScope:
		return langtype.New(r.Names.ThisNameValue)

	default:
		return langtype.Empty()
	}
}

// memberType implements the member-on-type lookup shared by the four
// member-access phrase kinds, applying the visibility filter from spec
// §4.7. static selects scoped (`::`) vs instance (`->`) access.
func (r *Resolver) memberType(node phrase.Node, kind symbol.Kind, requiredMod, excludedMod symbol.Modifiers, static bool) langtype.TypeString {
	var baseNode phrase.Node
	if static {
		baseNode = node.ChildByField("scope")
	} else {
		baseNode = node.ChildByField("base")
	}
	baseType := r.ResolveExpression(baseNode)

	memberNode := node.ChildByField("member")
	if memberNode == nil {
		return langtype.Empty()
	}
	name := memberNode.Text()
	if kind == symbol.KindProperty && !static && !strings.HasPrefix(name, "$") {
		name = "$" + name
	}

	queries := r.memberQueries(baseType, kind, name, requiredMod, excludedMod)
	m := r.Store.LookupMemberOnTypes(queries)
	if m == nil {
		return langtype.Empty()
	}
	return m.Type
}

func (r *Resolver) memberQueries(baseType langtype.TypeString, kind symbol.Kind, name string, requiredMod, excludedMod symbol.Modifiers) []symbolstore.TypeQuery {
	thisName := r.Names.ThisNameValue
	thisBase := r.Names.ThisBaseName
	var queries []symbolstore.TypeQuery
	for _, t := range baseType.AtomicClassArray() {
		queries = append(queries, symbolstore.TypeQuery{
			TypeName:  t,
			Predicate: visibilityPredicate(t, thisName, thisBase, kind, name, requiredMod, excludedMod),
		})
	}
	return queries
}

// visibilityPredicate implements spec §4.7's visibility filter: no
// exclusion from the declaring type itself, Private excluded from the
// immediate base, Private and Protected excluded from anywhere else.
func visibilityPredicate(typeName, thisName, thisBaseName string, kind symbol.Kind, name string, requiredMod, excludedMod symbol.Modifiers) symbolstore.Filter {
	return func(s *symbol.Symbol) bool {
		if s.Kind != kind || s.Name != name {
			return false
		}
		if requiredMod != 0 && !s.Modifiers.Has(requiredMod) {
			return false
		}
		if excludedMod != 0 && s.Modifiers.Has(excludedMod) {
			return false
		}
		switch {
		case typeName == thisName:
			return true
		case typeName == thisBaseName:
			return !s.Modifiers.Has(symbol.ModPrivate)
		default:
			return !s.Modifiers.Has(symbol.ModPrivate) && !s.Modifiers.Has(symbol.ModProtected)
		}
	}
}

func (r *Resolver) functionCallType(node phrase.Node) langtype.TypeString {
	callee := node.ChildByField("callee")
	if callee == nil {
		return langtype.Empty()
	}
	fqn := r.Names.NamePhraseToFqn(callee, resolve.KindFunction)
	fn := r.Store.Find(fqn, func(s *symbol.Symbol) bool { return s.Kind == symbol.KindFunction })
	if fn == nil {
		return langtype.Empty()
	}
	return fn.Type
}

func (r *Resolver) objectCreationType(node phrase.Node) langtype.TypeString {
	if anon := node.ChildByField("anonymousClass"); anon != nil {
		// The reader already synthesized a stable name for this
		// declaration; the expression resolver has no document handle
		// to regenerate it and returns empty rather than guessing.
		return langtype.Empty()
	}
	return r.classDesignatorType(node.ChildByField("designator"))
}

func (r *Resolver) classDesignatorType(node phrase.Node) langtype.TypeString {
	if node == nil {
		return langtype.Empty()
	}
	if node.Kind() == phrase.KindRelativeScope {
		return langtype.New(r.Names.ThisNameValue)
	}
	nameNode := node.ChildByField("name")
	if nameNode == nil && len(node.Children()) > 0 {
		nameNode = node.Children()[0]
	}
	if nameNode == nil {
		return langtype.Empty()
	}
	switch nameNode.Text() {
	case "self", "static":
		return langtype.New(r.Names.ThisNameValue)
	}
	return langtype.New(r.Names.NamePhraseToFqn(nameNode, resolve.KindClass))
}
