// Package flowresolve implements the variable-type resolver traversal
// from spec §4.8: a single pass over a function or method body that
// drives a vartable.Table using an exprtype.Resolver, with cooperative
// halt-at-token cancellation.
package flowresolve

import (
	"github.com/tidesmith/symbolcore/pkg/docparser"
	"github.com/tidesmith/symbolcore/pkg/exprtype"
	"github.com/tidesmith/symbolcore/pkg/langtype"
	"github.com/tidesmith/symbolcore/pkg/phrase"
	"github.com/tidesmith/symbolcore/pkg/resolve"
	"github.com/tidesmith/symbolcore/pkg/symbol"
	"github.com/tidesmith/symbolcore/pkg/symbolstore"
	"github.com/tidesmith/symbolcore/pkg/vartable"
)

// Resolver drives a vartable.Table over one function/method body,
// consulting an exprtype.Resolver for expression types.
type Resolver struct {
	Names *resolve.State
	Store *symbolstore.Store
	Vars  *vartable.Table
	Expr  *exprtype.Resolver

	haltAt  *phrase.Position
	halted  bool
}

// New returns a Resolver with a fresh variable table.
func New(names *resolve.State, store *symbolstore.Store) *Resolver {
	vars := vartable.New()
	return &Resolver{
		Names: names,
		Store: store,
		Vars:  vars,
		Expr:  exprtype.New(names, store, vars),
	}
}

// Resolve walks root (a FunctionDeclaration or MethodDeclaration node)
// in a single pass, driving the variable table per spec §4.8. fnSymbol
// is root's already-built Symbol, used to seed parameter types; it may
// be nil for bodies resolved without a known enclosing Symbol (e.g. an
// ad-hoc snippet). If haltAt is non-nil, the walk stops at the first
// leaf node (a node with no children) whose range contains that
// position, and Resolve returns the variable table snapshot valid
// immediately before that leaf.
func (r *Resolver) Resolve(root phrase.Node, fnSymbol *symbol.Symbol, haltAt *phrase.Position) *vartable.Table {
	r.haltAt = haltAt
	r.halted = false
	r.walk(root, nil, root, fnSymbol)
	return r.Vars
}

func (r *Resolver) walk(node phrase.Node, ancestry []phrase.Node, root phrase.Node, fnSymbol *symbol.Symbol) {
	if r.halted || node == nil {
		return
	}
	if r.haltAt != nil && len(node.Children()) == 0 && node.Range().Contains(*r.haltAt) {
		r.halted = true
		return
	}

	r.enter(node, ancestry, root, fnSymbol)
	childAncestry := append(append([]phrase.Node{}, ancestry...), node)
	for _, c := range node.Children() {
		r.walk(c, childAncestry, root, fnSymbol)
		if r.halted {
			return
		}
	}
	r.exit(node, ancestry)
}

func (r *Resolver) enter(node phrase.Node, ancestry []phrase.Node, root phrase.Node, fnSymbol *symbol.Symbol) {
	switch node.Kind() {
	case phrase.KindFunctionDeclaration, phrase.KindMethodDeclaration:
		r.Vars.PushScope(nil)
		if node == root && fnSymbol != nil {
			for _, p := range fnSymbol.Children {
				if p.Kind == symbol.KindParameter {
					r.Vars.SetType(p.Name, p.Type)
				}
			}
		}

	case phrase.KindClassDeclaration, phrase.KindTraitDeclaration,
		phrase.KindInterfaceDeclaration, phrase.KindAnonymousClassDeclaration:
		r.Vars.PushScope(nil)

	case phrase.KindAnonymousFunctionCreationExpression:
		r.Vars.PushScope(useVariableNames(node))

	case phrase.KindIfStatement, phrase.KindCaseStatement,
		phrase.KindDefaultStatement, phrase.KindElseIfClause:
		r.Vars.PushBranch()

	case phrase.KindElseClause:
		if len(ancestry) > 0 && !hasElseIfClauseList(ancestry[len(ancestry)-1]) {
			r.Vars.PopBranch()
		}
		r.Vars.PushBranch()

	case phrase.KindElseIfClauseList:
		r.Vars.PopBranch()

	case phrase.KindSimpleAssignmentExpression, phrase.KindByRefAssignmentExpression:
		r.handleAssignment(node)

	case phrase.KindInstanceOfExpression:
		r.handleInstanceOf(node)

	case phrase.KindForeachStatement:
		r.handleForeach(node)

	case phrase.KindCatchClause:
		r.handleCatch(node)

	case phrase.KindTokenDocComment:
		r.handleDocComment(node)
	}
}

func (r *Resolver) exit(node phrase.Node, ancestry []phrase.Node) {
	switch node.Kind() {
	case phrase.KindFunctionDeclaration, phrase.KindMethodDeclaration,
		phrase.KindClassDeclaration, phrase.KindTraitDeclaration,
		phrase.KindInterfaceDeclaration, phrase.KindAnonymousClassDeclaration,
		phrase.KindAnonymousFunctionCreationExpression:
		r.Vars.PopScope()

	case phrase.KindIfStatement:
		if !hasElseOrElseIf(node) {
			r.Vars.PopBranch()
		}
		r.Vars.PruneBranches()

	case phrase.KindSwitchStatement:
		r.Vars.PruneBranches()

	case phrase.KindCaseStatement, phrase.KindDefaultStatement,
		phrase.KindElseClause, phrase.KindElseIfClause:
		r.Vars.PopBranch()
	}
}

func (r *Resolver) handleAssignment(node phrase.Node) {
	lhs := node.ChildByField("left")
	rhs := node.ChildByField("right")
	if lhs == nil {
		return
	}
	switch lhs.Kind() {
	case phrase.KindSimpleVariable:
		r.Vars.SetType(lhs.Text(), r.Expr.ResolveExpression(rhs))
	case phrase.KindListIntrinsic:
		r.Vars.SetTypeMany(listNames(lhs), r.Expr.ResolveExpression(rhs).ArrayDereference())
	}
}

func (r *Resolver) handleInstanceOf(node phrase.Node) {
	lhs := node.ChildByField("left")
	rhs := node.ChildByField("right")
	if lhs == nil || lhs.Kind() != phrase.KindSimpleVariable || rhs == nil {
		return
	}
	fqn := r.Names.NamePhraseToFqn(rhs, resolve.KindClass)
	if fqn == "" {
		return
	}
	r.Vars.SetType(lhs.Text(), langtype.New(fqn))
}

func (r *Resolver) handleForeach(node phrase.Node) {
	collection := node.ChildByField("collection")
	collType := r.Expr.ResolveExpression(collection)
	valueNode := node.ChildByField("value")
	if valueNode == nil {
		return
	}
	switch valueNode.Kind() {
	case phrase.KindSimpleVariable:
		r.Vars.SetType(valueNode.Text(), collType.ArrayDereference())
	case phrase.KindListIntrinsic:
		r.Vars.SetTypeMany(listNames(valueNode), collType.ArrayDereference().ArrayDereference())
	}
}

func (r *Resolver) handleCatch(node phrase.Node) {
	varNode := node.ChildByField("variable")
	if varNode == nil {
		return
	}
	var caught langtype.TypeString
	if typesNode := node.ChildByField("types"); typesNode != nil {
		for _, c := range typesNode.Children() {
			caught = caught.Merge(r.Names.NamePhraseToFqn(c, resolve.KindClass))
		}
	}
	r.Vars.SetType(varNode.Text(), caught)
}

func (r *Resolver) handleDocComment(node phrase.Node) {
	doc := docparser.Parse(node.Text())
	for _, vt := range doc.VarTags() {
		if vt.Name == "" {
			continue
		}
		r.Vars.SetType(vt.Name, langtype.New(vt.Type).NameResolve(r.Names))
	}
}

func useVariableNames(node phrase.Node) []string {
	usesNode := node.ChildByField("uses")
	if usesNode == nil {
		return nil
	}
	var names []string
	for _, c := range usesNode.Children() {
		names = append(names, c.Text())
	}
	return names
}

func listNames(node phrase.Node) []string {
	var names []string
	for _, c := range node.Children() {
		if c.Kind() == phrase.KindSimpleVariable {
			names = append(names, c.Text())
		}
	}
	return names
}

func hasElseIfClauseList(node phrase.Node) bool {
	for _, c := range node.Children() {
		if c.Kind() == phrase.KindElseIfClauseList {
			return true
		}
	}
	return false
}

func hasElseOrElseIf(node phrase.Node) bool {
	for _, c := range node.Children() {
		if c.Kind() == phrase.KindElseClause || c.Kind() == phrase.KindElseIfClauseList {
			return true
		}
	}
	return false
}
