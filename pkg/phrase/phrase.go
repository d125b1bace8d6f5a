// Package phrase defines the contract the symbol-analysis core consumes
// from a parsed document: a node/kind/range shape, a two-phase
// pre-/post-order visitor, and the small set of document-level services
// (offset mapping, token text, anonymous naming) the core needs but
// never implements itself.
//
// Lexing and parsing a concrete source language is out of scope for the
// core (see spec.md §1); this package only names the interface a real
// parser front-end must satisfy. pkg/sourcelang provides one such
// front-end, used in tests and by the CLI.
package phrase

// Position is a zero-based line/character location, mirroring the LSP
// Position shape.
type Position struct {
	Line      int
	Character int
}

// Range is a source range from Start to End; Contains treats both ends
// as inclusive.
type Range struct {
	Start Position
	End   Position
}

// Contains reports whether offset-comparable position p falls within r,
// using the natural line/character ordering.
func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || (p.Line == r.Start.Line && p.Character < r.Start.Character) {
		return false
	}
	if p.Line > r.End.Line || (p.Line == r.End.Line && p.Character > r.End.Character) {
		return false
	}
	return true
}

// Kind identifies the syntactic category of a Node. It spans both
// phrase kinds (non-terminals) and token kinds (terminals) in a single
// numbering, the way a dense table keyed by numeric kind would in the
// parser this interface stands in for; callers never need to know
// which sub-range a value falls in, they match specific constants.
type Kind int

const (
	KindNone Kind = iota

	// Tokens.
	KindTokenDocComment
	KindTokenName
	KindTokenVariable

	// Namespace / import.
	KindNamespaceDefinition
	KindNamespaceUseDeclaration
	KindNamespaceUseClause
	KindNamespaceUseGroupClause

	// Constants / functions.
	KindConstDeclaration
	KindConstElement
	KindFunctionDeclaration
	KindFunctionDeclarationHeader
	KindParameterDeclaration
	KindTypeDeclaration

	// Classes / interfaces / traits.
	KindClassDeclaration
	KindClassDeclarationHeader
	KindClassBaseClause
	KindClassInterfaceClause
	KindInterfaceDeclaration
	KindInterfaceDeclarationHeader
	KindInterfaceBaseClause
	KindTraitDeclaration
	KindTraitDeclarationHeader
	KindTraitUseClause

	// Members.
	KindClassConstDeclaration
	KindClassConstElement
	KindPropertyDeclaration
	KindPropertyElement
	KindMethodDeclaration
	KindMethodDeclarationHeader
	KindMemberModifierList

	// Anonymous constructs.
	KindAnonymousClassDeclaration
	KindAnonymousClassDeclarationHeader
	KindAnonymousFunctionCreationExpression
	KindAnonymousFunctionUseVariable

	// Variables / assignment.
	KindSimpleVariable
	KindSimpleAssignmentExpression
	KindByRefAssignmentExpression
	KindListIntrinsic

	// Control flow.
	KindForeachStatement
	KindForeachKey
	KindForeachValue
	KindCatchClause
	KindCatchNameList
	KindIfStatement
	KindElseIfClause
	KindElseIfClauseList
	KindElseClause
	KindSwitchStatement
	KindCaseStatement
	KindDefaultStatement
	KindCompoundStatement

	// Names.
	KindQualifiedName
	KindFullyQualifiedName
	KindRelativeQualifiedName
	KindRelativeScope

	// Expressions.
	KindSubscriptExpression
	KindScopedCallExpression
	KindScopedPropertyAccessExpression
	KindScopedMemberName
	KindPropertyAccessExpression
	KindMemberName
	KindMethodCallExpression
	KindFunctionCallExpression
	KindArgumentExpressionList
	KindTernaryExpression
	KindObjectCreationExpression
	KindClassTypeDesignator
	KindInstanceOfExpression
	KindInstanceOfDesignator
	KindExpressionStatement
)

// IsToken reports whether k names a terminal rather than a phrase.
func (k Kind) IsToken() bool {
	return k == KindTokenDocComment || k == KindTokenName || k == KindTokenVariable
}

// Node is a single node of a parsed document's syntax tree: a phrase
// (non-terminal) or a token (terminal). Fields are the named children a
// phrase exposes (e.g. "name", "body", "type", "value"); an unknown or
// absent field returns nil.
type Node interface {
	Kind() Kind
	Text() string
	Range() Range
	Children() []Node
	ChildByField(name string) Node
}

// Visitor receives a document's nodes in a depth-first traversal.
// PreOrder returns false to skip descending into node's children.
// PostOrder is always called for a node whose PreOrder returned true,
// after all of its children have been visited (i.e. truly post-order);
// siblings receive PostOrder in the same order as PreOrder.
type Visitor interface {
	PreOrder(node Node, ancestry []Node) bool
	PostOrder(node Node, ancestry []Node)
}

// Document is a single parsed source file: a syntax tree plus the
// document-level services the core needs at every name and doc-type.
type Document interface {
	URI() string
	Root() Node
	Walk(v Visitor)
	PositionAt(offset int) Position
	OffsetAt(pos Position) int
	TokenText(n Node) string
	// AnonymousName returns a stable synthesized name for an anonymous
	// class or function declaration node, derived from its source range.
	AnonymousName(n Node) string
}

// WalkNode performs a generic depth-first pre/post-order traversal of a
// Node tree, for Document implementations that have no cheaper native
// traversal of their own.
func WalkNode(root Node, v Visitor) {
	walk(root, nil, v)
}

func walk(n Node, ancestry []Node, v Visitor) {
	if n == nil {
		return
	}
	if !v.PreOrder(n, ancestry) {
		return
	}
	childAncestry := append(append([]Node{}, ancestry...), n)
	for _, c := range n.Children() {
		walk(c, childAncestry, v)
	}
	v.PostOrder(n, ancestry)
}
