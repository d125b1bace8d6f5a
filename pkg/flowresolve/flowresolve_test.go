package flowresolve

import (
	"sort"
	"testing"

	"github.com/tidesmith/symbolcore/pkg/langtype"
	"github.com/tidesmith/symbolcore/pkg/phrase"
	"github.com/tidesmith/symbolcore/pkg/resolve"
	"github.com/tidesmith/symbolcore/pkg/symbol"
	"github.com/tidesmith/symbolcore/pkg/symbolstore"
)

type fakeNode struct {
	kind     phrase.Kind
	text     string
	rng      phrase.Range
	children []phrase.Node
	fields   map[string]phrase.Node
}

func (n *fakeNode) Kind() phrase.Kind       { return n.kind }
func (n *fakeNode) Text() string            { return n.text }
func (n *fakeNode) Range() phrase.Range     { return n.rng }
func (n *fakeNode) Children() []phrase.Node { return n.children }
func (n *fakeNode) ChildByField(name string) phrase.Node {
	if n.fields == nil {
		return nil
	}
	return n.fields[name]
}

var nextLine int

func leaf(kind phrase.Kind, text string) *fakeNode {
	nextLine++
	pos := phrase.Position{Line: nextLine}
	return &fakeNode{kind: kind, text: text, rng: phrase.Range{Start: pos, End: pos}}
}

func sortedParts(ts langtype.TypeString) []string {
	p := append([]string(nil), ts.Parts()...)
	sort.Strings(p)
	return p
}

func TestBranchMergeScenario(t *testing.T) {
	nextLine = 0

	assignX := &fakeNode{kind: phrase.KindSimpleAssignmentExpression, fields: map[string]phrase.Node{
		"left": leaf(phrase.KindSimpleVariable, "$x"), "right": leaf(phrase.KindSimpleVariable, "$one"),
	}}
	thenAssign := &fakeNode{kind: phrase.KindSimpleAssignmentExpression, fields: map[string]phrase.Node{
		"left": leaf(phrase.KindSimpleVariable, "$x"), "right": leaf(phrase.KindSimpleVariable, "$s"),
	}}
	elseAssign := &fakeNode{kind: phrase.KindSimpleAssignmentExpression, fields: map[string]phrase.Node{
		"left": leaf(phrase.KindSimpleVariable, "$x"), "right": leaf(phrase.KindSimpleVariable, "$f"),
	}}
	cond := leaf(phrase.KindSimpleVariable, "$cond")
	consequent := &fakeNode{kind: phrase.KindCompoundStatement, children: []phrase.Node{thenAssign}}
	elseBody := &fakeNode{kind: phrase.KindCompoundStatement, children: []phrase.Node{elseAssign}}
	elseClause := &fakeNode{kind: phrase.KindElseClause, children: []phrase.Node{elseBody}}
	ifNode := &fakeNode{kind: phrase.KindIfStatement, children: []phrase.Node{cond, consequent, elseClause}}
	sentinel := leaf(phrase.KindTokenName, "SENTINEL")
	fnBody := &fakeNode{kind: phrase.KindCompoundStatement, children: []phrase.Node{assignX, ifNode, sentinel}}
	fn := &fakeNode{kind: phrase.KindFunctionDeclaration, children: []phrase.Node{fnBody}}

	fnSymbol := &symbol.Symbol{Kind: symbol.KindFunction, Children: []*symbol.Symbol{
		{Kind: symbol.KindParameter, Name: "$one", Type: langtype.New("int")},
		{Kind: symbol.KindParameter, Name: "$s", Type: langtype.New("string")},
		{Kind: symbol.KindParameter, Name: "$f", Type: langtype.New("float")},
	}}

	r := New(&resolve.State{}, symbolstore.New())
	halt := sentinel.Range().Start
	vars := r.Resolve(fn, fnSymbol, &halt)

	got := sortedParts(vars.GetType("$x", ""))
	want := []string{"float", "int", "string"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestForeachArrayDereference(t *testing.T) {
	nextLine = 0
	collection := leaf(phrase.KindSimpleVariable, "$xs")
	value := leaf(phrase.KindSimpleVariable, "$x")
	sentinel := leaf(phrase.KindTokenName, "SENTINEL")
	body := &fakeNode{kind: phrase.KindCompoundStatement, children: []phrase.Node{sentinel}}
	foreachNode := &fakeNode{
		kind: phrase.KindForeachStatement,
		fields: map[string]phrase.Node{
			"collection": collection,
			"value":      value,
		},
		children: []phrase.Node{collection, value, body},
	}
	fnBody := &fakeNode{kind: phrase.KindCompoundStatement, children: []phrase.Node{foreachNode}}
	fn := &fakeNode{kind: phrase.KindFunctionDeclaration, children: []phrase.Node{fnBody}}

	fnSymbol := &symbol.Symbol{Kind: symbol.KindFunction, Children: []*symbol.Symbol{
		{Kind: symbol.KindParameter, Name: "$xs", Type: langtype.New("(Foo|Bar)[]")},
	}}

	r := New(&resolve.State{}, symbolstore.New())
	halt := sentinel.Range().Start
	vars := r.Resolve(fn, fnSymbol, &halt)

	got := sortedParts(vars.GetType("$x", ""))
	want := []string{"Bar", "Foo"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
