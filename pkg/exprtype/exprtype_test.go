package exprtype

import (
	"testing"

	"github.com/tidesmith/symbolcore/pkg/langtype"
	"github.com/tidesmith/symbolcore/pkg/phrase"
	"github.com/tidesmith/symbolcore/pkg/resolve"
	"github.com/tidesmith/symbolcore/pkg/symbol"
	"github.com/tidesmith/symbolcore/pkg/symbolstore"
	"github.com/tidesmith/symbolcore/pkg/vartable"
)

type fakeNode struct {
	kind   phrase.Kind
	text   string
	fields map[string]phrase.Node
}

func (n *fakeNode) Kind() phrase.Kind       { return n.kind }
func (n *fakeNode) Text() string            { return n.text }
func (n *fakeNode) Range() phrase.Range     { return phrase.Range{} }
func (n *fakeNode) Children() []phrase.Node { return nil }
func (n *fakeNode) ChildByField(name string) phrase.Node {
	if n.fields == nil {
		return nil
	}
	return n.fields[name]
}

func simpleVar(name string) *fakeNode { return &fakeNode{kind: phrase.KindSimpleVariable, text: name} }

func TestResolveSimpleVariable(t *testing.T) {
	vars := vartable.New()
	vars.SetType("$x", langtype.New("int"))
	r := New(&resolve.State{}, symbolstore.New(), vars)
	got := r.ResolveExpression(simpleVar("$x"))
	if got.String() != "int" {
		t.Fatalf("got %q", got.String())
	}
}

func TestResolveSubscriptDereferences(t *testing.T) {
	vars := vartable.New()
	vars.SetType("$xs", langtype.New("(Foo|Bar)[]"))
	r := New(&resolve.State{}, symbolstore.New(), vars)
	sub := &fakeNode{kind: phrase.KindSubscriptExpression, fields: map[string]phrase.Node{"base": simpleVar("$xs")}}
	got := r.ResolveExpression(sub)
	if len(got.AtomicClassArray()) != 2 {
		t.Fatalf("got %v", got.Parts())
	}
}

func TestResolveTernaryMerges(t *testing.T) {
	vars := vartable.New()
	vars.SetType("$a", langtype.New("int"))
	vars.SetType("$b", langtype.New("string"))
	r := New(&resolve.State{}, symbolstore.New(), vars)
	ternary := &fakeNode{kind: phrase.KindTernaryExpression, fields: map[string]phrase.Node{
		"then": simpleVar("$a"),
		"else": simpleVar("$b"),
	}}
	got := r.ResolveExpression(ternary)
	if len(got.Parts()) != 2 {
		t.Fatalf("got %v", got.Parts())
	}
}

func TestPropertyAccessVisibility(t *testing.T) {
	store := symbolstore.New()
	c := &symbol.Symbol{Kind: symbol.KindClass, Name: "C"}
	c.AddChild(&symbol.Symbol{Kind: symbol.KindProperty, Name: "$p", Modifiers: symbol.ModProtected, Type: langtype.New("int")})
	root := &symbol.Symbol{Kind: symbol.KindNone}
	root.AddChild(c)
	if err := store.Add(&symbol.SymbolTable{URI: "file:///c.lang", Root: root}); err != nil {
		t.Fatal(err)
	}

	vars := vartable.New()
	vars.SetType("$obj", langtype.New("C"))

	names := &resolve.State{ThisNameValue: "C"}
	r := New(names, store, vars)

	access := &fakeNode{
		kind: phrase.KindPropertyAccessExpression,
		fields: map[string]phrase.Node{
			"base":   simpleVar("$obj"),
			"member": &fakeNode{kind: phrase.KindTokenName, text: "p"},
		},
	}
	got := r.ResolveExpression(access)
	if got.String() != "int" {
		t.Fatalf("expected visible from within C, got %q", got.String())
	}

	outside := &resolve.State{ThisNameValue: "Elsewhere"}
	r2 := New(outside, store, vars)
	got2 := r2.ResolveExpression(access)
	if !got2.IsEmpty() {
		t.Fatalf("expected protected property hidden from outside, got %q", got2.String())
	}
}
