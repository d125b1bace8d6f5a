package symbol

import (
	"testing"

	"github.com/tidesmith/symbolcore/pkg/phrase"
)

// fakeNode is a minimal hand-built phrase.Node for exercising the
// reader without a real parser front-end.
type fakeNode struct {
	kind     phrase.Kind
	text     string
	children []phrase.Node
	fields   map[string]phrase.Node
}

func (n *fakeNode) Kind() phrase.Kind        { return n.kind }
func (n *fakeNode) Text() string             { return n.text }
func (n *fakeNode) Range() phrase.Range      { return phrase.Range{} }
func (n *fakeNode) Children() []phrase.Node  { return n.children }
func (n *fakeNode) ChildByField(name string) phrase.Node {
	if n.fields == nil {
		return nil
	}
	return n.fields[name]
}

func tok(kind phrase.Kind, text string) *fakeNode { return &fakeNode{kind: kind, text: text} }

type fakeDoc struct {
	uri  string
	root phrase.Node
}

func (d *fakeDoc) URI() string                         { return d.uri }
func (d *fakeDoc) Root() phrase.Node                   { return d.root }
func (d *fakeDoc) Walk(v phrase.Visitor)               { phrase.WalkNode(d.root, v) }
func (d *fakeDoc) PositionAt(offset int) phrase.Position { return phrase.Position{} }
func (d *fakeDoc) OffsetAt(pos phrase.Position) int      { return 0 }
func (d *fakeDoc) TokenText(n phrase.Node) string        { return n.Text() }
func (d *fakeDoc) AnonymousName(n phrase.Node) string    { return ".anonymous.1.1.1.1" }

func TestReaderNamespaceAndFunction(t *testing.T) {
	fnName := tok(phrase.KindTokenName, "other")
	fnHeader := &fakeNode{
		kind:   phrase.KindFunctionDeclarationHeader,
		fields: map[string]phrase.Node{"name": fnName},
	}
	fn := &fakeNode{
		kind:     phrase.KindFunctionDeclaration,
		children: []phrase.Node{fnHeader},
	}
	nsName := tok(phrase.KindTokenName, "Foo\\Bar")
	nsBody := &fakeNode{kind: phrase.KindCompoundStatement, children: []phrase.Node{fn}}
	ns := &fakeNode{
		kind:     phrase.KindNamespaceDefinition,
		fields:   map[string]phrase.Node{"name": nsName, "body": nsBody},
		children: []phrase.Node{nsBody},
	}
	root := &fakeNode{kind: phrase.KindNone, children: []phrase.Node{ns}}
	table := Create(&fakeDoc{uri: "file:///test.lang", root: root})

	var found *Symbol
	table.Root.Walk(func(s *Symbol) {
		if s.Kind == KindFunction {
			found = s
		}
	})
	if found == nil {
		t.Fatal("expected a Function symbol")
	}
	if found.Name != "Foo\\Bar\\other" {
		t.Fatalf("got name %q", found.Name)
	}
	if found.Scope != "Foo\\Bar" {
		t.Fatalf("got scope %q", found.Scope)
	}
}

func TestReaderUseClauseAlias(t *testing.T) {
	useName := tok(phrase.KindTokenName, "Baz\\Qux")
	alias := tok(phrase.KindTokenName, "Q")
	use := &fakeNode{
		kind:   phrase.KindNamespaceUseClause,
		fields: map[string]phrase.Node{"name": useName, "alias": alias},
	}
	root := &fakeNode{kind: phrase.KindNone, children: []phrase.Node{use}}
	table := Create(&fakeDoc{uri: "file:///test.lang", root: root})

	if len(table.Root.Children) != 1 {
		t.Fatalf("expected one child, got %d", len(table.Root.Children))
	}
	sym := table.Root.Children[0]
	if sym.Name != "Q" || !sym.Modifiers.Has(ModUse) {
		t.Fatalf("got %+v", sym)
	}
	if len(sym.Associated) != 1 || sym.Associated[0].Name != "Baz\\Qux" {
		t.Fatalf("got associated %+v", sym.Associated)
	}
}

func TestSymbolIndexableFilters(t *testing.T) {
	p := &Symbol{Kind: KindParameter, Name: "x"}
	if p.Indexable() {
		t.Fatal("parameters must not be indexable")
	}
	v := &Symbol{Kind: KindVariable, Name: "x", Scope: "Foo::bar"}
	if v.Indexable() {
		t.Fatal("non-file-scope variables must not be indexable")
	}
	c := &Symbol{Kind: KindClass, Name: "Foo"}
	if !c.Indexable() {
		t.Fatal("named class should be indexable")
	}
}
