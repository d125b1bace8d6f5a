package symbolstore

import (
	"testing"

	"github.com/tidesmith/symbolcore/pkg/langtype"
	"github.com/tidesmith/symbolcore/pkg/symbol"
)

func classTable(uri string, root *symbol.Symbol) *symbol.SymbolTable {
	return &symbol.SymbolTable{URI: uri, Root: root}
}

func fileRoot(children ...*symbol.Symbol) *symbol.Symbol {
	root := &symbol.Symbol{Kind: symbol.KindNone}
	for _, c := range children {
		root.AddChild(c)
	}
	return root
}

func TestMemberLookupVisibility(t *testing.T) {
	st := New()

	d := &symbol.Symbol{Kind: symbol.KindClass, Name: "D"}
	d.AddChild(&symbol.Symbol{Kind: symbol.KindProperty, Name: "$p", Modifiers: symbol.ModProtected, Type: langtype.New("int")})
	if err := st.Add(classTable("file:///d.lang", fileRoot(d))); err != nil {
		t.Fatal(err)
	}

	c := &symbol.Symbol{Kind: symbol.KindClass, Name: "C", Associated: []symbol.AssociatedRef{{Kind: symbol.KindClass, Name: "D"}}}
	if err := st.Add(classTable("file:///c.lang", fileRoot(c))); err != nil {
		t.Fatal(err)
	}

	byName := func(name string) Filter {
		return func(s *symbol.Symbol) bool { return s.Name == name }
	}

	fromWithinC := st.LookupTypeMember("C", byName("$p"))
	if fromWithinC == nil {
		t.Fatal("expected inherited protected property visible from within C")
	}

	fromOutside := st.LookupTypeMember("C", func(s *symbol.Symbol) bool {
		return s.Name == "$p" && !s.Modifiers.Has(symbol.ModProtected) && !s.Modifiers.Has(symbol.ModPrivate)
	})
	if fromOutside != nil {
		t.Fatal("protected property must not be visible to an outside-filtered query")
	}
}

func TestCycleSafeLookupTerminates(t *testing.T) {
	st := New()
	a := &symbol.Symbol{Kind: symbol.KindClass, Name: "A", Associated: []symbol.AssociatedRef{{Kind: symbol.KindClass, Name: "B"}}}
	a.AddChild(&symbol.Symbol{Kind: symbol.KindMethod, Name: "m"})
	b := &symbol.Symbol{Kind: symbol.KindClass, Name: "B", Associated: []symbol.AssociatedRef{{Kind: symbol.KindClass, Name: "A"}}}
	b.AddChild(&symbol.Symbol{Kind: symbol.KindMethod, Name: "m"})

	if err := st.Add(classTable("file:///a.lang", fileRoot(a))); err != nil {
		t.Fatal(err)
	}
	if err := st.Add(classTable("file:///b.lang", fileRoot(b))); err != nil {
		t.Fatal(err)
	}

	members := st.LookupTypeMembers("A", func(s *symbol.Symbol) bool { return s.Name == "m" })
	if len(members) != 2 {
		t.Fatalf("expected exactly 2 occurrences of m (A's own + B's), got %d", len(members))
	}
}

func TestDuplicateURI(t *testing.T) {
	st := New()
	table := classTable("file:///x.lang", fileRoot())
	if err := st.Add(table); err != nil {
		t.Fatal(err)
	}
	if err := st.Add(table); err != ErrDuplicateURI {
		t.Fatalf("expected ErrDuplicateURI, got %v", err)
	}
}

func TestFindAndRemove(t *testing.T) {
	st := New()
	fn := &symbol.Symbol{Kind: symbol.KindFunction, Name: "Foo\\bar"}
	if err := st.Add(classTable("file:///f.lang", fileRoot(fn))); err != nil {
		t.Fatal(err)
	}
	if found := st.Find("Foo\\bar", nil); found != fn {
		t.Fatalf("expected to find fn, got %v", found)
	}
	st.Remove("file:///f.lang")
	if found := st.Find("Foo\\bar", nil); found != nil {
		t.Fatalf("expected nil after remove, got %v", found)
	}
}
