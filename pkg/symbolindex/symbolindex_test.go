package symbolindex

import (
	"testing"

	"github.com/tidesmith/symbolcore/pkg/symbol"
)

func TestAcronymGetUserIdFromDb(t *testing.T) {
	if got := Acronym("getUserIdFromDb"); got != "guifd" {
		t.Fatalf("got %q", got)
	}
}

func TestIndexKeyCoverage(t *testing.T) {
	x := New()
	s := &symbol.Symbol{Kind: symbol.KindClass, Name: "App\\Widgets\\FancyButton"}
	x.Add(s)

	for _, query := range []string{"fancybutton", "app\\widgets\\fancybutton"} {
		found := false
		for _, r := range x.Match(query, false) {
			if r == s {
				found = true
			}
		}
		if !found {
			t.Fatalf("match(%q) did not return the indexed symbol", query)
		}
	}

	ac := Acronym("FancyButton")
	if len(ac) >= 2 {
		found := false
		for _, r := range x.Find(ac) {
			if r == s {
				found = true
			}
		}
		if !found {
			t.Fatalf("acronym key %q did not find the symbol", ac)
		}
	}
}

func TestRemove(t *testing.T) {
	x := New()
	s := &symbol.Symbol{Kind: symbol.KindFunction, Name: "doThing"}
	x.Add(s)
	x.Remove(s)
	if res := x.Find("dothing"); len(res) != 0 {
		t.Fatalf("expected removal, got %v", res)
	}
}

func TestNonIndexFilter(t *testing.T) {
	x := New()
	p := &symbol.Symbol{Kind: symbol.KindParameter, Name: "x"}
	x.Add(p)
	if res := x.Find("x"); len(res) != 0 {
		t.Fatalf("parameter should not be indexed, got %v", res)
	}
}
