package vartable

import (
	"sort"
	"testing"

	"github.com/tidesmith/symbolcore/pkg/langtype"
)

func sortedParts(ts langtype.TypeString) []string {
	p := append([]string(nil), ts.Parts()...)
	sort.Strings(p)
	return p
}

func TestScopingHidesOuterValue(t *testing.T) {
	tbl := New()
	tbl.SetType("x", langtype.New("int"))
	before := tbl.GetType("x", "")
	tbl.PushScope(nil)
	tbl.SetType("x", langtype.New("string"))
	tbl.PopScope()
	after := tbl.GetType("x", "")
	if len(sortedParts(before)) != len(sortedParts(after)) || sortedParts(before)[0] != sortedParts(after)[0] {
		t.Fatalf("expected pre-push value restored: before=%v after=%v", before, after)
	}
}

func TestBranchMerge(t *testing.T) {
	tbl := New()
	tbl.SetType("x", langtype.New("int"))

	tbl.PushBranch()
	tbl.SetType("x", langtype.New("string"))
	tbl.PopBranch()

	tbl.PushBranch()
	tbl.SetType("x", langtype.New("float"))
	tbl.PopBranch()

	tbl.PruneBranches()

	got := sortedParts(tbl.GetType("x", ""))
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

func TestGetTypeStopsAtScopeBoundary(t *testing.T) {
	tbl := New()
	// No value for y anywhere; a Scope frame with no match must stop
	// the walk (trivially true here since it's the only frame).
	if !tbl.GetType("y", "").IsEmpty() {
		t.Fatal("expected empty type for unknown variable")
	}
}

func TestThisResolvesDirectly(t *testing.T) {
	tbl := New()
	got := tbl.GetType("$this", "App\\Widget")
	if got.String() != "App\\Widget" {
		t.Fatalf("got %q", got.String())
	}
}

func TestPushScopeCarriesNamedVariables(t *testing.T) {
	tbl := New()
	tbl.SetType("count", langtype.New("int"))
	tbl.PushScope([]string{"count"})
	got := tbl.GetType("count", "")
	if got.String() != "int" {
		t.Fatalf("expected carried value int, got %q", got.String())
	}
}
