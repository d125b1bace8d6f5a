package searchtext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tidesmith/symbolcore/pkg/langtype"
	"github.com/tidesmith/symbolcore/pkg/symbol"
)

func setupIndex(t *testing.T) (*Index, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "symbolcore-searchtext-test-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	idx, err := Open(filepath.Join(dir, "search.bleve"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("open: %v", err)
	}
	return idx, func() {
		idx.Close()
		os.RemoveAll(dir)
	}
}

func tableWithFunction(uri, name string) *symbol.SymbolTable {
	return &symbol.SymbolTable{
		URI: uri,
		Root: &symbol.Symbol{
			Kind: symbol.KindNone,
			Children: []*symbol.Symbol{
				{
					Kind:        symbol.KindFunction,
					Name:        name,
					Type:        langtype.New("App\\User"),
					Description: "looks up a user by identifier",
				},
			},
		},
	}
}

func TestSearchFindsIndexedPrefix(t *testing.T) {
	idx, cleanup := setupIndex(t)
	defer cleanup()

	table := tableWithFunction("file:///repo.php", "getUserById")
	if err := idx.IndexTable(table.URI, table); err != nil {
		t.Fatalf("index: %v", err)
	}

	results, err := idx.Search("getUser", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one result for prefix query")
	}
	found := false
	for _, r := range results {
		if r.FQN == "getUserById" && r.URI == table.URI {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected getUserById among results, got %+v", results)
	}
}

func TestSearchMatchesDescription(t *testing.T) {
	idx, cleanup := setupIndex(t)
	defer cleanup()

	table := tableWithFunction("file:///repo.php", "getUserById")
	if err := idx.IndexTable(table.URI, table); err != nil {
		t.Fatalf("index: %v", err)
	}

	results, err := idx.Search("identifier", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected description match")
	}
}

func TestRemoveURIDropsMatches(t *testing.T) {
	idx, cleanup := setupIndex(t)
	defer cleanup()

	table := tableWithFunction("file:///repo.php", "getUserById")
	if err := idx.IndexTable(table.URI, table); err != nil {
		t.Fatalf("index: %v", err)
	}
	if err := idx.RemoveURI(table.URI, table); err != nil {
		t.Fatalf("remove: %v", err)
	}

	results, err := idx.Search("getUser", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, r := range results {
		if r.URI == table.URI {
			t.Fatalf("expected %s to be removed from the index, still found %+v", table.URI, r)
		}
	}
}
