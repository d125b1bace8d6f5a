package cache

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tidesmith/symbolcore/pkg/langtype"
	"github.com/tidesmith/symbolcore/pkg/symbol"
)

func setupCache(t *testing.T) (*Cache, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "symbolcore-cache-test-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	c, err := Open(filepath.Join(dir, "symbols.db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("open: %v", err)
	}
	return c, func() {
		c.Close()
		os.RemoveAll(dir)
	}
}

func sampleTable(uri string) *symbol.SymbolTable {
	return &symbol.SymbolTable{
		URI: uri,
		Root: &symbol.Symbol{
			Kind: symbol.KindNone,
			Children: []*symbol.Symbol{
				{Kind: symbol.KindClass, Name: "App\\User", Type: langtype.New("App\\User")},
			},
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c, cleanup := setupCache(t)
	defer cleanup()

	table := sampleTable("file:///app/User.php")
	if err := c.Put(table); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(table.URI)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("expected entry for %s", table.URI)
	}
	if got.Root.Children[0].Name != "App\\User" {
		t.Fatalf("got %+v", got.Root.Children[0])
	}
	if got.Root.Children[0].Type.String() != "App\\User" {
		t.Fatalf("type did not round-trip: %v", got.Root.Children[0].Type)
	}
}

func TestGetMissing(t *testing.T) {
	c, cleanup := setupCache(t)
	defer cleanup()

	_, ok, err := c.Get("file:///does/not/exist.php")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected no entry")
	}
}

func TestDeleteAndAll(t *testing.T) {
	c, cleanup := setupCache(t)
	defer cleanup()

	a := sampleTable("file:///a.php")
	b := sampleTable("file:///b.php")
	if err := c.Put(a); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if err := c.Put(b); err != nil {
		t.Fatalf("put b: %v", err)
	}

	all, err := c.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d tables, want 2", len(all))
	}

	if err := c.Delete(a.URI); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, err = c.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 || all[0].URI != b.URI {
		t.Fatalf("got %+v, want only %s", all, b.URI)
	}
}

func TestSnapshotStamp(t *testing.T) {
	c, cleanup := setupCache(t)
	defer cleanup()

	if id, err := c.SnapshotID(); err != nil || id != "" {
		t.Fatalf("expected empty snapshot id before any stamp, got %q (err=%v)", id, err)
	}

	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	id, err := c.Stamp(entropy)
	if err != nil {
		t.Fatalf("stamp: %v", err)
	}
	if id == "" {
		t.Fatalf("expected non-empty snapshot id")
	}

	got, err := c.SnapshotID()
	if err != nil {
		t.Fatalf("snapshot id: %v", err)
	}
	if got != id {
		t.Fatalf("got %q, want %q", got, id)
	}
}

func TestReopenPreservesEntries(t *testing.T) {
	dir, err := os.MkdirTemp("", "symbolcore-cache-reopen-*")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "symbols.db")

	c1, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c1.Put(sampleTable("file:///a.php")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()

	all, err := c2.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected entry to survive reopen, got %d", len(all))
	}
}
