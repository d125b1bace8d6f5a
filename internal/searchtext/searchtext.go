// Package searchtext augments the exact/prefix/fuzzy queries
// pkg/symbolindex already answers with a free-text Bleve index over
// symbol names, signatures, and doc-comment descriptions — useful for
// "what indexes something like a user repository" queries the ordered
// index's trigram/acronym keys do not target. It is purely additive:
// symbolstore.Store remains the source of truth for symbol identity
// and inheritance lookups.
package searchtext

import (
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/edgengram"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/tidesmith/symbolcore/pkg/symbol"
)

// doc is the flattened shape indexed per Symbol; Bleve only ever sees
// these fields, never the Symbol tree itself.
type doc struct {
	Name        string `json:"name"`
	NameEdge    string `json:"name_edge"`
	FQN         string `json:"fqn"`
	Signature   string `json:"signature"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	URI         string `json:"uri"`
}

// Index wraps a Bleve full-text index of symbol text fields, keyed by
// a synthetic "uri#fqn" document id.
type Index struct {
	bleve bleve.Index
	byID  map[string]*symbol.Symbol
}

// Open opens an existing index at path, or creates one with
// buildMapping if none exists.
func Open(path string) (*Index, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		m, err := buildMapping()
		if err != nil {
			return nil, err
		}
		idx, err := bleve.New(path, m)
		if err != nil {
			return nil, fmt.Errorf("searchtext: create index: %w", err)
		}
		return &Index{bleve: idx, byID: map[string]*symbol.Symbol{}}, nil
	}
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("searchtext: open index: %w", err)
	}
	return &Index{bleve: idx, byID: map[string]*symbol.Symbol{}}, nil
}

// Close closes the underlying Bleve index.
func (x *Index) Close() error { return x.bleve.Close() }

// buildMapping mirrors the teacher's symbol-document mapping: a
// lowercased standard analyzer for exact/substring text, plus an edge
// n-gram analyzer on the name field for prefix-style completion.
func buildMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomAnalyzer("standard_lower", map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, err
	}

	if err := im.AddCustomTokenFilter("edge_ngram_filter", map[string]interface{}{
		"type": edgengram.Name,
		"min":  2.0,
		"max":  15.0,
	}); err != nil {
		return nil, err
	}
	if err := im.AddCustomAnalyzer("edge_ngram", map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name, "edge_ngram_filter"},
	}); err != nil {
		return nil, err
	}

	symDoc := bleve.NewDocumentMapping()

	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = "standard_lower"
	symDoc.AddFieldMappingsAt("name", nameField)

	nameEdge := bleve.NewTextFieldMapping()
	nameEdge.Analyzer = "edge_ngram"
	nameEdge.IncludeInAll = false
	symDoc.AddFieldMappingsAt("name_edge", nameEdge)

	sigField := bleve.NewTextFieldMapping()
	sigField.Analyzer = "standard_lower"
	symDoc.AddFieldMappingsAt("signature", sigField)

	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = "standard_lower"
	symDoc.AddFieldMappingsAt("description", descField)

	kindField := bleve.NewTextFieldMapping()
	kindField.Analyzer = keyword.Name
	symDoc.AddFieldMappingsAt("kind", kindField)

	im.AddDocumentMapping("symbol", symDoc)
	im.DefaultMapping = symDoc
	return im, nil
}

func docID(uri string, s *symbol.Symbol) string {
	return uri + "#" + s.Name
}

// signature renders a short "kind name : type" line approximating what
// a hover tooltip would show, the text a free-text query most often
// targets.
func signature(s *symbol.Symbol) string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	b.WriteByte(' ')
	b.WriteString(s.Name)
	if !s.Type.IsEmpty() {
		b.WriteString(" : ")
		b.WriteString(s.Type.String())
	}
	return b.String()
}

// IndexTable indexes every indexable Symbol in table into a single
// Bleve batch.
func (x *Index) IndexTable(uri string, table *symbol.SymbolTable) error {
	batch := x.bleve.NewBatch()
	table.Root.Walk(func(s *symbol.Symbol) {
		if !s.Indexable() {
			return
		}
		d := doc{
			Name:        unqualified(s.Name),
			NameEdge:    unqualified(s.Name),
			FQN:         s.Name,
			Signature:   signature(s),
			Description: s.Description,
			Kind:        s.Kind.String(),
			URI:         uri,
		}
		_ = batch.Index(docID(uri, s), d)
	})
	return x.bleve.Batch(batch)
}

// RemoveURI drops every document indexed under uri.
func (x *Index) RemoveURI(uri string, table *symbol.SymbolTable) error {
	batch := x.bleve.NewBatch()
	table.Root.Walk(func(s *symbol.Symbol) {
		if !s.Indexable() {
			return
		}
		batch.Delete(docID(uri, s))
	})
	return x.bleve.Batch(batch)
}

// Result is one free-text match: the document's fully qualified name,
// owning URI, and the Bleve relevance score.
type Result struct {
	URI   string
	FQN   string
	Score float64
}

// Search runs a disjunction of prefix/wildcard/name/signature/doc
// queries, the teacher's "try multiple strategies" approach, and
// returns up to limit ranked Results.
func (x *Index) Search(query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	lower := strings.ToLower(query)

	prefixQ := bleve.NewPrefixQuery(lower)
	prefixQ.SetField("name")

	wildcardQ := bleve.NewWildcardQuery("*" + lower + "*")
	wildcardQ.SetField("name")

	sigQ := bleve.NewMatchQuery(query)
	sigQ.SetField("signature")

	descQ := bleve.NewMatchQuery(query)
	descQ.SetField("description")

	q := bleve.NewDisjunctionQuery(prefixQ, wildcardQ, sigQ, descQ)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"uri", "fqn"}

	sr, err := x.bleve.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searchtext: search: %w", err)
	}

	out := make([]Result, 0, len(sr.Hits))
	for _, hit := range sr.Hits {
		uri, _ := hit.Fields["uri"].(string)
		fqn, _ := hit.Fields["fqn"].(string)
		out = append(out, Result{URI: uri, FQN: fqn, Score: hit.Score})
	}
	return out, nil
}

func unqualified(name string) string {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		return name[i+1:]
	}
	return name
}
