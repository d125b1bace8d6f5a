// Package symbolindex implements the ordered, case-folded, multi-key
// symbol index described in spec §4.4: symbols are reachable by their
// lowercase unqualified name, their lowercase fully qualified name,
// every trigram of the unqualified name, and a camelCase acronym.
package symbolindex

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tidesmith/symbolcore/pkg/symbol"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Node is one entry of the ordered key sequence: a case-folded key and
// the set of Symbols reachable through it.
type Node struct {
	Key   string
	Items []*symbol.Symbol
}

// Index is the globally-ordered sequence of Nodes, kept sorted by a
// locale-aware collator over Key.
type Index struct {
	nodes []*Node
	col   *collate.Collator
}

// New returns an empty Index using a stable case-folded "en" collation.
func New() *Index {
	return &Index{col: collate.New(language.English, collate.Loose)}
}

func (x *Index) less(a, b string) bool { return x.col.CompareString(a, b) < 0 }

// rank returns the position at which key would sit (binary-search
// insert rank) and whether a node with that exact key already exists
// there.
func (x *Index) rank(key string) (int, bool) {
	i := sort.Search(len(x.nodes), func(i int) bool {
		return !x.less(x.nodes[i].Key, key)
	})
	if i < len(x.nodes) && x.nodes[i].Key == key {
		return i, true
	}
	return i, false
}

func (x *Index) insertKey(key string, s *symbol.Symbol) {
	i, found := x.rank(key)
	if found {
		for _, item := range x.nodes[i].Items {
			if item == s {
				return
			}
		}
		x.nodes[i].Items = append(x.nodes[i].Items, s)
		return
	}
	node := &Node{Key: key, Items: []*symbol.Symbol{s}}
	x.nodes = append(x.nodes, nil)
	copy(x.nodes[i+1:], x.nodes[i:])
	x.nodes[i] = node
}

func (x *Index) removeKey(key string, s *symbol.Symbol) {
	i, found := x.rank(key)
	if !found {
		return
	}
	items := x.nodes[i].Items
	for j, item := range items {
		if item == s {
			x.nodes[i].Items = append(items[:j], items[j+1:]...)
			break
		}
	}
	if len(x.nodes[i].Items) == 0 {
		x.nodes = append(x.nodes[:i], x.nodes[i+1:]...)
	}
}

// Keys computes every index key for s per spec §4.4.
func Keys(s *symbol.Symbol) []string {
	unqualified := strings.ToLower(unqualifiedName(s.Name))
	fqn := strings.ToLower(s.Name)
	seen := map[string]bool{}
	var keys []string
	add := func(k string) {
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		keys = append(keys, k)
	}
	add(unqualified)
	add(fqn)
	for _, tg := range trigrams(unqualified) {
		add(tg)
	}
	if ac := Acronym(unqualifiedName(s.Name)); len(ac) >= 2 {
		add(ac)
	}
	return keys
}

func unqualifiedName(name string) string {
	if idx := strings.LastIndexByte(name, '\\'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

func trigrams(s string) []string {
	r := []rune(s)
	if len(r) < 3 {
		return nil
	}
	out := make([]string, 0, len(r)-2)
	for i := 0; i+3 <= len(r); i++ {
		out = append(out, string(r[i:i+3]))
	}
	return out
}

// Acronym implements the spec §4.4 acronym rule.
func Acronym(name string) string {
	r := []rune(name)
	if len(r) == 0 {
		return ""
	}
	var b strings.Builder
	for i, c := range r {
		if i == 0 {
			if c != '_' && c != '$' {
				b.WriteRune(unicode.ToLower(c))
			}
			continue
		}
		prev := r[i-1]
		if (prev == '$' || prev == '_') && c != '_' {
			b.WriteRune(unicode.ToLower(c))
			continue
		}
		if c != unicode.ToLower(c) && prev == unicode.ToLower(prev) {
			b.WriteRune(unicode.ToLower(c))
		}
	}
	return b.String()
}

// Add inserts every index key for s.
func (x *Index) Add(s *symbol.Symbol) {
	if !s.Indexable() {
		return
	}
	for _, k := range Keys(s) {
		x.insertKey(k, s)
	}
}

// Remove removes s from every index key it would have been inserted
// under.
func (x *Index) Remove(s *symbol.Symbol) {
	for _, k := range Keys(s) {
		x.removeKey(k, s)
	}
}

// Find returns the items at the exact key, case-folded.
func (x *Index) Find(key string) []*symbol.Symbol {
	i, found := x.rank(strings.ToLower(key))
	if !found {
		return nil
	}
	return x.nodes[i].Items
}

// PrefixMatch returns the union of items at every key beginning with
// the case-folded prefix.
func (x *Index) PrefixMatch(prefix string) []*symbol.Symbol {
	prefix = strings.ToLower(prefix)
	lower, _ := x.rank(prefix)
	upper := sort.Search(len(x.nodes), func(i int) bool {
		return !strings.HasPrefix(x.nodes[i].Key, prefix) && !x.less(x.nodes[i].Key, prefix)
	})
	return dedupeUnion(x.nodes[lower:upper])
}

func dedupeUnion(nodes []*Node) []*symbol.Symbol {
	seen := map[*symbol.Symbol]bool{}
	var out []*symbol.Symbol
	for _, n := range nodes {
		for _, s := range n.Items {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Match implements spec §4.4's match query: a plain prefix match, or
// (fuzzy=true) a trigram+substring ranked search.
func (x *Index) Match(text string, fuzzy bool) []*symbol.Symbol {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	if !fuzzy {
		return x.PrefixMatch(text)
	}
	return x.fuzzyMatch(text)
}

type scored struct {
	sym   *symbol.Symbol
	score int
}

func (x *Index) fuzzyMatch(text string) []*symbol.Symbol {
	queryKeys := append([]string{text}, trigrams(text)...)
	hits := map[*symbol.Symbol]int{}
	for _, k := range queryKeys {
		for _, s := range x.Find(k) {
			hits[s]++
		}
	}
	boosted := len(text) > 3
	results := make([]scored, 0, len(hits))
	for s, count := range hits {
		score := count
		if boosted {
			unq := strings.ToLower(unqualifiedName(s.Name))
			if idx := strings.Index(unq, text); idx >= 0 {
				score += (1+idx)*-10 + 1000
			}
		}
		results = append(results, scored{sym: s, score: score})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })
	out := make([]*symbol.Symbol, len(results))
	for i, r := range results {
		out[i] = r.sym
	}
	return out
}
