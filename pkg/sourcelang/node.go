package sourcelang

import "github.com/tidesmith/symbolcore/pkg/phrase"

// node is the concrete phrase.Node produced by this package's parser.
// Leaf nodes carry their token's source text. Type declarations,
// modifier lists and dotted names carry text rebuilt from their tokens
// (modifier words joined by single spaces, no other whitespace).
// Composite phrase nodes (assignments, calls, binary expressions and
// the like) carry no text, so Text() is "" for them.
type node struct {
	kind     phrase.Kind
	text     string
	rng      phrase.Range
	children []phrase.Node
	fields   map[string]phrase.Node
}

func (n *node) Kind() phrase.Kind   { return n.kind }
func (n *node) Text() string        { return n.text }
func (n *node) Range() phrase.Range { return n.rng }

func (n *node) Children() []phrase.Node { return n.children }

func (n *node) ChildByField(name string) phrase.Node {
	if n.fields == nil {
		return nil
	}
	f, ok := n.fields[name]
	if !ok || f == nil {
		return nil
	}
	return f
}

func (n *node) setField(name string, child phrase.Node) {
	if n.fields == nil {
		n.fields = make(map[string]phrase.Node)
	}
	n.fields[name] = child
}

func (n *node) addChild(c phrase.Node) {
	if c == nil {
		return
	}
	n.children = append(n.children, c)
}

func leaf(kind phrase.Kind, text string, rng phrase.Range) *node {
	return &node{kind: kind, text: text, rng: rng}
}

func tokenNode(t token) *node {
	return leaf(phrase.KindTokenName, t.text, t.rng)
}

func variableNode(t token) *node {
	return leaf(phrase.KindSimpleVariable, t.text, t.rng)
}

func spanRange(a, b phrase.Range) phrase.Range {
	return phrase.Range{Start: a.Start, End: b.End}
}
