package sourcelang

import (
	"fmt"

	"github.com/tidesmith/symbolcore/pkg/phrase"
)

// Document is the phrase.Document produced by Parse: a parsed tree plus
// the line-offset table needed for position<->offset conversion and a
// stable naming scheme for anonymous declarations.
type Document struct {
	uri        string
	src        []byte
	root       *node
	lineStarts []int // byte offset of the first character of each line
}

func newDocument(uri string, src []byte, root *node) *Document {
	d := &Document{uri: uri, src: src, root: root}
	d.lineStarts = []int{0}
	for i, b := range src {
		if b == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
	return d
}

func (d *Document) URI() string      { return d.uri }
func (d *Document) Root() phrase.Node { return d.root }

func (d *Document) Walk(v phrase.Visitor) { phrase.WalkNode(d.root, v) }

// OffsetAt converts a line/character position to a byte offset, clamped
// to the document's bounds.
func (d *Document) OffsetAt(pos phrase.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(d.lineStarts) {
		return len(d.src)
	}
	off := d.lineStarts[pos.Line] + pos.Character
	if off > len(d.src) {
		return len(d.src)
	}
	return off
}

// PositionAt converts a byte offset to a line/character position via
// binary search over the line-start table.
func (d *Document) PositionAt(offset int) phrase.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.src) {
		offset = len(d.src)
	}
	lo, hi := 0, len(d.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return phrase.Position{Line: lo, Character: offset - d.lineStarts[lo]}
}

// TokenText returns n.Text(): a leaf's token text, the rebuilt text of
// the phrase nodes listed on node, and "" for other composite phrases.
func (d *Document) TokenText(n phrase.Node) string {
	if n == nil {
		return ""
	}
	return n.Text()
}

// AnonymousName synthesizes a stable name for an anonymous class or
// closure from its start and end positions, since this grammar has no
// other identity to hang one on.
func (d *Document) AnonymousName(n phrase.Node) string {
	if n == nil {
		return "anonymous"
	}
	prefix := "anonymous"
	switch n.Kind() {
	case phrase.KindAnonymousClassDeclaration:
		prefix = "class"
	case phrase.KindAnonymousFunctionCreationExpression:
		prefix = "closure"
	}
	r := n.Range()
	return fmt.Sprintf("%s.anonymous.%d.%d.%d.%d", prefix, r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
}
