package sourcelang

import (
	"strings"

	"github.com/tidesmith/symbolcore/pkg/phrase"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokVariable
	tokDocComment
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind       tokenKind
	text       string
	start, end int // byte offsets into source
	rng        phrase.Range
}

var multiCharOps = []string{
	"<=>", "===", "!==", "**=", "??=", "<<=", ">>=",
	"->", "::", "=>", "++", "--", "&&", "||", "<=", ">=", "==", "!=",
	"+=", "-=", "*=", "/=", ".=", "%=", "&=", "|=", "^=", "??", "**",
}

type lexer struct {
	src    []byte
	offset int
	line   int
	col    int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src}
}

func (l *lexer) pos() phrase.Position { return phrase.Position{Line: l.line, Character: l.col} }

func (l *lexer) peekByte() byte {
	if l.offset >= len(l.src) {
		return 0
	}
	return l.src[l.offset]
}

func (l *lexer) at(off int) byte {
	if l.offset+off >= len(l.src) {
		return 0
	}
	return l.src[l.offset+off]
}

func (l *lexer) advance() byte {
	b := l.src[l.offset]
	l.offset++
	if b == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return b
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// tokenize produces the full token stream for src, including a trailing
// tokEOF. Comments (// # and plain /* */) are dropped; /** */ blocks
// become tokDocComment tokens since the reader needs their text.
func tokenize(src []byte) []token {
	l := newLexer(src)
	l.skipOpenTag()
	var out []token
	for {
		l.skipWhitespaceAndComments(&out)
		if l.offset >= len(l.src) {
			p := l.pos()
			out = append(out, token{kind: tokEOF, rng: phrase.Range{Start: p, End: p}})
			return out
		}
		out = append(out, l.next())
	}
}

// skipOpenTag consumes a leading `<?php` or `<?=` marker, the way real
// PHP source always starts; source with no opening tag is left alone.
func (l *lexer) skipOpenTag() {
	if l.at(0) != '<' || l.at(1) != '?' {
		return
	}
	if l.at(2) == '=' {
		l.advance()
		l.advance()
		l.advance()
		return
	}
	if len(l.src) >= 5 && strings.EqualFold(string(l.src[:5]), "<?php") {
		for i := 0; i < 5; i++ {
			l.advance()
		}
	}
}

func (l *lexer) skipWhitespaceAndComments(out *[]token) {
	for l.offset < len(l.src) {
		b := l.peekByte()
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '/' && l.at(1) == '/':
			for l.offset < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		case b == '#' && l.at(1) != '[':
			for l.offset < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		case b == '/' && l.at(1) == '*':
			l.scanBlockComment(out)
		case b == '?' && l.at(1) == '>':
			// Closing tag: anything after it is plain-text output,
			// which this grammar does not model.
			l.offset = len(l.src)
		default:
			return
		}
	}
}

func (l *lexer) scanBlockComment(out *[]token) {
	start := l.offset
	startPos := l.pos()
	isDoc := l.at(2) == '*' && l.at(3) != '/'
	l.advance()
	l.advance()
	for l.offset < len(l.src) {
		if l.peekByte() == '*' && l.at(1) == '/' {
			l.advance()
			l.advance()
			break
		}
		l.advance()
	}
	if isDoc {
		*out = append(*out, token{
			kind: tokDocComment, text: string(l.src[start:l.offset]),
			start: start, end: l.offset,
			rng: phrase.Range{Start: startPos, End: l.pos()},
		})
	}
}

func (l *lexer) next() token {
	start := l.offset
	startPos := l.pos()
	b := l.peekByte()

	switch {
	case b == '$':
		l.advance()
		for l.offset < len(l.src) && isIdentPart(l.peekByte()) {
			l.advance()
		}
		return l.finish(tokVariable, start, startPos)

	case isIdentStart(b):
		for l.offset < len(l.src) && isIdentPart(l.peekByte()) {
			l.advance()
		}
		return l.finish(tokIdent, start, startPos)

	case isDigit(b):
		for l.offset < len(l.src) && (isDigit(l.peekByte()) || l.peekByte() == '.') {
			l.advance()
		}
		return l.finish(tokNumber, start, startPos)

	case b == '\'' || b == '"':
		quote := b
		l.advance()
		for l.offset < len(l.src) {
			c := l.peekByte()
			if c == '\\' {
				l.advance()
				if l.offset < len(l.src) {
					l.advance()
				}
				continue
			}
			if c == quote {
				l.advance()
				break
			}
			l.advance()
		}
		return l.finish(tokString, start, startPos)

	default:
		for _, op := range multiCharOps {
			if l.matchLiteral(op) {
				for range op {
					l.advance()
				}
				return l.finish(tokOp, start, startPos)
			}
		}
		l.advance()
		return l.finish(tokOp, start, startPos)
	}
}

func (l *lexer) matchLiteral(s string) bool {
	if l.offset+len(s) > len(l.src) {
		return false
	}
	return string(l.src[l.offset:l.offset+len(s)]) == s
}

func (l *lexer) finish(kind tokenKind, start int, startPos phrase.Position) token {
	return token{
		kind: kind, text: string(l.src[start:l.offset]),
		start: start, end: l.offset,
		rng: phrase.Range{Start: startPos, End: l.pos()},
	}
}

func (t token) isKeyword(word string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, word)
}
