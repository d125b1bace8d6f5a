// Package langtype implements the TypeString algebra: an unordered,
// duplicate-free set of atomic type expressions written as a
// pipe-separated, parenthesized, array-suffixed union.
//
// Parsing is total — any input string produces a valid TypeString,
// possibly holding garbage atoms — so callers never need an error
// return from construction. Equality after Merge is set equality, not
// string equality: part order is insertion-dependent.
package langtype

import (
	"encoding/json"
	"regexp"
	"strings"
)

// keywords are atoms that never need name resolution and are never
// treated as class-name candidates.
var keywords = map[string]bool{
	"string": true, "int": true, "bool": true, "float": true,
	"mixed": true, "array": true, "null": true, "self": true,
	"static": true, "callable": true, "void": true, "object": true,
	"resource": true, "false": true, "true": true, "$this": true,
}

// classNamePattern matches a single (possibly backslash-qualified)
// class name token, or the $this keyword, the unit nameResolve
// substitutes one at a time.
var classNamePattern = regexp.MustCompile(`\$this|\\?[A-Za-z_][A-Za-z0-9_]*(?:\\[A-Za-z_][A-Za-z0-9_]*)*`)

// NameResolver is the minimal surface TypeString.NameResolve needs from
// a name-resolver state; pkg/resolve.State satisfies it without this
// package importing pkg/resolve.
type NameResolver interface {
	ThisName() string
	ResolveNotFullyQualifiedClass(name string) string
}

// TypeString is an ordered-on-the-outside, set-semantic-on-the-inside
// sequence of atomic type parts.
type TypeString struct {
	parts []string
}

// New parses s into a TypeString, splitting on top-level `|` and
// collapsing duplicate parts by string equality.
func New(s string) TypeString {
	return TypeString{parts: dedupe(splitTopLevel(s))}
}

// Empty returns the empty TypeString.
func Empty() TypeString { return TypeString{} }

func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				if p := strings.TrimSpace(s[start:i]); p != "" {
					parts = append(parts, p)
				}
				start = i + 1
			}
		}
	}
	if p := strings.TrimSpace(s[start:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

func dedupe(parts []string) []string {
	if len(parts) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// IsEmpty reports whether the part set is empty.
func (t TypeString) IsEmpty() bool { return len(t.parts) == 0 }

// Parts returns the atomic parts, in insertion order. Callers must not
// mutate the returned slice.
func (t TypeString) Parts() []string { return t.parts }

// AtomicClassArray returns the parts that are candidate class FQNs:
// neither keywords, nor array-suffixed, nor parenthesized groups.
func (t TypeString) AtomicClassArray() []string {
	var out []string
	for _, p := range t.parts {
		if keywords[p] || strings.HasSuffix(p, "]") || strings.HasPrefix(p, "(") {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ArrayDereference strips one `[]` suffix from each array part,
// re-splitting and deduplicating parenthesized unions; non-array parts
// are discarded.
func (t TypeString) ArrayDereference() TypeString {
	var out []string
	for _, p := range t.parts {
		if !strings.HasSuffix(p, "[]") {
			continue
		}
		inner := strings.TrimSuffix(p, "[]")
		if strings.HasPrefix(inner, "(") && strings.HasSuffix(inner, ")") {
			out = append(out, splitTopLevel(inner[1:len(inner)-1])...)
		} else {
			out = append(out, inner)
		}
	}
	return TypeString{parts: dedupe(out)}
}

// Array wraps the receiver in a single array suffix: a multi-part
// receiver is parenthesized first.
func (t TypeString) Array() TypeString {
	switch len(t.parts) {
	case 0:
		return TypeString{}
	case 1:
		return TypeString{parts: []string{t.parts[0] + "[]"}}
	default:
		return TypeString{parts: []string{"(" + t.String() + ")[]"}}
	}
}

// Merge returns the set union of t and other, which may be a
// TypeString or a raw string (split first).
func (t TypeString) Merge(other any) TypeString {
	var otherParts []string
	switch v := other.(type) {
	case TypeString:
		otherParts = v.parts
	case string:
		otherParts = splitTopLevel(v)
	default:
		return t
	}
	combined := make([]string, 0, len(t.parts)+len(otherParts))
	combined = append(combined, t.parts...)
	combined = append(combined, otherParts...)
	return TypeString{parts: dedupe(combined)}
}

// NameResolve substitutes every class-name token via resolver: keywords
// pass through unchanged; a leading backslash is stripped; self,
// static, and $this become the resolver's thisName; other names are
// resolved as not-fully-qualified class names.
func (t TypeString) NameResolve(resolver NameResolver) TypeString {
	out := make([]string, len(t.parts))
	for i, p := range t.parts {
		out[i] = classNamePattern.ReplaceAllStringFunc(p, func(tok string) string {
			switch tok {
			case "self", "static", "$this":
				return resolver.ThisName()
			}
			if strings.HasPrefix(tok, "\\") {
				return strings.TrimPrefix(tok, "\\")
			}
			if keywords[tok] {
				return tok
			}
			if resolved := resolver.ResolveNotFullyQualifiedClass(tok); resolved != "" {
				return resolved
			}
			return tok
		})
	}
	return TypeString{parts: dedupe(out)}
}

// String renders the receiver back to its pipe-joined textual form.
func (t TypeString) String() string {
	return strings.Join(t.parts, "|")
}

// MarshalJSON renders the TypeString as a plain JSON string, the §6
// on-disk representation.
func (t TypeString) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses a plain JSON string back into a TypeString.
func (t *TypeString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = New(s)
	return nil
}
