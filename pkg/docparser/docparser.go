// Package docparser implements the consumed doc-comment parser
// interface from spec §6: given a doc-comment token's raw text, it
// recovers a free-text description plus the structured `@param`,
// `@var`, `@property`/`@property-read`/`@property-write`, `@method`,
// and `@return` tags the symbol reader attaches to declarations.
//
// Type text is returned as the raw token the tag carried (e.g.
// "Foo|Bar", "int"); callers resolve it into a langtype.TypeString and
// run name resolution themselves, keeping this package independent of
// both pkg/langtype and pkg/resolve.
package docparser

import (
	"regexp"
	"strings"
)

// ParamTag is a parsed `@param $name Type description` line.
type ParamTag struct {
	Name        string
	Type        string
	Description string
}

// VarTag is a parsed `@var $name Type description` or
// `@var Type description` line (the name is empty in the latter form).
type VarTag struct {
	Name        string
	Type        string
	Description string
}

// ReturnTag is a parsed `@return Type description` line.
type ReturnTag struct {
	Type        string
	Description string
}

// PropertyTag is a parsed `@property`/`@property-read`/`@property-write`
// magic-property line; TagName distinguishes the three forms.
type PropertyTag struct {
	TagName     string
	Name        string
	Type        string
	Description string
}

// MethodTag is a parsed `@method Type name(ParamType $p, ...) description`
// magic-method line.
type MethodTag struct {
	Name        string
	Type        string
	Description string
	Parameters  []ParamTag
}

// DocComment is the structured view of a single doc-comment block.
type DocComment struct {
	text         string
	returnTag    *ReturnTag
	propertyTags []PropertyTag
	methodTags   []MethodTag
	varTags      []VarTag
	paramTags    []ParamTag
}

// Text returns the free-text description (the doc comment with
// leading `/**`, `*`, and `*/` markers stripped, tag lines excluded).
func (d *DocComment) Text() string { return d.text }

// ReturnTag returns the `@return` tag, if any.
func (d *DocComment) ReturnTag() (ReturnTag, bool) {
	if d.returnTag == nil {
		return ReturnTag{}, false
	}
	return *d.returnTag, true
}

// PropertyTags returns every magic-property tag, in source order.
func (d *DocComment) PropertyTags() []PropertyTag { return d.propertyTags }

// MethodTags returns every magic-method tag, in source order.
func (d *DocComment) MethodTags() []MethodTag { return d.methodTags }

// VarTags returns every `@var` tag, in source order.
func (d *DocComment) VarTags() []VarTag { return d.varTags }

// ParamTags returns every `@param` tag, in source order.
func (d *DocComment) ParamTags() []ParamTag { return d.paramTags }

// FindParamTag returns the `@param` tag for the given variable name
// (with or without its leading `$`).
func (d *DocComment) FindParamTag(name string) (ParamTag, bool) {
	name = strings.TrimPrefix(name, "$")
	for _, p := range d.paramTags {
		if strings.TrimPrefix(p.Name, "$") == name {
			return p, true
		}
	}
	return ParamTag{}, false
}

// FindVarTag returns the `@var` tag for the given variable name (with
// or without its leading `$`); if name is empty, returns the first
// nameless `@var Type` tag, if any.
func (d *DocComment) FindVarTag(name string) (VarTag, bool) {
	name = strings.TrimPrefix(name, "$")
	for _, v := range d.varTags {
		if strings.TrimPrefix(v.Name, "$") == name {
			return v, true
		}
	}
	if name == "" {
		for _, v := range d.varTags {
			if v.Name == "" {
				return v, true
			}
		}
	}
	return VarTag{}, false
}

var (
	lineStripPattern = regexp.MustCompile(`^\s*\*+\s?`)
	paramTagPattern  = regexp.MustCompile(`^@param\s+(\S+)\s+(\$\S+)\s*(.*)$`)
	paramTagAltOrder = regexp.MustCompile(`^@param\s+(\$\S+)\s+(\S+)\s*(.*)$`)
	varTagPattern    = regexp.MustCompile(`^@var\s+(\$\S+)\s+(\S+)\s*(.*)$`)
	varTagBareType   = regexp.MustCompile(`^@var\s+(\S+)\s*(.*)$`)
	returnTagPattern = regexp.MustCompile(`^@return\s+(\S+)\s*(.*)$`)
	propertyPattern  = regexp.MustCompile(`^(@property|@property-read|@property-write)\s+(\S+)\s+(\$\S+)\s*(.*)$`)
	methodPattern    = regexp.MustCompile(`^@method\s+(\S+)\s+(\w+)\(([^)]*)\)\s*(.*)$`)
	methodParamSplit = regexp.MustCompile(`\s*,\s*`)
)

// Parse parses a raw doc-comment token's text (including its
// `/** ... */` delimiters) into a DocComment. Parsing is total: an
// unrecognized or malformed tag line is simply dropped, never an error.
func Parse(raw string) *DocComment {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "/**")
	body = strings.TrimPrefix(body, "/*")
	body = strings.TrimSuffix(body, "*/")

	d := &DocComment{}
	var textLines []string
	for _, line := range strings.Split(body, "\n") {
		line = lineStripPattern.ReplaceAllString(line, "")
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "@") {
			if trimmed != "" {
				textLines = append(textLines, trimmed)
			}
			continue
		}
		d.parseTagLine(trimmed)
	}
	d.text = strings.TrimSpace(strings.Join(textLines, "\n"))
	return d
}

func (d *DocComment) parseTagLine(line string) {
	switch {
	case strings.HasPrefix(line, "@param"):
		if m := paramTagPattern.FindStringSubmatch(line); m != nil {
			d.paramTags = append(d.paramTags, ParamTag{Type: m[1], Name: m[2], Description: m[3]})
			return
		}
		if m := paramTagAltOrder.FindStringSubmatch(line); m != nil {
			d.paramTags = append(d.paramTags, ParamTag{Name: m[1], Type: m[2], Description: m[3]})
			return
		}
	case strings.HasPrefix(line, "@var"):
		if m := varTagPattern.FindStringSubmatch(line); m != nil {
			d.varTags = append(d.varTags, VarTag{Name: m[1], Type: m[2], Description: m[3]})
			return
		}
		if m := varTagBareType.FindStringSubmatch(line); m != nil {
			d.varTags = append(d.varTags, VarTag{Type: m[1], Description: m[2]})
			return
		}
	case strings.HasPrefix(line, "@return"):
		if m := returnTagPattern.FindStringSubmatch(line); m != nil {
			d.returnTag = &ReturnTag{Type: m[1], Description: m[2]}
			return
		}
	case strings.HasPrefix(line, "@property"):
		if m := propertyPattern.FindStringSubmatch(line); m != nil {
			d.propertyTags = append(d.propertyTags, PropertyTag{
				TagName: m[1], Type: m[2], Name: m[3], Description: m[4],
			})
			return
		}
	case strings.HasPrefix(line, "@method"):
		if m := methodPattern.FindStringSubmatch(line); m != nil {
			d.methodTags = append(d.methodTags, MethodTag{
				Type: m[1], Name: m[2], Parameters: parseMethodParams(m[3]), Description: m[4],
			})
			return
		}
	}
}

func parseMethodParams(raw string) []ParamTag {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var params []ParamTag
	for _, piece := range methodParamSplit.Split(raw, -1) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		fields := strings.Fields(piece)
		switch len(fields) {
		case 1:
			params = append(params, ParamTag{Name: strings.TrimSuffix(fields[0], "=")})
		default:
			params = append(params, ParamTag{Type: fields[0], Name: strings.TrimSuffix(fields[1], "=")})
		}
	}
	return params
}
