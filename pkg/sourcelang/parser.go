// Package sourcelang is a small, deliberately incomplete lexer and
// recursive-descent parser for a PHP-like scripting language: just
// enough surface syntax to exercise every construct the symbol-analysis
// core names (namespaces, use imports, classes/interfaces/traits, doc
// comments, typed members, anonymous classes and closures, assignment,
// foreach, if/elseif/else, instanceof, catch, ternary, member access,
// new) against real source text in tests and the CLI demo. It produces
// trees satisfying pkg/phrase.Node and pkg/phrase.Document; it is not
// meant to parse any real-world language correctly.
package sourcelang

import (
	"github.com/tidesmith/symbolcore/pkg/phrase"
)

var memberModifierKeywords = map[string]bool{
	"public": true, "protected": true, "private": true, "final": true,
	"abstract": true, "static": true, "readonly": true,
}

type parser struct {
	toks []token
	pos  int
}

// Parse lexes and parses src into a Document identified by uri.
func Parse(uri string, src []byte) *Document {
	p := &parser{toks: tokenize(src)}
	root := p.parseProgram()
	return newDocument(uri, src, root)
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) atEOF() bool { return p.cur().kind == tokEOF }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) atOp(s string) bool { return p.cur().kind == tokOp && p.cur().text == s }
func (p *parser) atKeyword(w string) bool { return p.cur().isKeyword(w) }

func (p *parser) acceptOp(s string) bool {
	if p.atOp(s) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) acceptKeyword(w string) bool {
	if p.atKeyword(w) {
		p.advance()
		return true
	}
	return false
}

// skipToSync advances past tokens until a statement boundary, used to
// keep the parser total (never panics) on unrecognized input.
func (p *parser) skipToSync() {
	for !p.atEOF() && !p.atOp(";") && !p.atOp("}") {
		p.advance()
	}
	p.acceptOp(";")
}

// ---- Program / top level -------------------------------------------

func (p *parser) parseProgram() *node {
	root := &node{kind: phrase.KindCompoundStatement}
	for !p.atEOF() {
		if p.cur().kind == tokDocComment {
			t := p.advance()
			root.addChild(leaf(phrase.KindTokenDocComment, t.text, t.rng))
			continue
		}
		if p.atKeyword("namespace") {
			// The unbraced form absorbs every remaining top-level item
			// into its own synthetic body, up to the next `namespace`
			// keyword or EOF; parseNamespace's own loop handles that.
			root.addChild(p.parseNamespace())
			continue
		}
		root.addChild(p.parseTopLevelItem())
	}
	return root
}

func (p *parser) parseTopLevelItem() phrase.Node {
	switch {
	case p.atKeyword("use"):
		return p.parseUseDeclaration()
	case p.atKeyword("const"):
		return p.parseConstDeclaration()
	case p.atKeyword("function") && p.isFunctionDeclStart():
		return p.parseFunctionDeclaration()
	case p.atKeyword("abstract"), p.atKeyword("final"):
		mods := p.parseLeadingModifiers()
		if p.atKeyword("class") {
			return p.parseClassDeclaration(mods)
		}
		return p.parseStatement()
	case p.atKeyword("class"):
		return p.parseClassDeclaration(nil)
	case p.atKeyword("interface"):
		return p.parseInterfaceDeclaration()
	case p.atKeyword("trait"):
		return p.parseTraitDeclaration()
	default:
		return p.parseStatement()
	}
}

// isFunctionDeclStart distinguishes `function name(...)` from an
// anonymous function expression used as a statement; a declaration is
// followed by an identifier rather than `(` or `&`.
func (p *parser) isFunctionDeclStart() bool {
	next := p.toks[clampIndex(p.pos+1, len(p.toks)-1)]
	return next.kind == tokIdent
}

func clampIndex(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// parseNamespace handles both `namespace Foo\Bar;` (file-scoped) and
// `namespace Foo\Bar { ... }` (braced). Both forms produce a "body"
// field so the reader pushes a scope in either case; the file-scoped
// form's body absorbs every remaining top-level item.
func (p *parser) parseNamespace() *node {
	start := p.cur().rng
	p.advance() // "namespace"
	var nameNode *node
	if p.cur().kind == tokIdent {
		nameNode = p.parseDottedName()
	}
	ns := &node{kind: phrase.KindNamespaceDefinition}
	if nameNode != nil {
		ns.setField("name", nameNode)
	}

	if p.acceptOp("{") {
		body := &node{kind: phrase.KindCompoundStatement}
		for !p.atEOF() && !p.atOp("}") {
			if p.cur().kind == tokDocComment {
				t := p.advance()
				body.addChild(leaf(phrase.KindTokenDocComment, t.text, t.rng))
				continue
			}
			body.addChild(p.parseTopLevelItem())
		}
		p.acceptOp("}")
		ns.setField("body", body)
		ns.addChild(body)
		ns.rng = spanRange(start, body.rng)
		return ns
	}

	p.acceptOp(";")
	body := &node{kind: phrase.KindCompoundStatement}
	for !p.atEOF() && !p.atKeyword("namespace") {
		if p.cur().kind == tokDocComment {
			t := p.advance()
			body.addChild(leaf(phrase.KindTokenDocComment, t.text, t.rng))
			continue
		}
		body.addChild(p.parseTopLevelItem())
	}
	ns.setField("body", body)
	ns.addChild(body)
	ns.rng = spanRange(start, start)
	return ns
}

// parseDottedName reads a plain `Foo\Bar\Baz` identifier chain used for
// namespace names and use-clause targets, without resolver semantics.
func (p *parser) parseDottedName() *node {
	start := p.cur()
	text := p.advance().text
	for p.atOp("\\") {
		p.advance()
		text += "\\" + p.advance().text
	}
	return leaf(phrase.KindTokenName, text, spanRange(start.rng, p.toks[p.pos-1].rng))
}

// ---- use declarations -------------------------------------------

func (p *parser) parseUseDeclaration() *node {
	start := p.cur().rng
	p.advance() // "use"
	decl := &node{kind: phrase.KindNamespaceUseDeclaration}

	kindTok := ""
	if p.atKeyword("function") || p.atKeyword("const") {
		kindTok = p.advance().text
	}

	prefix := p.parseDottedName()
	if p.acceptOp("{") {
		for {
			memberKind := kindTok
			if p.atKeyword("function") || p.atKeyword("const") {
				memberKind = p.advance().text
			}
			member := p.parseDottedName()
			fqn := prefix.text + "\\" + member.text
			clause := &node{kind: phrase.KindNamespaceUseGroupClause, rng: member.rng}
			clause.setField("name", leaf(phrase.KindTokenName, fqn, member.rng))
			if memberKind != "" {
				clause.setField("kind", leaf(phrase.KindTokenName, memberKind, member.rng))
			}
			if p.acceptKeyword("as") {
				alias := p.advance()
				clause.setField("alias", tokenNode(alias))
			}
			decl.addChild(clause)
			if !p.acceptOp(",") {
				break
			}
		}
		p.acceptOp("}")
	} else {
		clause := &node{kind: phrase.KindNamespaceUseClause, rng: prefix.rng}
		clause.setField("name", prefix)
		if kindTok != "" {
			clause.setField("kind", leaf(phrase.KindTokenName, kindTok, prefix.rng))
		}
		if p.acceptKeyword("as") {
			alias := p.advance()
			clause.setField("alias", tokenNode(alias))
		}
		decl.addChild(clause)
		for p.acceptOp(",") {
			name := p.parseDottedName()
			c := &node{kind: phrase.KindNamespaceUseClause, rng: name.rng}
			c.setField("name", name)
			if kindTok != "" {
				c.setField("kind", leaf(phrase.KindTokenName, kindTok, name.rng))
			}
			if p.acceptKeyword("as") {
				alias := p.advance()
				c.setField("alias", tokenNode(alias))
			}
			decl.addChild(c)
		}
	}
	p.acceptOp(";")
	decl.rng = spanRange(start, p.toks[p.pos-1].rng)
	return decl
}

// ---- const declarations -------------------------------------------

func (p *parser) parseConstDeclaration() *node {
	start := p.cur().rng
	p.advance() // "const"
	decl := &node{kind: phrase.KindConstDeclaration}
	for {
		nameTok := p.advance()
		elem := &node{kind: phrase.KindConstElement, fields: map[string]phrase.Node{
			"name": tokenNode(nameTok),
		}}
		if p.acceptOp("=") {
			val := p.parseExpression()
			elem.setField("value", val)
			elem.addChild(val)
		}
		decl.addChild(elem)
		if !p.acceptOp(",") {
			break
		}
	}
	p.acceptOp(";")
	decl.rng = spanRange(start, p.toks[p.pos-1].rng)
	return decl
}

// ---- classes / interfaces / traits -------------------------------------------

func (p *parser) parseLeadingModifiers() []token {
	var mods []token
	for memberModifierKeywords[lowerKeyword(p.cur())] {
		mods = append(mods, p.advance())
	}
	return mods
}

func lowerKeyword(t token) string {
	if t.kind != tokIdent {
		return ""
	}
	return toLower(t.text)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

func modifiersNode(mods []token) *node {
	if len(mods) == 0 {
		return nil
	}
	text := ""
	for i, m := range mods {
		if i > 0 {
			text += " "
		}
		text += m.text
	}
	return leaf(phrase.KindMemberModifierList, text, spanRange(mods[0].rng, mods[len(mods)-1].rng))
}

func (p *parser) parseClassDeclaration(mods []token) *node {
	start := p.cur().rng
	if len(mods) > 0 {
		start = mods[0].rng
	}
	p.advance() // "class"
	nameTok := p.advance()
	class := &node{kind: phrase.KindClassDeclaration}
	header := &node{kind: phrase.KindClassDeclarationHeader, fields: map[string]phrase.Node{
		"name": tokenNode(nameTok),
	}}
	if mn := modifiersNode(mods); mn != nil {
		header.setField("modifiers", mn)
	}
	class.addChild(header)

	if p.acceptKeyword("extends") {
		base := &node{kind: phrase.KindClassBaseClause}
		base.addChild(p.parseDottedName())
		for p.acceptOp(",") {
			base.addChild(p.parseDottedName())
		}
		class.addChild(base)
	}
	if p.acceptKeyword("implements") {
		ifaces := &node{kind: phrase.KindClassInterfaceClause}
		ifaces.addChild(p.parseDottedName())
		for p.acceptOp(",") {
			ifaces.addChild(p.parseDottedName())
		}
		class.addChild(ifaces)
	}

	p.parseMemberBody(class)
	class.rng = spanRange(start, p.toks[p.pos-1].rng)
	return class
}

func (p *parser) parseInterfaceDeclaration() *node {
	start := p.cur().rng
	p.advance() // "interface"
	nameTok := p.advance()
	iface := &node{kind: phrase.KindInterfaceDeclaration}
	header := &node{kind: phrase.KindInterfaceDeclarationHeader, fields: map[string]phrase.Node{
		"name": tokenNode(nameTok),
	}}
	iface.addChild(header)
	if p.acceptKeyword("extends") {
		base := &node{kind: phrase.KindInterfaceBaseClause}
		base.addChild(p.parseDottedName())
		for p.acceptOp(",") {
			base.addChild(p.parseDottedName())
		}
		iface.addChild(base)
	}
	p.parseMemberBody(iface)
	iface.rng = spanRange(start, p.toks[p.pos-1].rng)
	return iface
}

func (p *parser) parseTraitDeclaration() *node {
	start := p.cur().rng
	p.advance() // "trait"
	nameTok := p.advance()
	tr := &node{kind: phrase.KindTraitDeclaration}
	header := &node{kind: phrase.KindTraitDeclarationHeader, fields: map[string]phrase.Node{
		"name": tokenNode(nameTok),
	}}
	tr.addChild(header)
	p.parseMemberBody(tr)
	tr.rng = spanRange(start, p.toks[p.pos-1].rng)
	return tr
}

// parseMemberBody parses `{ ... }` class/interface/trait body members
// directly onto owner's children, matching the reader's expectation
// that member-modifier lists, constants, properties and methods appear
// as flat siblings (default traversal descends into any wrapping kind
// it doesn't special-case, so no dedicated "body" wrapper is needed).
func (p *parser) parseMemberBody(owner *node) {
	if !p.acceptOp("{") {
		return
	}
	for !p.atEOF() && !p.atOp("}") {
		if p.cur().kind == tokDocComment {
			t := p.advance()
			owner.addChild(leaf(phrase.KindTokenDocComment, t.text, t.rng))
			continue
		}
		if p.atKeyword("use") {
			owner.addChild(p.parseTraitUseClause())
			continue
		}
		mods := p.parseLeadingModifiers()
		if mn := modifiersNode(mods); mn != nil {
			owner.addChild(mn)
		}
		switch {
		case p.atKeyword("const"):
			p.advance()
			for {
				nameTok := p.advance()
				elem := &node{kind: phrase.KindClassConstElement, fields: map[string]phrase.Node{
					"name": tokenNode(nameTok),
				}}
				if p.acceptOp("=") {
					val := p.parseExpression()
					elem.setField("value", val)
					elem.addChild(val)
				}
				owner.addChild(elem)
				if !p.acceptOp(",") {
					break
				}
			}
			p.acceptOp(";")
		case p.atKeyword("function"):
			owner.addChild(p.parseFunctionOrMethod(true))
		case p.cur().kind == tokVariable:
			p.parsePropertyElements(owner, nil)
		case p.cur().kind == tokIdent || p.atOp("?"):
			typeNode := p.parseTypeDeclaration()
			p.parsePropertyElements(owner, typeNode)
		default:
			p.skipToSync()
		}
	}
	p.acceptOp("}")
}

func (p *parser) parseTraitUseClause() *node {
	p.advance() // "use"
	clause := &node{kind: phrase.KindTraitUseClause}
	clause.addChild(p.parseDottedName())
	for p.acceptOp(",") {
		clause.addChild(p.parseDottedName())
	}
	if p.acceptOp("{") {
		for !p.atEOF() && !p.atOp("}") {
			p.advance()
		}
		p.acceptOp("}")
	} else {
		p.acceptOp(";")
	}
	return clause
}

func (p *parser) parsePropertyElements(owner *node, typeNode *node) {
	for {
		nameTok := p.advance() // variable token, includes "$"
		elem := &node{kind: phrase.KindPropertyElement, fields: map[string]phrase.Node{
			"name": tokenNode(nameTok),
		}}
		if typeNode != nil {
			elem.setField("type", typeNode)
		}
		if p.acceptOp("=") {
			val := p.parseExpression()
			elem.setField("default", val)
			elem.addChild(val)
		}
		owner.addChild(elem)
		if !p.acceptOp(",") {
			break
		}
	}
	p.acceptOp(";")
}

// parseTypeDeclaration consumes a raw type expression such as
// `int|string`, `?Foo`, `Foo|Bar\Baz`, without modeling precedence. Its
// Text(), which the core uses verbatim, is rebuilt from the consumed
// tokens without whitespace; a leading `?` is consumed and left out of
// the text, while a `?` after a `|` is kept.
func (p *parser) parseTypeDeclaration() *node {
	start := p.cur()
	for p.acceptOp("?") {
	}
	text := ""
	if p.atOp("?") {
		text = "?"
		p.advance()
	}
	text += p.advance().text
	for p.atOp("\\") {
		p.advance()
		text += "\\" + p.advance().text
	}
	for p.atOp("|") {
		p.advance()
		text += "|"
		if p.atOp("?") {
			p.advance()
			text += "?"
		}
		text += p.advance().text
		for p.atOp("\\") {
			p.advance()
			text += "\\" + p.advance().text
		}
	}
	return leaf(phrase.KindTypeDeclaration, text, spanRange(start.rng, p.toks[p.pos-1].rng))
}

// ---- functions / methods -------------------------------------------

func (p *parser) parseFunctionDeclaration() *node {
	return p.parseFunctionOrMethod(false)
}

func (p *parser) parseFunctionOrMethod(isMethod bool) *node {
	start := p.cur().rng
	p.advance() // "function"
	p.acceptOp("&") // by-ref return, irrelevant here
	nameTok := p.advance()

	kind := phrase.KindFunctionDeclaration
	headerKind := phrase.KindFunctionDeclarationHeader
	if isMethod {
		kind = phrase.KindMethodDeclaration
		headerKind = phrase.KindMethodDeclarationHeader
	}
	fn := &node{kind: kind}
	header := &node{kind: headerKind, fields: map[string]phrase.Node{
		"name": tokenNode(nameTok),
	}}
	fn.addChild(header)

	params := p.parseParameterList()
	for _, pr := range params {
		fn.addChild(pr)
	}

	if p.atKeyword("use") {
		p.advance()
		p.acceptOp("(")
		uses := &node{kind: phrase.KindAnonymousFunctionUseVariable}
		for !p.atEOF() && !p.atOp(")") {
			if p.cur().kind == tokVariable {
				uses.addChild(variableNode(p.advance()))
			} else {
				p.advance()
			}
			p.acceptOp(",")
		}
		p.acceptOp(")")
		fn.setField("uses", uses)
	}

	if p.acceptOp(":") {
		_ = p.parseTypeDeclaration() // inline return types are parsed and discarded; the reader types functions from @return only
	}

	if p.atOp("{") {
		body := p.parseCompoundStatement()
		fn.addChild(body)
	} else {
		p.acceptOp(";") // abstract/interface method, no body
	}
	fn.rng = spanRange(start, p.toks[p.pos-1].rng)
	return fn
}

func (p *parser) parseParameterList() []*node {
	var params []*node
	if !p.acceptOp("(") {
		return params
	}
	for !p.atEOF() && !p.atOp(")") {
		var typeNode *node
		for _, m := range p.parseLeadingModifiers() {
			_ = m // constructor-promoted visibility modifiers: accepted, not modeled further
		}
		if (p.cur().kind == tokIdent || p.atOp("?")) && p.cur().kind != tokVariable {
			typeNode = p.parseTypeDeclaration()
		}
		p.acceptOp("&")
		p.acceptOp("...")
		nameTok := p.advance() // variable
		param := &node{kind: phrase.KindParameterDeclaration, fields: map[string]phrase.Node{
			"name": tokenNode(nameTok),
		}}
		if typeNode != nil {
			param.addChild(typeNode)
		}
		if p.acceptOp("=") {
			val := p.parseExpression()
			param.setField("default", val)
		}
		param.rng = nameTok.rng
		params = append(params, param)
		if !p.acceptOp(",") {
			break
		}
	}
	p.acceptOp(")")
	return params
}

// ---- statements -------------------------------------------

func (p *parser) parseCompoundStatement() *node {
	start := p.cur().rng
	p.acceptOp("{")
	body := &node{kind: phrase.KindCompoundStatement}
	p.parseStatementListInto(body, "}")
	p.acceptOp("}")
	body.rng = spanRange(start, p.toks[p.pos-1].rng)
	return body
}

func (p *parser) parseStatementListInto(body *node, closer string) {
	for !p.atEOF() && !p.atOp(closer) {
		if p.cur().kind == tokDocComment {
			t := p.advance()
			body.addChild(leaf(phrase.KindTokenDocComment, t.text, t.rng))
			continue
		}
		body.addChild(p.parseStatement())
	}
}

func (p *parser) parseStatement() phrase.Node {
	switch {
	case p.atOp("{"):
		return p.parseCompoundStatement()
	case p.atKeyword("if"):
		return p.parseIfStatement()
	case p.atKeyword("switch"):
		return p.parseSwitchStatement()
	case p.atKeyword("foreach"):
		return p.parseForeachStatement()
	case p.atKeyword("try"):
		return p.parseTryStatement()
	case p.atKeyword("function") && p.isFunctionDeclStart():
		return p.parseFunctionDeclaration()
	case p.atKeyword("abstract"), p.atKeyword("final"):
		mods := p.parseLeadingModifiers()
		if p.atKeyword("class") {
			return p.parseClassDeclaration(mods)
		}
		return p.parseExpressionStatement()
	case p.atKeyword("class"):
		return p.parseClassDeclaration(nil)
	case p.atKeyword("return") || p.atKeyword("echo") || p.atKeyword("break") || p.atKeyword("continue"):
		start := p.cur().rng
		p.advance()
		stmt := &node{kind: phrase.KindExpressionStatement}
		if !p.atOp(";") && !p.atEOF() {
			stmt.addChild(p.parseExpression())
		}
		p.acceptOp(";")
		stmt.rng = spanRange(start, p.toks[p.pos-1].rng)
		return stmt
	default:
		return p.parseExpressionStatement()
	}
}

func (p *parser) parseExpressionStatement() *node {
	start := p.cur().rng
	expr := p.parseExpression()
	p.acceptOp(";")
	stmt := &node{kind: phrase.KindExpressionStatement, rng: spanRange(start, p.toks[p.pos-1].rng)}
	stmt.addChild(expr)
	return stmt
}

func (p *parser) parseIfStatement() *node {
	start := p.cur().rng
	p.advance() // "if"
	p.acceptOp("(")
	cond := p.parseExpression()
	p.acceptOp(")")
	body := p.parseBranchBody()

	ifNode := &node{kind: phrase.KindIfStatement}
	ifNode.addChild(cond)
	ifNode.addChild(body)

	if p.atKeyword("elseif") {
		list := &node{kind: phrase.KindElseIfClauseList}
		for p.atKeyword("elseif") {
			p.advance()
			p.acceptOp("(")
			eCond := p.parseExpression()
			p.acceptOp(")")
			eBody := p.parseBranchBody()
			clause := &node{kind: phrase.KindElseIfClause}
			clause.addChild(eCond)
			clause.addChild(eBody)
			list.addChild(clause)
		}
		ifNode.addChild(list)
	}
	if p.atKeyword("else") {
		p.advance()
		eBody := p.parseBranchBody()
		elseClause := &node{kind: phrase.KindElseClause}
		elseClause.addChild(eBody)
		ifNode.addChild(elseClause)
	}
	ifNode.rng = spanRange(start, p.toks[p.pos-1].rng)
	return ifNode
}

// parseBranchBody accepts either a `{ ... }` block or a single
// statement, the way an unbraced `if (...) stmt;` would parse.
func (p *parser) parseBranchBody() phrase.Node {
	if p.atOp("{") {
		return p.parseCompoundStatement()
	}
	return p.parseStatement()
}

func (p *parser) parseSwitchStatement() *node {
	start := p.cur().rng
	p.advance() // "switch"
	p.acceptOp("(")
	subject := p.parseExpression()
	p.acceptOp(")")
	p.acceptOp("{")
	sw := &node{kind: phrase.KindSwitchStatement}
	sw.addChild(subject)
	for !p.atEOF() && !p.atOp("}") {
		switch {
		case p.atKeyword("case"):
			p.advance()
			caseExpr := p.parseExpression()
			p.acceptOp(":")
			c := &node{kind: phrase.KindCaseStatement}
			c.addChild(caseExpr)
			for !p.atEOF() && !p.atOp("}") && !p.atKeyword("case") && !p.atKeyword("default") {
				c.addChild(p.parseStatement())
			}
			sw.addChild(c)
		case p.atKeyword("default"):
			p.advance()
			p.acceptOp(":")
			d := &node{kind: phrase.KindDefaultStatement}
			for !p.atEOF() && !p.atOp("}") && !p.atKeyword("case") && !p.atKeyword("default") {
				d.addChild(p.parseStatement())
			}
			sw.addChild(d)
		default:
			p.advance()
		}
	}
	p.acceptOp("}")
	sw.rng = spanRange(start, p.toks[p.pos-1].rng)
	return sw
}

func (p *parser) parseForeachStatement() *node {
	start := p.cur().rng
	p.advance() // "foreach"
	p.acceptOp("(")
	collection := p.parseExpression()
	p.acceptOp("as")

	var keyVar, valueVar phrase.Node
	first := p.parseForeachTarget()
	if p.acceptOp("=>") {
		keyVar = first
		valueVar = p.parseForeachTarget()
	} else {
		valueVar = first
	}
	p.acceptOp(")")
	body := p.parseBranchBody()

	fe := &node{kind: phrase.KindForeachStatement, fields: map[string]phrase.Node{
		"collection": collection,
		"value":      valueVar,
	}}
	fe.addChild(collection)
	if keyVar != nil {
		fe.setField("key", keyVar)
		wrapper := &node{kind: phrase.KindForeachKey}
		wrapper.addChild(keyVar)
		fe.addChild(wrapper)
	}
	valueWrapper := &node{kind: phrase.KindForeachValue}
	valueWrapper.addChild(valueVar)
	fe.addChild(valueWrapper)
	fe.addChild(body)
	fe.rng = spanRange(start, p.toks[p.pos-1].rng)
	return fe
}

// parseForeachTarget parses a simple variable or a list()-destructuring
// target appearing in a foreach key/value position.
func (p *parser) parseForeachTarget() phrase.Node {
	if p.atKeyword("list") || p.atOp("[") {
		return p.parseListIntrinsic()
	}
	return variableNode(p.advance())
}

func (p *parser) parseListIntrinsic() *node {
	start := p.cur().rng
	bracket := p.atOp("[")
	if bracket {
		p.advance()
	} else {
		p.advance() // "list"
		p.acceptOp("(")
	}
	li := &node{kind: phrase.KindListIntrinsic}
	for !p.atEOF() && !p.atOp(")") && !p.atOp("]") {
		if p.cur().kind == tokVariable {
			li.addChild(variableNode(p.advance()))
		} else {
			p.advance()
		}
		p.acceptOp(",")
	}
	if bracket {
		p.acceptOp("]")
	} else {
		p.acceptOp(")")
	}
	li.rng = spanRange(start, p.toks[p.pos-1].rng)
	return li
}

func (p *parser) parseTryStatement() phrase.Node {
	p.advance() // "try"
	tryBody := p.parseCompoundStatement()
	container := &node{kind: phrase.KindCompoundStatement}
	container.addChild(tryBody)
	for p.atKeyword("catch") {
		container.addChild(p.parseCatchClause())
	}
	if p.acceptKeyword("finally") {
		container.addChild(p.parseCompoundStatement())
	}
	return container
}

func (p *parser) parseCatchClause() *node {
	start := p.cur().rng
	p.advance() // "catch"
	p.acceptOp("(")
	types := &node{kind: phrase.KindCatchNameList}
	types.addChild(p.parseDottedName())
	for p.acceptOp("|") {
		types.addChild(p.parseDottedName())
	}
	var varNode *node
	if p.cur().kind == tokVariable {
		varNode = variableNode(p.advance())
	}
	p.acceptOp(")")
	body := p.parseCompoundStatement()

	cc := &node{kind: phrase.KindCatchClause, fields: map[string]phrase.Node{
		"types": types,
	}}
	if varNode != nil {
		cc.setField("variable", varNode)
	}
	cc.addChild(body)
	cc.rng = spanRange(start, p.toks[p.pos-1].rng)
	return cc
}

// ---- expressions -------------------------------------------

func (p *parser) parseExpression() phrase.Node {
	return p.parseAssignment()
}

func (p *parser) parseAssignment() phrase.Node {
	lhs := p.parseTernary()
	if p.atOp("=") {
		p.advance()
		byRef := p.acceptOp("&")
		rhs := p.parseAssignment()
		kind := phrase.KindSimpleAssignmentExpression
		if byRef {
			kind = phrase.KindByRefAssignmentExpression
		}
		assign := &node{kind: kind, fields: map[string]phrase.Node{
			"left": lhs, "right": rhs,
		}}
		assign.addChild(lhs)
		assign.addChild(rhs)
		return assign
	}
	return lhs
}

func (p *parser) parseTernary() phrase.Node {
	cond := p.parseInstanceOf()
	if p.atOp("?") {
		p.advance()
		var thenExpr phrase.Node
		if !p.atOp(":") {
			thenExpr = p.parseExpression()
		}
		p.acceptOp(":")
		elseExpr := p.parseExpression()
		t := &node{kind: phrase.KindTernaryExpression, fields: map[string]phrase.Node{
			"then": thenExpr, "else": elseExpr,
		}}
		t.addChild(cond)
		if thenExpr != nil {
			t.addChild(thenExpr)
		}
		t.addChild(elseExpr)
		return t
	}
	return cond
}

func (p *parser) parseInstanceOf() phrase.Node {
	e := p.parseBinary()
	for p.atKeyword("instanceof") {
		p.advance()
		rhs := p.parseScopeRef()
		iof := &node{kind: phrase.KindInstanceOfExpression, fields: map[string]phrase.Node{
			"left": e, "right": rhs,
		}}
		iof.addChild(e)
		iof.addChild(rhs)
		e = iof
	}
	return e
}

// parseBinary handles the remaining binary operators as a single flat
// left-associative pass; operands are what the core's ResolveExpression
// actually cares about; the operators themselves are opaque.
var binaryOps = []string{
	"??", "||", "&&", "|", "^", "&", "==", "!=", "===", "!==", "<", ">", "<=", ">=",
	"+", "-", ".", "*", "/", "%",
}

func (p *parser) parseBinary() phrase.Node {
	left := p.parseUnary()
	for {
		matched := ""
		for _, op := range binaryOps {
			if p.atOp(op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return left
		}
		p.advance()
		right := p.parseUnary()
		wrap := &node{kind: phrase.KindNone, rng: spanRange(nodeRange(left), nodeRange(right))}
		wrap.addChild(left)
		wrap.addChild(right)
		left = wrap
	}
}

func nodeRange(n phrase.Node) phrase.Range {
	if n == nil {
		return phrase.Range{}
	}
	return n.Range()
}

func (p *parser) parseUnary() phrase.Node {
	if p.atOp("!") || p.atOp("-") || p.atOp("+") || p.atOp("~") {
		p.advance()
		return p.parseUnary()
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *parser) parsePostfix(base phrase.Node) phrase.Node {
	cur := base
	for {
		switch {
		case p.atOp("->"):
			p.advance()
			memberTok := p.advance()
			member := tokenNode(memberTok)
			if p.atOp("(") {
				args := p.parseArgumentList()
				call := &node{kind: phrase.KindMethodCallExpression, fields: map[string]phrase.Node{
					"base": cur, "member": member,
				}}
				call.addChild(cur)
				call.addChild(member)
				call.addChild(args)
				cur = call
			} else {
				access := &node{kind: phrase.KindPropertyAccessExpression, fields: map[string]phrase.Node{
					"base": cur, "member": member,
				}}
				access.addChild(cur)
				access.addChild(member)
				cur = access
			}

		case p.atOp("::"):
			p.advance()
			var member *node
			if p.cur().kind == tokVariable {
				member = variableNode(p.advance())
			} else {
				member = tokenNode(p.advance())
			}
			if p.atOp("(") {
				args := p.parseArgumentList()
				call := &node{kind: phrase.KindScopedCallExpression, fields: map[string]phrase.Node{
					"scope": cur, "member": member,
				}}
				call.addChild(cur)
				call.addChild(member)
				call.addChild(args)
				cur = call
			} else {
				access := &node{kind: phrase.KindScopedPropertyAccessExpression, fields: map[string]phrase.Node{
					"scope": cur, "member": member,
				}}
				access.addChild(cur)
				access.addChild(member)
				cur = access
			}

		case p.atOp("("):
			args := p.parseArgumentList()
			call := &node{kind: phrase.KindFunctionCallExpression, fields: map[string]phrase.Node{
				"callee": cur,
			}}
			call.addChild(cur)
			call.addChild(args)
			cur = call

		case p.atOp("["):
			p.advance()
			var idx phrase.Node
			if !p.atOp("]") {
				idx = p.parseExpression()
			}
			p.acceptOp("]")
			sub := &node{kind: phrase.KindSubscriptExpression, fields: map[string]phrase.Node{
				"base": cur,
			}}
			sub.addChild(cur)
			if idx != nil {
				sub.setField("index", idx)
				sub.addChild(idx)
			}
			cur = sub

		default:
			return cur
		}
	}
}

func (p *parser) parseArgumentList() *node {
	start := p.cur().rng
	p.acceptOp("(")
	args := &node{kind: phrase.KindArgumentExpressionList}
	for !p.atEOF() && !p.atOp(")") {
		args.addChild(p.parseExpression())
		if !p.acceptOp(",") {
			break
		}
	}
	p.acceptOp(")")
	args.rng = spanRange(start, p.toks[p.pos-1].rng)
	return args
}

func (p *parser) parsePrimary() phrase.Node {
	t := p.cur()
	switch {
	case t.kind == tokVariable:
		p.advance()
		return variableNode(t)

	case t.kind == tokNumber || t.kind == tokString:
		p.advance()
		return leaf(phrase.KindNone, t.text, t.rng)

	case p.atKeyword("new"):
		return p.parseNewExpression()

	case p.atKeyword("list"):
		return p.parseListIntrinsic()

	case p.atKeyword("static") && p.nextIsFunctionKeyword():
		p.advance()
		return p.parseClosureExpression()

	case p.atKeyword("function"):
		return p.parseClosureExpression()

	case p.atOp("("):
		p.advance()
		e := p.parseExpression()
		p.acceptOp(")")
		return e

	case p.atOp("\\") || t.kind == tokIdent:
		return p.parseScopeRef()

	default:
		p.advance()
		return leaf(phrase.KindNone, t.text, t.rng)
	}
}

// parseScopeRef parses a bare name appearing where a class/function/
// constant reference is expected: self/static become a RelativeScope
// leaf (so exprtype resolves them to the current class directly);
// parent and any qualified name fall through to the generic name
// parser so the resolver's own self/static/parent text handling and
// import-aware lookup apply uniformly.
func (p *parser) parseScopeRef() phrase.Node {
	if p.atKeyword("self") || p.atKeyword("static") {
		t := p.advance()
		return leaf(phrase.KindRelativeScope, toLower(t.text), t.rng)
	}
	return p.parseQualifiedName()
}

func (p *parser) parseQualifiedName() *node {
	start := p.cur()
	fullyQualified := false
	relative := false
	if p.atOp("\\") {
		fullyQualified = true
		p.advance()
	} else if p.atKeyword("namespace") {
		save := p.pos
		p.advance()
		if p.atOp("\\") {
			p.advance()
			relative = true
		} else {
			p.pos = save
		}
	}
	text := p.advance().text
	for p.atOp("\\") {
		p.advance()
		text += "\\" + p.advance().text
	}
	kind := phrase.KindQualifiedName
	switch {
	case fullyQualified:
		kind = phrase.KindFullyQualifiedName
	case relative:
		kind = phrase.KindRelativeQualifiedName
	}
	return leaf(kind, text, spanRange(start.rng, p.toks[p.pos-1].rng))
}

func (p *parser) nextIsFunctionKeyword() bool {
	return p.toks[clampIndex(p.pos+1, len(p.toks)-1)].isKeyword("function")
}

// parseClosureExpression parses `function (...) use (...) { ... }`, the
// only closure form this grammar models; arrow functions are not
// supported.
func (p *parser) parseClosureExpression() *node {
	start := p.cur().rng
	p.advance() // "function"
	p.acceptOp("&")
	params := p.parseParameterList()
	fn := &node{kind: phrase.KindAnonymousFunctionCreationExpression}
	for _, pr := range params {
		fn.addChild(pr)
	}
	if p.atKeyword("use") {
		p.advance()
		p.acceptOp("(")
		uses := &node{kind: phrase.KindAnonymousFunctionUseVariable}
		for !p.atEOF() && !p.atOp(")") {
			p.acceptOp("&")
			if p.cur().kind == tokVariable {
				uses.addChild(variableNode(p.advance()))
			} else {
				p.advance()
			}
			p.acceptOp(",")
		}
		p.acceptOp(")")
		fn.setField("uses", uses)
		fn.addChild(uses)
	}
	if p.acceptOp(":") {
		_ = p.parseTypeDeclaration()
	}
	body := p.parseCompoundStatement()
	fn.addChild(body)
	fn.rng = spanRange(start, p.toks[p.pos-1].rng)
	return fn
}

func (p *parser) parseNewExpression() phrase.Node {
	start := p.cur().rng
	p.advance() // "new"
	oce := &node{kind: phrase.KindObjectCreationExpression}

	if p.atKeyword("class") {
		p.advance()
		var args *node
		if p.atOp("(") {
			args = p.parseArgumentList()
		}
		anon := &node{kind: phrase.KindAnonymousClassDeclaration, rng: start}
		if p.acceptKeyword("extends") {
			base := &node{kind: phrase.KindClassBaseClause}
			base.addChild(p.parseDottedName())
			anon.addChild(base)
		}
		if p.acceptKeyword("implements") {
			ifaces := &node{kind: phrase.KindClassInterfaceClause}
			ifaces.addChild(p.parseDottedName())
			for p.acceptOp(",") {
				ifaces.addChild(p.parseDottedName())
			}
			anon.addChild(ifaces)
		}
		p.parseMemberBody(anon)
		anon.rng = spanRange(start, p.toks[p.pos-1].rng)
		oce.setField("anonymousClass", anon)
		oce.addChild(anon)
		if args != nil {
			oce.addChild(args)
		}
		oce.rng = spanRange(start, p.toks[p.pos-1].rng)
		return oce
	}

	nameNode := p.parseScopeRef()
	var designator *node
	if nameNode.Kind() == phrase.KindRelativeScope {
		designator = nameNode.(*node)
	} else {
		designator = &node{kind: phrase.KindClassTypeDesignator, fields: map[string]phrase.Node{
			"name": nameNode,
		}, rng: nameNode.Range()}
		designator.addChild(nameNode)
	}
	oce.setField("designator", designator)
	oce.addChild(designator)
	if p.atOp("(") {
		oce.addChild(p.parseArgumentList())
	}
	oce.rng = spanRange(start, p.toks[p.pos-1].rng)
	return oce
}
