package symbol

import (
	"strings"

	"github.com/tidesmith/symbolcore/pkg/docparser"
	"github.com/tidesmith/symbolcore/pkg/langtype"
	"github.com/tidesmith/symbolcore/pkg/phrase"
	"github.com/tidesmith/symbolcore/pkg/resolve"
)

// superglobals are simple-variable names the reader never emits as
// Variable symbols, per spec §4.3.
var superglobals = map[string]bool{
	"$GLOBALS": true, "$_SERVER": true, "$_GET": true, "$_POST": true,
	"$_FILES": true, "$_REQUEST": true, "$_SESSION": true, "$_ENV": true,
	"$_COOKIE": true, "$php_errormsg": true, "$HTTP_RAW_POST_DATA": true,
	"$http_response_header": true, "$argc": true, "$argv": true, "$this": true,
}

var memberModifierWords = map[string]Modifiers{
	"public": ModPublic, "protected": ModProtected, "private": ModPrivate,
	"final": ModFinal, "abstract": ModAbstract, "static": ModStatic,
	"readonly": ModReadOnly,
}

// reader performs the single depth-first traversal described in spec
// §4.3, maintaining a spine of currently-open symbols and a resolver
// state that it alone mutates.
type reader struct {
	doc              phrase.Document
	resolver         *resolve.State
	spine            []*Symbol
	lastDoc          *docparser.DocComment
	currentModifiers Modifiers
}

// Create builds a SymbolTable from doc by a single traversal, per spec
// §4.3 and the exposed operation named in spec §6.
func Create(doc phrase.Document) *SymbolTable {
	root := &Symbol{Kind: KindNone}
	r := &reader{
		doc:      doc,
		resolver: &resolve.State{},
		spine:    []*Symbol{root},
	}
	phrase.WalkNode(doc.Root(), r)
	return &SymbolTable{URI: doc.URI(), Root: root}
}

func (r *reader) top() *Symbol { return r.spine[len(r.spine)-1] }

func (r *reader) push(s *Symbol) { r.spine = append(r.spine, s) }

func (r *reader) pop() { r.spine = r.spine[:len(r.spine)-1] }

func lastSegment(fqn string) string {
	if idx := strings.LastIndexByte(fqn, '\\'); idx >= 0 {
		return fqn[idx+1:]
	}
	return fqn
}

func toResolveKind(k Kind) resolve.Kind {
	switch k {
	case KindFunction:
		return resolve.KindFunction
	case KindConstant:
		return resolve.KindConstant
	default:
		return resolve.KindClass
	}
}

func parseMemberModifiers(node phrase.Node) Modifiers {
	var m Modifiers
	for _, word := range strings.Fields(node.Text()) {
		if flag, ok := memberModifierWords[strings.ToLower(word)]; ok {
			m |= flag
		}
	}
	return m
}

// attachMagicMembers adds synthetic Magic-modifier children for the
// `@property`/`@property-read`/`@property-write`/`@method` tags on the
// doc comment currently stashed, per spec §4.3.
func (r *reader) attachMagicMembers(owner *Symbol, doc *docparser.DocComment) {
	if doc == nil {
		return
	}
	for _, pt := range doc.PropertyTags() {
		mods := ModMagic
		switch pt.TagName {
		case "@property-read":
			mods |= ModReadOnly
		case "@property-write":
			mods |= ModWriteOnly
		}
		owner.AddChild(&Symbol{
			Kind:        KindProperty,
			Name:        pt.Name,
			Modifiers:   mods,
			Type:        langtype.New(pt.Type).NameResolve(r.resolver),
			Description: pt.Description,
			TypeSource:  TypeSourceDoc,
		})
	}
	for _, mt := range doc.MethodTags() {
		method := &Symbol{
			Kind:        KindMethod,
			Name:        mt.Name,
			Modifiers:   ModMagic,
			Type:        langtype.New(mt.Type).NameResolve(r.resolver),
			Description: mt.Description,
			TypeSource:  TypeSourceDoc,
		}
		for _, p := range mt.Parameters {
			method.AddChild(&Symbol{
				Kind: KindParameter,
				Name: p.Name,
				Type: langtype.New(p.Type).NameResolve(r.resolver),
			})
		}
		owner.AddChild(method)
	}
}

func (r *reader) namePhraseToFqn(n phrase.Node, kind resolve.Kind) string {
	return r.resolver.NamePhraseToFqn(n, kind)
}

// isAssignmentTarget reports whether a SimpleVariable node is recorded
// as a Variable symbol per spec §4.3: an assignment target, a foreach
// key/value, or a list-destructuring element.
func isAssignmentTarget(node phrase.Node, ancestry []phrase.Node) bool {
	if len(ancestry) == 0 {
		return false
	}
	parent := ancestry[len(ancestry)-1]
	switch parent.Kind() {
	case phrase.KindSimpleAssignmentExpression, phrase.KindByRefAssignmentExpression:
		return parent.ChildByField("left") == node
	case phrase.KindForeachKey, phrase.KindForeachValue, phrase.KindListIntrinsic:
		return true
	default:
		return false
	}
}

// PreOrder implements phrase.Visitor.
func (r *reader) PreOrder(node phrase.Node, ancestry []phrase.Node) bool {
	switch node.Kind() {

	case phrase.KindTokenDocComment:
		r.lastDoc = docparser.Parse(node.Text())
		return false

	case phrase.KindNamespaceDefinition:
		nameNode := node.ChildByField("name")
		name := ""
		if nameNode != nil {
			name = nameNode.Text()
		}
		ns := &Symbol{Kind: KindNamespace, Name: name}
		r.top().AddChild(ns)
		r.resolver.NamespaceName = name
		if node.ChildByField("body") != nil {
			r.push(ns)
		}
		return true

	case phrase.KindNamespaceUseClause, phrase.KindNamespaceUseGroupClause:
		kind := KindClass
		if kindNode := node.ChildByField("kind"); kindNode != nil {
			switch kindNode.Text() {
			case "function":
				kind = KindFunction
			case "const":
				kind = KindConstant
			}
		}
		fqn := ""
		if nameNode := node.ChildByField("name"); nameNode != nil {
			fqn = nameNode.Text()
		}
		localName := lastSegment(fqn)
		if aliasNode := node.ChildByField("alias"); aliasNode != nil {
			localName = aliasNode.Text()
		}
		sym := &Symbol{
			Kind:       kind,
			Name:       localName,
			Modifiers:  ModUse,
			Associated: []AssociatedRef{{Kind: kind, Name: fqn}},
		}
		r.top().AddChild(sym)
		r.resolver.ImportedSymbols = append(r.resolver.ImportedSymbols, resolve.ImportedSymbol{
			Kind: toResolveKind(kind), Name: localName, TargetFQN: fqn,
		})
		return false

	case phrase.KindConstElement:
		nameNode := node.ChildByField("name")
		name := ""
		if nameNode != nil {
			name = r.resolver.ResolveRelative(nameNode.Text())
		}
		sym := &Symbol{Kind: KindConstant, Name: name}
		if v := node.ChildByField("value"); v != nil {
			sym.Value = v.Text()
		}
		if r.lastDoc != nil {
			if vt, ok := r.lastDoc.FindVarTag(""); ok {
				sym.Type = langtype.New(vt.Type).NameResolve(r.resolver)
				sym.Description = vt.Description
				sym.TypeSource = TypeSourceDoc
			}
		}
		r.top().AddChild(sym)
		r.lastDoc = nil
		return false

	case phrase.KindFunctionDeclaration:
		fn := &Symbol{Kind: KindFunction}
		r.top().AddChild(fn)
		r.push(fn)
		return true

	case phrase.KindFunctionDeclarationHeader:
		fn := r.top()
		if nameNode := node.ChildByField("name"); nameNode != nil {
			fn.Name = r.resolver.ResolveRelative(nameNode.Text())
		}
		if r.lastDoc != nil {
			fn.Description = r.lastDoc.Text()
			if rt, ok := r.lastDoc.ReturnTag(); ok {
				fn.Type = langtype.New(rt.Type).NameResolve(r.resolver)
				fn.TypeSource = TypeSourceDoc
			}
		}
		// lastDoc stays stashed here: the parameter declarations that
		// follow as siblings/children still need it for @param tags. It
		// is cleared once the body's compound statement closes.
		return true

	case phrase.KindParameterDeclaration:
		nameNode := node.ChildByField("name")
		name := ""
		if nameNode != nil {
			name = nameNode.Text()
		}
		param := &Symbol{Kind: KindParameter, Name: name}
		if d := node.ChildByField("default"); d != nil {
			param.Value = d.Text()
		}
		if r.lastDoc != nil {
			if pt, ok := r.lastDoc.FindParamTag(name); ok {
				param.Type = langtype.New(pt.Type).NameResolve(r.resolver)
				param.Description = pt.Description
				param.TypeSource = TypeSourceDoc
			}
		}
		r.top().AddChild(param)
		r.push(param)
		return true

	case phrase.KindTypeDeclaration:
		top := r.top()
		top.Type = langtype.New(node.Text()).NameResolve(r.resolver)
		top.TypeSource = TypeSourceDeclaration
		return false

	case phrase.KindClassDeclaration, phrase.KindInterfaceDeclaration, phrase.KindTraitDeclaration:
		kind := KindClass
		switch node.Kind() {
		case phrase.KindInterfaceDeclaration:
			kind = KindInterface
		case phrase.KindTraitDeclaration:
			kind = KindTrait
		}
		sym := &Symbol{Kind: kind}
		doc := r.lastDoc
		r.top().AddChild(sym)
		r.push(sym)
		r.attachMagicMembers(sym, doc)
		return true

	case phrase.KindClassDeclarationHeader, phrase.KindInterfaceDeclarationHeader, phrase.KindTraitDeclarationHeader:
		top := r.top()
		if nameNode := node.ChildByField("name"); nameNode != nil {
			top.Name = r.resolver.ResolveRelative(nameNode.Text())
		}
		r.resolver.ThisNameValue = top.Name
		if modNode := node.ChildByField("modifiers"); modNode != nil {
			top.Modifiers |= parseMemberModifiers(modNode)
		}
		if r.lastDoc != nil {
			top.Description = r.lastDoc.Text()
		}
		r.lastDoc = nil
		return true

	case phrase.KindClassBaseClause:
		top := r.top()
		for _, c := range node.Children() {
			fqn := r.namePhraseToFqn(c, resolve.KindClass)
			top.Associated = append(top.Associated, AssociatedRef{Kind: KindClass, Name: fqn})
			r.resolver.ThisBaseName = fqn
		}
		return false

	case phrase.KindClassInterfaceClause, phrase.KindInterfaceBaseClause:
		top := r.top()
		for _, c := range node.Children() {
			fqn := r.namePhraseToFqn(c, resolve.KindClass)
			top.Associated = append(top.Associated, AssociatedRef{Kind: KindInterface, Name: fqn})
		}
		return false

	case phrase.KindTraitUseClause:
		top := r.top()
		for _, c := range node.Children() {
			fqn := r.namePhraseToFqn(c, resolve.KindClass)
			top.Associated = append(top.Associated, AssociatedRef{Kind: KindTrait, Name: fqn})
		}
		return false

	case phrase.KindMemberModifierList:
		r.currentModifiers = parseMemberModifiers(node)
		return false

	case phrase.KindClassConstElement:
		mods := r.currentModifiers
		if mods == 0 {
			mods = ModPublic
		}
		name := ""
		if n := node.ChildByField("name"); n != nil {
			name = n.Text()
		}
		sym := &Symbol{Kind: KindClassConstant, Name: name, Modifiers: mods}
		if v := node.ChildByField("value"); v != nil {
			sym.Value = v.Text()
		}
		if r.lastDoc != nil {
			if vt, ok := r.lastDoc.FindVarTag(name); ok {
				sym.Type = langtype.New(vt.Type).NameResolve(r.resolver)
				sym.Description = vt.Description
				sym.TypeSource = TypeSourceDoc
			}
		}
		r.top().AddChild(sym)
		r.lastDoc = nil
		return false

	case phrase.KindPropertyElement:
		mods := r.currentModifiers
		name := ""
		if n := node.ChildByField("name"); n != nil {
			name = n.Text()
		}
		sym := &Symbol{Kind: KindProperty, Name: name, Modifiers: mods}
		if v := node.ChildByField("default"); v != nil {
			sym.Value = v.Text()
		}
		if td := node.ChildByField("type"); td != nil {
			sym.Type = langtype.New(td.Text()).NameResolve(r.resolver)
			sym.TypeSource = TypeSourceDeclaration
		} else if r.lastDoc != nil {
			if vt, ok := r.lastDoc.FindVarTag(name); ok {
				sym.Type = langtype.New(vt.Type).NameResolve(r.resolver)
				sym.Description = vt.Description
				sym.TypeSource = TypeSourceDoc
			}
		}
		r.top().AddChild(sym)
		r.lastDoc = nil
		return false

	case phrase.KindMethodDeclaration:
		m := &Symbol{Kind: KindMethod, Modifiers: r.currentModifiers}
		r.top().AddChild(m)
		r.push(m)
		return true

	case phrase.KindMethodDeclarationHeader:
		top := r.top()
		if nameNode := node.ChildByField("name"); nameNode != nil {
			top.Name = nameNode.Text()
		}
		if r.lastDoc != nil {
			top.Description = r.lastDoc.Text()
			if rt, ok := r.lastDoc.ReturnTag(); ok {
				top.Type = langtype.New(rt.Type).NameResolve(r.resolver)
				top.TypeSource = TypeSourceDoc
			}
		}
		// lastDoc stays stashed for the parameter declarations that follow.
		return true

	case phrase.KindAnonymousClassDeclaration:
		sym := &Symbol{Kind: KindClass, Name: r.doc.AnonymousName(node), Modifiers: ModAnonymous}
		r.top().AddChild(sym)
		r.push(sym)
		return true

	case phrase.KindAnonymousFunctionCreationExpression:
		sym := &Symbol{Kind: KindFunction, Name: r.doc.AnonymousName(node), Modifiers: ModAnonymous}
		r.top().AddChild(sym)
		r.push(sym)
		return true

	case phrase.KindSimpleVariable:
		name := node.Text()
		if !isAssignmentTarget(node, ancestry) || superglobals[name] {
			return false
		}
		top := r.top()
		for _, c := range top.Children {
			if (c.Kind == KindParameter || c.Kind == KindVariable) && c.Name == name {
				return false
			}
		}
		top.AddChild(&Symbol{Kind: KindVariable, Name: name})
		return false

	case phrase.KindCatchClause:
		var caught langtype.TypeString
		if typesNode := node.ChildByField("types"); typesNode != nil {
			for _, c := range typesNode.Children() {
				caught = caught.Merge(r.namePhraseToFqn(c, resolve.KindClass))
			}
		}
		if varNode := node.ChildByField("variable"); varNode != nil {
			r.top().AddChild(&Symbol{
				Kind: KindVariable, Name: varNode.Text(),
				Type: caught, TypeSource: TypeSourceDeclaration,
			})
		}
		return true

	default:
		return true
	}
}

// PostOrder implements phrase.Visitor.
func (r *reader) PostOrder(node phrase.Node, ancestry []phrase.Node) {
	switch node.Kind() {
	case phrase.KindNamespaceDefinition:
		if node.ChildByField("body") != nil {
			r.pop()
		} else {
			r.resolver.NamespaceName = ""
		}
	case phrase.KindFunctionDeclaration,
		phrase.KindParameterDeclaration,
		phrase.KindClassDeclaration,
		phrase.KindInterfaceDeclaration,
		phrase.KindTraitDeclaration,
		phrase.KindMethodDeclaration,
		phrase.KindAnonymousClassDeclaration,
		phrase.KindAnonymousFunctionCreationExpression:
		r.pop()
	case phrase.KindCompoundStatement:
		r.lastDoc = nil
	}
}
