package symbols

import (
	"strings"

	"perlsense/internal/cst"
	"perlsense/internal/token"
)

func (x *extractor) packageDecl(n *cst.Node) {
	name := n.ChildToken(token.Ident)
	block := n.Child(cst.Block)
	if name == nil {
		x.walkChildren(n)
		return
	}
	parent, _ := SplitQualified(name.Text)
	sym := &Symbol{
		QualifiedName: name.Text,
		BareName:      LastSegment(name.Text),
		Kind:          SymbolPackage,
		Span:          n.Span,
		NameSpan:      name.Span,
		Package:       parent,
		Arity:         ArityUnknown,
	}
	if block != nil {
		x.declare(sym)
		x.enter(ScopePackage, n.Span, name.Text)
		x.walkExcept(n, block)
		x.walkChildren(block)
		x.leave()
		return
	}
	x.finishPackage(n.Span.Start)
	f := x.top()
	f.pkg = name.Text
	sym.Span.End = f.end
	f.pkgSym = x.declare(sym)
	x.walkChildren(n)
}

func (x *extractor) subDecl(n *cst.Node) {
	name := n.ChildToken(token.Ident)
	if name == nil {
		x.anonSub(n)
		return
	}
	pkg, bare := SplitQualified(name.Text)
	if pkg == "" {
		pkg = x.pkg()
	}
	block := n.Child(cst.Block)
	sig := n.Child(cst.Signature)

	arity, flags := ArityUnknown, SymbolFlags(0)
	switch {
	case sig != nil:
		arity, flags = signatureArity(sig)
	case n.ChildToken(token.Prototype) != nil:
		arity, flags = prototypeArity(n.ChildToken(token.Prototype).Text)
	case block != nil:
		arity, flags = unpackArity(block)
	}
	if block == nil {
		flags |= SymbolFlagForward
	}

	qualified := pkg + "::" + bare
	if prev := x.forwardDecl(qualified); prev != nil && block != nil {
		prev.Span = n.Span
		prev.NameSpan = name.Span
		prev.Arity = arity
		prev.Flags = flags
	} else {
		x.declare(&Symbol{
			QualifiedName: qualified,
			BareName:      bare,
			Kind:          SymbolSub,
			Span:          n.Span,
			NameSpan:      name.Span,
			Package:       pkg,
			Flags:         flags,
			Arity:         arity,
		})
	}

	x.enter(ScopeSub, n.Span, x.pkg())
	x.subParts(n, sig, block)
	x.leave()
}

func (x *extractor) anonSub(n *cst.Node) {
	x.enter(ScopeSub, n.Span, x.pkg())
	x.subParts(n, n.Child(cst.Signature), n.Child(cst.Block))
	x.leave()
}

// subParts walks a sub inside its own scope: signature variables become
// parameters and the body block does not open a second scope.
func (x *extractor) subParts(n, sig, block *cst.Node) {
	for _, c := range n.Children {
		switch c {
		case sig:
			x.signature(sig)
		case block:
			x.walkChildren(block)
		default:
			x.walk(c)
		}
	}
}

// forwardDecl returns the body-less declaration of a sub, if one exists.
func (x *extractor) forwardDecl(qualified string) *Symbol {
	for _, id := range x.table.Lookup(qualified) {
		if sym := x.table.Symbols.Get(id); sym.Kind == SymbolSub && sym.Forward() {
			return sym
		}
	}
	return nil
}

func (x *extractor) signature(sig *cst.Node) {
	for _, c := range sig.Children {
		if c.Tok != nil {
			x.leaf(c.Tok)
			continue
		}
		x.params(c)
	}
}

func (x *extractor) params(n *cst.Node) {
	switch n.Kind {
	case cst.Variable:
		x.declareVar(n, SymbolFlagLexical|SymbolFlagParam)
	case cst.ListExpr:
		for _, c := range n.Children {
			if c.Tok != nil {
				x.leaf(c.Tok)
				continue
			}
			x.params(c)
		}
	case cst.AssignExpr:
		syn := n.SyntaxChildren()
		if len(syn) > 0 && syn[0].Kind == cst.Variable {
			x.declareVar(syn[0], SymbolFlagLexical|SymbolFlagParam)
			x.walkExcept(n, syn[0])
			return
		}
		x.walk(n)
	default:
		x.walk(n)
	}
}

func (x *extractor) varDecl(n *cst.Node) {
	syn := n.SyntaxChildren()
	if len(syn) == 0 {
		return
	}
	if syn[0].Tok == nil {
		x.walkChildren(n)
		return
	}
	var flags SymbolFlags
	switch syn[0].Tok.Kind {
	case token.KwMy, token.KwState:
		flags = SymbolFlagLexical
	case token.KwLocal:
		flags = SymbolFlagLocal
	}
	for _, c := range n.Children {
		x.declTargets(c, flags)
	}
}

func (x *extractor) declTargets(n *cst.Node, flags SymbolFlags) {
	switch n.Kind {
	case cst.Token:
		x.leaf(n.Tok)
	case cst.Variable:
		x.declareVar(n, flags)
	case cst.ParenExpr, cst.ListExpr:
		for _, c := range n.Children {
			x.declTargets(c, flags)
		}
	default:
		x.walk(n)
	}
}

func (x *extractor) declareVar(n *cst.Node, flags SymbolFlags) {
	tok := n.FirstToken()
	if tok == nil {
		return
	}
	name := variableName(tok.Text)
	if name == "" {
		return
	}
	qualified := Qualify(x.pkg(), name)
	pkg, bare := SplitQualified(qualified)
	x.declare(&Symbol{
		QualifiedName: qualified,
		BareName:      bare,
		Kind:          SymbolVariable,
		Span:          n.Span,
		NameSpan:      n.Span,
		Package:       pkg,
		Flags:         flags,
		Arity:         ArityUnknown,
	})
}

func (x *extractor) useDecl(n *cst.Node) {
	syn := n.SyntaxChildren()
	if len(syn) < 2 || syn[1].Tok == nil || syn[1].Tok.Kind != token.Ident {
		x.walkChildren(n)
		return
	}
	module := syn[1].Tok
	x.addDep(module.Text)

	var args *cst.Node
	for _, c := range syn[2:] {
		if c.Tok == nil {
			args = c
			break
		}
	}
	names := importNames(args)
	switch module.Text {
	case "parent", "base":
		for _, name := range names {
			if !strings.HasPrefix(name, "-") {
				x.addDep(name)
			}
		}
	case "constant":
		x.constants(args)
	}

	if syn[0].Tok.Kind == token.KwUse {
		x.declare(&Symbol{
			QualifiedName: module.Text,
			BareName:      LastSegment(module.Text),
			Kind:          SymbolImport,
			Span:          n.Span,
			NameSpan:      module.Span,
			Package:       x.pkg(),
			Arity:         ArityUnknown,
			Imports:       names,
		})
	}
	x.walkChildren(n)
}

// constants declares the subs made by "use constant NAME => ..." and
// "use constant { A => 1, B => 2 }".
func (x *extractor) constants(args *cst.Node) {
	if args == nil {
		return
	}
	declare := func(tok *token.Token) {
		name := tok.Text
		if tok.Kind != token.Ident {
			name = unquote(tok)
		}
		if !isName(name) {
			return
		}
		x.declare(&Symbol{
			QualifiedName: Qualify(x.pkg(), name),
			BareName:      name,
			Kind:          SymbolSub,
			Span:          tok.Span,
			NameSpan:      tok.Span,
			Package:       x.pkg(),
			Arity:         0,
		})
	}
	items := args
	if items.Kind == cst.AnonHash {
		items = firstInner(items)
		if items == nil {
			return
		}
		syn := items.SyntaxChildren()
		if items.Kind != cst.ListExpr {
			syn = []*cst.Node{items}
		}
		for i, c := range syn {
			if i%4 == 0 && c.FirstToken() != nil {
				declare(c.FirstToken())
			}
		}
		return
	}
	if tok := items.FirstToken(); tok != nil {
		declare(tok)
	}
}

// firstInner returns the expression inside a bracketed node.
func firstInner(n *cst.Node) *cst.Node {
	for _, c := range n.SyntaxChildren() {
		if c.Tok == nil {
			return c
		}
	}
	return nil
}

func (x *extractor) requireExpr(n *cst.Node) {
	if syn := n.SyntaxChildren(); len(syn) > 1 {
		switch arg := syn[1]; {
		case arg.Kind == cst.ClassName:
			x.addDep(strings.TrimSuffix(arg.FirstToken().Text, "::"))
		case arg.Kind == cst.Literal && arg.FirstToken().Kind == token.String:
			x.addDep(moduleFromPath(unquote(arg.FirstToken())))
		}
	}
	x.walkChildren(n)
}

// moduleFromPath turns "Foo/Bar.pm" into "Foo::Bar".
func moduleFromPath(p string) string {
	if !strings.HasSuffix(p, ".pm") {
		return ""
	}
	return strings.ReplaceAll(strings.TrimSuffix(p, ".pm"), "/", "::")
}
