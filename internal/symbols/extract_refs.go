package symbols

import (
	"strings"

	"perlsense/internal/cst"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

func (x *extractor) ref(kind RefKind, name, qualified string, span source.Span, write bool) int {
	x.table.References = append(x.table.References, Reference{
		Name:      name,
		Qualified: qualified,
		Kind:      kind,
		Span:      span,
		Write:     write,
	})
	return len(x.table.References) - 1
}

func (x *extractor) variable(n *cst.Node, write bool) {
	tok := n.FirstToken()
	if tok == nil {
		return
	}
	if tok.Kind == token.CodeVar {
		if name := variableName(tok.Text); name != "" {
			x.ref(RefCall, name[1:], Qualify(x.pkg(), name[1:]), tok.Span, false)
		}
		return
	}
	name := variableName(tok.Text)
	if name == "" {
		return
	}
	x.ref(RefVariable, name, Qualify(x.pkg(), name), tok.Span, write)
}

func (x *extractor) assign(n *cst.Node) {
	syn := n.SyntaxChildren()
	if len(syn) > 0 && syn[0].Kind == cst.Variable {
		x.variable(syn[0], true)
		x.walkExcept(n, syn[0])
		return
	}
	x.walkChildren(n)
}

// element records the container of a direct subscript: $x[0] uses @x and
// $x{k} uses %x.
func (x *extractor) element(n *cst.Node) {
	syn := n.SyntaxChildren()
	if len(syn) < 2 || syn[0].Kind != cst.Variable || syn[1].Tok == nil {
		x.walkChildren(n)
		return
	}
	base := syn[0].FirstToken()
	name := variableName(base.Text)
	if name != "" && (base.Kind == token.ScalarVar || base.Kind == token.ArrayVar || base.Kind == token.HashVar) {
		switch syn[1].Tok.Kind {
		case token.LBracket:
			name = "@" + name[1:]
		case token.LBrace:
			name = "%" + name[1:]
		}
		x.ref(RefVariable, name, Qualify(x.pkg(), name), base.Span, false)
	}
	x.walkExcept(n, syn[0])
}

func (x *extractor) call(n *cst.Node) {
	syn := n.SyntaxChildren()
	if len(syn) == 0 || syn[0].Tok == nil || syn[0].Tok.Kind != token.Ident {
		x.walkChildren(n)
		return
	}
	tok := syn[0].Tok
	if !token.IsBuiltin(tok.Text) {
		i := x.ref(RefCall, tok.Text, Qualify(x.pkg(), tok.Text), tok.Span, false)
		if token.IsLibraryFunction(tok.Text) {
			x.library = append(x.library, i)
		}
	}
	x.walkExcept(n, syn[0])
}

func (x *extractor) methodCall(n *cst.Node) {
	syn := n.SyntaxChildren()
	if len(syn) < 3 || syn[2].Tok == nil || syn[2].Tok.Kind != token.Ident {
		x.walkChildren(n)
		return
	}
	invocant, method := syn[0], syn[2].Tok
	name, qualified := method.Text, ""
	if pkg, bare := SplitQualified(method.Text); pkg != "" {
		name = bare
		if pkg != "SUPER" {
			qualified = method.Text
		}
	} else if invocant.Kind == cst.ClassName {
		qualified = className(invocant) + "::" + name
	}
	x.ref(RefMethod, name, qualified, method.Span, false)
	x.walkExcept(n, syn[2])
}

func className(n *cst.Node) string {
	if tok := n.FirstToken(); tok != nil {
		return strings.TrimSuffix(tok.Text, "::")
	}
	return ""
}

func (x *extractor) classRef(n *cst.Node) {
	if name := className(n); name != "" {
		x.ref(RefClass, name, name, n.Span, false)
	}
	x.walkChildren(n)
}

func (x *extractor) bareword(n *cst.Node) {
	tok := n.FirstToken()
	if tok == nil || strings.HasPrefix(tok.Text, "__") || token.IsBuiltin(tok.Text) {
		return
	}
	i := x.ref(RefBareword, tok.Text, Qualify(x.pkg(), tok.Text), tok.Span, false)
	x.barewords = append(x.barewords, i)
	if token.IsLibraryFunction(tok.Text) {
		x.library = append(x.library, i)
	}
}

// classifyBarewords decides what each bareword names, now that every
// declaration is known: a sub declared or imported by the file is a call, a
// package declared or loaded by it is a class, anything else stays a
// bareword. A library function name that resolves to no sub of the file
// is dropped.
func (x *extractor) classifyBarewords() {
	if len(x.barewords) == 0 && len(x.library) == 0 {
		return
	}
	subs := make(map[string]bool)
	pkgs := make(map[string]bool)
	for _, sym := range x.table.All() {
		switch sym.Kind {
		case SymbolSub:
			subs[sym.BareName] = true
			subs[sym.QualifiedName] = true
		case SymbolPackage:
			pkgs[sym.QualifiedName] = true
		case SymbolImport:
			pkgs[sym.QualifiedName] = true
			for _, name := range sym.Imports {
				if isName(name) {
					subs[name] = true
				}
			}
		}
	}
	for _, dep := range x.table.Dependencies {
		pkgs[dep] = true
	}
	for _, i := range x.barewords {
		r := &x.table.References[i]
		switch {
		case subs[r.Name] || subs[r.Qualified]:
			r.Kind = RefCall
		case pkgs[r.Name]:
			r.Kind = RefClass
			r.Qualified = r.Name
		}
	}
	drop := make(map[int]bool)
	for _, i := range x.library {
		r := x.table.References[i]
		if !subs[r.Name] && !subs[r.Qualified] {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return
	}
	kept := x.table.References[:0]
	for i, r := range x.table.References {
		if !drop[i] {
			kept = append(kept, r)
		}
	}
	x.table.References = kept
}

func interpolatingHeredoc(start string) bool {
	return !strings.Contains(start, "'")
}

// interpolates reports whether a quote-like token expands variables.
func interpolates(tok *token.Token) bool {
	text := tok.Text
	switch tok.Kind {
	case token.String:
		return strings.HasPrefix(text, `"`)
	case token.QuoteLike:
		if !strings.HasPrefix(text, "qq") {
			return false
		}
	}
	word := strings.TrimLeft(text, "abcdefghijklmnopqrstuvwxyz")
	word = strings.TrimLeft(word, " \t\n")
	return word != "" && word[0] != '\''
}

// interpolated records the variables a double-quoted token expands:
// "$x", "${x}", "@x", "$x[0]" (uses @x) and "$x{k}" (uses %x).
func (x *extractor) interpolated(tok *token.Token) {
	s := tok.Text
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' {
			i++
			continue
		}
		if c != '$' && c != '@' {
			continue
		}
		j := i + 1
		brace := j < len(s) && s[j] == '{'
		if brace {
			j++
		}
		k := scanName(s, j)
		if k == j || !isWordStart(s[j]) {
			continue
		}
		end := k
		if brace {
			if k >= len(s) || s[k] != '}' {
				continue
			}
			end = k + 1
		}
		sigil := string(c)
		if c == '$' && !brace && end < len(s) {
			switch s[end] {
			case '[':
				sigil = "@"
			case '{':
				sigil = "%"
			}
		}
		if name := variableName(sigil + s[j:k]); name != "" {
			span := source.Span{
				File:  tok.Span.File,
				Start: tok.Span.Start + source.ToU32(i),
				End:   tok.Span.Start + source.ToU32(end),
			}
			x.ref(RefVariable, name, Qualify(x.pkg(), name), span, false)
		}
		i = end - 1
	}
}

// scanName returns the end of the possibly qualified name starting at i.
func scanName(s string, i int) int {
	for i < len(s) {
		switch {
		case isWordByte(s[i]):
			i++
		case strings.HasPrefix(s[i:], "::") && i+2 < len(s) && isWordStart(s[i+2]):
			i += 2
		default:
			return i
		}
	}
	return i
}
