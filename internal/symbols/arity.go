package symbols

import (
	"strings"

	"perlsense/internal/cst"
	"perlsense/internal/token"
)

// signatureArity reads the parameters of "sub f ($x, $y = 1, @rest)".
func signatureArity(sig *cst.Node) (int, SymbolFlags) {
	var names []string
	for _, c := range sig.SyntaxChildren() {
		if c.Tok == nil {
			names = append(names, paramNames(c)...)
		}
	}
	return arityOf(names)
}

func paramNames(n *cst.Node) []string {
	switch n.Kind {
	case cst.Variable:
		if tok := n.FirstToken(); tok != nil {
			return []string{tok.Text}
		}
	case cst.ListExpr, cst.ParenExpr:
		var out []string
		for _, c := range n.SyntaxChildren() {
			if c.Tok == nil {
				out = append(out, paramNames(c)...)
			}
		}
		return out
	case cst.AssignExpr:
		if syn := n.SyntaxChildren(); len(syn) > 0 {
			return paramNames(syn[0])
		}
	}
	return nil
}

// arityOf counts leading scalar parameters, the invocant included. A slurpy
// array or hash makes the sub variadic.
func arityOf(names []string) (int, SymbolFlags) {
	var flags SymbolFlags
	arity := 0
	for i, name := range names {
		if i == 0 && (name == "$self" || name == "$class") {
			flags |= SymbolFlagMethod
		}
		if strings.HasPrefix(name, "@") || strings.HasPrefix(name, "%") {
			flags |= SymbolFlagVariadic
			break
		}
		arity++
	}
	return arity, flags
}

// prototypeArity reads a prototype such as "($$;@)".
func prototypeArity(proto string) (int, SymbolFlags) {
	body := strings.TrimSuffix(strings.TrimPrefix(proto, "("), ")")
	arity := 0
	for i := 0; i < len(body); i++ {
		switch c := body[i]; c {
		case '\\':
			arity++
			if i+1 < len(body) && body[i+1] == '[' {
				for i < len(body) && body[i] != ']' {
					i++
				}
			} else {
				i++
			}
		case '$', '&', '*', '+', '_':
			arity++
		case '@', '%':
			return arity, SymbolFlagVariadic
		}
	}
	return arity, 0
}

// unpackArity reads the usual argument unpacking at the top of a sub body:
// "my ($self, $x) = @_;" or a run of "my $x = shift;".
func unpackArity(block *cst.Node) (int, SymbolFlags) {
	var names []string
	for _, stmt := range block.SyntaxChildren() {
		if stmt.Kind != cst.ExprStmt {
			if stmt.Tok != nil && stmt.Tok.Kind == token.LBrace {
				continue
			}
			break
		}
		lhs, rhs, ok := myAssign(stmt)
		if !ok {
			break
		}
		if len(names) == 0 && lhs.Kind == cst.ParenExpr && isArgs(rhs) {
			return arityOf(paramNames(lhs))
		}
		if lhs.Kind != cst.Variable || !isShift(rhs) {
			break
		}
		names = append(names, paramNames(lhs)...)
	}
	if len(names) == 0 {
		return ArityUnknown, 0
	}
	return arityOf(names)
}

// myAssign matches "my TARGET = VALUE" as a statement.
func myAssign(stmt *cst.Node) (lhs, rhs *cst.Node, ok bool) {
	syn := stmt.SyntaxChildren()
	if len(syn) == 0 || syn[0].Kind != cst.AssignExpr {
		return nil, nil, false
	}
	parts := syn[0].SyntaxChildren()
	if len(parts) != 3 || parts[0].Kind != cst.VarDecl {
		return nil, nil, false
	}
	decl := parts[0].SyntaxChildren()
	if len(decl) != 2 || decl[0].Tok == nil || decl[0].Tok.Kind != token.KwMy {
		return nil, nil, false
	}
	return decl[1], parts[2], true
}

func isArgs(n *cst.Node) bool {
	tok := n.FirstToken()
	return n.Kind == cst.Variable && tok != nil && tok.Text == "@_"
}

func isShift(n *cst.Node) bool {
	if n.Kind != cst.ListOpCall && n.Kind != cst.FuncCall && n.Kind != cst.Bareword {
		return false
	}
	tok := n.FirstToken()
	return tok != nil && tok.Text == "shift"
}
