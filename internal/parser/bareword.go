package parser

import (
	"strings"

	"perlsense/internal/cst"
	"perlsense/internal/token"
)

// parseBareword classifies an identifier in term position optimistically,
// from the tokens around it:
//
//	NAME =>          StringWord
//	NAME-> / Pkg::   ClassName
//	NAME(...)        FuncCall
//	NAME TERM...     ListOpCall
//	anything else    Bareword
//
// Known builtins are always calls. A Bareword may still turn out to be a
// call once the declared subs are known; symbols.Extract decides that.
func (p *Parser) parseBareword() {
	tok := p.peek()
	name := tok.Text
	next := p.nth(1)
	switch {
	case next.Kind == token.FatArrow:
		p.open(cst.StringWord)
		p.bump()
		p.close()
	case next.Kind == token.Arrow || strings.HasSuffix(name, "::"):
		p.open(cst.ClassName)
		p.bump()
		p.close()
	case next.Kind == token.LParen:
		p.open(cst.FuncCall)
		p.bump()
		if token.TakesBlock(name) && p.nth(1).Kind == token.LBrace {
			p.parseBlockArgList()
		} else {
			p.parseArgList()
		}
		p.close()
	case token.IsKnownFunction(name):
		p.parseBuiltin(name)
	case next.Kind == token.LBrace:
		p.open(cst.ListOpCall)
		p.bump()
		if p.looksLikeBlock(0) {
			p.parseBlock()
		}
		p.parseListArgs()
		p.close()
	case canStartTerm(next.Kind):
		p.open(cst.ListOpCall)
		p.bump()
		p.parseListArgs()
		p.close()
	default:
		p.open(cst.Bareword)
		p.bump()
		p.close()
	}
}

// parseBuiltin parses a call of a known builtin without parentheses.
func (p *Parser) parseBuiltin(name string) {
	p.open(cst.ListOpCall)
	p.bump()
	next := p.peek().Kind
	switch {
	case token.IsArgless(name):
		if next == token.ArrayVar || next == token.Cast {
			p.open(cst.ArgList)
			p.parseBinary(precNamedUnary + 1)
			p.close()
		}
	case token.IsNamedUnary(name):
		if canStartExpr(next) && next != token.LBrace {
			p.open(cst.ArgList)
			p.parseBinary(precNamedUnary + 1)
			p.close()
		}
	default:
		if token.TakesBlock(name) && next == token.LBrace {
			p.parseBlock()
		}
		if token.TakesFilehandle(name) {
			p.parseFileHandle()
		}
		p.parseListArgs()
	}
	p.close()
}

// parseListArgs parses the rightward list of a list operator, if any.
func (p *Parser) parseListArgs() {
	k := p.peek().Kind
	if !canStartExpr(k) || (k == token.LBrace && !p.looksLikeHash(0)) {
		return
	}
	p.open(cst.ArgList)
	p.parseBinary(precComma)
	p.close()
}

// parseBlockArgList parses "( BLOCK LIST )" as in map({ ... } @list).
func (p *Parser) parseBlockArgList() {
	p.open(cst.ArgList)
	p.bump()
	p.parseBlock()
	p.eat(token.Comma)
	if !p.at(token.RParen) && canStartExpr(p.peek().Kind) {
		p.parseExpr()
	}
	p.skipTo(token.RParen)
	p.expect(token.RParen, unclosedCode(token.RParen), "expected ')' to close argument list")
	p.close()
}

// parseFileHandle parses the optional filehandle of print, printf and say:
// a {block}, a bareword handle, or a scalar directly followed by the list.
func (p *Parser) parseFileHandle() {
	tok, next := p.peek(), p.nth(1)
	switch {
	case tok.Kind == token.LBrace:
		p.open(cst.FileHandle)
		p.parseBlock()
		p.close()
	case tok.Kind == token.Ident && isHandleName(tok.Text):
		switch next.Kind {
		case token.Comma, token.FatArrow, token.LParen, token.Arrow:
			return
		}
		p.open(cst.FileHandle)
		p.bump()
		p.close()
	case tok.Kind == token.ScalarVar:
		switch next.Kind {
		case token.String, token.Number, token.QuoteLike, token.QuoteWords, token.Command,
			token.ScalarVar, token.ArrayVar, token.HashVar, token.HeredocStart:
			p.open(cst.FileHandle)
			p.bump()
			p.close()
		}
	}
}

// isHandleName accepts the conventional all-caps handle names.
func isHandleName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '_' {
			return false
		}
	}
	return true
}

// looksLikeHash reports whether the '{' that is the n-th token ahead opens
// an anonymous hash: "{}" or "{ KEY => ..." / "{ KEY, ...".
func (p *Parser) looksLikeHash(n int) bool {
	first := p.nth(n + 1)
	if first.Kind == token.RBrace {
		return true
	}
	switch first.Kind {
	case token.Ident, token.String, token.ScalarVar, token.Number:
		k := p.nth(n + 2).Kind
		return k == token.FatArrow || k == token.Comma
	}
	return false
}

// looksLikeBlock is the complement of looksLikeHash.
func (p *Parser) looksLikeBlock(n int) bool { return !p.looksLikeHash(n) }
