package parser

import (
	"perlsense/internal/cst"
	"perlsense/internal/diag"
	"perlsense/internal/token"
)

// parseTerm parses one primary term. It reports false, consuming nothing,
// when the next token cannot start a term.
func (p *Parser) parseTerm() bool {
	tok := p.peek()
	switch tok.Kind {
	case token.ScalarVar, token.ArrayVar, token.HashVar, token.GlobVar, token.ArrayLen:
		p.parseVariable()
	case token.CodeVar:
		if p.nth(1).Kind == token.LParen {
			p.open(cst.FuncCall)
			p.parseVariable()
			p.parseArgList()
			p.close()
			return true
		}
		p.parseVariable()
	case token.Cast:
		p.parseDeref()
	case token.Number, token.String, token.Command, token.QuoteLike, token.QuoteWords,
		token.Regex, token.Substitution, token.Transliteration, token.HeredocStart, token.Readline:
		p.open(cst.Literal)
		p.bump()
		p.close()
	case token.Invalid, token.Unterminated:
		p.errorToken()
	case token.LParen:
		p.parseBracketed(cst.ParenExpr)
	case token.LBracket:
		p.parseBracketed(cst.AnonArray)
	case token.LBrace:
		p.parseBracketed(cst.AnonHash)
	case token.KwMy, token.KwOur, token.KwState, token.KwLocal:
		p.parseVarDecl()
	case token.KwSub:
		p.open(cst.AnonSub)
		p.bump()
		p.parseSubRest(false)
		p.close()
	case token.KwDo:
		p.parseBlockOrUnary(cst.DoBlock)
	case token.KwEval:
		p.parseBlockOrUnary(cst.EvalBlock)
	case token.KwReturn:
		p.open(cst.ReturnExpr)
		p.bump()
		if canStartExpr(p.peek().Kind) {
			p.parseBinary(precComma)
		}
		p.close()
	case token.KwLast, token.KwNext, token.KwRedo, token.KwGoto:
		p.parseLoopCtl()
	case token.KwRequire:
		p.parseRequire()
	case token.Ident:
		p.parseBareword()
	default:
		return false
	}
	return true
}

func (p *Parser) parseVariable() {
	p.open(cst.Variable)
	p.bump()
	p.close()
}

// parseBracketed parses "( LIST )", "[ LIST ]" or "{ LIST }".
func (p *Parser) parseBracketed(kind cst.Kind) {
	p.open(kind)
	open := p.bump()
	closer := closerFor(open.Kind)
	if !p.at(closer) && canStartExpr(p.peek().Kind) {
		p.parseExpr()
	}
	p.skipTo(closer)
	p.expect(closer, unclosedCode(closer), "expected '"+closer.String()+"'")
	p.close()
}

// parseVarDecl parses "my $x", "my ($a, @b)" and "local LVALUE".
func (p *Parser) parseVarDecl() {
	p.open(cst.VarDecl)
	kw := p.bump()
	switch k := p.peek().Kind; {
	case k == token.LParen:
		p.parseBracketed(cst.ParenExpr)
	case kw.Kind == token.KwLocal:
		if !p.parsePostfixTerm() {
			p.problem(diag.SynExpectVariable, "expected lvalue after 'local'", true)
		}
	case k == token.ScalarVar || k == token.ArrayVar || k == token.HashVar:
		p.parseVariable()
	default:
		p.problem(diag.SynExpectVariable, "expected variable after '"+kw.Text+"'", true)
	}
	p.close()
}

// parseDeref parses a cast: ${ EXPR }, @$ref, $$ref, %{ ... } and the like.
func (p *Parser) parseDeref() {
	p.open(cst.DerefExpr)
	p.bump()
	switch p.peek().Kind {
	case token.LBrace:
		p.parseBlock()
	case token.Cast:
		p.parseDeref()
	case token.ScalarVar:
		p.parseVariable()
	default:
		p.problem(diag.SynExpectVariable, "expected reference after cast", true)
	}
	p.close()
}

// parseBlockOrUnary handles "do BLOCK" / "eval BLOCK" and their
// expression forms "do FILE" / "eval STRING".
func (p *Parser) parseBlockOrUnary(blockKind cst.Kind) {
	if p.nth(1).Kind == token.LBrace {
		p.open(blockKind)
		p.bump()
		p.parseBlock()
		p.close()
		return
	}
	p.open(cst.UnaryExpr)
	p.bump()
	if canStartExpr(p.peek().Kind) && !p.at(token.LBrace) {
		p.parseBinary(precNamedUnary + 1)
	}
	p.close()
}

func (p *Parser) parseLoopCtl() {
	p.open(cst.LoopCtl)
	kw := p.bump()
	switch {
	case p.at(token.Ident) && !token.IsKnownFunction(p.peek().Text):
		p.bump()
	case kw.Kind == token.KwGoto && canStartTerm(p.peek().Kind):
		p.parseBinary(precUnary)
	}
	p.close()
}

// parseRequire parses "require Module::Name", "require VERSION" and
// "require EXPR".
func (p *Parser) parseRequire() {
	p.open(cst.RequireExpr)
	p.bump()
	switch {
	case p.at(token.Ident) && !token.IsKnownFunction(p.peek().Text) && p.nth(1).Kind != token.LParen:
		p.open(cst.ClassName)
		p.bump()
		p.close()
	case p.at(token.Number):
		p.open(cst.Literal)
		p.bump()
		p.close()
	case canStartExpr(p.peek().Kind):
		p.parseBinary(precNamedUnary + 1)
	}
	p.close()
}
