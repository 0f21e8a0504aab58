package parser

import (
	"perlsense/internal/cst"
	"perlsense/internal/diag"
	"perlsense/internal/token"
)

// parseStmt dispatches on the leading token of a statement.
func (p *Parser) parseStmt() {
	start := p.pos
	p.parseStmtInner()
	if p.pos == start && !p.at(token.EOF) {
		p.recover(diag.SynUnexpectedToken, "unexpected "+p.peek().Kind.String())
	}
}

func (p *Parser) parseStmtInner() {
	tok := p.peek()
	switch tok.Kind {
	case token.Semicolon:
		p.open(cst.EmptyStmt)
		p.bump()
		p.close()
	case token.LBrace:
		p.open(cst.BlockStmt)
		p.parseBlock()
		p.parseContinue()
		p.close()
	case token.KwPackage:
		p.parsePackage()
	case token.KwSub:
		if p.nth(1).Kind == token.Ident {
			p.parseSubDecl()
			return
		}
		p.parseExprStmt()
	case token.KwUse, token.KwNo:
		p.parseUse()
	case token.KwBegin, token.KwEnd, token.KwInit, token.KwCheck, token.KwUnitcheck:
		p.parsePhaseBlock()
	case token.KwIf, token.KwUnless:
		p.parseIf()
	case token.KwWhile, token.KwUntil:
		p.parseWhile()
	case token.KwFor, token.KwForeach:
		p.parseFor()
	case token.KwElsif, token.KwElse:
		p.recover(diag.SynUnexpectedToken, "'"+tok.Text+"' without a matching 'if'")
	case token.Invalid, token.Unterminated:
		p.errorToken()
	case token.RParen, token.RBracket:
		p.strayCloser()
	case token.Ident:
		if p.nth(1).Kind == token.Colon && !token.IsKnownFunction(tok.Text) {
			p.parseLabeled()
			return
		}
		p.parseExprStmt()
	default:
		p.parseExprStmt()
	}
}

// parseBlock parses '{' statements '}'.
func (p *Parser) parseBlock() bool {
	if !p.at(token.LBrace) {
		p.problem(diag.SynExpectBlock, "expected '{'", true)
		return false
	}
	p.open(cst.Block)
	p.bump()
	p.blockDepth++
	for {
		k := p.peek().Kind
		if k == token.RBrace || k == token.EOF {
			break
		}
		p.parseStmt()
	}
	p.blockDepth--
	p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close block")
	if n := p.close(); n != nil {
		n.Checkpoints = p.checkpoints(n.Children)
	}
	return true
}

func (p *Parser) parseExprStmt() {
	if !canStartExpr(p.peek().Kind) {
		p.recover(diag.SynUnexpectedToken, "unexpected "+describe(p.peek()))
		return
	}
	p.open(cst.ExprStmt)
	p.parseExpr()
	p.parseModifiers()
	p.endStmt()
	p.close()
}

func isModifier(k token.Kind) bool {
	switch k {
	case token.KwIf, token.KwUnless, token.KwWhile, token.KwUntil, token.KwFor, token.KwForeach:
		return true
	}
	return false
}

// parseModifiers handles "EXPR if COND" and friends.
func (p *Parser) parseModifiers() {
	for isModifier(p.peek().Kind) {
		p.open(cst.Modifier)
		kw := p.bump()
		if canStartExpr(p.peek().Kind) {
			p.parseExpr()
		} else {
			p.problem(diag.SynExpectExpression, "expected expression after '"+kw.Text+"'", true)
		}
		p.close()
	}
}

// endStmt consumes the terminating ';'. It may be omitted before a closing
// brace and at the end of input.
func (p *Parser) endStmt() {
	if p.eat(token.Semicolon) {
		return
	}
	switch p.peek().Kind {
	case token.EOF:
		return
	case token.RBrace:
		if p.blockDepth > 0 {
			return
		}
	}
	p.problem(diag.SynExpectSemicolon, "expected ';' before "+describe(p.peek()), true)
}

func (p *Parser) parseLabeled() {
	p.open(cst.LabeledStmt)
	p.bump()
	p.bump()
	if k := p.peek().Kind; k != token.RBrace && k != token.EOF {
		p.parseStmt()
	}
	p.close()
}

// parsePackage parses "package NAME [VERSION] ;" and the block form.
func (p *Parser) parsePackage() {
	p.open(cst.PackageDecl)
	p.bump()
	if !p.eat(token.Ident) {
		p.problem(diag.SynPackageNameNeeded, "package name expected", true)
	}
	p.eat(token.Number)
	if p.at(token.LBrace) {
		p.parseBlock()
	} else {
		p.endStmt()
	}
	p.close()
}

// parseSubDecl parses a named sub, including forward declarations.
func (p *Parser) parseSubDecl() {
	p.open(cst.SubDecl)
	p.bump()
	p.bump()
	p.parseSubRest(true)
	p.close()
}

// parseSubRest parses what follows "sub" or "sub NAME": an optional
// prototype or signature, attributes, and the body.
func (p *Parser) parseSubRest(named bool) {
	switch {
	case p.at(token.Prototype):
		p.bump()
	case p.at(token.LParen):
		p.parseSignature()
	}
	for p.at(token.Colon) && p.nth(1).Kind == token.Ident {
		p.open(cst.Attribute)
		p.bump()
		p.bump()
		if p.at(token.LParen) && !p.spaceBefore(0) {
			p.parseArgList()
		}
		p.close()
	}
	if p.at(token.LBrace) {
		p.parseBlock()
		return
	}
	if named && p.eat(token.Semicolon) {
		return
	}
	p.problem(diag.SynExpectBlock, "expected sub body", true)
}

func (p *Parser) parseSignature() {
	p.open(cst.Signature)
	p.bump()
	if !p.at(token.RParen) {
		p.parseExpr()
	}
	p.skipTo(token.RParen)
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close signature")
	p.close()
}

// parseUse parses "use|no MODULE [VERSION] [LIST];" and "use VERSION;".
func (p *Parser) parseUse() {
	p.open(cst.UseDecl)
	p.bump()
	switch {
	case p.eat(token.Number):
	case p.eat(token.Ident):
		if p.at(token.Number) {
			if k := p.nth(1).Kind; k != token.Comma && k != token.FatArrow {
				p.bump()
			}
		}
		if k := p.peek().Kind; k != token.Semicolon && canStartExpr(k) {
			p.parseExpr()
		}
	default:
		p.problem(diag.SynExpectIdentifier, "module name expected", true)
	}
	p.endStmt()
	p.close()
}

func (p *Parser) parsePhaseBlock() {
	p.open(cst.PhaseBlock)
	p.bump()
	p.parseBlock()
	p.close()
}

// describe names a token for diagnostics.
func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of input"
	case token.Ident:
		return "'" + tok.Text + "'"
	}
	if tok.Kind.Category() == token.CatOperator || tok.Kind.Category() == token.CatPunctuation ||
		tok.Kind.Category() == token.CatKeyword {
		return "'" + tok.Text + "'"
	}
	return tok.Kind.String()
}
