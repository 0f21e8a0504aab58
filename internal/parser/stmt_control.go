package parser

import (
	"perlsense/internal/cst"
	"perlsense/internal/diag"
	"perlsense/internal/token"
)

// parseCondition parses a parenthesized header. An empty "()" is allowed.
func (p *Parser) parseCondition() {
	if !p.at(token.LParen) {
		p.problem(diag.SynUnexpectedToken, "expected '(' before condition", true)
		return
	}
	p.open(cst.Condition)
	p.bump()
	if !p.at(token.RParen) && canStartExpr(p.peek().Kind) {
		p.parseExpr()
	}
	p.skipTo(token.RParen)
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after condition")
	p.close()
}

func (p *Parser) parseIf() {
	p.open(cst.IfStmt)
	p.bump()
	p.parseCondition()
	p.parseBlock()
	for p.at(token.KwElsif) {
		p.open(cst.ElsifClause)
		p.bump()
		p.parseCondition()
		p.parseBlock()
		p.close()
	}
	if p.at(token.KwElse) {
		p.open(cst.ElseClause)
		p.bump()
		p.parseBlock()
		p.close()
	}
	p.close()
}

func (p *Parser) parseWhile() {
	p.open(cst.WhileStmt)
	p.bump()
	p.parseCondition()
	p.parseBlock()
	p.parseContinue()
	p.close()
}

// parseContinue parses an optional "continue BLOCK".
func (p *Parser) parseContinue() {
	if tok := p.peek(); tok.Kind != token.Ident || tok.Text != "continue" || p.nth(1).Kind != token.LBrace {
		return
	}
	p.open(cst.ContinueClause)
	p.bump()
	p.parseBlock()
	p.close()
}

// parseFor parses both loop forms:
//
//	for [my] $x (LIST) BLOCK
//	for (INIT; COND; STEP) BLOCK
func (p *Parser) parseFor() {
	next := p.nth(1)
	switch next.Kind {
	case token.LParen:
		if p.isCStyleFor() {
			p.parseCStyleFor()
			return
		}
	case token.KwMy, token.KwOur, token.KwState, token.KwLocal, token.ScalarVar:
	default:
		p.open(cst.ForeachStmt)
		p.bump()
		p.problem(diag.SynBadForHeader, "expected loop variable or '(' after '"+next.Text+"'", true)
		p.close()
		return
	}

	p.open(cst.ForeachStmt)
	p.bump()
	switch p.peek().Kind {
	case token.KwMy, token.KwOur, token.KwState, token.KwLocal:
		p.open(cst.VarDecl)
		p.bump()
		if p.at(token.ScalarVar) {
			p.parseVariable()
		} else {
			p.problem(diag.SynExpectVariable, "expected loop variable", true)
		}
		p.close()
	case token.ScalarVar:
		p.parseVariable()
	}
	p.parseCondition()
	p.parseBlock()
	p.parseContinue()
	p.close()
}

// isCStyleFor looks for a ';' at the top level of the parenthesized
// header that starts at the next significant token but one.
func (p *Parser) isCStyleFor() bool {
	i := p.sigIndex(1)
	if i < 0 {
		p.eofInside = true
		return false
	}
	depth := 0
	for ; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
			if depth == 0 {
				return false
			}
		case token.Semicolon:
			if depth == 1 {
				return true
			}
		}
	}
	p.eofInside = true
	return false
}

func (p *Parser) parseCStyleFor() {
	p.open(cst.ForStmt)
	p.bump()
	p.open(cst.Condition)
	p.bump()
	for part := 0; part < 3; part++ {
		closer := token.Semicolon
		if part == 2 {
			closer = token.RParen
		}
		if !p.at(closer) && canStartExpr(p.peek().Kind) {
			p.parseExpr()
		}
		if part < 2 {
			p.skipTo(token.RParen)
			p.expect(token.Semicolon, diag.SynBadForHeader, "expected ';' in for loop header")
		}
	}
	p.skipTo(token.RParen)
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after for loop header")
	p.close()
	p.parseBlock()
	p.close()
}
