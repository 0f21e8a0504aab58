package parser

import (
	"perlsense/internal/cst"
	"perlsense/internal/diag"
	"perlsense/internal/token"
)

// parseExpr parses a full expression, low-precedence logical operators
// included. It reports whether anything was consumed.
func (p *Parser) parseExpr() bool {
	return p.parseBinary(precLowOr)
}

// parseBinary is a precedence-climbing loop over infix operators with a
// binding power of at least minPrec.
func (p *Parser) parseBinary(minPrec int) bool {
	m := p.mark()
	if !p.parseUnary() {
		return false
	}
	for {
		prec, right, kind := infixInfo(p.peek().Kind)
		if prec == 0 || prec < minPrec {
			return true
		}
		switch kind {
		case cst.ListExpr:
			p.precede(m, cst.ListExpr)
			for p.atAny(token.Comma, token.FatArrow) {
				p.bump()
				if canStartExpr(p.peek().Kind) {
					p.parseBinary(precComma + 1)
				}
			}
			p.close()
		case cst.TernaryExpr:
			p.precede(m, cst.TernaryExpr)
			p.bump()
			if !p.parseBinary(precAssign) {
				p.problem(diag.SynExpectExpression, "expected expression after '?'", true)
			}
			if p.expect(token.Colon, diag.SynExpectColon, "expected ':' in conditional expression") {
				if !p.parseBinary(precTernary) {
					p.problem(diag.SynExpectExpression, "expected expression after ':'", true)
				}
			}
			p.close()
		default:
			p.precede(m, kind)
			op := p.bump()
			next := prec + 1
			if right {
				next = prec
			}
			if !p.parseBinary(next) {
				p.problem(diag.SynExpectExpression, "expected expression after '"+op.Text+"'", true)
			}
			p.close()
		}
	}
}

// parseUnary parses prefix operators and then a term with its postfix
// chain.
func (p *Parser) parseUnary() bool {
	k := p.peek().Kind
	prec, ok := prefixPrec(k)
	if !ok {
		return p.parsePostfixTerm()
	}
	p.open(cst.UnaryExpr)
	op := p.bump()
	if k == token.FileTest {
		// the operand is optional: "-e" alone tests $_
		if next := p.peek().Kind; canStartTerm(next) || next == token.LParen {
			p.parseBinary(prec)
		}
	} else if !p.parseBinary(prec) {
		p.problem(diag.SynExpectExpression, "expected operand after '"+op.Text+"'", true)
	}
	p.close()
	return true
}

func (p *Parser) parsePostfixTerm() bool {
	m := p.mark()
	if !p.parseTerm() {
		return false
	}
	p.parsePostfix(m)
	return true
}

// parsePostfix handles '->' chains, arrow-less subscripts between
// subscripts, calls through code references and postfix ++/--.
func (p *Parser) parsePostfix(m int) {
	for {
		last := p.lastChild()
		switch p.peek().Kind {
		case token.Arrow:
			p.parseArrow(m)
		case token.LBracket, token.LBrace:
			if !subscriptable(last, p.peek().Kind) {
				return
			}
			p.precede(m, cst.ElementExpr)
			p.parseSubscript()
			p.close()
		case token.LParen:
			if !callable(last) {
				return
			}
			p.precede(m, cst.DynamicCall)
			p.parseArgList()
			p.close()
		case token.Inc, token.Dec:
			p.precede(m, cst.PostfixExpr)
			p.bump()
			p.close()
		default:
			return
		}
	}
}

func (p *Parser) parseArrow(m int) {
	next := p.nth(1)
	switch next.Kind {
	case token.LBracket, token.LBrace:
		p.precede(m, cst.ElementExpr)
		p.bump()
		p.parseSubscript()
	case token.LParen:
		p.precede(m, cst.DynamicCall)
		p.bump()
		p.parseArgList()
	case token.Ident:
		p.precede(m, cst.MethodCall)
		p.bump()
		p.bump()
		if p.at(token.LParen) {
			p.parseArgList()
		}
	case token.ScalarVar:
		if next.Text == "$*" {
			p.precede(m, cst.DerefExpr)
			p.bump()
			p.bump()
			break
		}
		p.precede(m, cst.MethodCall)
		p.bump()
		p.bump()
		if p.at(token.LParen) {
			p.parseArgList()
		}
	case token.ArrayVar, token.HashVar, token.CodeVar, token.GlobVar, token.ArrayLen:
		p.precede(m, cst.DerefExpr)
		p.bump()
		p.bump()
	case token.Cast:
		p.precede(m, cst.ElementExpr)
		p.bump()
		p.bump()
		if p.atAny(token.LBracket, token.LBrace) {
			p.parseSubscript()
		} else {
			p.problem(diag.SynUnexpectedToken, "expected subscript after '->"+next.Text+"'", true)
		}
	default:
		p.precede(m, cst.MethodCall)
		p.bump()
		p.problem(diag.SynExpectIdentifier, "expected method name or subscript after '->'", true)
	}
	p.close()
}

// subscriptable reports whether an arrow-less '[' or '{' after n indexes
// into it.
func subscriptable(n *cst.Node, open token.Kind) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case cst.Variable:
		tok := n.FirstToken()
		return tok != nil && (tok.Kind == token.ScalarVar || tok.Kind == token.ArrayVar || tok.Kind == token.HashVar)
	case cst.ElementExpr, cst.DerefExpr, cst.DynamicCall:
		return true
	case cst.ParenExpr:
		return open == token.LBracket
	}
	return false
}

// callable reports whether a '(' directly after n calls it.
func callable(n *cst.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case cst.ElementExpr, cst.DynamicCall:
		return true
	case cst.DerefExpr:
		tok := n.FirstToken()
		return tok != nil && tok.Kind == token.Cast && tok.Text == "&"
	}
	return false
}

// parseSubscript parses "[ EXPR ]" or "{ KEY }" into the open node. A
// lone bareword key, optionally negated, is a string.
func (p *Parser) parseSubscript() {
	open := p.bump()
	closer := closerFor(open.Kind)
	if open.Kind == token.LBrace {
		switch {
		case p.at(token.Ident) && p.nth(1).Kind == token.RBrace:
			p.open(cst.StringWord)
			p.bump()
			p.close()
		case p.at(token.Minus) && p.nth(1).Kind == token.Ident && p.nth(2).Kind == token.RBrace:
			p.open(cst.StringWord)
			p.bump()
			p.bump()
			p.close()
		}
	}
	if !p.at(closer) && canStartExpr(p.peek().Kind) {
		p.parseExpr()
	}
	p.skipTo(closer)
	p.expect(closer, unclosedCode(closer), "expected '"+closer.String()+"' to close subscript")
}

// parseArgList parses "( [LIST] )".
func (p *Parser) parseArgList() {
	p.open(cst.ArgList)
	p.bump()
	if !p.at(token.RParen) && canStartExpr(p.peek().Kind) {
		p.parseExpr()
	}
	p.skipTo(token.RParen)
	p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close argument list")
	p.close()
}
