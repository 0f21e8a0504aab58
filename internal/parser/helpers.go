package parser

import (
	"slices"

	"perlsense/internal/cst"
	"perlsense/internal/diag"
	"perlsense/internal/lexer"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

// sigIndex returns the index of the n-th significant token at or after pos,
// or -1 when the stream ends first.
func (p *Parser) sigIndex(n int) int {
	for i := p.pos; i < len(p.toks); i++ {
		if p.toks[i].IsTrivia() {
			continue
		}
		if n == 0 {
			return i
		}
		n--
	}
	return -1
}

func (p *Parser) eofToken() token.Token {
	return token.Token{Kind: token.EOF, Span: source.Span{File: p.file, Start: p.end, End: p.end}}
}

// nth returns the n-th significant token ahead without consuming anything.
func (p *Parser) nth(n int) token.Token {
	i := p.sigIndex(n)
	if i < 0 {
		if n > 0 || len(p.frames) > 1 {
			p.eofInside = true
		}
		return p.eofToken()
	}
	return p.toks[i]
}

func (p *Parser) peek() token.Token { return p.nth(0) }

func (p *Parser) at(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) atAny(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// bump consumes the next significant token into the open node.
func (p *Parser) bump() token.Token {
	p.flushTrivia()
	if p.pos >= len(p.toks) {
		return p.eofToken()
	}
	tok := p.toks[p.pos]
	p.pushLeaf(p.pos)
	p.pos++
	return tok
}

// eat consumes the next token if it has kind k.
func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.bump()
		return true
	}
	return false
}

// expect consumes a token of kind k or records a problem at the end of the
// open node.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) bool {
	if p.eat(k) {
		return true
	}
	p.problem(code, msg, true)
	return false
}

// spaceBefore reports whether trivia separates the n-th significant token
// from the previous one.
func (p *Parser) spaceBefore(n int) bool {
	i := p.sigIndex(n)
	return i > 0 && p.toks[i-1].IsTrivia()
}

func (p *Parser) lexerProblem(i int) (diag.Code, string) {
	tok := p.toks[i]
	before := lexer.Initial()
	if i < len(p.states) {
		before = p.states[i]
	}
	return lexer.DescribeError(tok, before, p.text[:tok.Span.Start])
}

// closerFor maps an opening bracket to its closer.
func closerFor(k token.Kind) token.Kind {
	switch k {
	case token.LParen:
		return token.RParen
	case token.LBracket:
		return token.RBracket
	case token.LBrace:
		return token.RBrace
	}
	return token.Invalid
}

func unclosedCode(closer token.Kind) diag.Code {
	switch closer {
	case token.RParen:
		return diag.SynUnclosedParen
	case token.RBracket:
		return diag.SynUnclosedBracket
	default:
		return diag.SynUnclosedBrace
	}
}

// isStmtStart reports whether k can only begin a statement. Recovery stops
// before such tokens.
func isStmtStart(k token.Kind) bool {
	switch k {
	case token.KwMy, token.KwOur, token.KwLocal, token.KwState, token.KwSub,
		token.KwPackage, token.KwUse, token.KwNo, token.KwIf, token.KwUnless,
		token.KwWhile, token.KwUntil, token.KwFor, token.KwForeach, token.KwReturn,
		token.KwBegin, token.KwEnd, token.KwInit, token.KwCheck, token.KwUnitcheck:
		return true
	}
	return false
}

// recover wraps tokens up to the next statement boundary in an Error node.
// It always consumes at least one token unless the stream is exhausted.
// A ';' ends the skipped run and is consumed; a '}' closing the enclosing
// block, or a statement keyword, is left in place.
func (p *Parser) recover(code diag.Code, msg string) {
	if p.at(token.EOF) {
		p.problem(code, msg, true)
		return
	}
	p.open(cst.Error)
	p.problem(code, msg, false)
	depth := 0
	for first := true; ; first = false {
		tok := p.peek()
		if tok.Kind == token.EOF {
			break
		}
		if !first && depth == 0 && isStmtStart(tok.Kind) {
			break
		}
		switch tok.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			if depth == 0 && !first && (tok.Kind == token.RBrace && p.blockDepth > 0) {
				p.close()
				return
			}
			if depth > 0 {
				depth--
			}
		case token.Semicolon:
			if depth == 0 {
				p.bump()
				p.close()
				return
			}
		}
		p.bump()
	}
	p.close()
}

// skipTo wraps unexpected tokens before closer in an Error node. It stops
// at closer, at a ';' or at an unbalanced closer of another kind.
func (p *Parser) skipTo(closer token.Kind) {
	if p.atAny(closer, token.EOF, token.Semicolon) {
		return
	}
	p.open(cst.Error)
	p.problem(diag.SynUnexpectedToken, "unexpected "+p.peek().Kind.String(), false)
	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == token.EOF {
			break
		}
		if depth == 0 && (tok.Kind == closer || tok.Kind == token.Semicolon) {
			break
		}
		switch tok.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			if depth == 0 {
				p.close()
				return
			}
			depth--
		}
		p.bump()
	}
	p.close()
}

// strayCloser consumes an unmatched closing bracket.
func (p *Parser) strayCloser() {
	p.open(cst.Error)
	tok := p.bump()
	p.problem(diag.SynStrayCloser, "unmatched '"+tok.Text+"'", false)
	p.close()
}

// errorToken wraps a lexer error token. The leaf already carries the
// problem.
func (p *Parser) errorToken() {
	p.open(cst.Error)
	p.bump()
	p.close()
}
