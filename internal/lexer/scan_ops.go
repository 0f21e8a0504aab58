package lexer

import (
	"perlsense/internal/token"
)

var ops3 = []struct {
	text string
	kind token.Kind
}{
	{"<=>", token.Spaceship}, {"**=", token.PowerAssign}, {"||=", token.OrOrAssign},
	{"&&=", token.AndAndAssign}, {"//=", token.DorAssign}, {"...", token.DotDotDot},
	{"<<=", token.ShlAssign}, {">>=", token.ShrAssign},
}

var ops2 = []struct {
	text string
	kind token.Kind
}{
	{"=>", token.FatArrow}, {"->", token.Arrow}, {"++", token.Inc}, {"--", token.Dec},
	{"**", token.Power}, {"=~", token.Match}, {"!~", token.NotMatch}, {"~~", token.SmartMatch},
	{"==", token.EqEq}, {"!=", token.BangEq}, {"<=", token.LtEq}, {">=", token.GtEq},
	{"&&", token.AndAnd}, {"||", token.OrOr}, {"//", token.Dor}, {"..", token.DotDot},
	{"<<", token.Shl}, {">>", token.Shr}, {"+=", token.PlusAssign}, {"-=", token.MinusAssign},
	{"*=", token.StarAssign}, {"/=", token.SlashAssign}, {".=", token.ConcatAssign},
	{"%=", token.PercentAssign}, {"&=", token.AmpAssign}, {"|=", token.PipeAssign},
	{"^=", token.CaretAssign},
}

var ops1 = [256]token.Kind{
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash,
	'%': token.Percent, '.': token.Concat, '=': token.Assign, '<': token.Lt,
	'>': token.Gt, '&': token.Amp, '|': token.Pipe, '^': token.Caret,
	'!': token.Bang, '~': token.Tilde, '\\': token.Backslash, '?': token.Question,
	':': token.Colon, '(': token.LParen, ')': token.RParen, '{': token.LBrace,
	'}': token.RBrace, '[': token.LBracket, ']': token.RBracket, ';': token.Semicolon,
	',': token.Comma,
}

// scanOperatorOrPunct is greedy: three-byte operators first, then two, then
// one. Unknown bytes become single-byte Invalid tokens.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	c := &lx.cursor
	start := c.Mark()
	for _, op := range ops3 {
		if c.HasPrefix(op.text) {
			c.BumpN(3)
			return lx.emit(op.kind, start)
		}
	}
	for _, op := range ops2 {
		if c.HasPrefix(op.text) {
			c.BumpN(2)
			return lx.emit(op.kind, start)
		}
	}
	b := c.Bump()
	if k := ops1[b]; k != token.Invalid {
		return lx.emit(k, start)
	}
	return lx.emit(token.Invalid, start)
}
