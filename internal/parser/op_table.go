package parser

import (
	"perlsense/internal/cst"
	"perlsense/internal/token"
)

// Operator precedence, loosest first. Larger binds tighter.
const (
	precLowOr          = 1  // or xor
	precLowAnd         = 2  // and
	precLowNot         = 3  // not
	precListOp         = 4  // list operators (rightward)
	precComma          = 5  // , =>
	precAssign         = 6  // = += -= ...
	precTernary        = 7  // ?:
	precRange          = 8  // .. ...
	precOrOr           = 9  // || //
	precAndAnd         = 10 // &&
	precBitOr          = 11 // | ^
	precBitAnd         = 12 // &
	precEquality       = 13 // == != <=> eq ne cmp ~~
	precRelational     = 14 // < > <= >= lt gt le ge
	precNamedUnary     = 15 // defined ref -e ...
	precShift          = 16 // << >>
	precAdditive       = 17 // + - .
	precMultiplicative = 18 // * / % x
	precBind           = 19 // =~ !~
	precUnary          = 20 // ! ~ \ unary+ unary-
	precPow            = 21 // **
)

// infixInfo describes an infix operator: its precedence, whether it is
// right associative, and the node kind it builds. prec is zero for tokens
// that are not infix operators.
func infixInfo(k token.Kind) (prec int, right bool, kind cst.Kind) {
	switch {
	case k.IsAssign():
		return precAssign, true, cst.AssignExpr
	}
	switch k {
	case token.WordOr, token.WordXor:
		return precLowOr, false, cst.BinaryExpr
	case token.WordAnd:
		return precLowAnd, false, cst.BinaryExpr
	case token.Comma, token.FatArrow:
		return precComma, false, cst.ListExpr
	case token.Question:
		return precTernary, true, cst.TernaryExpr
	case token.DotDot, token.DotDotDot:
		return precRange, false, cst.BinaryExpr
	case token.OrOr, token.Dor:
		return precOrOr, false, cst.BinaryExpr
	case token.AndAnd:
		return precAndAnd, false, cst.BinaryExpr
	case token.Pipe, token.Caret:
		return precBitOr, false, cst.BinaryExpr
	case token.Amp:
		return precBitAnd, false, cst.BinaryExpr
	case token.EqEq, token.BangEq, token.Spaceship, token.StrEq, token.StrNe, token.StrCmp, token.SmartMatch:
		return precEquality, false, cst.BinaryExpr
	case token.Lt, token.Gt, token.LtEq, token.GtEq, token.StrLt, token.StrGt, token.StrLe, token.StrGe:
		return precRelational, false, cst.BinaryExpr
	case token.Shl, token.Shr:
		return precShift, false, cst.BinaryExpr
	case token.Plus, token.Minus, token.Concat:
		return precAdditive, false, cst.BinaryExpr
	case token.Star, token.Slash, token.Percent, token.Repeat:
		return precMultiplicative, false, cst.BinaryExpr
	case token.Match, token.NotMatch:
		return precBind, false, cst.BinaryExpr
	case token.Power:
		return precPow, true, cst.BinaryExpr
	}
	return 0, false, cst.Error
}

// prefixPrec returns the binding power of a prefix operator's operand.
func prefixPrec(k token.Kind) (int, bool) {
	switch k {
	case token.Bang, token.Tilde, token.Backslash, token.Minus, token.Plus:
		return precUnary, true
	case token.Inc, token.Dec:
		return precUnary, true
	case token.WordNot:
		return precLowNot, true
	case token.FileTest:
		return precNamedUnary + 1, true
	}
	return 0, false
}

// canStartTerm reports whether k can begin an argument of a user-defined
// bareword call. '+' and '-' are excluded: after a bareword they are far
// more often binary.
func canStartTerm(k token.Kind) bool {
	switch k.Category() {
	case token.CatVariable, token.CatLiteral:
		return k != token.HeredocBody && k != token.Prototype
	case token.CatIdentifier:
		return true
	}
	switch k {
	case token.Backslash, token.Bang, token.Tilde, token.LBracket,
		token.KwMy, token.KwOur, token.KwLocal, token.KwState, token.KwSub,
		token.KwDo, token.KwEval, token.FileTest:
		return true
	}
	return false
}

// canStartExpr reports whether k can begin any expression.
func canStartExpr(k token.Kind) bool {
	if canStartTerm(k) {
		return true
	}
	switch k {
	case token.LParen, token.LBrace, token.Minus, token.Plus, token.Inc, token.Dec,
		token.WordNot, token.KwReturn, token.KwRequire, token.KwLast, token.KwNext,
		token.KwRedo, token.KwGoto, token.Unterminated:
		return true
	}
	return false
}
