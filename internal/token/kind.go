package token

// Kind represents the kind of a source token.
type Kind uint8

const (
	// Invalid marks bytes the lexer could not classify, and unterminated
	// constructs running to end of input.
	Invalid Kind = iota
	// Unterminated is a string, quote, regex or heredoc body whose closing
	// delimiter never appears; it runs to end of input.
	Unterminated
	// EOF marks the end of the source input.
	EOF

	// Whitespace covers spaces, tabs and newlines.
	Whitespace
	// Comment is a '#' comment up to, not including, the newline.
	Comment
	// Pod is a POD block from a '=word' line through '=cut'.
	Pod
	// DataSection is __END__ or __DATA__ and everything after it.
	DataSection

	// Ident is a bareword, possibly package-qualified (Foo::Bar::baz).
	Ident

	ScalarVar // $x, $Foo::x, $_, $1, ${^NAME}
	ArrayVar  // @x
	HashVar   // %x
	CodeVar   // &x
	GlobVar   // *x
	ArrayLen  // $#x
	Cast      // sigil applied to a block or another variable: ${ ... }, @$ref

	Number          // 42, 0x1f, 1_000, 3.14e-2, v5.36.0
	String          // '...', "..."
	Command         // `...`, qx{...}
	QuoteLike       // q{...}, qq{...}
	QuoteWords      // qw(...)
	Regex           // /.../, m{...}, qr{...}
	Substitution    // s{...}{...}
	Transliteration // tr/.../.../, y/.../.../
	HeredocStart    // <<"EOF", <<~EOF
	HeredocBody     // heredoc body including its terminator line
	Readline        // <FH>, <$fh>, <>
	Prototype       // ($$;@) after sub

	KwMy
	KwOur
	KwLocal
	KwState
	KwSub
	KwPackage
	KwUse
	KwNo
	KwRequire
	KwIf
	KwElsif
	KwElse
	KwUnless
	KwWhile
	KwUntil
	KwFor
	KwForeach
	KwReturn
	KwLast
	KwNext
	KwRedo
	KwGoto
	KwDo
	KwEval
	KwBegin     // BEGIN
	KwEnd       // END
	KwInit      // INIT
	KwCheck     // CHECK
	KwUnitcheck // UNITCHECK

	WordAnd // and
	WordOr  // or
	WordNot // not
	WordXor // xor
	Repeat  // x
	StrEq   // eq
	StrNe   // ne
	StrLt   // lt
	StrGt   // gt
	StrLe   // le
	StrGe   // ge
	StrCmp  // cmp

	Plus          // +
	Minus         // -
	Star          // *
	Slash         // /
	Percent       // %
	Power         // **
	Concat        // .
	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	PowerAssign   // **=
	ConcatAssign  // .=
	RepeatAssign  // x=
	AmpAssign     // &=
	PipeAssign    // |=
	CaretAssign   // ^=
	ShlAssign     // <<=
	ShrAssign     // >>=
	AndAndAssign  // &&=
	OrOrAssign    // ||=
	DorAssign     // //=
	EqEq          // ==
	BangEq        // !=
	Spaceship     // <=>
	Lt            // <
	LtEq          // <=
	Gt            // >
	GtEq          // >=
	Shl           // <<
	Shr           // >>
	Amp           // &
	Pipe          // |
	Caret         // ^
	AndAnd        // &&
	OrOr          // ||
	Dor           // //
	Bang          // !
	Tilde         // ~
	Backslash     // \
	Match         // =~
	NotMatch      // !~
	SmartMatch    // ~~
	Inc           // ++
	Dec           // --
	Arrow         // ->
	FatArrow      // =>
	DotDot        // ..
	DotDotDot     // ...
	Question      // ?
	Colon         // :
	FileTest      // -e, -f, -d ...

	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Semicolon // ;
	Comma     // ,

	kindCount
)

// Category groups kinds for coarse dispatch.
type Category uint8

const (
	CatError Category = iota
	CatEOF
	CatWhitespace
	CatComment
	CatIdentifier
	CatVariable
	CatLiteral
	CatKeyword
	CatOperator
	CatPunctuation
)

// Category returns the group k belongs to.
func (k Kind) Category() Category {
	switch {
	case k == Invalid, k == Unterminated:
		return CatError
	case k == EOF:
		return CatEOF
	case k == Whitespace:
		return CatWhitespace
	case k == Comment, k == Pod, k == DataSection:
		return CatComment
	case k == Ident:
		return CatIdentifier
	case k >= ScalarVar && k <= Cast:
		return CatVariable
	case k >= Number && k <= Prototype:
		return CatLiteral
	case k >= KwMy && k <= KwUnitcheck:
		return CatKeyword
	case k >= WordAnd && k <= FileTest:
		return CatOperator
	case k >= LParen && k <= Comma:
		return CatPunctuation
	default:
		panic("token: kind without category: " + k.String())
	}
}

// IsTrivia reports whether tokens of this kind carry no syntax.
func (k Kind) IsTrivia() bool {
	return k == Whitespace || k == Comment || k == Pod || k == DataSection || k == HeredocBody
}

// IsLiteral reports whether k is a number, string, quote, regex or heredoc token.
func (k Kind) IsLiteral() bool { return k.Category() == CatLiteral }

// IsAssign reports whether k is '=' or a compound assignment.
func (k Kind) IsAssign() bool {
	return k == Assign || (k >= PlusAssign && k <= DorAssign)
}

// Count returns the number of defined kinds.
func Count() int { return int(kindCount) }

func (c Category) String() string {
	switch c {
	case CatError:
		return "error"
	case CatEOF:
		return "eof"
	case CatWhitespace:
		return "whitespace"
	case CatComment:
		return "comment"
	case CatIdentifier:
		return "identifier"
	case CatVariable:
		return "variable"
	case CatLiteral:
		return "literal"
	case CatKeyword:
		return "keyword"
	case CatOperator:
		return "operator"
	case CatPunctuation:
		return "punctuation"
	default:
		return "unknown"
	}
}
