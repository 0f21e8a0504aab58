package token

var kindNames = [...]string{
	Invalid:      "Invalid",
	Unterminated: "Unterminated",
	EOF:          "EOF",
	Whitespace:   "Whitespace",
	Comment:      "Comment",
	Pod:          "Pod",
	DataSection:  "DataSection",
	Ident:        "Ident",

	ScalarVar: "ScalarVar",
	ArrayVar:  "ArrayVar",
	HashVar:   "HashVar",
	CodeVar:   "CodeVar",
	GlobVar:   "GlobVar",
	ArrayLen:  "ArrayLen",
	Cast:      "Cast",

	Number:          "Number",
	String:          "String",
	Command:         "Command",
	QuoteLike:       "QuoteLike",
	QuoteWords:      "QuoteWords",
	Regex:           "Regex",
	Substitution:    "Substitution",
	Transliteration: "Transliteration",
	HeredocStart:    "HeredocStart",
	HeredocBody:     "HeredocBody",
	Readline:        "Readline",
	Prototype:       "Prototype",

	KwMy:        "my",
	KwOur:       "our",
	KwLocal:     "local",
	KwState:     "state",
	KwSub:       "sub",
	KwPackage:   "package",
	KwUse:       "use",
	KwNo:        "no",
	KwRequire:   "require",
	KwIf:        "if",
	KwElsif:     "elsif",
	KwElse:      "else",
	KwUnless:    "unless",
	KwWhile:     "while",
	KwUntil:     "until",
	KwFor:       "for",
	KwForeach:   "foreach",
	KwReturn:    "return",
	KwLast:      "last",
	KwNext:      "next",
	KwRedo:      "redo",
	KwGoto:      "goto",
	KwDo:        "do",
	KwEval:      "eval",
	KwBegin:     "BEGIN",
	KwEnd:       "END",
	KwInit:      "INIT",
	KwCheck:     "CHECK",
	KwUnitcheck: "UNITCHECK",

	WordAnd: "and",
	WordOr:  "or",
	WordNot: "not",
	WordXor: "xor",
	Repeat:  "x",
	StrEq:   "eq",
	StrNe:   "ne",
	StrLt:   "lt",
	StrGt:   "gt",
	StrLe:   "le",
	StrGe:   "ge",
	StrCmp:  "cmp",

	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	Power:         "**",
	Concat:        ".",
	Assign:        "=",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	PowerAssign:   "**=",
	ConcatAssign:  ".=",
	RepeatAssign:  "x=",
	AmpAssign:     "&=",
	PipeAssign:    "|=",
	CaretAssign:   "^=",
	ShlAssign:     "<<=",
	ShrAssign:     ">>=",
	AndAndAssign:  "&&=",
	OrOrAssign:    "||=",
	DorAssign:     "//=",
	EqEq:          "==",
	BangEq:        "!=",
	Spaceship:     "<=>",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	Shl:           "<<",
	Shr:           ">>",
	Amp:           "&",
	Pipe:          "|",
	Caret:         "^",
	AndAnd:        "&&",
	OrOr:          "||",
	Dor:           "//",
	Bang:          "!",
	Tilde:         "~",
	Backslash:     "\\",
	Match:         "=~",
	NotMatch:      "!~",
	SmartMatch:    "~~",
	Inc:           "++",
	Dec:           "--",
	Arrow:         "->",
	FatArrow:      "=>",
	DotDot:        "..",
	DotDotDot:     "...",
	Question:      "?",
	Colon:         ":",
	FileTest:      "FileTest",

	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	LBracket:  "[",
	RBracket:  "]",
	Semicolon: ";",
	Comma:     ",",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
