package token

var keywords = map[string]Kind{
	"my":        KwMy,
	"our":       KwOur,
	"local":     KwLocal,
	"state":     KwState,
	"sub":       KwSub,
	"package":   KwPackage,
	"use":       KwUse,
	"no":        KwNo,
	"require":   KwRequire,
	"if":        KwIf,
	"elsif":     KwElsif,
	"else":      KwElse,
	"unless":    KwUnless,
	"while":     KwWhile,
	"until":     KwUntil,
	"for":       KwFor,
	"foreach":   KwForeach,
	"return":    KwReturn,
	"last":      KwLast,
	"next":      KwNext,
	"redo":      KwRedo,
	"goto":      KwGoto,
	"do":        KwDo,
	"eval":      KwEval,
	"BEGIN":     KwBegin,
	"END":       KwEnd,
	"INIT":      KwInit,
	"CHECK":     KwCheck,
	"UNITCHECK": KwUnitcheck,
}

// wordOperators are only operators where an operator is expected; in term
// position they lex as plain identifiers (a sub or hash key named "x").
var wordOperators = map[string]Kind{
	"and": WordAnd,
	"or":  WordOr,
	"xor": WordXor,
	"x":   Repeat,
	"eq":  StrEq,
	"ne":  StrNe,
	"lt":  StrLt,
	"gt":  StrGt,
	"le":  StrLe,
	"ge":  StrGe,
	"cmp": StrCmp,
}

// LookupKeyword returns the keyword kind for word. "not" is a keyword in
// either mode.
func LookupKeyword(word string) (Kind, bool) {
	if word == "not" {
		return WordNot, true
	}
	k, ok := keywords[word]
	return k, ok
}

// LookupWordOperator returns the operator kind for an infix word operator.
func LookupWordOperator(word string) (Kind, bool) {
	k, ok := wordOperators[word]
	return k, ok
}
