package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexUnknownChar           Code = 1001
	LexUnterminatedString    Code = 1002
	LexUnterminatedQuote     Code = 1003
	LexUnterminatedHeredoc   Code = 1004
	LexUnterminatedPod       Code = 1005
	LexBadNumber             Code = 1006
	LexMissingHeredocNewline Code = 1007

	// Syntax
	SynUnexpectedToken   Code = 2001
	SynUnclosedParen     Code = 2002
	SynUnclosedBrace     Code = 2003
	SynUnclosedBracket   Code = 2004
	SynExpectSemicolon   Code = 2005
	SynExpectExpression  Code = 2006
	SynExpectIdentifier  Code = 2007
	SynExpectBlock       Code = 2008
	SynExpectColon       Code = 2009
	SynExpectVariable    Code = 2010
	SynBadForHeader      Code = 2011
	SynStrayCloser       Code = 2012
	SynTooManyErrors     Code = 2013
	SynPackageNameNeeded Code = 2014

	// Semantic
	SemRedeclaredSub Code = 3001
	SemShadowedVar   Code = 3002

	// Project
	ProjImportCycle Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	LexUnknownChar:           "Unknown character",
	LexUnterminatedString:    "Unterminated string literal",
	LexUnterminatedQuote:     "Unterminated quote-like operator",
	LexUnterminatedHeredoc:   "Unterminated heredoc",
	LexUnterminatedPod:       "Unterminated POD block",
	LexBadNumber:             "Malformed number",
	LexMissingHeredocNewline: "Heredoc without body",
	SynUnexpectedToken:       "Unexpected token",
	SynUnclosedParen:         "Unclosed parenthesis",
	SynUnclosedBrace:         "Unclosed brace",
	SynUnclosedBracket:       "Unclosed bracket",
	SynExpectSemicolon:       "Expected ';'",
	SynExpectExpression:      "Expected expression",
	SynExpectIdentifier:      "Expected identifier",
	SynExpectBlock:           "Expected block",
	SynExpectColon:           "Expected ':' in conditional",
	SynExpectVariable:        "Expected variable",
	SynBadForHeader:          "Malformed for loop header",
	SynStrayCloser:           "Unmatched closing delimiter",
	SynTooManyErrors:         "Too many syntax errors",
	SynPackageNameNeeded:     "Package name expected",
	SemRedeclaredSub:         "Subroutine redefined",
	SemShadowedVar:           "Variable masks earlier declaration",
	ProjImportCycle:          "Module import cycle",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
