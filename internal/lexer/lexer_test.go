package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlsense/internal/diag"
	"perlsense/internal/lexer"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

// significant drops whitespace and comments.
func significant(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.Whitespace || t.Kind == token.Comment {
			continue
		}
		out = append(out, t)
	}
	return out
}

func withoutCommas(toks []token.Token) []token.Token {
	out := toks[:0:0]
	for _, t := range toks {
		if t.Kind != token.Comma {
			out = append(out, t)
		}
	}
	return out
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func lexSig(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, _ := lexer.Tokenize(src, lexer.Initial())
	requireCoverage(t, src, toks)
	return significant(toks)
}

func requireCoverage(t *testing.T, src string, toks []token.Token) {
	t.Helper()
	var off uint32
	for _, tok := range toks {
		require.Equal(t, off, tok.Span.Start, "gap or overlap before %v %q", tok.Kind, tok.Text)
		if tok.Span.Empty() {
			require.Equal(t, token.Unterminated, tok.Kind, "empty token")
			require.Equal(t, uint32(len(src)), tok.Span.Start, "empty token before the end")
		}
		require.Equal(t, src[tok.Span.Start:tok.Span.End], tok.Text)
		off = tok.Span.End
	}
	require.Equal(t, uint32(len(src)), off)
}

func TestDivisionAfterTerm(t *testing.T) {
	toks := lexSig(t, "my $x = 1 / 2;")
	assert.Equal(t, []token.Kind{
		token.KwMy, token.ScalarVar, token.Assign, token.Number, token.Slash, token.Number, token.Semicolon,
	}, kinds(toks))
}

func TestRegexVersusDivide(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{"match after binding", "$s =~ /a\\/b[/]/i;", []token.Kind{token.ScalarVar, token.Match, token.Regex, token.Semicolon}},
		{"split pattern", "split /,/, $line", []token.Kind{token.Ident, token.Regex, token.Comma, token.ScalarVar}},
		{"divide after paren", "($a + 1) / 2", []token.Kind{token.LParen, token.ScalarVar, token.Plus, token.Number, token.RParen, token.Slash, token.Number}},
		{"defined-or after shift", "my $x = shift // 0;", []token.Kind{token.KwMy, token.ScalarVar, token.Assign, token.Ident, token.Dor, token.Number, token.Semicolon}},
		{"statement start", "/foo/ and print;", []token.Kind{token.Regex, token.WordAnd, token.Ident, token.Semicolon}},
		{"divide after subscript", "$h{a} / $n", []token.Kind{token.ScalarVar, token.LBrace, token.Ident, token.RBrace, token.Slash, token.ScalarVar}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(lexSig(t, tt.src)))
		})
	}
}

func TestVariables(t *testing.T) {
	toks := withoutCommas(lexSig(t, `$x, @y, %z, &f, *g, $#a, $Foo::bar, @{$r}, $$r, $_, $1, $@, ${^WARNING_BITS}, $::main`))
	assert.Equal(t, []token.Kind{
		token.ScalarVar, token.ArrayVar, token.HashVar, token.CodeVar, token.GlobVar, token.ArrayLen,
		token.ScalarVar, token.Cast, token.LBrace, token.ScalarVar, token.RBrace, token.Cast, token.ScalarVar,
		token.ScalarVar, token.ScalarVar, token.ScalarVar, token.ScalarVar, token.ScalarVar,
	}, kinds(toks))
	assert.Equal(t, "$Foo::bar", toks[6].Text)
	assert.Equal(t, "${^WARNING_BITS}", toks[16].Text)
	assert.Equal(t, "$::main", toks[17].Text)
}

func TestPercentIsModuloAfterTerm(t *testing.T) {
	toks := lexSig(t, "$n % 2; keys %h; map { $_ } %opts")
	assert.Equal(t, token.Percent, toks[1].Kind)
	assert.Equal(t, token.HashVar, toks[5].Kind)
	assert.Equal(t, token.HashVar, toks[len(toks)-1].Kind)
}

func TestQuoteLike(t *testing.T) {
	toks := lexSig(t, `q{a {nested} b} qq(x) qw/a b c/ m{x}g s{a}{b}gr s/a/b/ tr/a-z/A-Z/ y|a|b| qr<\d+>x`)
	assert.Equal(t, []token.Kind{
		token.QuoteLike, token.QuoteLike, token.QuoteWords, token.Regex, token.Substitution,
		token.Substitution, token.Transliteration, token.Transliteration, token.Regex,
	}, kinds(toks))
	assert.Equal(t, "q{a {nested} b}", toks[0].Text)
	assert.Equal(t, "s{a}{b}gr", toks[4].Text)
}

func TestQuoteWordsAreNotOperatorsInKeyPositions(t *testing.T) {
	toks := lexSig(t, "$h{s} = 1; $p->y; (q => 1); sub y { }")
	for _, tok := range toks {
		assert.NotEqual(t, token.Substitution, tok.Kind)
		assert.NotEqual(t, token.Transliteration, tok.Kind)
		assert.NotEqual(t, token.QuoteLike, tok.Kind)
	}
}

func TestWordOperatorsOnlyInOperatorPosition(t *testing.T) {
	toks := lexSig(t, `$a eq $b and $c x 3; $h{eq}; (lt => 1)`)
	assert.Equal(t, token.StrEq, toks[1].Kind)
	assert.Equal(t, token.WordAnd, toks[3].Kind)
	assert.Equal(t, token.Repeat, toks[5].Kind)
	assert.Equal(t, token.Ident, toks[10].Kind, "hash key eq")
	assert.Equal(t, token.Ident, toks[14].Kind, "fat comma key lt")
}

func TestKeywordsAndOperators(t *testing.T) {
	toks := lexSig(t, "$a <=> $b; $x ||= 1; $y //= 2; $s .= 't'; 1..10; $o->m(); $c ? 1 : 0")
	want := []token.Kind{token.Spaceship, token.OrOrAssign, token.DorAssign, token.ConcatAssign, token.DotDot, token.Arrow, token.Question, token.Colon}
	var got []token.Kind
	for _, tok := range toks {
		if tok.Kind.Category() == token.CatOperator {
			got = append(got, tok.Kind)
		}
	}
	assert.Equal(t, want, got)
}

func TestHeredoc(t *testing.T) {
	src := "print <<\"EOF\", <<~'END';\nhello $x\nEOF\n    raw\n    END\nprint 1;\n"
	toks := lexSig(t, src)
	require.Equal(t, []token.Kind{
		token.Ident, token.HeredocStart, token.Comma, token.HeredocStart, token.Semicolon,
		token.HeredocBody, token.HeredocBody, token.Ident, token.Number, token.Semicolon,
	}, kinds(toks))
	assert.Equal(t, "hello $x\nEOF\n", toks[5].Text)
	assert.Equal(t, "    raw\n    END\n", toks[6].Text)
}

func TestUnterminatedHeredocIsOneErrorToEOF(t *testing.T) {
	src := "print <<EOF;\nline one\nline two\n"
	toks, end := lexer.Tokenize(src, lexer.Initial())
	requireCoverage(t, src, toks)
	last := toks[len(toks)-1]
	assert.Equal(t, token.Unterminated, last.Kind)
	assert.Equal(t, "line one\nline two\n", last.Text)
	assert.False(t, end.PendingHeredoc())

	errs := 0
	for _, tok := range toks {
		if tok.Kind.Category() == token.CatError {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}

func TestPodAndDataSection(t *testing.T) {
	src := "my $x;\n=head1 NAME\n\nFoo\n\n=cut\nprint;\n__END__\nanything /goes here\n"
	toks := lexSig(t, src)
	assert.Equal(t, []token.Kind{
		token.KwMy, token.ScalarVar, token.Semicolon, token.Pod, token.Ident, token.Semicolon, token.DataSection,
	}, kinds(toks))
}

func TestNumbers(t *testing.T) {
	toks := withoutCommas(lexSig(t, "0x1F, 0b101, 1_000, 3.14, 1e10, 2.5E-3, v5.36.0, 5.010_001, .5"))
	for _, tok := range toks {
		assert.Equal(t, token.Number, tok.Kind, tok.Text)
	}
	assert.Len(t, toks, 9)
}

func TestPrototypeAndSignature(t *testing.T) {
	toks := lexSig(t, "sub max($$) { } sub add ($x, $y) { }")
	assert.Equal(t, token.Prototype, toks[2].Kind)
	assert.Equal(t, "($$)", toks[2].Text)
	assert.Equal(t, token.LParen, toks[7].Kind)
}

func TestReadlineAndFileTest(t *testing.T) {
	toks := lexSig(t, "while (<$fh>) { -e $f and $a < $b }")
	assert.Equal(t, token.Readline, toks[2].Kind)
	assert.Equal(t, token.FileTest, toks[5].Kind)
	assert.Equal(t, token.Lt, toks[9].Kind)
}

func TestUnknownBytesAreSingleByteErrors(t *testing.T) {
	bag := diag.NewBag(0)
	s := lexer.Lex(1, "my $x = \x01\x02;", 0, lexer.Initial(), lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
	var invalid []token.Token
	for _, tok := range s.Tokens {
		if tok.Kind == token.Invalid {
			invalid = append(invalid, tok)
		}
	}
	require.Len(t, invalid, 2)
	assert.Equal(t, uint32(1), invalid[0].Span.Len())
	assert.Equal(t, 2, bag.Len())
	assert.Equal(t, diag.LexUnknownChar, bag.Items()[0].Code)
}

func TestHeredocWithoutBodyAtEOF(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
	}{
		{"print <<EOF;", diag.LexMissingHeredocNewline},
		{"print <<EOF;\n", diag.LexUnterminatedHeredoc},
	}
	for _, tt := range tests {
		bag := diag.NewBag(8)
		s := lexer.Lex(1, tt.src, 0, lexer.Initial(), lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
		requireCoverage(t, tt.src, s.Tokens)
		last := s.Tokens[len(s.Tokens)-1]
		assert.Equal(t, token.Unterminated, last.Kind, tt.src)
		assert.True(t, last.Span.Empty(), tt.src)
		assert.Equal(t, uint32(len(tt.src)), last.Span.Start, tt.src)
		assert.False(t, s.End.PendingHeredoc(), tt.src)
		require.Len(t, bag.Items(), 1, tt.src)
		assert.Equal(t, tt.code, bag.Items()[0].Code, tt.src)
	}
}

func TestUnterminatedStringReported(t *testing.T) {
	bag := diag.NewBag(0)
	s := lexer.Lex(1, "my $s = \"abc;\nprint 1;\n", 0, lexer.Initial(), lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
	last := s.Tokens[len(s.Tokens)-1]
	assert.Equal(t, token.Unterminated, last.Kind)
	require.Equal(t, 1, bag.Len())
	assert.Equal(t, diag.LexUnterminatedString, bag.Items()[0].Code)
}

// Resuming from any recorded state reproduces the tail of the stream.
func TestResumeFromAnyTokenBoundary(t *testing.T) {
	src := strings.Join([]string{
		"package Foo;",
		"my $r = $x / 2 + <<EOT;",
		"body /not a regex",
		"EOT",
		"s{a}{b}g for @list;",
		"print STDERR qw(a b), %h;",
	}, "\n") + "\n"
	full := lexer.Lex(source.NoFile, src, 0, lexer.Initial(), lexer.Options{})
	for i := range full.Tokens {
		tail := lexer.Lex(source.NoFile, src, full.Tokens[i].Span.Start, full.States[i], lexer.Options{})
		require.Equal(t, full.Tokens[i:], tail.Tokens, "resume at token %d", i)
		require.True(t, full.End.Equal(tail.End))
	}
}

func TestStateEqual(t *testing.T) {
	a := lexer.Initial()
	b := lexer.Initial()
	assert.True(t, a.Equal(b))
	s := lexer.Lex(source.NoFile, "print <<X; 1", 0, a, lexer.Options{})
	withHeredoc := s.States[len(s.States)-1]
	assert.True(t, withHeredoc.PendingHeredoc())
	assert.False(t, a.Equal(withHeredoc))
}
