package fuzztests

import (
	"testing"
)

const maxSeedBytes = 64 << 10 // 64 KiB

// languageSeeds cover the constructs whose lexing depends on context.
var languageSeeds = []string{
	"package Foo;\nuse strict;\nsub new { my ($class, %args) = @_; bless {%args}, $class }\n1;\n",
	"my $x = $y / 2; my $re = /a\\/b/i; $s =~ s{foo}{bar}gr;\n",
	"print <<\"END\", <<'RAW';\nhi $who\nEND\nno $raw\nRAW\n",
	"my @w = qw(a b c); my %h = (k => 'v', q => q{x}, qq => qq<$y>);\n",
	"=pod\n\ndocs\n\n=cut\nsub f ($x, $y = 1) { $x // $y }\n",
	"package Bar { sub baz :lvalue { $Bar::v } }\n__END__\nfree text\n",
	"my $h = { a => [1, 2, { b => sub { shift->{c} } }] };\n",
	"tr/a-z/A-Z/; y{a}{b}; $x = m[\\d+]x ? 1 : 0;\n",
	"if ($a) { 1 } elsif ($b) { 2 } else { 3 } unless (0) { }\nfor my $i (0..9) { next if $i % 2 }\n",
	"my $s = 'unterminated\n",
	"sub { { { ( [ \n",
	"$x = <<~EOT;\n    indented $x\n    EOT\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range languageSeeds {
		f.Add(clampSeed([]byte(seed)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
