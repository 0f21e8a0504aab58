package incremental

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlsense/internal/cst"
	"perlsense/internal/parser"
	"perlsense/internal/source"
)

const sample = `package My::Shape;
use strict;
use parent -norequire, 'Base';

our $VERSION = '1.00';

sub new {
    my ($class, %args) = @_;
    my $self = { name => $args{name} // 'shape', sides => [1, 2, 3] };
    return bless $self, $class;
}

# area of the shape
sub area {
    my $self = shift;
    my $total = 0;
    for my $s (@{ $self->{sides} }) {
        $total += $s / 2 if $s =~ /\d+/;
    }
    print STDERR <<"END" unless $total;
empty shape $self->{name}
END
    while ($total > 10) { $total-- } continue { next }
    return $total;
}

=pod

Docs here.

=cut

1;
__END__
trailing data
`

func parse(src string) *cst.Tree {
	return parser.ParseText(1, src, parser.Options{})
}

// checkEdit reparses src after e and compares the result with a fresh parse
// of the edited text.
func checkEdit(t *testing.T, src string, e source.Edit) Result {
	t.Helper()
	old := parse(src)
	got, res, err := Reparse(old, e, Options{Check: true})
	require.NoError(t, err, "edit %+v of %q", e, src)
	text, err := e.Apply(src)
	require.NoError(t, err)
	want := parse(text)
	require.Empty(t, cst.TreeDiff(want, got), "edit %+v of %q", e, src)
	return res
}

func TestEditsMatchFreshParse(t *testing.T) {
	inserts := []string{"x", " ", "\n", "}", "{", `"`, ";", "#", "<<E\n", "=cut\n"}
	n := uint32(len(sample))
	for off := uint32(0); off <= n; off++ {
		for _, s := range inserts {
			checkEdit(t, sample, source.Insert(off, s))
		}
		if off < n {
			checkEdit(t, sample, source.Delete(off, off+1))
		}
		if off+5 <= n {
			checkEdit(t, sample, source.Delete(off, off+5))
			checkEdit(t, sample, source.Edit{Start: off, End: off + 5, NewText: "$y;\n"})
		}
	}
}

// Typing a file character by character keeps every generation equal to a
// fresh parse, and node IDs stay unique across generations.
func TestTypingSequence(t *testing.T) {
	tree := parse("")
	for i := 0; i < len(sample); i++ {
		var err error
		tree, _, err = Reparse(tree, source.Insert(uint32(i), sample[i:i+1]), Options{Check: true})
		require.NoError(t, err, "step %d", i)
		require.Empty(t, cst.TreeDiff(parse(sample[:i+1]), tree), "step %d", i)
	}
	for len(tree.Text) > 0 {
		end := uint32(len(tree.Text))
		text := tree.Text[:end-1]
		var err error
		tree, _, err = Reparse(tree, source.Delete(end-1, end), Options{Check: true})
		require.NoError(t, err)
		require.Empty(t, cst.TreeDiff(parse(text), tree), "length %d", len(text))
	}
}

func TestNumberEditTakesFastPath(t *testing.T) {
	src := "my $x = 12;\nmy $y = 3;\n"
	old := parse(src)
	stmt := old.Root.Children[0]
	next := old.Root.Children[2]
	require.Equal(t, cst.ExprStmt, stmt.Kind)

	tree, res, err := Reparse(old, source.Insert(9, "5"), Options{Check: true})
	require.NoError(t, err)
	assert.True(t, res.FastPath)
	assert.False(t, res.FullReparse)
	assert.Same(t, stmt, tree.Root.Children[0])
	assert.Same(t, next, tree.Root.Children[2])
	assert.Equal(t, uint32(13), next.Span.Start)

	tok, ok := tree.TokenAt(9)
	require.True(t, ok)
	assert.Equal(t, "152", tok.Text)
	assert.Empty(t, cst.TreeDiff(parse("my $x = 152;\nmy $y = 3;\n"), tree))
}

func TestStringAndCommentFastPath(t *testing.T) {
	res := checkEdit(t, "print 'abc';\n# note\n1;\n", source.Insert(8, "zz"))
	assert.True(t, res.FastPath)
	res = checkEdit(t, "print 'abc';\n# note\n1;\n", source.Insert(15, "more "))
	assert.True(t, res.FastPath)
}

func TestFastPathFallsBack(t *testing.T) {
	// The quote closes the string early.
	res := checkEdit(t, "print 'abc';\n1;\n", source.Insert(8, "'"))
	assert.False(t, res.FastPath)
	// A newline ends the comment.
	res = checkEdit(t, "# note\nfoo();\n", source.Insert(3, "\n"))
	assert.False(t, res.FastPath)
	// An edit at a token edge is not inside it.
	res = checkEdit(t, "my $x = 12;\n", source.Insert(8, "3"))
	assert.False(t, res.FastPath)
}

func TestEditOutsideSubtreeKeepsIt(t *testing.T) {
	src := "sub a { 1 }\nsub b { 2 }\nsub c { 3 }\n"
	old := parse(src)
	a, b, c := old.Root.Children[0], old.Root.Children[2], old.Root.Children[4]
	require.Equal(t, cst.SubDecl, c.Kind)

	tree, res, err := Reparse(old, source.Insert(20, "$y; "), Options{Check: true})
	require.NoError(t, err)
	assert.False(t, res.FullReparse)
	assert.Same(t, a, tree.Root.Children[0])
	assert.NotSame(t, b, tree.Root.Children[2])
	assert.Same(t, c, tree.Root.Children[4])
	assert.Equal(t, uint32(28), c.Span.Start)
	assert.GreaterOrEqual(t, res.Reused, 3)
	assert.Empty(t, cst.TreeDiff(parse("sub a { 1 }\nsub b { $y; 2 }\nsub c { 3 }\n"), tree))
}

func TestUnterminatedEditIsFullReparse(t *testing.T) {
	res := checkEdit(t, "print <<EOF;\nabc\n", source.Insert(14, "d"))
	assert.True(t, res.FullReparse)
	res = checkEdit(t, "print 'abc;\n1;\n", source.Insert(9, "x"))
	assert.True(t, res.FullReparse)
}

func TestHeredocStraddlingEdits(t *testing.T) {
	src := "print <<EOF;\nbody\nEOF\nprint 2;\n"
	edits := []source.Edit{
		source.Delete(18, 22),
		source.Insert(13, "EOF\n"),
		{Start: 6, End: 11, NewText: "<<END"},
		source.Delete(11, 12),
		source.Insert(12, " print 3;"),
		source.Delete(5, 20),
	}
	for _, e := range edits {
		checkEdit(t, src, e)
	}
}

func TestStatementsMergeAcrossBoundary(t *testing.T) {
	src := "foo(1);\nbar(2);\nbaz(3);\nqux(4);\n"
	checkEdit(t, src, source.Delete(6, 7))
	checkEdit(t, src, source.Insert(3, "("))
	checkEdit(t, src, source.Insert(0, "if ($x) {\n"))
	checkEdit(t, src, source.Insert(16, "sub q {\n"))
}

func TestOpenerBeforeManyStatementsTakesFewPasses(t *testing.T) {
	body := strings.Repeat("foo(1);\n", 2000)
	// The brace swallows every statement up to the stray closer.
	res := checkEdit(t, body+"}\n", source.Insert(0, "{"))
	assert.False(t, res.FullReparse)
	assert.LessOrEqual(t, res.Passes, 16)
	// Without a closer the region never closes and a full reparse follows.
	res = checkEdit(t, body, source.Insert(0, "{"))
	assert.True(t, res.FullReparse)
	assert.LessOrEqual(t, res.Passes, 17)
}

func packageBlock(n int) string {
	var b strings.Builder
	b.WriteString("package Foo {\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "    sub f%d { my $x = %d; return $x; }\n", i, i)
	}
	b.WriteString("}\n1;\n")
	return b.String()
}

func TestEditInsideLargeBlockStaysLocal(t *testing.T) {
	src := packageBlock(500)
	off := uint32(strings.Index(src, "sub f250 ") + len("sub f250 { my"))
	old := parse(src)
	pkg := old.Root.Children[0]
	after := old.Root.Children[len(old.Root.Children)-2]

	tree, res, err := Reparse(old, source.Insert(off, " "), Options{Check: true})
	require.NoError(t, err)
	assert.False(t, res.FullReparse)
	assert.Less(t, res.Reparsed.Len(), uint32(200))
	assert.Same(t, pkg, tree.Root.Children[0])
	assert.Same(t, after, tree.Root.Children[len(tree.Root.Children)-2])
	want := parse(src[:off] + " " + src[off:])
	assert.Empty(t, cst.TreeDiff(want, tree))
}

func TestEditsInsideBlocksMatchFreshParse(t *testing.T) {
	src := packageBlock(4) + "sub g {\n    if ($a) { print 1; print 2; }\n    my %h = { a => 1 };\n    return;\n}\n"
	inserts := []string{"x", "}", "{", ";", "'", "\n", "<<E;\n", "a => "}
	for off := uint32(0); off <= uint32(len(src)); off++ {
		for _, s := range inserts {
			checkEdit(t, src, source.Insert(off, s))
		}
		if off+3 <= uint32(len(src)) {
			checkEdit(t, src, source.Delete(off, off+3))
		}
	}
}

func TestEmptyEditKeepsTree(t *testing.T) {
	old := parse("1;")
	tree, _, err := Reparse(old, source.Insert(1, ""), Options{})
	require.NoError(t, err)
	assert.Same(t, old, tree)
}

func TestReparseErrors(t *testing.T) {
	_, _, err := Reparse(nil, source.Insert(0, "x"), Options{})
	require.ErrorIs(t, err, ErrNilTree)
	_, _, err = Reparse(parse("1;"), source.Delete(1, 9), Options{})
	require.ErrorIs(t, err, source.ErrEditRange)
}
