package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlsense/internal/cst"
	"perlsense/internal/diag"
	"perlsense/internal/lexer"
	"perlsense/internal/token"
)

func parse(t *testing.T, src string) *cst.Tree {
	t.Helper()
	tree := ParseText(1, src, Options{})
	require.NoError(t, cst.Validate(tree), "source %q", src)
	return tree
}

// shape renders the syntax nodes of a subtree, leaves as their text.
func shape(n *cst.Node) string {
	if n.Tok != nil {
		return n.Tok.Text
	}
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.SyntaxChildren() {
		parts = append(parts, shape(c))
	}
	return n.Kind.String() + "(" + strings.Join(parts, " ") + ")"
}

func codes(tree *cst.Tree) []diag.Code {
	var out []diag.Code
	for _, d := range tree.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"my $x = 1 / 2;", "File(ExprStmt(AssignExpr(VarDecl(my Variable($x)) = BinaryExpr(Literal(1) / Literal(2))) ;))"},
		{"package Foo; sub bar { 1 }", "File(PackageDecl(package Foo ;) SubDecl(sub bar Block({ ExprStmt(Literal(1)) })))"},
		{"foo(1);", "File(ExprStmt(FuncCall(foo ArgList(( Literal(1) ))) ;))"},
		{"Foo->new;", "File(ExprStmt(MethodCall(ClassName(Foo) -> new) ;))"},
		{"bar;", "File(ExprStmt(Bareword(bar) ;))"},
		{"baz $x;", "File(ExprStmt(ListOpCall(baz ArgList(Variable($x))) ;))"},
		{"%h = (key => 1);", "File(ExprStmt(AssignExpr(Variable(%h) = ParenExpr(( ListExpr(StringWord(key) => Literal(1)) ))) ;))"},
		{"$h{key};", "File(ExprStmt(ElementExpr(Variable($h) { StringWord(key) }) ;))"},
		{`print STDERR "hi";`, `File(ExprStmt(ListOpCall(print FileHandle(STDERR) ArgList(Literal("hi"))) ;))`},
		{"map { $_ * 2 } @list;", "File(ExprStmt(ListOpCall(map Block({ ExprStmt(BinaryExpr(Variable($_) * Literal(2))) }) ArgList(Variable(@list))) ;))"},
		{"$a = $b || $c ? 1 : 2;", "File(ExprStmt(AssignExpr(Variable($a) = TernaryExpr(BinaryExpr(Variable($b) || Variable($c)) ? Literal(1) : Literal(2))) ;))"},
		{"return 1 if $x;", "File(ExprStmt(ReturnExpr(return Literal(1)) Modifier(if Variable($x)) ;))"},
		{`open my $fh, '<', $file or die "x";`, `File(ExprStmt(BinaryExpr(ListOpCall(open ArgList(ListExpr(VarDecl(my Variable($fh)) , Literal('<') , Variable($file)))) or ListOpCall(die ArgList(Literal("x")))) ;))`},
		{"$x->{a}[0];", "File(ExprStmt(ElementExpr(ElementExpr(Variable($x) -> { StringWord(a) }) [ Literal(0) ]) ;))"},
		{"$obj->method(1)->other;", "File(ExprStmt(MethodCall(MethodCall(Variable($obj) -> method ArgList(( Literal(1) ))) -> other) ;))"},
		{"@{$r};", "File(ExprStmt(DerefExpr(@ Block({ ExprStmt(Variable($r)) })) ;))"},
		{"$$r[0];", "File(ExprStmt(ElementExpr(DerefExpr($ Variable($r)) [ Literal(0) ]) ;))"},
		{"-2 ** 2;", "File(ExprStmt(UnaryExpr(- BinaryExpr(Literal(2) ** Literal(2))) ;))"},
		{"$i++;", "File(ExprStmt(PostfixExpr(Variable($i) ++) ;))"},
		{"use strict;", "File(UseDecl(use strict ;))"},
		{"use POSIX qw(floor ceil);", "File(UseDecl(use POSIX Literal(qw(floor ceil)) ;))"},
		{"require Foo::Bar;", "File(ExprStmt(RequireExpr(require ClassName(Foo::Bar)) ;))"},
		{"BEGIN { 1 }", "File(PhaseBlock(BEGIN Block({ ExprStmt(Literal(1)) })))"},
		{"{ 1; }", "File(BlockStmt(Block({ ExprStmt(Literal(1) ;) })))"},
		{";", "File(EmptyStmt(;))"},
		{"LOOP: last LOOP;", "File(LabeledStmt(LOOP : ExprStmt(LoopCtl(last LOOP) ;)))"},
		{"my $f = sub { 2 };", "File(ExprStmt(AssignExpr(VarDecl(my Variable($f)) = AnonSub(sub Block({ ExprStmt(Literal(2)) }))) ;))"},
		{"my ($a, $b) = @_;", "File(ExprStmt(AssignExpr(VarDecl(my ParenExpr(( ListExpr(Variable($a) , Variable($b)) ))) = Variable(@_)) ;))"},
		{"ref $x eq 'HASH';", "File(ExprStmt(BinaryExpr(ListOpCall(ref ArgList(Variable($x))) eq Literal('HASH')) ;))"},
		{"my $self = shift;", "File(ExprStmt(AssignExpr(VarDecl(my Variable($self)) = ListOpCall(shift)) ;))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree := parse(t, tt.src)
			assert.Equal(t, tt.want, shape(tree.Root))
			assert.Empty(t, tree.Diagnostics())
		})
	}
}

func TestParseControlFlow(t *testing.T) {
	tree := parse(t, "if ($x) { 1 } elsif ($y) { 2 } else { 3 }")
	assert.Equal(t,
		"File(IfStmt(if Condition(( Variable($x) )) Block({ ExprStmt(Literal(1)) }) "+
			"ElsifClause(elsif Condition(( Variable($y) )) Block({ ExprStmt(Literal(2)) })) "+
			"ElseClause(else Block({ ExprStmt(Literal(3)) }))))",
		shape(tree.Root))

	tree = parse(t, "foreach my $x (@xs) { next; }")
	assert.Equal(t,
		"File(ForeachStmt(foreach VarDecl(my Variable($x)) Condition(( Variable(@xs) )) Block({ ExprStmt(LoopCtl(next) ;) })))",
		shape(tree.Root))

	tree = parse(t, "for (my $i = 0; $i < 3; $i++) { }")
	require.Len(t, tree.Root.Children, 1)
	assert.Equal(t, cst.ForStmt, tree.Root.Children[0].Kind)
	assert.Empty(t, tree.Diagnostics())

	tree = parse(t, "while (1) { last } continue { 1 }")
	assert.Equal(t, cst.WhileStmt, tree.Root.Children[0].Kind)
	assert.NotNil(t, tree.Root.Children[0].Child(cst.ContinueClause))
}

func TestSubSignatureAndPrototype(t *testing.T) {
	tree := parse(t, "sub max($$) { } sub new ($class, %args) { }")
	subs := tree.Root.SyntaxChildren()
	require.Len(t, subs, 2)
	assert.NotNil(t, subs[0].ChildToken(token.Prototype))
	sig := subs[1].Child(cst.Signature)
	require.NotNil(t, sig)
	assert.Equal(t, "Signature(( ListExpr(Variable($class) , Variable(%args)) ))", shape(sig))
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		src   string
		codes []diag.Code
	}{
		{"my $x = ;", []diag.Code{diag.SynExpectExpression}},
		{"foo(1, 2;", []diag.Code{diag.SynUnclosedParen}},
		{"if ($x) { print 1;", []diag.Code{diag.SynUnclosedBrace}},
		{") 1;", []diag.Code{diag.SynStrayCloser}},
		{`my $s = "abc`, []diag.Code{diag.LexUnterminatedString}},
		{"1 2;", []diag.Code{diag.SynExpectSemicolon}},
		{"else { 1 }", []diag.Code{diag.SynUnexpectedToken}},
		{"package;", []diag.Code{diag.SynPackageNameNeeded}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree := parse(t, tt.src)
			assert.Equal(t, tt.codes, codes(tree))
		})
	}
}

func TestUnterminatedHeredocIsOneTrailingError(t *testing.T) {
	src := "print <<EOF;\nline one\nline two\n"
	tree := parse(t, src)

	var errs []*cst.Node
	cst.Walk(tree.Root, func(n *cst.Node) bool {
		if n.Kind == cst.Error {
			errs = append(errs, n)
		}
		return true
	})
	require.Len(t, errs, 1)
	kids := tree.Root.Children
	assert.Same(t, errs[0], kids[len(kids)-1])
	assert.Equal(t, uint32(len(src)), errs[0].Span.End)
	assert.Equal(t, []diag.Code{diag.LexUnterminatedHeredoc}, codes(tree))
}

func TestHeredocBodyIsTrivia(t *testing.T) {
	tree := parse(t, "my $s = <<~EOT;\n  text\n  EOT\nprint $s;\n")
	assert.Empty(t, tree.Diagnostics())
	stmts := 0
	for _, c := range tree.Root.Children {
		if c.Kind == cst.ExprStmt {
			stmts++
		}
	}
	assert.Equal(t, 2, stmts)
}

func TestMissingHeredocBodyAtEOF(t *testing.T) {
	tests := []struct {
		src  string
		code diag.Code
	}{
		{"print <<EOF;", diag.LexMissingHeredocNewline},
		{"print <<EOF;\n", diag.LexUnterminatedHeredoc},
	}
	for _, tt := range tests {
		tree := parse(t, tt.src)
		assert.Equal(t, []diag.Code{tt.code}, codes(tree), tt.src)
		assert.Empty(t, tree.Root.Problems, tt.src)

		var errs []*cst.Node
		cst.Walk(tree.Root, func(n *cst.Node) bool {
			if n.Kind == cst.Error {
				errs = append(errs, n)
			}
			return true
		})
		require.Len(t, errs, 1, tt.src)
		kids := tree.Root.Children
		assert.Same(t, errs[0], kids[len(kids)-1], tt.src)
		assert.Equal(t, uint32(len(tt.src)), errs[0].Span.Start, tt.src)
		assert.Equal(t, token.Unterminated, errs[0].Children[0].Tok.Kind, tt.src)
	}
}

const sample = `package My::Shape;
use strict;
use warnings;
use parent -norequire, 'Base';

our $VERSION = '1.00';

sub new {
    my ($class, %args) = @_;
    my $self = { name => $args{name} // 'shape', sides => [1, 2, 3] };
    return bless $self, $class;
}

sub area {
    my $self = shift;
    my $total = 0;
    for my $s (@{ $self->{sides} }) {
        $total += $s / 2 if $s =~ /\d+/;
    }
    print STDERR <<"END" unless $total;
empty shape $self->{name}
END
    return $total;
}

=pod

Docs here.

=cut

1;
__END__
trailing data
`

// Every prefix of a realistic file must parse to a valid tree.
func TestEveryPrefixParses(t *testing.T) {
	for i := 0; i <= len(sample); i++ {
		src := sample[:i]
		tree := ParseText(1, src, Options{})
		require.NoError(t, cst.Validate(tree), "prefix %d: %q", i, src)
	}
}

func TestGarbageInputs(t *testing.T) {
	inputs := []string{
		"}}}", "((((", "sub {", "if (", "my ($a, $b", "$x->", "print {", "s{a}{b",
		"<<~EOT\n  x\n  EOT\n", "=pod\n\n=cut\n1;", "__END__\nstuff", "\x01\x02", "? : ?",
		"for (;;", "foo => => ,", "@{", "${^", "sub x :lvalue", "q{", "$h{", "-e", "->->",
		"do", "eval", "local", "my", "return return", "else else", "x x x", "1 .. 2 ..",
	}
	for _, src := range inputs {
		tree := ParseText(1, src, Options{})
		require.NoError(t, cst.Validate(tree), "source %q", src)
		var b strings.Builder
		for _, tok := range tree.Leaves() {
			b.WriteString(tok.Text)
		}
		assert.Equal(t, src, b.String())
	}
}

// Resuming the lexer at any top-level checkpoint reproduces the tree's
// leaves from that point on.
func TestCheckpointsResumeLexing(t *testing.T) {
	tree := parse(t, sample)
	leaves := tree.Leaves()
	for i, child := range tree.Root.Children {
		s := lexer.Lex(tree.File, tree.Text, child.Span.Start, tree.Checkpoints[i], lexer.Options{})
		j := 0
		for j < len(leaves) && leaves[j].Span.Start < child.Span.Start {
			j++
		}
		require.Equal(t, leaves[j:], s.Tokens, "checkpoint %d", i)
	}
}

func TestReportCapsErrors(t *testing.T) {
	bag := diag.NewBag(0)
	ParseText(1, ") ) ) )", Options{MaxErrors: 2, Reporter: &diag.BagReporter{Bag: bag}})
	items := bag.Items()
	require.Len(t, items, 3)
	assert.Equal(t, diag.SynStrayCloser, items[0].Code)
	assert.Equal(t, diag.SynTooManyErrors, items[2].Code)
	assert.Equal(t, diag.SevWarning, items[2].Severity)
}

func TestNodeIDsStartAtFirstID(t *testing.T) {
	tree := ParseText(1, "1;", Options{FirstID: 100})
	min := tree.NextID
	cst.Walk(tree.Root, func(n *cst.Node) bool {
		if n.ID < min {
			min = n.ID
		}
		return true
	})
	assert.Equal(t, cst.NodeID(100), min)
	assert.Equal(t, tree.Root.ID+1, tree.NextID)
}
