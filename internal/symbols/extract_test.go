package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlsense/internal/cst"
	"perlsense/internal/diag"
	"perlsense/internal/parser"
	"perlsense/internal/source"
)

func extract(t *testing.T, src string) *Table {
	t.Helper()
	tree := parser.ParseText(1, src, parser.Options{})
	require.NoError(t, cst.Validate(tree))
	table := Extract(tree, 1)
	require.NoError(t, table.Validate())
	return table
}

func find(t *testing.T, table *Table, qualified string) Symbol {
	t.Helper()
	for _, sym := range table.All() {
		if sym.QualifiedName == qualified {
			return sym
		}
	}
	require.Failf(t, "symbol not found", "%s", qualified)
	return Symbol{}
}

func refs(table *Table, kind RefKind) []string {
	var out []string
	for _, r := range table.References {
		if r.Kind == kind {
			out = append(out, r.Name)
		}
	}
	return out
}

func TestPackageAndSubAreDualNamed(t *testing.T) {
	table := extract(t, "package Foo; sub bar { 1 }")

	pkg := find(t, table, "Foo")
	assert.Equal(t, SymbolPackage, pkg.Kind)
	assert.Equal(t, "Foo", pkg.BareName)

	sub := find(t, table, "Foo::bar")
	assert.Equal(t, SymbolSub, sub.Kind)
	assert.Equal(t, "bar", sub.BareName)
	assert.Equal(t, "Foo", sub.Package)

	assert.Len(t, table.Lookup("bar"), 1)
	assert.Len(t, table.Lookup("Foo::bar"), 1)
}

func TestDefaultPackageIsMain(t *testing.T) {
	table := extract(t, "sub hello { 1 }\nmy $x;\n")
	assert.Equal(t, "main", find(t, table, "main::hello").Package)
	assert.Equal(t, "$x", find(t, table, "$main::x").BareName)
}

func TestPackageRegions(t *testing.T) {
	src := "package A;\nsub one {}\npackage B;\nsub two {}\npackage C { sub three {} }\nsub four {}\n"
	table := extract(t, src)
	find(t, table, "A::one")
	find(t, table, "B::two")
	find(t, table, "C::three")
	find(t, table, "B::four")

	a := find(t, table, "A")
	assert.Equal(t, uint32(0), a.Span.Start)
	assert.Equal(t, uint32(22), a.Span.End)
	b := find(t, table, "B")
	assert.Equal(t, uint32(len(src)), b.Span.End)
	assert.Equal(t, []string{"A", "B", "C"}, table.Packages())
}

func TestSubArityAndMethodFlag(t *testing.T) {
	src := `package Shape;
sub new { my ($class, %args) = @_; bless {}, $class }
sub area { my $self = shift; my $scale = shift; 1 }
sub add ($x, $y = 1) { $x + $y }
sub pick($$;$) { 1 }
sub bare { 1 }
sub Other::name { 1 }
`
	table := extract(t, src)

	nw := find(t, table, "Shape::new")
	assert.Equal(t, 1, nw.Arity)
	assert.True(t, nw.Method())
	assert.NotZero(t, nw.Flags&SymbolFlagVariadic)

	area := find(t, table, "Shape::area")
	assert.Equal(t, 2, area.Arity)
	assert.True(t, area.Method())

	add := find(t, table, "Shape::add")
	assert.Equal(t, 2, add.Arity)
	assert.False(t, add.Method())

	assert.Equal(t, 3, find(t, table, "Shape::pick").Arity)
	assert.Equal(t, ArityUnknown, find(t, table, "Shape::bare").Arity)

	other := find(t, table, "Other::name")
	assert.Equal(t, "Other", other.Package)
	assert.Equal(t, "name", other.BareName)
}

func TestSignatureParamsAreLexical(t *testing.T) {
	table := extract(t, "sub add ($x, $y) { $x }")
	x := find(t, table, "$main::x")
	assert.True(t, x.Lexical())
	assert.NotZero(t, x.Flags&SymbolFlagParam)
	sc := table.Scopes.Get(x.Scope)
	require.NotNil(t, sc)
	assert.Equal(t, ScopeSub, sc.Kind)
}

func TestForwardDeclarationMerges(t *testing.T) {
	table := extract(t, "sub later;\nlater();\nsub later { my $self = shift; }\n")
	subs := table.ByKind(SymbolSub)
	require.Len(t, subs, 1)
	assert.False(t, subs[0].Forward())
	assert.True(t, subs[0].Method())
}

func TestVariableDeclarations(t *testing.T) {
	table := extract(t, "package Bar;\nmy $x;\nour @list;\nlocal $Foo::y;\nstate %h;\nmy ($a, $b);\n")

	x := find(t, table, "$Bar::x")
	assert.True(t, x.Lexical())
	list := find(t, table, "@Bar::list")
	assert.False(t, list.Lexical())
	assert.Equal(t, "@list", list.BareName)
	y := find(t, table, "$Foo::y")
	assert.NotZero(t, y.Flags&SymbolFlagLocal)
	assert.Equal(t, "Foo", y.Package)
	assert.True(t, find(t, table, "%Bar::h").Lexical())
	find(t, table, "$Bar::a")
	find(t, table, "$Bar::b")
}

func TestImportsAndDependencies(t *testing.T) {
	src := `use strict;
use 5.010;
use POSIX qw(floor ceil);
use parent -norequire, 'Base';
no warnings;
require Foo::Bar;
require "Baz/Qux.pm";
`
	table := extract(t, src)
	posix := find(t, table, "POSIX")
	assert.Equal(t, SymbolImport, posix.Kind)
	assert.Equal(t, []string{"floor", "ceil"}, posix.Imports)
	assert.Equal(t, []string{"-norequire", "Base"}, find(t, table, "parent").Imports)

	assert.Equal(t, []string{"strict", "POSIX", "parent", "Base", "warnings", "Foo::Bar", "Baz::Qux"}, table.Dependencies)
	for _, sym := range table.All() {
		assert.NotEqual(t, "warnings", sym.QualifiedName, "no does not import")
	}
}

func TestUseConstantDeclaresSubs(t *testing.T) {
	table := extract(t, "use constant PI => 3.14;\nuse constant { E => 2.71, TAU => 6.28 };\n")
	for _, name := range []string{"main::PI", "main::E", "main::TAU"} {
		sym := find(t, table, name)
		assert.Equal(t, SymbolSub, sym.Kind)
		assert.Equal(t, 0, sym.Arity)
	}
}

func TestReferences(t *testing.T) {
	src := `my @x; my %h; my $name;
$x[0] = $h{k};
$name = "hello $name and @x and ${name}";
Foo->new(1);
$obj->run;
bar(1);
&baz;
`
	table := extract(t, src)
	assert.Equal(t, []string{"@x", "%h", "$name", "$name", "@x", "$name", "$obj"}, refs(table, RefVariable))
	assert.Equal(t, []string{"new", "run"}, refs(table, RefMethod))
	assert.Equal(t, []string{"Foo"}, refs(table, RefClass))
	assert.Equal(t, []string{"bar", "baz"}, refs(table, RefCall))

	var writes []string
	for _, r := range table.References {
		if r.Write {
			writes = append(writes, r.Name)
		}
	}
	assert.Equal(t, []string{"$name"}, writes)

	for _, r := range table.References {
		if r.Kind == RefMethod && r.Name == "new" {
			assert.Equal(t, "Foo::new", r.Qualified)
		}
		if r.Kind == RefMethod && r.Name == "run" {
			assert.Empty(t, r.Qualified)
		}
	}
}

func TestReferenceSpansPointAtText(t *testing.T) {
	src := "my $who;\nprint \"hi $who\";\n"
	table := extract(t, src)
	require.Len(t, table.References, 1)
	sp := table.References[0].Span
	assert.Equal(t, "$who", src[sp.Start:sp.End])
}

func TestHeredocInterpolation(t *testing.T) {
	table := extract(t, "print <<\"END\", <<'RAW';\nhi $who\nEND\nno $raw\nRAW\n")
	assert.Equal(t, []string{"$who"}, refs(table, RefVariable))
}

func TestBarewordReclassification(t *testing.T) {
	src := `use Foo::Bar;
use List::Util qw(first);
my $v = helper;
my $c = Foo::Bar;
my $f = first;
my $w = mystery;
sub helper { 1 }
`
	table := extract(t, src)
	assert.Equal(t, []string{"helper", "first"}, refs(table, RefCall))
	assert.Equal(t, []string{"Foo::Bar"}, refs(table, RefClass))
	assert.Equal(t, []string{"mystery"}, refs(table, RefBareword))
}

func TestLibraryNamesResolveToFileSubs(t *testing.T) {
	src := "sub max { 1 }\nprint max(1, 2), min(3, 4);\nok 1;\n"
	table := extract(t, src)
	assert.Equal(t, []string{"max"}, refs(table, RefCall))
	assert.Empty(t, refs(table, RefBareword))
}

func TestVisibleAtFollowsNesting(t *testing.T) {
	src := "my $x = 1;\nsub f { my $x = 2; $x }\n$x;\n"
	table := extract(t, src)

	inner, ok := table.VisibleAt(30, "$x")
	require.True(t, ok)
	assert.Equal(t, ScopeSub, table.Scopes.Get(table.Symbols.Get(inner).Scope).Kind)

	outer, ok := table.VisibleAt(uint32(len(src)-3), "$x")
	require.True(t, ok)
	assert.Equal(t, table.Root(), table.Symbols.Get(outer).Scope)

	_, ok = table.VisibleAt(0, "$nope")
	assert.False(t, ok)
}

func TestRestoreKeepsLookups(t *testing.T) {
	table := extract(t, "package Foo;\nsub bar { my $x; }\nour $y;\n")
	back := Restore(table.File, table.Scopes.Data(), table.All(), table.References, table.Dependencies)
	require.NoError(t, back.Validate())
	assert.Equal(t, table.All(), back.All())
	assert.Equal(t, table.Lookup("bar"), back.Lookup("bar"))
	id, ok := back.VisibleAt(29, "$x")
	require.True(t, ok)
	assert.Equal(t, "$Foo::x", back.Symbols.Get(id).QualifiedName)

	moved := Restore(7, table.Scopes.Data(), table.All(), table.References, table.Dependencies)
	for _, sym := range moved.All() {
		assert.Equal(t, source.FileID(7), sym.File)
		assert.Equal(t, source.FileID(7), sym.NameSpan.File)
	}
	assert.Equal(t, table.File, table.All()[0].File)
}

func TestExtractIsPure(t *testing.T) {
	tree := parser.ParseText(1, "package Foo; sub bar { $x->baz }", parser.Options{})
	assert.Equal(t, Extract(tree, 1).All(), Extract(tree, 1).All())
}

func TestNames(t *testing.T) {
	pkg, bare := SplitQualified("$Foo::Bar::x")
	assert.Equal(t, "Foo::Bar", pkg)
	assert.Equal(t, "$x", bare)
	pkg, bare = SplitQualified("$::x")
	assert.Equal(t, "main", pkg)
	assert.Equal(t, "$x", bare)
	assert.Equal(t, "@Foo::list", Qualify("Foo", "@list"))
	assert.Equal(t, "Other::f", Qualify("Foo", "Other::f"))
	assert.Equal(t, "$x", variableName("${x}"))
	assert.Equal(t, "@x", variableName("$#x"))
	assert.Empty(t, variableName("$_"))
	assert.Empty(t, variableName("$1"))
}

func TestLintReportsRedefinitions(t *testing.T) {
	src := "sub f { 1 }\nsub f { 2 }\nmy $x;\nmy $x;\nsub g ($y) { my $z; }\nmy $z;\n"
	table := extract(t, src)
	bag := diag.NewBag(10)
	Lint(table, &diag.BagReporter{Bag: bag})

	items := bag.Items()
	require.Len(t, items, 2)
	assert.Equal(t, diag.SemRedeclaredSub, items[0].Code)
	assert.Equal(t, diag.SevWarning, items[0].Severity)
	assert.Equal(t, "f", src[items[0].Primary.Start:items[0].Primary.End])
	require.Len(t, items[0].Notes, 1)
	assert.Equal(t, diag.SemShadowedVar, items[1].Code)
	assert.Equal(t, uint32(34), items[1].Primary.Start)
}
