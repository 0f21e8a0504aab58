package diagfmt

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perlsense/internal/diag"
	"perlsense/internal/lexer"
	"perlsense/internal/source"
)

func fixture(t *testing.T, path, text string, sp func(source.FileID) diag.Diagnostic) (*diag.Bag, *Sources) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Intern(path)
	bag := diag.NewBag(10)
	require.True(t, bag.Add(sp(id)))
	return bag, NewSources(fs).Add(id, text)
}

func TestPrettySnippet(t *testing.T) {
	text := "use strict;\n\tmy $s = 'open\n1;\n"
	bag, src := fixture(t, "lib/Foo.pm", text, func(id source.FileID) diag.Diagnostic {
		return diag.NewError(diag.LexUnterminatedString, source.Span{File: id, Start: 21, End: 26}, "string is not terminated").
			WithNote(source.Span{File: id, Start: 0, End: 3}, "opened here")
	})

	var buf bytes.Buffer
	require.NoError(t, Pretty(&buf, bag, src, PrettyOpts{Context: 1, ShowNotes: true}))
	out := buf.String()

	assert.Contains(t, out, "ERROR LEX1002: string is not terminated")
	assert.Contains(t, out, "--> lib/Foo.pm:2:10")
	assert.Contains(t, out, "1 | use strict;")
	assert.Contains(t, out, "2 |     my $s = 'open")
	assert.Contains(t, out, "  |             ^^^^^\n")
	assert.Contains(t, out, "3 | 1;")
	assert.Contains(t, out, "note: lib/Foo.pm:1:1: opened here")
	assert.NotContains(t, out, "\x1b[")
}

func TestPrettyWideCharacters(t *testing.T) {
	text := "my $s = \"日本\"; oops\n"
	start := uint32(strings.Index(text, "oops"))
	bag, src := fixture(t, "a.pl", text, func(id source.FileID) diag.Diagnostic {
		return diag.New(diag.SevWarning, diag.SynUnexpectedToken, source.Span{File: id, Start: start, End: start + 4}, "unexpected")
	})
	var buf bytes.Buffer
	require.NoError(t, Pretty(&buf, bag, src, PrettyOpts{}))
	// The two CJK characters are two cells wide each.
	assert.Contains(t, buf.String(), "  | "+strings.Repeat(" ", 16)+"^^^^\n")
	assert.Contains(t, buf.String(), "WARNING")
}

var ansiCodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestPrettyColorAndMax(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Intern("a.pl")
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SynExpectSemicolon, source.Span{File: id}, "first"))
	bag.Add(diag.NewError(diag.SynExpectSemicolon, source.Span{File: id}, "second"))

	var buf bytes.Buffer
	require.NoError(t, Pretty(&buf, bag, NewSources(fs), PrettyOpts{Color: true, Max: 1}))
	assert.Contains(t, buf.String(), "\x1b[")
	plain := ansiCodes.ReplaceAllString(buf.String(), "")
	assert.Contains(t, plain, "--> a.pl\n")
	assert.Contains(t, buf.String(), "... and 1 more")
	assert.NotContains(t, buf.String(), "second")
}

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	base := t.TempDir()
	abs := filepath.ToSlash(filepath.Join(base, "lib", "Foo.pm"))
	id := fs.Intern(abs)
	src := NewSources(fs)

	assert.Equal(t, abs, src.path(id, PathModeAbsolute, ""))
	assert.Equal(t, "lib/Foo.pm", src.path(id, PathModeRelative, base))
	assert.Equal(t, "Foo.pm", src.path(id, PathModeBasename, ""))
	assert.Equal(t, "lib/Foo.pm", src.path(id, PathModeAuto, base))
	assert.Equal(t, abs, src.path(id, PathModeAuto, filepath.Join(base, "other")))
	assert.Equal(t, "<unknown>", src.path(99, PathModeAuto, ""))
}

func TestJSONOutput(t *testing.T) {
	bag, src := fixture(t, "a.pl", "sub f {}\nsub f {}\n", func(id source.FileID) diag.Diagnostic {
		return diag.New(diag.SevWarning, diag.SemRedeclaredSub, source.Span{File: id, Start: 13, End: 14}, "subroutine f redefined").
			WithNote(source.Span{File: id, Start: 4, End: 5}, "previous definition here")
	})

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, bag, src, JSONOpts{IncludePositions: true, IncludeNotes: true}))
	var out DiagnosticsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	require.Equal(t, 1, out.Count)
	d := out.Diagnostics[0]
	assert.Equal(t, "SEM3001", d.Code)
	assert.Equal(t, "WARNING", d.Severity)
	assert.Equal(t, LocationJSON{File: "a.pl", StartByte: 13, EndByte: 14, StartLine: 2, StartCol: 5, EndLine: 2, EndCol: 6}, d.Location)
	require.Len(t, d.Notes, 1)
	assert.Equal(t, uint32(1), d.Notes[0].Location.StartLine)

	out = BuildDiagnosticsOutput(bag, src, JSONOpts{})
	assert.Empty(t, out.Diagnostics[0].Notes)
	assert.Zero(t, out.Diagnostics[0].Location.StartLine)
}

func TestSarifOutput(t *testing.T) {
	bag, src := fixture(t, "a.pl", "my $x = ;\n", func(id source.FileID) diag.Diagnostic {
		return diag.NewError(diag.SynExpectExpression, source.Span{File: id, Start: 8, End: 9}, "expected expression")
	})
	var buf bytes.Buffer
	require.NoError(t, Sarif(&buf, bag, src, SarifRunMeta{ToolName: "perlsense", ToolVersion: "1.0.0", InvocationArgs: []string{"parse", "a.pl"}}))

	var log sarifLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	run := log.Runs[0]
	assert.Equal(t, "perlsense", run.Tool.Driver.Name)
	require.Len(t, run.Tool.Driver.Rules, 1)
	assert.Equal(t, diag.SynExpectExpression.ID(), run.Tool.Driver.Rules[0].ID)
	require.Len(t, run.Results, 1)
	res := run.Results[0]
	assert.Equal(t, "error", res.Level)
	assert.Equal(t, "a.pl", res.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, uint32(9), res.Locations[0].PhysicalLocation.Region.StartColumn)
	assert.Equal(t, uint32(1), res.Locations[0].PhysicalLocation.Region.ByteLength)
}

func TestTokenFormats(t *testing.T) {
	text := "my $x;\n"
	fs := source.NewFileSet()
	id := fs.Intern("a.pl")
	toks := lexer.Lex(id, text, 0, lexer.Initial(), lexer.Options{}).Tokens

	var buf bytes.Buffer
	require.NoError(t, FormatTokensPretty(&buf, toks, NewSources(fs).Add(id, text), false))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], `"$x" at 1:4-1:6`)

	buf.Reset()
	require.NoError(t, FormatTokensJSON(&buf, toks, true))
	var out []TokenOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Len(t, out, len(toks))
}
