package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"perlsense/internal/diag"
	"perlsense/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, gutter, caret, bold *color.Color
}

func newPalette(on bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgGreen),
		gutter: color.New(color.FgBlue, color.Bold),
		caret:  color.New(color.FgMagenta, color.Bold),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.gutter, p.caret, p.bold} {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty writes diagnostics for humans:
//
//	ERROR SYN2005: expected ';'
//	  --> lib/Foo.pm:3:9
//	   |
//	 3 | my $x = 1
//	   |          ^
func Pretty(w io.Writer, bag *diag.Bag, src *Sources, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	var b strings.Builder
	for i, d := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeDiagnostic(&b, d, src, opts, pal)
	}
	if rest := bag.Len() - len(items); rest > 0 {
		fmt.Fprintf(&b, "\n... and %d more\n", rest)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDiagnostic(b *strings.Builder, d diag.Diagnostic, src *Sources, opts PrettyOpts, pal palette) {
	fmt.Fprintf(b, "%s %s: %s\n",
		pal.severity(d.Severity).Sprint(d.Severity.String()),
		pal.bold.Sprint(d.Code.ID()),
		pal.bold.Sprint(d.Message))

	path := src.path(d.Primary.File, opts.PathMode, opts.BaseDir)
	start, _, ok := src.resolve(d.Primary)
	if !ok {
		fmt.Fprintf(b, "  %s %s\n", pal.gutter.Sprint("-->"), path)
	} else {
		fmt.Fprintf(b, "  %s %s:%d:%d\n", pal.gutter.Sprint("-->"), path, start.Line, start.Col)
		writeSnippet(b, d.Primary, src, opts, pal)
	}

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		loc := src.path(n.Span.File, opts.PathMode, opts.BaseDir)
		if ns, _, ok := src.resolve(n.Span); ok {
			loc = fmt.Sprintf("%s:%d:%d", loc, ns.Line, ns.Col)
		}
		fmt.Fprintf(b, "  %s %s %s\n", pal.gutter.Sprint("="), pal.note.Sprint("note:"), loc+": "+n.Msg)
	}
}

func writeSnippet(b *strings.Builder, sp source.Span, src *Sources, opts PrettyOpts, pal palette) {
	m, _ := src.lines(sp.File)
	startPos := m.ByteToPosition(sp.Start)
	line := startPos.Line

	ctx := uint32(max(opts.Context, 0))
	first := line - min(line, ctx)
	last := min(line+ctx, uint32(m.LineCount()-1))
	width := len(strconv.Itoa(int(last) + 1))
	pad := strings.Repeat(" ", width)

	fmt.Fprintf(b, "%s %s\n", pad, pal.gutter.Sprint("|"))
	for l := first; l <= last; l++ {
		text := strings.TrimRight(m.LineText(l), "\r")
		fmt.Fprintf(b, "%*d %s %s\n", width, l+1, pal.gutter.Sprint("|"), expandTabs(text))
		if l != line {
			continue
		}
		lineStart := m.LineStart(l)
		from := min(sp.Start-lineStart, uint32(len(text)))
		to := min(sp.End, lineStart+uint32(len(text))) - lineStart
		if to < from {
			to = from
		}
		indent := runewidth.StringWidth(expandTabs(text[:from]))
		span := max(runewidth.StringWidth(expandTabs(text[from:to])), 1)
		fmt.Fprintf(b, "%s %s %s%s\n", pad, pal.gutter.Sprint("|"),
			strings.Repeat(" ", indent), pal.caret.Sprint(strings.Repeat("^", span)))
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
