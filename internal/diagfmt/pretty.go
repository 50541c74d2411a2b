package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"formula/internal/diag"
	"formula/internal/source"
)

type palette struct {
	sev      map[diag.Severity]*color.Color
	code     *color.Color
	location *color.Color
	gutter   *color.Color
	note     *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   mk(color.FgRed, color.Bold),
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevInfo:    mk(color.FgCyan, color.Bold),
		},
		code:     mk(color.Bold),
		location: mk(color.FgWhite, color.Bold),
		gutter:   mk(color.FgBlue),
		note:     mk(color.FgCyan),
	}
}

// Pretty writes diagnostics in the usual compiler layout:
//
//	test:1:5: ERROR SYN2003: invalid type label "numbr"
//	  1 | abs(numbr)
//	    |     ^~~~~
//
// Items are printed in bag order; callers sort first when they want
// positional order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	items := bag.Items()
	for _, d := range items[:limit(len(items), opts.Max)] {
		sev := p.sev[d.Severity]
		if sev == nil {
			sev = p.code
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.location.Sprint(position(fs, d.Primary, opts.PathMode, opts.BaseDir)),
			sev.Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message)
		writeExcerpt(w, fs, d.Primary, p, sev)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"),
				position(fs, n.Span, opts.PathMode, opts.BaseDir), n.Msg)
		}
	}
}

func position(fs *source.FileSet, sp source.Span, mode PathMode, baseDir string) string {
	f := fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f.Path, mode, baseDir), start.Line, start.Col)
}

// writeExcerpt prints the first line of sp with a caret underline. Columns
// are measured in display cells so wide characters line up.
func writeExcerpt(w io.Writer, fs *source.FileSet, sp source.Span, p palette, mark *color.Color) {
	f := fs.Get(sp.File)
	if f == nil {
		return
	}
	start, end := fs.Resolve(sp)
	line := f.Line(start.Line)
	if line == "" && len(f.Content) == 0 {
		return
	}
	lineNo := fmt.Sprint(start.Line)
	pad := strings.Repeat(" ", len(lineNo))

	startCol := min(int(start.Col)-1, len(line))
	endCol := len(line)
	if end.Line == start.Line {
		endCol = min(int(end.Col)-1, len(line))
	}
	lead := runewidth.StringWidth(line[:startCol])
	width := max(runewidth.StringWidth(line[startCol:max(endCol, startCol)]), 1)

	fmt.Fprintf(w, "  %s %s %s\n", p.gutter.Sprint(lineNo), p.gutter.Sprint("|"), line)
	fmt.Fprintf(w, "  %s %s %s%s\n", pad, p.gutter.Sprint("|"), strings.Repeat(" ", lead),
		mark.Sprint("^"+strings.Repeat("~", width-1)))
}
