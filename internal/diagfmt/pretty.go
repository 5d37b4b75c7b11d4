package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sierradec/internal/diag"
)

type palette struct {
	err, warn, info, code, loc, note, gutter, caret *color.Color
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
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		code:   mk(color.FgMagenta),
		loc:    mk(color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
	}
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

// Pretty writes each diagnostic as
//
//	<path>:<line>:<col>: ERROR DEC3001: <message>
//	   3 | <source line>
//	     |       ^
//	  note: <note>
//
// The preview appears only for positioned diagnostics with a known source.
// Callers sort the bag beforehand when order matters.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		loc := d.Loc
		loc.Path = formatPath(loc.Path, opts.PathMode, opts.BaseDir)
		if where := loc.String(); where != "" {
			fmt.Fprintf(w, "%s: ", p.loc.Sprint(where))
		}
		fmt.Fprintf(w, "%s %s: %s\n", p.severity(d.Severity).Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)
		if opts.Sources != nil && d.Loc.Pos.Line > 0 {
			writePreview(w, p, opts, d)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			}
		}
	}
}

func writePreview(w io.Writer, p palette, opts PrettyOpts, d diag.Diagnostic) {
	f := opts.Sources(d.Loc.Path)
	if f == nil {
		return
	}
	line := strings.ReplaceAll(f.GetLine(d.Loc.Pos.Line), "\t", " ")
	if line == "" {
		return
	}
	col := int(d.Loc.Pos.Col) - 1
	col = max(0, min(col, len(line)))
	offset := runewidth.StringWidth(line[:col])
	if opts.Width > 0 && runewidth.StringWidth(line) > opts.Width {
		line = runewidth.Truncate(line, opts.Width, "...")
	}
	num := strconv.FormatUint(uint64(d.Loc.Pos.Line), 10)
	pad := strings.Repeat(" ", len(num))
	fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), line)
	fmt.Fprintf(w, " %s %s %s%s\n", pad, p.gutter.Sprint("|"), strings.Repeat(" ", offset), p.caret.Sprint("^"))
}

// Summary returns "N errors, M warnings" for the bag, or "" when empty.
func Summary(bag *diag.Bag) string {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, plural(errs, "error"))
	}
	if warns > 0 {
		parts = append(parts, plural(warns, "warning"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
