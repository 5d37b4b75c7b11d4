package diagfmt

import (
	"encoding/json"
	"io"

	"sierradec/internal/diag"
)

type LocationJSON struct {
	File      string `json:"file,omitempty"`
	Line      uint32 `json:"line,omitempty"`
	Col       uint32 `json:"col,omitempty"`
	Function  string `json:"function,omitempty"`
	Statement *int   `json:"statement,omitempty"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []string     `json:"notes,omitempty"`
}

type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Truncated   bool             `json:"truncated,omitempty"`
}

// BuildJSON converts the bag into its JSON document.
func BuildJSON(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items)), Count: len(items)}
	for i, d := range items {
		if opts.Max > 0 && i >= opts.Max {
			out.Truncated = true
			break
		}
		loc := LocationJSON{
			File:     formatPath(d.Loc.Path, opts.PathMode, opts.BaseDir),
			Line:     d.Loc.Pos.Line,
			Col:      d.Loc.Pos.Col,
			Function: d.Loc.Func,
		}
		if d.Loc.Stmt >= 0 && d.Loc.Func != "" {
			stmt := d.Loc.Stmt
			loc.Statement = &stmt
		}
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: loc,
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				dj.Notes = append(dj.Notes, n.Msg)
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	return out
}

// JSON writes the bag as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildJSON(bag, opts))
}
