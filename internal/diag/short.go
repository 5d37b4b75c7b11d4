package diag

import (
	"path/filepath"
	"slices"
	"strings"
)

// FormatShort renders one line per diagnostic, sorted:
//
//	ERROR DEC3003 prog.sierra (f_4, statement 0): control-flow cycle: ...
//
// Paths are reduced to their base name so output is stable across
// machines. Notes follow as indented "note:" lines when includeNotes is set.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, compareDiagnostics)

	lines := make([]string, 0, len(sorted))
	for _, d := range sorted {
		loc := d.Loc
		if loc.Path != "" {
			loc.Path = filepath.Base(loc.Path)
		}
		line := d.Severity.String() + " " + d.Code.ID()
		if where := loc.String(); where != "" {
			line += " " + where
		}
		lines = append(lines, line+": "+d.Message)
		if includeNotes {
			for _, n := range d.Notes {
				lines = append(lines, "  note: "+n.Msg)
			}
		}
	}
	return strings.Join(lines, "\n")
}
