package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sierradec/internal/diag"
	"sierradec/internal/diagfmt"
	"sierradec/internal/pipeline"
	"sierradec/internal/source"
)

// newReporter collects stage reports into bag, dropping exact repeats
// such as a cache directory failing on both read and write.
func newReporter(bag *diag.Bag) diag.Reporter {
	return diag.NewDedupReporter(diag.BagReporter{Bag: bag})
}

// renderDiagnostics prints bag on stderr in the format chosen with
// --diag-format. Stdout may carry the decompiled text, so it is never used.
func (a *app) renderDiagnostics(cmd *cobra.Command, bag *diag.Bag, res *pipeline.Result) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	bag.Dedup()
	bag.Sort()
	w := cmd.ErrOrStderr()
	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = ""
	}

	switch a.diagFormat {
	case "short":
		if out := diag.FormatShort(bag.Items(), true); out != "" {
			fmt.Fprintln(w, out)
		}
	case "json":
		if err := diagfmt.JSON(w, bag, diagfmt.JSONOpts{BaseDir: baseDir, IncludeNotes: true}); err != nil {
			fmt.Fprintf(w, "failed to format diagnostics: %v\n", err)
		}
	default:
		diagfmt.Pretty(w, bag, diagfmt.PrettyOpts{
			Color:     a.color,
			BaseDir:   baseDir,
			ShowNotes: true,
			Sources:   sourceLookup(res),
		})
		if dropped := bag.Dropped(); dropped > 0 {
			fmt.Fprintf(w, "... and %d more (raise --max-diagnostics to see them)\n", dropped)
		}
		if summary := diagfmt.Summary(bag); summary != "" && !a.quiet {
			fmt.Fprintln(w, summary)
		}
	}
}

func sourceLookup(res *pipeline.Result) diagfmt.SourceLookup {
	if res == nil || res.Source == nil {
		return nil
	}
	f := res.Source
	return func(path string) *source.File {
		if filepath.ToSlash(filepath.Clean(path)) == f.Path {
			return f
		}
		return nil
	}
}
