package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sierradec/internal/diag"
	"sierradec/internal/logging"
	"sierradec/internal/pipeline"
	"sierradec/internal/types"
)

func newTypesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types [flags] <program.sierra|program.mp>",
		Short: "Print every declared type with its resolved form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			bag := diag.NewBag(a.maxDiags)
			rep := newReporter(bag)
			prog, f, _, err := pipeline.LoadProgram(cmd.Context(), input, openCache(a.cfg, rep, input), logging.FromContext(cmd.Context()), rep)
			if err != nil {
				rep.Report(pipeline.Diagnose(err, input))
				a.renderDiagnostics(cmd, bag, &pipeline.Result{Source: f})
				return errReported
			}
			a.renderDiagnostics(cmd, bag, nil)
			table := types.NewTable(prog)
			return printTypes(cmd.OutOrStdout(), table)
		},
	}
	cmd.Flags().Bool("no-cache", false, "do not read or write the program cache")
	cmd.Flags().String("cache-dir", "", "program cache directory")
	return cmd
}

// printTypes writes one line per declared type: its id, its debug name
// when it has one and the resolved text. Failures are printed inline.
func printTypes(w io.Writer, table *types.Table) error {
	for _, id := range table.IDs() {
		label := id.String()
		if decl, ok := table.Decl(id); ok && decl.DebugName != "" && decl.DebugName != label {
			label += " " + decl.DebugName
		}
		text, err := table.Resolve(id)
		if err != nil {
			text = "<" + err.Error() + ">"
		}
		if _, err := fmt.Fprintf(w, "%s = %s\n", label, text); err != nil {
			return err
		}
	}
	return nil
}
