package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sierradec/internal/diag"
	"sierradec/internal/logging"
	"sierradec/internal/pipeline"
	"sierradec/internal/program"
	"sierradec/internal/sierra"
)

func newConvertCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "convert <program.sierra> -o <program.mp>",
		Short: "Save a parsed program as a msgpack snapshot",
		Long: `convert parses Sierra text once and writes the program model as a msgpack
snapshot. Snapshots load without parsing and are accepted by every command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !sierra.IsSnapshot(output) {
				return fmt.Errorf("snapshot output must end in .mp or .msgpack, got %q", output)
			}
			input := args[0]
			bag := diag.NewBag(a.maxDiags)
			rep := newReporter(bag)
			prog, f, _, err := pipeline.LoadProgram(cmd.Context(), input, nil, logging.FromContext(cmd.Context()), rep)
			if err != nil {
				rep.Report(pipeline.Diagnose(err, input))
				a.renderDiagnostics(cmd, bag, &pipeline.Result{Source: f})
				return errReported
			}
			if err := writeSnapshot(output, prog, input); err != nil {
				return err
			}
			if !a.quiet {
				st := prog.Stats()
				fmt.Fprintf(a.stderr, "wrote %s (%d functions, %d statements)\n", output, st.Funcs, st.Statements)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "snapshot file to write (.mp)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func writeSnapshot(path string, prog *program.Program, sourcePath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	name := tmp.Name()
	werr := program.Encode(tmp, prog, sourcePath)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(name, path)
	}
	if werr != nil {
		_ = os.Remove(name)
		return fmt.Errorf("write snapshot %s: %w", path, werr)
	}
	return nil
}
