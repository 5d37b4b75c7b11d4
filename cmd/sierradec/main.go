package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sierradec/internal/version"
)

// errReported means the failure was already printed as diagnostics.
var errReported = errors.New("reported")

// main builds the command tree, runs it under a context cancelled by
// Ctrl-C and exits with status 1 on any error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	a := &app{}
	root := newRootCmd(a)
	err := root.ExecuteContext(ctx)
	a.close(err)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sierradec [flags] <program.sierra>",
		Short: "Decompile Sierra programs into readable pseudo-source",
		Long: `sierradec turns a Sierra program (the textual IR of Cairo, or a msgpack
snapshot of one) into indented pseudo-source, one function at a time.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version.Current().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runDecompile(cmd, a, args[0])
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: nearest sierradec.toml)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("log-level", "warn", "log level (debug|info|warn|error)")
	pf.String("diag-format", "pretty", "diagnostics format (pretty|short|json)")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show (0 = all)")
	pf.String("trace", "", "trace output file (\"-\" for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "ring", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the trace ring buffer")
	pf.Duration("trace-heartbeat", 0, "emit a trace heartbeat at this interval (0 disables)")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime execution trace to file")

	addDecompileFlags(root.Flags())

	root.AddCommand(newDecompileCmd(a))
	root.AddCommand(newTypesCmd(a))
	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newCleanCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
