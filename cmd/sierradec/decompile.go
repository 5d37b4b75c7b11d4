package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"sierradec/internal/cache"
	"sierradec/internal/config"
	"sierradec/internal/decompile"
	"sierradec/internal/diag"
	"sierradec/internal/logging"
	"sierradec/internal/observ"
	"sierradec/internal/pipeline"
	"sierradec/internal/trace"
)

// addDecompileFlags registers the flags shared by the root command and
// "decompile". Only flags the user sets override the config file.
func addDecompileFlags(fs *pflag.FlagSet) {
	fs.StringP("output", "o", config.DefaultOutput, `output file ("-" for stdout)`)
	fs.Int("indent", config.DefaultIndent, "spaces per nesting level")
	fs.IntP("jobs", "j", 0, "functions decompiled in parallel (0 = GOMAXPROCS)")
	fs.Bool("keep-going", false, "replace failing functions with a comment instead of aborting")
	fs.Int("max-steps", config.DefaultMaxSteps, "statement visits allowed per function")
	fs.Bool("no-cache", false, "do not read or write the program cache")
	fs.String("cache-dir", "", "program cache directory (default $XDG_CACHE_HOME/sierradec)")
	fs.String("ui", config.UIAuto, "progress UI mode (auto|on|off)")
}

func newDecompileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompile [flags] <program.sierra|program.mp>",
		Short: "Write reconstructed pseudo-source for every function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompile(cmd, a, args[0])
		},
	}
	addDecompileFlags(cmd.Flags())
	return cmd
}

func runDecompile(cmd *cobra.Command, a *app, input string) error {
	cfg := a.cfg
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	bag := diag.NewBag(a.maxDiags)
	rep := newReporter(bag)
	timer := observ.NewTimer()

	req := pipeline.Request{
		Input:  input,
		Output: cfg.Output.Path,
		Stdout: cmd.OutOrStdout(),
		Decompile: decompile.Options{
			Indent:    cfg.Output.Indent,
			Jobs:      cfg.Decompile.Jobs,
			KeepGoing: cfg.Decompile.KeepGoing,
			MaxSteps:  cfg.Decompile.MaxSteps,
		},
		Cache:    openCache(cfg, rep, input),
		Logger:   log,
		Reporter: rep,
		Timer:    timer,
	}

	mode, err := readUIMode(cfg.UI)
	if err != nil {
		return err
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "decompile "+filepath.Base(input))
	var res *pipeline.Result
	if !a.quiet && shouldUseTUI(mode) {
		res, err = runDecompileWithUI(ctx, filepath.Base(input), req, a.stderr)
	} else {
		res, err = pipeline.Run(ctx, req)
	}
	if err != nil {
		span.End(err.Error())
	} else {
		span.End("")
	}

	if a.timings {
		if a.diagFormat == "json" {
			bag.Add(pipeline.TimingDiagnostic(timer, input))
		} else {
			fmt.Fprint(a.stderr, timer.Summary())
		}
	}
	a.renderDiagnostics(cmd, bag, res)

	if err != nil {
		var partial *pipeline.PartialError
		if errors.As(err, &partial) && !a.quiet {
			fmt.Fprintf(a.stderr, "%v; output written to %s\n", partial, cfg.Output.Path)
		}
		return errReported
	}
	if !a.quiet && cfg.Output.Path != "-" {
		fmt.Fprintf(a.stderr, "wrote %d functions to %s\n", len(res.Output.Funcs), cfg.Output.Path)
	}
	return nil
}

// openCache returns nil when caching is off or the directory is unusable;
// the latter is reported as a warning.
func openCache(cfg *config.Config, rep diag.Reporter, input string) *cache.DiskCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	c, err := cache.Open(cfg.Cache.Dir)
	if err != nil {
		diag.ReportWarning(rep, diag.IOCache, diag.Location{Path: input, Stmt: -1}, err.Error()).
			WithNote("continuing without the program cache").
			Emit()
		return nil
	}
	return c
}
