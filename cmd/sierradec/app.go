package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sierradec/internal/config"
	"sierradec/internal/diag"
	"sierradec/internal/logging"
	"sierradec/internal/prof"
	"sierradec/internal/trace"
)

// app carries the settings every command shares. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	cfg        *config.Config
	log        *slog.Logger
	color      bool
	quiet      bool
	timings    bool
	diagFormat string
	maxDiags   int
	stderr     io.Writer

	tracer    trace.Tracer
	traceMode trace.StorageMode
	stopTrace func()
	profiling *prof.Session
}

func (a *app) setup(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	colorFlag, err := pf.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		a.color = true
	case "off":
		a.color = false
	case "auto":
		a.color = isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	color.NoColor = !a.color

	if a.quiet, err = pf.GetBool("quiet"); err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if a.timings, err = pf.GetBool("timings"); err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if a.maxDiags, err = pf.GetInt("max-diagnostics"); err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	format, err := pf.GetString("diag-format")
	if err != nil {
		return fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	a.diagFormat = strings.ToLower(format)
	switch a.diagFormat {
	case "pretty", "short", "json":
	default:
		return fmt.Errorf("unknown diagnostics format %q (expected pretty|short|json)", format)
	}
	a.stderr = cmd.ErrOrStderr()

	levelStr, err := pf.GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	log, err := logging.New(a.stderr, levelStr)
	if err != nil {
		return err
	}
	a.log = log

	cfgFile, err := pf.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(config.LoadOptions{File: cfgFile, StartDir: ".", Flags: cmd.Flags()})
	if err != nil {
		bag := diag.NewBag(1)
		diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOConfig, diag.Location{Path: cfgFile, Stmt: -1}, err.Error()).Emit()
		a.renderDiagnostics(cmd, bag, nil)
		return errReported
	}
	a.cfg = cfg
	if cfg.File != "" {
		log.Debug("config loaded", "file", cfg.File)
	}

	if err := a.setupTracing(cmd); err != nil {
		return err
	}
	if err := a.setupProfiling(cmd); err != nil {
		return err
	}
	ctx := logging.WithLogger(cmd.Context(), log)
	ctx = trace.WithTracer(ctx, a.tracer)
	cmd.SetContext(ctx)
	return nil
}

// close stops the profilers, dumps the trace ring after a failed run and
// releases the tracer.
func (a *app) close(runErr error) {
	w := a.stderr
	if w == nil {
		w = os.Stderr
	}
	if err := a.profiling.Stop(); err != nil {
		fmt.Fprintf(w, "profiling: %v\n", err)
	}
	if a.tracer == nil {
		return
	}
	if runErr != nil && a.traceMode == trace.ModeRing {
		if ring := trace.RingOf(a.tracer); ring != nil && len(ring.Snapshot()) > 0 {
			fmt.Fprintln(w, "trace (most recent events):")
			if err := ring.Dump(w, trace.FormatText); err != nil {
				fmt.Fprintf(w, "trace: dump error: %v\n", err)
			}
		}
	}
	if a.stopTrace != nil {
		a.stopTrace()
	}
}
