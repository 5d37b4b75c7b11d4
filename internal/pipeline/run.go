// Package pipeline drives a decompilation run: load the program, build the
// type and libfunc catalogs, decompile every function and write the text.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"sierradec/internal/cache"
	"sierradec/internal/decompile"
	"sierradec/internal/diag"
	"sierradec/internal/logging"
	"sierradec/internal/observ"
	"sierradec/internal/ops"
	"sierradec/internal/program"
	"sierradec/internal/sierra"
	"sierradec/internal/source"
	"sierradec/internal/trace"
	"sierradec/internal/types"
)

// Request configures a run.
type Request struct {
	Input string
	// Output is the destination path; "-" writes to Stdout and "" skips
	// the write stage.
	Output string
	Stdout io.Writer
	// Decompile carries indent, jobs, keep-going and the step limit.
	// Logger and OnFunc are set by Run.
	Decompile decompile.Options
	Cache     *cache.DiskCache // nil disables caching
	Logger    *slog.Logger
	Progress  ProgressSink
	Reporter  diag.Reporter
	Timer     *observ.Timer
}

// Result is everything a run produced, also on failure as far as it got.
type Result struct {
	Program  *program.Program
	Source   *source.File // nil for snapshots
	CacheHit bool
	Output   *decompile.Result
	Timings  Timings
}

type runner struct {
	req   Request
	log   *slog.Logger
	rep   diag.Reporter
	timer *observ.Timer
	res   *Result
}

// Run executes every stage. Fatal errors are reported through
// req.Reporter and returned; in keep-going mode a run with failed functions
// writes its output and returns a *PartialError.
func Run(ctx context.Context, req Request) (*Result, error) {
	r := newRunner(req)

	var (
		table   *types.Table
		catalog *ops.Catalog
	)
	err := r.stage(ctx, StageLoad, func(ctx context.Context) (string, error) {
		p, f, hit, err := LoadProgram(ctx, req.Input, req.Cache, r.log, r.rep)
		// the source is kept on failure for the diagnostic preview
		r.res.Source = f
		if err != nil {
			return "", err
		}
		r.res.Program, r.res.CacheHit = p, hit
		if hit {
			emit(req.Progress, Event{Stage: StageLoad, Status: StatusCached})
		}
		st := p.Stats()
		return fmt.Sprintf("%d types, %d libfuncs, %d statements, %d functions", st.Types, st.Libfuncs, st.Statements, st.Funcs), nil
	})
	if err != nil {
		return r.res, r.fail(err)
	}

	p := r.res.Program
	_ = r.stage(ctx, StageCatalog, func(context.Context) (string, error) {
		table = types.NewTable(p)
		table.EnableMemo()
		catalog = ops.NewCatalog(p, table)
		// lookup failures only matter to the functions that use the libfunc
		if err := catalog.Preload(); err != nil {
			r.log.Debug("libfunc lookup failed", "err", err)
		}
		return strconv.Itoa(catalog.Len()) + " libfuncs", nil
	})

	for i := range p.Funcs {
		emit(req.Progress, Event{Func: decompile.FuncName(p.Funcs[i].ID), Stage: StageDecompile, Status: StatusQueued})
	}
	err = r.stage(ctx, StageDecompile, func(ctx context.Context) (string, error) {
		opts := req.Decompile
		opts.Logger = r.log
		opts.OnFunc = r.onFunc
		out, err := decompile.New(p, table, catalog, opts).Program(ctx)
		if err != nil {
			return "", err
		}
		r.res.Output = out
		return fmt.Sprintf("%d functions, %d failed", len(out.Funcs), out.Failed), nil
	})
	if err != nil {
		return r.res, r.fail(err)
	}
	for _, ferr := range r.res.Output.Errors() {
		r.rep.Report(Diagnose(ferr, req.Input))
	}

	if req.Output != "" {
		err = r.stage(ctx, StageWrite, func(context.Context) (string, error) {
			if err := writeOutput(req.Output, req.Stdout, r.res.Output.Text); err != nil {
				return "", err
			}
			return req.Output, nil
		})
		if err != nil {
			return r.res, r.fail(err)
		}
	}

	if n := r.res.Output.Failed; n > 0 {
		return r.res, &PartialError{Failed: n, Total: len(r.res.Output.Funcs)}
	}
	return r.res, nil
}

func newRunner(req Request) *runner {
	r := &runner{req: req, log: req.Logger, rep: req.Reporter, timer: req.Timer, res: &Result{}}
	if r.log == nil {
		r.log = logging.Discard()
	}
	if r.rep == nil {
		r.rep = diag.NopReporter{}
	}
	if r.timer == nil {
		r.timer = observ.NewTimer()
	}
	return r
}

// stage wraps fn with a trace span, a timer phase and progress events.
// fn returns a short note describing what it did.
func (r *runner) stage(ctx context.Context, stage Stage, fn func(context.Context) (string, error)) error {
	ctx, span := trace.Start(ctx, trace.ScopeStage, string(stage))
	idx := r.timer.Begin(string(stage))
	start := time.Now()
	emit(r.req.Progress, Event{Stage: stage, Status: StatusWorking})

	note, err := fn(ctx)
	elapsed := time.Since(start)
	r.res.Timings.Set(stage, elapsed)
	if err != nil {
		r.timer.End(idx, "failed")
		span.End(err.Error())
		emit(r.req.Progress, Event{Stage: stage, Status: StatusError, Err: err, Elapsed: elapsed})
		return err
	}
	r.timer.End(idx, note)
	span.End(note)
	r.log.Debug("stage finished", "stage", stage, "elapsed", elapsed, "note", note)
	emit(r.req.Progress, Event{Stage: stage, Status: StatusDone, Elapsed: elapsed})
	return nil
}

func (r *runner) onFunc(fr decompile.FuncResult) {
	ev := Event{Func: decompile.FuncName(fr.Func), Stage: StageDecompile, Status: StatusDone, Elapsed: fr.Elapsed}
	if fr.Err != nil {
		ev.Status, ev.Err = StatusError, fr.Err
	}
	emit(r.req.Progress, ev)
}

func (r *runner) fail(err error) error {
	r.rep.Report(Diagnose(err, r.req.Input))
	return err
}

// LoadProgram reads input as Sierra text or a snapshot. Text inputs go
// through the cache when c is not nil; cache problems are reported as
// warnings and never fail the load.
func LoadProgram(ctx context.Context, input string, c *cache.DiskCache, log *slog.Logger, rep diag.Reporter) (*program.Program, *source.File, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, false, err
	}
	if log == nil {
		log = logging.Discard()
	}
	if rep == nil {
		rep = diag.NopReporter{}
	}
	if sierra.IsSnapshot(input) {
		p, _, err := sierra.Load(input)
		return p, nil, false, err
	}

	f, err := source.Load(input)
	if err != nil {
		return nil, nil, false, &sierra.LoadError{Path: input, Kind: sierra.ErrRead, Msg: err.Error(), Err: err}
	}
	key := cache.Sum(f.Content)
	if c != nil {
		p, ok, err := c.Get(key)
		switch {
		case err != nil:
			rep.Report(Diagnose(&cacheError{op: "read", err: err}, input))
		case ok:
			log.Debug("program cache hit", "input", input, "key", key.String())
			trace.Point(trace.FromContext(ctx), trace.ScopeStage, "cache-hit", key.String(), trace.CurrentSpan(ctx).SpanID)
			return p, f, true, nil
		}
	}

	p, err := sierra.Parse(f)
	if err != nil {
		return nil, f, false, err
	}
	if c != nil {
		if err := c.Put(key, p, input); err != nil {
			rep.Report(Diagnose(&cacheError{op: "write", err: err}, input))
		}
	}
	return p, f, false, nil
}
