package decompile

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sierradec/internal/program"
	"sierradec/internal/trace"
)

// FuncResult is the outcome of one function.
type FuncResult struct {
	Func      program.FuncID
	DebugName string
	Index     int
	Text      string
	Err       error
	Steps     int
	Elapsed   time.Duration
}

// Result is the outcome of a whole program.
type Result struct {
	Text   string
	Funcs  []FuncResult
	Failed int
}

// Errors returns the failures in declared order.
func (r *Result) Errors() []error {
	var out []error
	for i := range r.Funcs {
		if r.Funcs[i].Err != nil {
			out = append(out, r.Funcs[i].Err)
		}
	}
	return out
}

// Function decompiles fn into its own text block.
func (d *Decompiler) Function(ctx context.Context, fn *program.Function) (res FuncResult) {
	start := time.Now()
	res = FuncResult{Func: fn.ID, DebugName: fn.DebugName}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFunction, FuncName(fn.ID), trace.CurrentSpan(ctx).SpanID)
	defer func() {
		res.Elapsed = time.Since(start)
		detail := "ok"
		if res.Err != nil {
			detail = res.Err.Error()
		}
		span.WithExtra("steps", strconv.Itoa(res.Steps)).End(detail)
	}()

	sig, err := d.signature(fn)
	if err != nil {
		res.Err = &FuncError{Func: fn.ID, Stmt: program.NoStatement, Err: err}
		return res
	}

	w := &walker{d: d, fn: fn, maxSteps: d.opts.MaxSteps}
	if fn.DebugName != "" {
		w.out.WriteString("// " + fn.DebugName + "\n")
	}
	w.out.WriteString(sig)
	params := make([]program.VarID, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Var
	}
	if err := w.run(ctx, params); err != nil {
		res.Err = err
		res.Steps = w.steps
		var fe *FuncError
		if errors.As(err, &fe) && fe.Stmt != program.NoStatement {
			trace.Point(tracer, trace.ScopeStatement, "statement "+strconv.Itoa(int(fe.Stmt)), fe.Err.Error(), span.ID())
		}
		return res
	}
	w.out.WriteString("}\n")
	res.Text = w.out.String()
	res.Steps = w.steps
	return res
}

// signature renders "pub fn f_<id>(v0: T, ...) -> (R, ...) {".
func (d *Decompiler) signature(fn *program.Function) (string, error) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		ty, err := d.types.Resolve(p.Type)
		if err != nil {
			return "", err
		}
		params[i] = p.Var.Name() + ": " + ty
	}
	rets := make([]string, len(fn.RetTypes))
	for i, t := range fn.RetTypes {
		ty, err := d.types.Resolve(t)
		if err != nil {
			return "", err
		}
		rets[i] = ty
	}
	return "pub fn " + FuncName(fn.ID) + "(" + strings.Join(params, ", ") + ") -> (" + strings.Join(rets, ", ") + ") {\n", nil
}

// Program decompiles every function in declared order.
//
// Without KeepGoing the first failure in declared order is returned and no
// text is produced. With KeepGoing every function is attempted, failures are
// replaced by a comment line and reported through Result.Failed.
// The text is identical for any Jobs value.
func (d *Decompiler) Program(ctx context.Context) (*Result, error) {
	funcs := d.prog.Funcs
	results := make([]FuncResult, len(funcs))
	log := d.opts.Logger

	// lowest failed index so far; later functions cannot change the outcome
	var firstFailed atomic.Int64
	firstFailed.Store(int64(len(funcs)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Jobs)
	for i := range funcs {
		if !d.opts.KeepGoing && int64(i) > firstFailed.Load() {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !d.opts.KeepGoing && int64(i) > firstFailed.Load() {
				return nil
			}
			res := d.Function(gctx, &funcs[i])
			res.Index = i
			results[i] = res
			if res.Err != nil {
				log.Debug("function failed", "func", FuncName(res.Func), "err", res.Err)
				for {
					cur := firstFailed.Load()
					if int64(i) >= cur || firstFailed.CompareAndSwap(cur, int64(i)) {
						break
					}
				}
			} else {
				log.Debug("function decompiled", "func", FuncName(res.Func), "steps", res.Steps, "elapsed", res.Elapsed)
			}
			if d.opts.OnFunc != nil {
				d.opts.OnFunc(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Result{Funcs: results}
	blocks := make([]string, 0, len(results))
	for i := range results {
		r := &results[i]
		if r.Err == nil {
			blocks = append(blocks, r.Text)
			continue
		}
		out.Failed++
		if !d.opts.KeepGoing {
			return nil, r.Err
		}
		blocks = append(blocks, "// "+r.Err.Error()+"\n")
	}
	out.Text = strings.Join(blocks, "\n")
	return out, nil
}
