package decompile

import (
	"context"
	"maps"
	"strings"

	"sierradec/internal/ops"
	"sierradec/internal/program"
)

// pathState is what one control-flow path has seen so far. A linear chain
// shares one state; each arm of a branch gets its own copy.
type pathState struct {
	visited  map[program.StatementIdx]struct{}
	declared map[program.VarID]struct{}
}

func (ps *pathState) fork() *pathState {
	return &pathState{
		visited:  maps.Clone(ps.visited),
		declared: maps.Clone(ps.declared),
	}
}

func (ps *pathState) isDeclared(v program.VarID) bool {
	_, ok := ps.declared[v]
	return ok
}

func (ps *pathState) declare(vars ...program.VarID) {
	for _, v := range vars {
		ps.declared[v] = struct{}{}
	}
}

// frame is one unit of pending work: either visit a statement or emit a
// fixed chunk of text.
type frame struct {
	visit bool
	idx   program.StatementIdx
	from  program.StatementIdx
	depth int
	path  *pathState
	text  string
}

// walker turns one function body into indented text. It owns its buffer and
// is never shared between goroutines.
type walker struct {
	d        *Decompiler
	fn       *program.Function
	out      strings.Builder
	stack    []frame
	steps    int
	maxSteps int
}

func (w *walker) indent(depth int) string {
	return strings.Repeat(" ", w.d.opts.Indent*depth)
}

// line renders one line at depth.
func (w *walker) line(depth int, text string) string {
	return w.indent(depth) + text + "\n"
}

func (w *walker) push(f frame) {
	w.stack = append(w.stack, f)
}

// run walks from the function entry at depth 1 until every path returned.
func (w *walker) run(ctx context.Context, params []program.VarID) error {
	root := &pathState{
		visited:  make(map[program.StatementIdx]struct{}),
		declared: make(map[program.VarID]struct{}, len(params)),
	}
	root.declare(params...)
	w.push(frame{visit: true, idx: w.fn.Entry, from: program.NoStatement, depth: 1, path: root})

	for len(w.stack) > 0 {
		f := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		if !f.visit {
			w.out.WriteString(f.text)
			continue
		}
		w.steps++
		if w.steps > w.maxSteps {
			return &FuncError{Func: w.fn.ID, Stmt: f.idx, Err: &LimitError{Steps: w.maxSteps}}
		}
		if w.steps&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := w.step(f); err != nil {
			return &FuncError{Func: w.fn.ID, Stmt: f.idx, Err: err}
		}
	}
	return nil
}

// step handles one statement. On error nothing has been written for it.
func (w *walker) step(f frame) error {
	st, ok := w.d.prog.Statement(f.idx)
	if !ok {
		return invariantf("branch target %d is outside the statement list (%d statements)", f.idx, len(w.d.prog.Statements))
	}
	if _, seen := f.path.visited[f.idx]; seen {
		return &CycleError{From: f.from, Target: f.idx}
	}
	f.path.visited[f.idx] = struct{}{}

	if st.Kind == program.StmtReturn {
		w.out.WriteString(w.line(f.depth, renderReturn(st.Return)))
		return nil
	}

	inv := &st.Invocation
	op, err := w.d.ops.Operator(inv.Libfunc)
	if err != nil {
		return err
	}
	if !op.Kind.Supported() {
		return &UnsupportedOperatorError{Libfunc: op.ID, Name: op.String(), Kind: op.Kind, Reason: op.Reason}
	}
	if err := checkShape(inv, op); err != nil {
		return err
	}

	if op.Kind == ops.KindCheckedArith {
		return w.checkedArith(f, inv, op)
	}

	if !op.Kind.IsNoOp() {
		r := renderer{w: w, path: f.path, depth: f.depth}
		text, err := r.effect(inv, op)
		if err != nil {
			return err
		}
		w.out.WriteString(text)
		f.path.declare(inv.Branches[0].Results...)
	}
	br := &inv.Branches[0]
	w.push(frame{visit: true, idx: br.Next(f.idx), from: f.idx, depth: f.depth, path: f.path})
	return nil
}

// checkedArith emits the destructuring binding and schedules both arms:
//
//	let (vS, vS_overflowed): (T, bool) = vL + vR;
//	if !vS_overflowed {
//	    <arm 0>
//	} else {
//	    <arm 1>
//	}
func (w *walker) checkedArith(f frame, inv *program.Invocation, op *ops.Operator) error {
	if len(inv.Args) != 3 {
		return invariantf("%s takes 3 arguments (range check, lhs, rhs), got %d", op, len(inv.Args))
	}
	r := renderer{w: w, path: f.path, depth: f.depth}
	head, arms, err := r.checkedArith(inv, op)
	if err != nil {
		return err
	}
	w.out.WriteString(head)

	ok := inv.Branches[0]
	overflow := inv.Branches[1]
	okPath := f.path.fork()
	okPath.declare(ok.Results...)
	overflowPath := f.path.fork()
	overflowPath.declare(ok.Results[1])
	overflowPath.declare(overflow.Results...)

	// LIFO: the ok arm is popped first
	w.push(frame{text: w.line(f.depth, "}")})
	w.push(frame{visit: true, idx: overflow.Next(f.idx), from: f.idx, depth: f.depth + 1, path: overflowPath})
	w.push(frame{text: arms[1]})
	w.push(frame{text: w.line(f.depth, "} else {")})
	w.push(frame{visit: true, idx: ok.Next(f.idx), from: f.idx, depth: f.depth + 1, path: okPath})
	w.push(frame{text: arms[0]})
	return nil
}

// checkShape verifies the statement against the operator signature.
func checkShape(inv *program.Invocation, op *ops.Operator) error {
	if len(inv.Branches) != len(op.Branches) {
		return invariantf("%s has %d branches, signature has %d", op, len(inv.Branches), len(op.Branches))
	}
	for i := range inv.Branches {
		got, want := len(inv.Branches[i].Results), len(op.Branches[i].Results)
		if got != want {
			return invariantf("%s branch %d binds %d results, signature has %d", op, i, got, want)
		}
	}
	return nil
}
