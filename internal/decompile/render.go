package decompile

import (
	"strconv"
	"strings"

	"sierradec/internal/ops"
	"sierradec/internal/program"
	"sierradec/internal/types"
)

// renderer builds the text of a single statement. Nothing reaches the
// function buffer until the whole statement rendered without error.
type renderer struct {
	w     *walker
	path  *pathState
	depth int
	b     strings.Builder
	// pending holds ids bound earlier in this statement.
	pending map[program.VarID]struct{}
}

func (r *renderer) typ(id types.TypeID) (string, error) {
	return r.w.d.types.Resolve(id)
}

func (r *renderer) line(depth int, text string) {
	r.b.WriteString(r.w.line(depth, text))
}

func (r *renderer) declared(v program.VarID) bool {
	if r.path.isDeclared(v) {
		return true
	}
	_, ok := r.pending[v]
	return ok
}

func (r *renderer) markPending(vars ...program.VarID) {
	if r.pending == nil {
		r.pending = make(map[program.VarID]struct{}, len(vars))
	}
	for _, v := range vars {
		r.pending[v] = struct{}{}
	}
}

// bind emits "let v: T = expr;" or, for an id already bound on this path,
// "v = expr;".
func (r *renderer) bind(depth int, v program.VarID, ty, expr string, mut bool) {
	if r.declared(v) {
		r.line(depth, v.Name()+" = "+expr+";")
		return
	}
	kw := "let "
	if mut {
		kw = "let mut "
	}
	r.line(depth, kw+v.Name()+": "+ty+" = "+expr+";")
	r.markPending(v)
}

// bindTuple emits "let (a, b): (A, B) = expr;".
func (r *renderer) bindTuple(depth int, vars []program.VarID, tys []string, expr string) {
	names := varNames(vars)
	all := true
	for _, v := range vars {
		if !r.declared(v) {
			all = false
			break
		}
	}
	if all && len(vars) > 0 {
		r.line(depth, "("+names+") = "+expr+";")
		return
	}
	r.line(depth, "let ("+names+"): ("+strings.Join(tys, ", ")+") = "+expr+";")
	r.markPending(vars...)
}

// alias binds dst to src unless they are the same variable.
func (r *renderer) alias(depth int, dst, src program.VarID, ty types.TypeID, mut bool) error {
	if dst == src {
		return nil
	}
	text, err := r.typ(ty)
	if err != nil {
		return err
	}
	r.bind(depth, dst, text, src.Name(), mut)
	return nil
}

// passThrough binds an arm's range-check result. The arm opens a new block,
// so an id equal to src is re-declared there with its type.
func (r *renderer) passThrough(depth int, dst, src program.VarID, ty types.TypeID) error {
	if dst != src {
		return r.alias(depth, dst, src, ty, false)
	}
	text, err := r.typ(ty)
	if err != nil {
		return err
	}
	r.line(depth, "let "+dst.Name()+": "+text+" = "+src.Name()+";")
	return nil
}

func (r *renderer) effect(inv *program.Invocation, op *ops.Operator) (string, error) {
	results := inv.Branches[0].Results
	sig := op.Branches[0].Results
	d := r.depth

	switch op.Kind {
	case ops.KindArrayNew:
		if err := wantArgs(op, inv, 0); err != nil {
			return "", err
		}
		ty, err := r.typ(sig[0])
		if err != nil {
			return "", err
		}
		r.bind(d, results[0], ty, "Array::new()", true)

	case ops.KindArrayAppend:
		if err := wantArgs(op, inv, 2); err != nil {
			return "", err
		}
		arr, elem := inv.Args[0], inv.Args[1]
		r.line(d, arr.Name()+".append("+elem.Name()+");")
		if err := r.alias(d, results[0], arr, sig[0], true); err != nil {
			return "", err
		}

	case ops.KindStructConstruct:
		if err := wantArgs(op, inv, op.Arity); err != nil {
			return "", err
		}
		ty, err := r.typ(sig[0])
		if err != nil {
			return "", err
		}
		head := "let " + results[0].Name() + ": " + ty + " = Struct {"
		if r.declared(results[0]) {
			head = results[0].Name() + " = Struct {"
		}
		r.line(d, head)
		for i, a := range inv.Args {
			r.line(d+1, "field_"+strconv.Itoa(i)+": "+a.Name()+",")
		}
		r.line(d, "};")
		r.markPending(results[0])

	case ops.KindStructDeconstruct:
		if err := wantArgs(op, inv, 1); err != nil {
			return "", err
		}
		tys, err := r.typs(sig)
		if err != nil {
			return "", err
		}
		r.bindTuple(d, results, tys, inv.Args[0].Name())

	case ops.KindEnumInit:
		if err := wantArgs(op, inv, op.Arity); err != nil {
			return "", err
		}
		ty, err := r.typ(sig[0])
		if err != nil {
			return "", err
		}
		expr := "Enum::Variant" + strconv.Itoa(op.Variant) + "(" + varNames(inv.Args) + ")"
		r.bind(d, results[0], ty, expr, false)

	case ops.KindConst:
		if err := wantArgs(op, inv, 0); err != nil {
			return "", err
		}
		ty, err := r.typ(sig[0])
		if err != nil {
			return "", err
		}
		r.bind(d, results[0], ty, op.Value, false)

	case ops.KindDrop:
		if err := wantArgs(op, inv, 1); err != nil {
			return "", err
		}
		r.line(d, "drop("+inv.Args[0].Name()+");")

	case ops.KindDup:
		if err := wantArgs(op, inv, 1); err != nil {
			return "", err
		}
		for i, v := range results {
			if err := r.alias(d, v, inv.Args[0], sig[i], false); err != nil {
				return "", err
			}
		}

	case ops.KindRename:
		if err := wantArgs(op, inv, 1); err != nil {
			return "", err
		}
		if err := r.alias(d, results[0], inv.Args[0], sig[0], false); err != nil {
			return "", err
		}

	case ops.KindSnapshotTake:
		if err := wantArgs(op, inv, 1); err != nil {
			return "", err
		}
		ty, err := r.typ(sig[1])
		if err != nil {
			return "", err
		}
		src := inv.Args[0]
		r.bind(d, results[1], ty, "@"+src.Name(), false)
		if err := r.alias(d, results[0], src, sig[0], false); err != nil {
			return "", err
		}

	case ops.KindFunctionCall:
		if err := wantArgs(op, inv, op.Arity); err != nil {
			return "", err
		}
		expr := FuncName(op.Callee) + "(" + varNames(inv.Args) + ")"
		switch len(results) {
		case 0:
			r.line(d, expr+";")
		case 1:
			ty, err := r.typ(sig[0])
			if err != nil {
				return "", err
			}
			r.bind(d, results[0], ty, expr, false)
		default:
			tys, err := r.typs(sig)
			if err != nil {
				return "", err
			}
			r.bindTuple(d, results, tys, expr)
		}

	default:
		return "", &UnsupportedOperatorError{Libfunc: op.ID, Name: op.String(), Kind: op.Kind}
	}
	return r.b.String(), nil
}

// checkedArith renders the head binding and the opening lines of both arms.
func (r *renderer) checkedArith(inv *program.Invocation, op *ops.Operator) (string, [2]string, error) {
	var arms [2]string
	ok, overflow := inv.Branches[0].Results, inv.Branches[1].Results
	okSig, overflowSig := op.Branches[0].Results, op.Branches[1].Results
	rc, lhs, rhs := inv.Args[0], inv.Args[1], inv.Args[2]
	sum := ok[1]
	flag := sum.Name() + "_overflowed"

	intTy, err := r.typ(op.Int)
	if err != nil {
		return "", arms, err
	}
	expr := lhs.Name() + " " + op.Arith.String() + " " + rhs.Name()
	if r.declared(sum) {
		r.line(r.depth, "("+sum.Name()+", "+flag+") = "+expr+";")
	} else {
		r.line(r.depth, "let ("+sum.Name()+", "+flag+"): ("+intTy+", bool) = "+expr+";")
	}
	r.line(r.depth, "if !"+flag+" {")
	head := r.b.String()

	okArm := renderer{w: r.w, path: r.path, depth: r.depth + 1}
	okArm.markPending(sum)
	if err := okArm.passThrough(okArm.depth, ok[0], rc, okSig[0]); err != nil {
		return "", arms, err
	}

	overflowArm := renderer{w: r.w, path: r.path, depth: r.depth + 1}
	overflowArm.markPending(sum)
	if err := overflowArm.passThrough(overflowArm.depth, overflow[0], rc, overflowSig[0]); err != nil {
		return "", arms, err
	}
	if err := overflowArm.alias(overflowArm.depth, overflow[1], sum, overflowSig[1], false); err != nil {
		return "", arms, err
	}

	arms[0] = okArm.b.String()
	arms[1] = overflowArm.b.String()
	return head, arms, nil
}

func (r *renderer) typs(ids []types.TypeID) ([]string, error) {
	out := make([]string, len(ids))
	for i, id := range ids {
		s, err := r.typ(id)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func wantArgs(op *ops.Operator, inv *program.Invocation, n int) error {
	if len(inv.Args) != n {
		return invariantf("%s takes %d arguments, got %d", op, n, len(inv.Args))
	}
	return nil
}

func varNames(vars []program.VarID) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = v.Name()
	}
	return strings.Join(parts, ", ")
}

func renderReturn(vars []program.VarID) string {
	if len(vars) == 0 {
		return "return;"
	}
	return "return " + varNames(vars) + ";"
}
