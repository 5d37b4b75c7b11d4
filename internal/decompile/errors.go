package decompile

import (
	"fmt"

	"sierradec/internal/ops"
	"sierradec/internal/program"
)

// UnsupportedOperatorError reports a libfunc with no pseudo-source template.
// Nothing is emitted for the statement.
type UnsupportedOperatorError struct {
	Libfunc program.LibfuncID
	Name    string
	Kind    ops.Kind
	Reason  string
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Reason != "" {
		return "unsupported operator " + e.Name + ": " + e.Reason
	}
	return fmt.Sprintf("unsupported operator %s (%s)", e.Name, e.Kind)
}

// InvariantError reports a statement that disagrees with its operator's
// signature or with the program's shape.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Msg
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// CycleError reports a branch target that was already visited on the same
// path. Loops are rejected rather than reconstructed.
type CycleError struct {
	From   program.StatementIdx
	Target program.StatementIdx
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("control-flow cycle: statement %d branches back to %d", e.From, e.Target)
}

// LimitError reports a function whose expansion exceeded the step budget.
// Converging paths are expanded once per path, so a chain of diamonds grows
// exponentially.
type LimitError struct {
	Steps int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("function expands to more than %d statements", e.Steps)
}

// FuncError attaches the function and statement to a failure. Stmt is
// program.NoStatement for signature failures.
type FuncError struct {
	Func program.FuncID
	Stmt program.StatementIdx
	Err  error
}

func (e *FuncError) Error() string {
	if e.Stmt == program.NoStatement {
		return fmt.Sprintf("%s: signature: %v", FuncName(e.Func), e.Err)
	}
	return fmt.Sprintf("%s: statement %d: %v", FuncName(e.Func), e.Stmt, e.Err)
}

func (e *FuncError) Unwrap() error {
	return e.Err
}

// FuncName is the emitted name of a function: f_<id>.
func FuncName(id program.FuncID) string {
	return fmt.Sprintf("f_%d", uint64(id))
}
