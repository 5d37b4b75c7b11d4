package pipeline

import (
	"context"
	"errors"

	"sierradec/internal/decompile"
	"sierradec/internal/diag"
	"sierradec/internal/ops"
	"sierradec/internal/program"
	"sierradec/internal/sierra"
	"sierradec/internal/source"
	"sierradec/internal/types"
)

var zeroPos source.LineCol

var loadCodes = map[sierra.ErrorKind]diag.Code{
	sierra.ErrSyntax:     diag.LoadSyntax,
	sierra.ErrRedeclared: diag.LoadRedeclare,
	sierra.ErrBadEntry:   diag.LoadEntry,
	sierra.ErrSnapshot:   diag.LoadSnapshot,
	sierra.ErrRead:       diag.LoadRead,
}

// Diagnose maps a run error onto a diagnostic located in input.
func Diagnose(err error, input string) diag.Diagnostic {
	var (
		loadErr  *sierra.LoadError
		funcErr  *decompile.FuncError
		writeErr *WriteError
		cacheErr *cacheError
	)
	switch {
	case errors.As(err, &loadErr):
		code, ok := loadCodes[loadErr.Kind]
		if !ok {
			code = diag.LoadSyntax
		}
		return diag.New(diag.SevError, code, diag.At(loadErr.Path, loadErr.Pos), loadErr.Msg)
	case errors.As(err, &funcErr):
		stmt := -1
		if funcErr.Stmt != program.NoStatement {
			stmt = int(funcErr.Stmt)
		}
		d := diag.New(diag.SevError, funcCode(funcErr.Err), diag.InFunc(input, decompile.FuncName(funcErr.Func), stmt), funcErr.Err.Error())
		if stmt < 0 {
			d.Notes = append(d.Notes, diag.Note{Msg: "while rendering the signature"})
		}
		return d
	case errors.As(err, &writeErr):
		return diag.New(diag.SevError, diag.IOWriteOutput, diag.At(writeErr.Path, zeroPos), writeErr.Err.Error())
	case errors.As(err, &cacheErr):
		return diag.New(diag.SevWarning, diag.IOCache, diag.At(input, zeroPos), cacheErr.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return diag.New(diag.SevError, diag.DecCancelled, diag.At(input, zeroPos), err.Error())
	}
	return diag.New(diag.SevError, diag.UnknownCode, diag.At(input, zeroPos), err.Error())
}

func funcCode(err error) diag.Code {
	var (
		unsupported *decompile.UnsupportedOperatorError
		invariant   *decompile.InvariantError
		cycle       *decompile.CycleError
		limit       *decompile.LimitError
		opErr       *ops.LookupError
		typeErr     *types.LookupError
	)
	switch {
	case errors.As(err, &unsupported):
		return diag.DecUnsupportedOperator
	case errors.As(err, &invariant):
		return diag.DecInvariant
	case errors.As(err, &cycle):
		return diag.DecCycle
	case errors.As(err, &limit):
		return diag.DecStepLimit
	case errors.As(err, &opErr):
		return diag.ResOperatorLookup
	case errors.As(err, &typeErr):
		return diag.ResTypeLookup
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return diag.DecCancelled
	}
	return diag.UnknownCode
}

// cacheError marks a cache failure; the run continues without the cache.
type cacheError struct {
	op  string
	err error
}

func (e *cacheError) Error() string { return "program cache " + e.op + ": " + e.err.Error() }

func (e *cacheError) Unwrap() error { return e.err }
