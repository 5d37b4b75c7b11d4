package sierra

import (
	"fmt"

	"sierradec/internal/source"
)

// ErrorKind classifies a LoadError.
type ErrorKind uint8

const (
	ErrSyntax     ErrorKind = iota // malformed text
	ErrRedeclared                  // id declared twice
	ErrBadEntry                    // function entry past the statement list
	ErrSnapshot                    // undecodable snapshot
	ErrRead                        // file could not be read
)

// LoadError reports malformed input. It is fatal: nothing is decompiled.
type LoadError struct {
	Path string
	Pos  source.LineCol
	Kind ErrorKind
	Msg  string
	Err  error // underlying I/O or decode error, if any
}

func (e *LoadError) Error() string {
	if e.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Pos.Line, e.Pos.Col, e.Msg)
}

func (e *LoadError) Unwrap() error { return e.Err }

func errorAt(f *source.File, sp source.Span, format string, args ...any) *LoadError {
	return &LoadError{
		Path: f.Path,
		Pos:  f.Position(sp.Start),
		Msg:  fmt.Sprintf(format, args...),
	}
}

func fileError(path string, kind ErrorKind, err error) *LoadError {
	return &LoadError{Path: path, Kind: kind, Msg: err.Error(), Err: err}
}

func withKind(kind ErrorKind, e *LoadError) *LoadError {
	e.Kind = kind
	return e
}
