package diag

import (
	"strconv"

	"sierradec/internal/source"
)

// Location places a diagnostic in the input. Text errors carry Pos;
// function failures carry Func and, when known, Stmt.
type Location struct {
	Path string
	Pos  source.LineCol // zero when unknown
	Func string         // "f_3"
	Stmt int            // -1 when not tied to a statement
}

// At is a location without a function.
func At(path string, pos source.LineCol) Location {
	return Location{Path: path, Pos: pos, Stmt: -1}
}

// InFunc is a location inside a function.
func InFunc(path, fn string, stmt int) Location {
	return Location{Path: path, Func: fn, Stmt: stmt}
}

func (l Location) String() string {
	s := l.Path
	if l.Pos.Line > 0 {
		s += ":" + l.Pos.String()
	}
	if l.Func == "" {
		return s
	}
	inner := l.Func
	if l.Stmt >= 0 {
		inner += ", statement " + strconv.Itoa(l.Stmt)
	}
	if s == "" {
		return inner
	}
	return s + " (" + inner + ")"
}

type Note struct {
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Loc      Location
	Notes    []Note
}

// New builds a diagnostic without notes.
func New(sev Severity, code Code, loc Location, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Loc: loc, Message: msg}
}
