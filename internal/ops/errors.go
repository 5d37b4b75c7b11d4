package ops

import (
	"fmt"

	"sierradec/internal/program"
)

// LookupError reports a libfunc id that is not declared or whose signature
// cannot be computed from the declared types.
type LookupError struct {
	ID     program.LibfuncID
	Name   string
	Reason string
	Err    error
}

func (e *LookupError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Name != "" {
		return fmt.Sprintf("libfunc %s (%s): %s", e.ID, e.Name, msg)
	}
	return fmt.Sprintf("libfunc %s: %s", e.ID, msg)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
