package types

import "fmt"

// LookupError reports a type id that cannot be rendered.
type LookupError struct {
	ID     TypeID
	Kind   Kind
	Reason string
}

func (e *LookupError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("type %s: cannot resolve", e.ID)
	}
	return fmt.Sprintf("type %s: %s", e.ID, e.Reason)
}
