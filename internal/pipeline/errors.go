package pipeline

import "fmt"

// PartialError is returned in keep-going mode when some functions failed.
// The output was still written.
type PartialError struct {
	Failed int
	Total  int
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%d of %d functions failed", e.Failed, e.Total)
}

// WriteError reports a failure to produce the output file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
