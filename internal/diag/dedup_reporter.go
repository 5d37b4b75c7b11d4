package diag

import "sync"

type dedupKey struct {
	code Code
	sev  Severity
	loc  Location
	msg  string
}

func keyOf(d Diagnostic) dedupKey {
	return dedupKey{code: d.Code, sev: d.Severity, loc: d.Loc, msg: d.Message}
}

// DedupReporter forwards each distinct diagnostic once.
type DedupReporter struct {
	next Reporter
	mu   sync.Mutex
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	k := keyOf(d)
	r.mu.Lock()
	_, dup := r.seen[k]
	r.seen[k] = struct{}{}
	r.mu.Unlock()
	if !dup && r.next != nil {
		r.next.Report(d)
	}
}
