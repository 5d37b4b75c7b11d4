// Package decompile reconstructs pseudo-source from a loaded program.
//
// Each function body is discovered by walking branch targets from its entry
// statement. Single-successor chains are inlined; overflow-checked integer
// arithmetic is the only construct that opens nested if/else blocks. The
// walker keeps an explicit work stack and a visited set per path, so long
// chains cannot exhaust the goroutine stack and loops are reported as
// *CycleError instead of hanging.
package decompile

import (
	"io"
	"log/slog"
	"runtime"

	"sierradec/internal/ops"
	"sierradec/internal/program"
	"sierradec/internal/types"
)

// DefaultIndent is the number of spaces per nesting level.
const DefaultIndent = 4

// DefaultMaxSteps bounds the statements visited for one function.
const DefaultMaxSteps = 1 << 20

// Options tune emission. Zero values pick the defaults.
type Options struct {
	Indent    int
	Jobs      int
	KeepGoing bool
	MaxSteps  int
	Logger    *slog.Logger
	// OnFunc is called once per finished function, possibly from several
	// goroutines at once.
	OnFunc func(FuncResult)
}

func (o Options) withDefaults() Options {
	if o.Indent <= 0 {
		o.Indent = DefaultIndent
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Decompiler holds the read-only inputs shared by all functions.
type Decompiler struct {
	prog  *program.Program
	types *types.Table
	ops   *ops.Catalog
	opts  Options
}

// New creates a decompiler over p. The catalogs must have been built from p.
func New(p *program.Program, table *types.Table, catalog *ops.Catalog, opts Options) *Decompiler {
	return &Decompiler{prog: p, types: table, ops: catalog, opts: opts.withDefaults()}
}

// NewFromProgram builds both catalogs for p.
func NewFromProgram(p *program.Program, opts Options) *Decompiler {
	table := types.NewTable(p)
	table.EnableMemo()
	return New(p, table, ops.NewCatalog(p, table), opts)
}
