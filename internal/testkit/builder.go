package testkit

import (
	"sierradec/internal/program"
)

// Builder assembles small programs for tests. Types and libfuncs are
// declared on first use and deduplicated by their generic call text.
type Builder struct {
	p     program.Program
	types map[string]program.TypeID
	libs  map[string]program.LibfuncID
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		types: make(map[string]program.TypeID),
		libs:  make(map[string]program.LibfuncID),
	}
}

// Type declares (or reuses) the concrete type name<args>.
func (b *Builder) Type(name string, args ...program.GenericArg) program.TypeID {
	call := program.GenericCall{Name: name, Args: args}
	key := call.String()
	if id, ok := b.types[key]; ok {
		return id
	}
	id := program.TypeID(len(b.p.Types))
	b.p.Types = append(b.p.Types, program.TypeDecl{ID: id, Long: call})
	b.types[key] = id
	return id
}

// Named declares a type with a debug name.
func (b *Builder) Named(debug, name string, args ...program.GenericArg) program.TypeID {
	id := b.Type(name, args...)
	b.p.Types[id].DebugName = debug
	return id
}

// Of is Type for calls whose arguments are all types.
func (b *Builder) Of(name string, args ...program.TypeID) program.TypeID {
	return b.Type(name, typeArgs(args)...)
}

// Libfunc declares (or reuses) the concrete libfunc name<args>.
func (b *Builder) Libfunc(name string, args ...program.GenericArg) program.LibfuncID {
	call := program.GenericCall{Name: name, Args: args}
	key := call.String()
	if id, ok := b.libs[key]; ok {
		return id
	}
	id := program.LibfuncID(len(b.p.Libfuncs))
	b.p.Libfuncs = append(b.p.Libfuncs, program.LibfuncDecl{ID: id, Long: call})
	b.libs[key] = id
	return id
}

// LibOf is Libfunc for calls whose arguments are all types.
func (b *Builder) LibOf(name string, args ...program.TypeID) program.LibfuncID {
	return b.Libfunc(name, typeArgs(args)...)
}

// Next returns the index the next appended statement will get.
func (b *Builder) Next() program.StatementIdx {
	return program.StatementIdx(len(b.p.Statements))
}

// Stmt appends a statement and returns its index.
func (b *Builder) Stmt(st program.Statement) program.StatementIdx {
	idx := b.Next()
	b.p.Statements = append(b.p.Statements, st)
	return idx
}

// Statement returns the statement at idx for patching branch targets.
func (b *Builder) Statement(idx program.StatementIdx) *program.Statement {
	return &b.p.Statements[idx]
}

// Call appends a single-branch fallthrough invocation.
func (b *Builder) Call(lib program.LibfuncID, args []program.VarID, results ...program.VarID) program.StatementIdx {
	return b.Stmt(program.Invoke(lib, args, program.Branch{Target: program.Fallthrough(), Results: results}))
}

// Ret appends a return statement.
func (b *Builder) Ret(vars ...program.VarID) program.StatementIdx {
	return b.Stmt(program.Return(vars...))
}

// Func declares a function whose params are bound to vars 0..n-1.
func (b *Builder) Func(id program.FuncID, entry program.StatementIdx, params []program.TypeID, rets ...program.TypeID) {
	fn := program.Function{ID: id, Entry: entry, RetTypes: rets}
	for i, t := range params {
		fn.Params = append(fn.Params, program.Param{Var: program.VarID(i), Type: t})
	}
	b.p.Funcs = append(b.p.Funcs, fn)
}

// Program returns the assembled program. It aliases the builder's storage.
func (b *Builder) Program() *program.Program {
	return &b.p
}

func typeArgs(ids []program.TypeID) []program.GenericArg {
	out := make([]program.GenericArg, len(ids))
	for i, id := range ids {
		out[i] = program.TypeArg(id)
	}
	return out
}
