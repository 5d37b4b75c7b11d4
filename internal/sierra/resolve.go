package sierra

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"sierradec/internal/program"
	"sierradec/internal/source"
)

// namespace assigns numeric ids to debug-named declarations. Numeric ids are
// kept as written; names get fresh ids above the largest numeric id, in
// order of first appearance.
type namespace struct {
	maxNum  uint64
	anyNum  bool
	names   map[string]uint64
	display map[string]string
	order   []string
}

func newNamespace() *namespace {
	return &namespace{names: make(map[string]uint64), display: make(map[string]string)}
}

func nameKey(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}

func (ns *namespace) observe(id rawID) {
	if id.numeric {
		if !ns.anyNum || id.num > ns.maxNum {
			ns.maxNum = id.num
		}
		ns.anyNum = true
		return
	}
	key := nameKey(id.name)
	if _, ok := ns.display[key]; ok {
		return
	}
	ns.display[key] = norm.NFC.String(id.name)
	ns.order = append(ns.order, key)
}

func (ns *namespace) seal() {
	next := uint64(0)
	if ns.anyNum {
		next = ns.maxNum + 1
	}
	for _, key := range ns.order {
		ns.names[key] = next
		next++
	}
}

func (ns *namespace) resolve(id rawID) (uint64, string) {
	if id.numeric {
		return id.num, ""
	}
	key := nameKey(id.name)
	return ns.names[key], ns.display[key]
}

// resolver turns a rawFile into a Program.
type resolver struct {
	file     *source.File
	types    *namespace
	libfuncs *namespace
	funcs    *namespace
}

func newResolver(f *source.File) *resolver {
	return &resolver{
		file:     f,
		types:    newNamespace(),
		libfuncs: newNamespace(),
		funcs:    newNamespace(),
	}
}

func (r *resolver) observeCall(c rawCall) {
	for _, a := range c.args {
		switch a.kind {
		case program.ArgType:
			r.types.observe(a.id)
		case program.ArgUserFunc:
			r.funcs.observe(a.id)
		case program.ArgLibfunc:
			r.libfuncs.observe(a.id)
		}
	}
}

func (r *resolver) resolve(raw *rawFile) (*program.Program, error) {
	// declarations first so they win the low ids
	for _, t := range raw.types {
		r.types.observe(t.id)
	}
	for _, l := range raw.libfuncs {
		r.libfuncs.observe(l.id)
	}
	for _, f := range raw.funcs {
		r.funcs.observe(f.id)
	}
	for _, t := range raw.types {
		r.observeCall(t.long)
	}
	for _, l := range raw.libfuncs {
		r.observeCall(l.long)
	}
	for _, st := range raw.statements {
		if !st.isReturn {
			r.libfuncs.observe(st.libfunc)
		}
	}
	for _, f := range raw.funcs {
		for _, p := range f.params {
			r.types.observe(p.ty)
		}
		for _, t := range f.rets {
			r.types.observe(t)
		}
	}
	r.types.seal()
	r.libfuncs.seal()
	r.funcs.seal()

	p := &program.Program{
		Types:      make([]program.TypeDecl, 0, len(raw.types)),
		Libfuncs:   make([]program.LibfuncDecl, 0, len(raw.libfuncs)),
		Statements: make([]program.Statement, 0, len(raw.statements)),
		Funcs:      make([]program.Function, 0, len(raw.funcs)),
	}

	seenTypes := make(map[program.TypeID]source.Span, len(raw.types))
	for _, t := range raw.types {
		id, name := r.types.resolve(t.id)
		tid := program.TypeID(id)
		if prev, dup := seenTypes[tid]; dup {
			return nil, withKind(ErrRedeclared, errorAt(r.file, t.id.span, "type %s redeclared (first declared at %s)", t.id, r.file.Position(prev.Start)))
		}
		seenTypes[tid] = t.id.span
		p.Types = append(p.Types, program.TypeDecl{ID: tid, DebugName: name, Long: r.call(t.long), Info: t.info})
	}

	seenLibs := make(map[program.LibfuncID]source.Span, len(raw.libfuncs))
	for _, l := range raw.libfuncs {
		id, name := r.libfuncs.resolve(l.id)
		lid := program.LibfuncID(id)
		if prev, dup := seenLibs[lid]; dup {
			return nil, withKind(ErrRedeclared, errorAt(r.file, l.id.span, "libfunc %s redeclared (first declared at %s)", l.id, r.file.Position(prev.Start)))
		}
		seenLibs[lid] = l.id.span
		p.Libfuncs = append(p.Libfuncs, program.LibfuncDecl{ID: lid, DebugName: name, Long: r.call(l.long)})
	}

	for _, st := range raw.statements {
		p.Statements = append(p.Statements, r.statement(st))
	}

	seenFuncs := make(map[program.FuncID]source.Span, len(raw.funcs))
	for _, f := range raw.funcs {
		id, name := r.funcs.resolve(f.id)
		fid := program.FuncID(id)
		if prev, dup := seenFuncs[fid]; dup {
			return nil, withKind(ErrRedeclared, errorAt(r.file, f.id.span, "function %s redeclared (first declared at %s)", f.id, r.file.Position(prev.Start)))
		}
		seenFuncs[fid] = f.id.span
		if int(f.entry) >= len(raw.statements) {
			return nil, withKind(ErrBadEntry, errorAt(r.file, f.id.span, "function %s: entry %d is past the last statement", f.id, f.entry))
		}
		fn := program.Function{ID: fid, DebugName: name, Entry: f.entry}
		for _, prm := range f.params {
			tid, _ := r.types.resolve(prm.ty)
			fn.Params = append(fn.Params, program.Param{Var: prm.v, Type: program.TypeID(tid)})
		}
		for _, t := range f.rets {
			tid, _ := r.types.resolve(t)
			fn.RetTypes = append(fn.RetTypes, program.TypeID(tid))
		}
		p.Funcs = append(p.Funcs, fn)
	}
	return p, nil
}

func (r *resolver) call(c rawCall) program.GenericCall {
	out := program.GenericCall{Name: c.name}
	if len(c.args) == 0 {
		return out
	}
	out.Args = make([]program.GenericArg, len(c.args))
	for i, a := range c.args {
		switch a.kind {
		case program.ArgType:
			id, _ := r.types.resolve(a.id)
			out.Args[i] = program.TypeArg(program.TypeID(id))
		case program.ArgValue:
			out.Args[i] = program.GenericArg{Kind: program.ArgValue, Value: a.value}
		case program.ArgUserFunc:
			id, _ := r.funcs.resolve(a.id)
			out.Args[i] = program.UserFuncArg(program.FuncID(id))
		case program.ArgLibfunc:
			id, _ := r.libfuncs.resolve(a.id)
			out.Args[i] = program.GenericArg{Kind: program.ArgLibfunc, Libfunc: program.LibfuncID(id)}
		case program.ArgUserType:
			out.Args[i] = program.UserTypeArg(norm.NFC.String(a.name))
		}
	}
	return out
}

func (r *resolver) statement(st rawStatement) program.Statement {
	if st.isReturn {
		return program.Return(st.ret...)
	}
	id, _ := r.libfuncs.resolve(st.libfunc)
	branches := make([]program.Branch, len(st.branches))
	for i, br := range st.branches {
		branches[i] = program.Branch{Target: br.target, Results: br.results}
	}
	return program.Invoke(program.LibfuncID(id), st.args, branches...)
}
