package program

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes p back out in the Sierra text grammar accepted by the loader.
func Dump(w io.Writer, p *Program) error {
	if w == nil || p == nil {
		return nil
	}
	d := dumper{p: p}
	var b strings.Builder
	for i := range p.Types {
		d.typeDecl(&b, &p.Types[i])
	}
	if len(p.Types) > 0 {
		b.WriteByte('\n')
	}
	for i := range p.Libfuncs {
		lib := &p.Libfuncs[i]
		fmt.Fprintf(&b, "libfunc %s = %s;\n", d.libName(lib.ID), d.call(lib.Long))
	}
	if len(p.Libfuncs) > 0 {
		b.WriteByte('\n')
	}
	for i := range p.Statements {
		b.WriteString(d.statement(&p.Statements[i]))
		b.WriteByte('\n')
	}
	if len(p.Statements) > 0 {
		b.WriteByte('\n')
	}
	for i := range p.Funcs {
		d.function(&b, &p.Funcs[i])
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type dumper struct {
	p        *Program
	types    map[TypeID]string
	libfuncs map[LibfuncID]string
	funcs    map[FuncID]string
}

func (d *dumper) typeName(id TypeID) string {
	if d.types == nil {
		d.types = make(map[TypeID]string, len(d.p.Types))
		for i := range d.p.Types {
			if name := d.p.Types[i].DebugName; name != "" {
				d.types[d.p.Types[i].ID] = name
			}
		}
	}
	if name, ok := d.types[id]; ok {
		return name
	}
	return id.String()
}

func (d *dumper) libName(id LibfuncID) string {
	if d.libfuncs == nil {
		d.libfuncs = make(map[LibfuncID]string, len(d.p.Libfuncs))
		for i := range d.p.Libfuncs {
			if name := d.p.Libfuncs[i].DebugName; name != "" {
				d.libfuncs[d.p.Libfuncs[i].ID] = name
			}
		}
	}
	if name, ok := d.libfuncs[id]; ok {
		return name
	}
	return id.String()
}

func (d *dumper) funcName(id FuncID) string {
	if d.funcs == nil {
		d.funcs = make(map[FuncID]string, len(d.p.Funcs))
		for i := range d.p.Funcs {
			if name := d.p.Funcs[i].DebugName; name != "" {
				d.funcs[d.p.Funcs[i].ID] = name
			}
		}
	}
	if name, ok := d.funcs[id]; ok {
		return name
	}
	return id.String()
}

func (d *dumper) call(g GenericCall) string {
	if len(g.Args) == 0 {
		return g.Name
	}
	parts := make([]string, len(g.Args))
	for i, a := range g.Args {
		switch a.Kind {
		case ArgType:
			parts[i] = d.typeName(a.Type)
		case ArgUserFunc:
			parts[i] = "user@" + d.funcName(a.Func)
		case ArgLibfunc:
			parts[i] = "lib@" + d.libName(a.Libfunc)
		default:
			parts[i] = a.String()
		}
	}
	return g.Name + "<" + strings.Join(parts, ", ") + ">"
}

func (d *dumper) typeDecl(b *strings.Builder, t *TypeDecl) {
	fmt.Fprintf(b, "type %s = %s", d.typeName(t.ID), d.call(t.Long))
	if t.Info != nil {
		fmt.Fprintf(b, " [storable: %t, drop: %t, dup: %t, zero_sized: %t]",
			t.Info.Storable, t.Info.Droppable, t.Info.Duplicate, t.Info.ZeroSized)
	}
	b.WriteString(";\n")
}

func (d *dumper) statement(st *Statement) string {
	if st.Kind == StmtReturn {
		return "return(" + vars(st.Return) + ");"
	}
	inv := &st.Invocation
	head := d.libName(inv.Libfunc) + "(" + vars(inv.Args) + ")"
	if len(inv.Branches) == 1 && inv.Branches[0].Target.Fallthrough {
		return head + " -> (" + vars(inv.Branches[0].Results) + ");"
	}
	parts := make([]string, len(inv.Branches))
	for i := range inv.Branches {
		br := &inv.Branches[i]
		target := "fallthrough"
		if !br.Target.Fallthrough {
			target = fmt.Sprintf("%d", br.Target.Index)
		}
		parts[i] = target + "(" + vars(br.Results) + ")"
	}
	return head + " { " + strings.Join(parts, " ") + " };"
}

func (d *dumper) function(b *strings.Builder, f *Function) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Var.String() + ": " + d.typeName(p.Type)
	}
	rets := make([]string, len(f.RetTypes))
	for i, t := range f.RetTypes {
		rets[i] = d.typeName(t)
	}
	fmt.Fprintf(b, "%s@%d(%s) -> (%s);\n", d.funcName(f.ID), f.Entry, strings.Join(params, ", "), strings.Join(rets, ", "))
}

func vars(ids []VarID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
