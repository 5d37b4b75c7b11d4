package types

import (
	"strings"
	"sync"

	"sierradec/internal/program"
)

// maxDepth bounds nesting while resolving; deeper chains are treated as a
// cycle in the declarations.
const maxDepth = 64

// Table is the read-only catalog of a program's concrete types. It is safe
// for concurrent use once built.
type Table struct {
	decls []program.TypeDecl
	types []Type
	byID  map[TypeID]int
	index map[string]TypeID
	memo  *sync.Map
}

// NewTable specialises every declaration of p.
func NewTable(p *program.Program) *Table {
	t := &Table{}
	if p == nil {
		return t
	}
	t.decls = p.Types
	t.types = make([]Type, len(p.Types))
	t.byID = make(map[TypeID]int, len(p.Types))
	t.index = make(map[string]TypeID, len(p.Types))
	for i := range p.Types {
		decl := &p.Types[i]
		t.types[i] = specialize(decl.Long)
		t.byID[decl.ID] = i
		key := callKey(decl.Long)
		if _, dup := t.index[key]; !dup {
			t.index[key] = decl.ID
		}
	}
	return t
}

// EnableMemo caches resolved text. Call before sharing the table.
func (t *Table) EnableMemo() {
	t.memo = &sync.Map{}
}

// Len returns the number of declared types.
func (t *Table) Len() int {
	return len(t.types)
}

// IDs returns the declared ids in declaration order.
func (t *Table) IDs() []TypeID {
	out := make([]TypeID, len(t.decls))
	for i := range t.decls {
		out[i] = t.decls[i].ID
	}
	return out
}

// Lookup returns the descriptor for id.
func (t *Table) Lookup(id TypeID) (Type, bool) {
	if t == nil {
		return Type{}, false
	}
	i, ok := t.byID[id]
	if !ok {
		return Type{}, false
	}
	return t.types[i], true
}

// Decl returns the declaration behind id.
func (t *Table) Decl(id TypeID) (*program.TypeDecl, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return &t.decls[i], true
}

// Find returns the declared id whose generic call matches call exactly.
func (t *Table) Find(call program.GenericCall) (TypeID, bool) {
	if t == nil {
		return 0, false
	}
	id, ok := t.index[callKey(call)]
	return id, ok
}

// FindNamed is Find for calls whose arguments are all types.
func (t *Table) FindNamed(name string, args ...TypeID) (TypeID, bool) {
	call := program.GenericCall{Name: name}
	for _, a := range args {
		call.Args = append(call.Args, program.TypeArg(a))
	}
	return t.Find(call)
}

// Resolve renders id as a type expression.
func (t *Table) Resolve(id TypeID) (string, error) {
	if t != nil && t.memo != nil {
		if s, ok := t.memo.Load(id); ok {
			return s.(string), nil
		}
	}
	s, err := t.resolveDepth(id, 0)
	if err != nil {
		return "", err
	}
	if t.memo != nil {
		t.memo.Store(id, s)
	}
	return s, nil
}

func (t *Table) resolveDepth(id TypeID, depth int) (string, error) {
	if depth > maxDepth {
		return "", &LookupError{ID: id, Reason: "type nesting too deep (cyclic declaration?)"}
	}
	tt, ok := t.Lookup(id)
	if !ok {
		return "", &LookupError{ID: id, Reason: "unknown type id"}
	}
	if tt.Kind.IsWrapper() {
		inner, err := t.resolveDepth(tt.Elem, depth+1)
		if err != nil {
			return "", err
		}
		return tt.Name + "<" + inner + ">", nil
	}
	switch tt.Kind {
	case KindScalar:
		return tt.Name, nil
	case KindArray:
		elem, err := t.resolveDepth(tt.Elem, depth+1)
		if err != nil {
			return "", err
		}
		return "Array<" + elem + ">", nil
	case KindStruct:
		parts, err := t.resolveAll(tt.Members, depth)
		if err != nil {
			return "", err
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	case KindEnum:
		parts, err := t.resolveAll(tt.Members, depth)
		if err != nil {
			return "", err
		}
		return "Enum<" + strings.Join(parts, ", ") + ">", nil
	case KindConst:
		return tt.Value, nil
	default:
		return "", &LookupError{ID: id, Kind: tt.Kind, Reason: tt.Reason}
	}
}

func (t *Table) resolveAll(ids []TypeID, depth int) ([]string, error) {
	parts := make([]string, len(ids))
	for i, m := range ids {
		s, err := t.resolveDepth(m, depth+1)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	return parts, nil
}

// Label renders id for display and never fails.
func (t *Table) Label(id TypeID) string {
	s, err := t.Resolve(id)
	if err == nil {
		return s
	}
	if decl, ok := t.Decl(id); ok {
		if decl.DebugName != "" {
			return decl.DebugName
		}
		return decl.Long.String()
	}
	return "?"
}

func callKey(call program.GenericCall) string {
	return call.String()
}
