package program

// TypeInfo carries the declaration attributes of a concrete type.
type TypeInfo struct {
	Storable  bool `msgpack:"storable"`
	Droppable bool `msgpack:"drop"`
	Duplicate bool `msgpack:"dup"`
	ZeroSized bool `msgpack:"zero_sized"`
}

// TypeDecl declares a concrete type.
type TypeDecl struct {
	ID        TypeID      `msgpack:"id"`
	DebugName string      `msgpack:"debug_name,omitempty"`
	Long      GenericCall `msgpack:"long"`
	Info      *TypeInfo   `msgpack:"info,omitempty"`
}

// LibfuncDecl declares a concrete libfunc.
type LibfuncDecl struct {
	ID        LibfuncID   `msgpack:"id"`
	DebugName string      `msgpack:"debug_name,omitempty"`
	Long      GenericCall `msgpack:"long"`
}

// Param is one function parameter: the variable it binds and its type.
type Param struct {
	Var  VarID  `msgpack:"var"`
	Type TypeID `msgpack:"ty"`
}

// Function is an entry point into the shared statement list.
type Function struct {
	ID        FuncID       `msgpack:"id"`
	DebugName string       `msgpack:"debug_name,omitempty"`
	Params    []Param      `msgpack:"params,omitempty"`
	RetTypes  []TypeID     `msgpack:"ret,omitempty"`
	Entry     StatementIdx `msgpack:"entry"`
}

// Program is the immutable arena produced by a loader. Function bodies are
// not delimited: they are discovered by following branch targets from Entry.
type Program struct {
	Types      []TypeDecl    `msgpack:"types,omitempty"`
	Libfuncs   []LibfuncDecl `msgpack:"libfuncs,omitempty"`
	Statements []Statement   `msgpack:"statements,omitempty"`
	Funcs      []Function    `msgpack:"funcs,omitempty"`
}

// Statement returns the statement at idx.
func (p *Program) Statement(idx StatementIdx) (*Statement, bool) {
	if p == nil || idx < 0 || int(idx) >= len(p.Statements) {
		return nil, false
	}
	return &p.Statements[idx], true
}

// Func returns the function with the given id.
func (p *Program) Func(id FuncID) (*Function, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Funcs {
		if p.Funcs[i].ID == id {
			return &p.Funcs[i], true
		}
	}
	return nil, false
}

// Stats summarises the size of a program.
type Stats struct {
	Types      int
	Libfuncs   int
	Statements int
	Funcs      int
}

func (p *Program) Stats() Stats {
	if p == nil {
		return Stats{}
	}
	return Stats{
		Types:      len(p.Types),
		Libfuncs:   len(p.Libfuncs),
		Statements: len(p.Statements),
		Funcs:      len(p.Funcs),
	}
}
