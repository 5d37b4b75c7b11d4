package ops

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"fortio.org/safecast"

	"sierradec/internal/program"
	"sierradec/internal/types"
)

// Catalog specialises libfunc declarations on demand. It is safe for
// concurrent use; each operator is computed at most once.
type Catalog struct {
	prog  *program.Program
	types *types.Table
	byID  map[program.LibfuncID]int
	slots []slot
}

type slot struct {
	once sync.Once
	op   *Operator
	err  error
}

// NewCatalog indexes the libfuncs of p. Signatures are computed lazily.
func NewCatalog(p *program.Program, table *types.Table) *Catalog {
	c := &Catalog{prog: p, types: table}
	if p == nil {
		return c
	}
	c.byID = make(map[program.LibfuncID]int, len(p.Libfuncs))
	c.slots = make([]slot, len(p.Libfuncs))
	for i := range p.Libfuncs {
		if _, dup := c.byID[p.Libfuncs[i].ID]; !dup {
			c.byID[p.Libfuncs[i].ID] = i
		}
	}
	return c
}

// Types returns the type table the catalog resolves against.
func (c *Catalog) Types() *types.Table {
	return c.types
}

// Len returns the number of declared libfuncs.
func (c *Catalog) Len() int {
	return len(c.slots)
}

// Operator returns the specialised operator for id.
func (c *Catalog) Operator(id program.LibfuncID) (*Operator, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, &LookupError{ID: id, Reason: "unknown libfunc id"}
	}
	s := &c.slots[i]
	s.once.Do(func() {
		s.op, s.err = c.specialize(&c.prog.Libfuncs[i])
	})
	return s.op, s.err
}

// Preload specialises every libfunc and returns the first error, if any.
func (c *Catalog) Preload() error {
	var first error
	for i := range c.slots {
		if _, err := c.Operator(c.prog.Libfuncs[i].ID); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *Catalog) specialize(decl *program.LibfuncDecl) (*Operator, error) {
	kind, arith, intName := classify(decl.Long.Name)
	op := &Operator{ID: decl.ID, Kind: kind, Long: decl.Long, Arith: arith}
	sig := signer{c: c, op: op, args: decl.Long.Args}
	if err := sig.fill(intName); err != nil {
		return nil, &LookupError{ID: decl.ID, Name: decl.Long.String(), Err: err}
	}
	return op, nil
}

// signer computes the payload and branch signatures of one operator.
type signer struct {
	c    *Catalog
	op   *Operator
	args []program.GenericArg
}

func (s *signer) fill(intName string) error {
	op := s.op
	switch op.Kind {
	case KindBranchAlign, KindApTracking, KindFinalizeLocals:
		op.Branches = single()
	case KindStoreTemp, KindStoreLocal, KindRename:
		t, err := s.typeArg(0)
		if err != nil {
			return err
		}
		op.Elem = t
		op.Branches = single(t)
	case KindAllocLocal:
		t, err := s.typeArg(0)
		if err != nil {
			return err
		}
		slotTy, err := s.find("Uninitialized", t)
		if err != nil {
			return err
		}
		op.Elem = t
		op.Branches = single(slotTy)
	case KindArrayNew, KindArrayAppend:
		t, err := s.typeArg(0)
		if err != nil {
			return err
		}
		arr, err := s.find("Array", t)
		if err != nil {
			return err
		}
		op.Elem = t
		op.Branches = single(arr)
	case KindStructConstruct:
		t, err := s.typeOfKind(0, types.KindStruct)
		if err != nil {
			return err
		}
		desc, _ := s.c.types.Lookup(t)
		op.Target = t
		op.Arity = len(desc.Members)
		op.Branches = single(t)
	case KindStructDeconstruct:
		t, err := s.typeOfKind(0, types.KindStruct)
		if err != nil {
			return err
		}
		desc, _ := s.c.types.Lookup(t)
		op.Target = t
		op.Branches = single(desc.Members...)
	case KindEnumInit:
		return s.fillEnumInit()
	case KindConst:
		return s.fillConst()
	case KindDrop:
		t, err := s.typeArg(0)
		if err != nil {
			return err
		}
		op.Elem = t
		op.Branches = single()
	case KindDup:
		t, err := s.typeArg(0)
		if err != nil {
			return err
		}
		op.Elem = t
		op.Branches = single(t, t)
	case KindSnapshotTake:
		t, err := s.typeArg(0)
		if err != nil {
			return err
		}
		snap, err := s.find("Snapshot", t)
		if err != nil {
			return err
		}
		op.Elem = t
		op.Branches = single(t, snap)
	case KindFunctionCall:
		if len(s.args) != 1 || s.args[0].Kind != program.ArgUserFunc {
			return fmt.Errorf("expected a user@ argument")
		}
		fn, ok := s.c.prog.Func(s.args[0].Func)
		if !ok {
			return fmt.Errorf("callee %s is not declared", s.args[0].Func)
		}
		op.Callee = fn.ID
		op.Arity = len(fn.Params)
		op.Branches = single(fn.RetTypes...)
	case KindCheckedArith:
		intTy, err := s.find(intName)
		if err != nil {
			return err
		}
		rc, err := s.find("RangeCheck")
		if err != nil {
			return err
		}
		op.Int = intTy
		op.Branches = []BranchSignature{{Results: []types.TypeID{rc, intTy}}, {Results: []types.TypeID{rc, intTy}}}
	case KindUnknown:
		op.Reason = "unknown libfunc " + op.Long.Name
	default:
		op.Reason = op.Kind.String() + " libfunc " + op.Long.Name + " has no pseudo-source form"
	}
	return nil
}

func (s *signer) fillEnumInit() error {
	t, err := s.typeOfKind(0, types.KindEnum)
	if err != nil {
		return err
	}
	if len(s.args) != 2 || s.args[1].Kind != program.ArgValue {
		return fmt.Errorf("expected enum_init<enum, index>")
	}
	raw, err := strconv.ParseUint(s.args[1].Value, 10, 64)
	if err != nil {
		return fmt.Errorf("variant index %q: %w", s.args[1].Value, err)
	}
	idx, err := safecast.Conv[int](raw)
	if err != nil {
		return fmt.Errorf("variant index %s: %w", s.args[1].Value, err)
	}
	desc, _ := s.c.types.Lookup(t)
	if idx >= len(desc.Members) {
		return fmt.Errorf("variant index %d out of range for %d variants", idx, len(desc.Members))
	}
	s.op.Target = t
	s.op.Variant = idx
	s.op.Arity = 1
	s.op.Branches = single(t)
	return nil
}

func (s *signer) fillConst() error {
	op := s.op
	if op.Long.Name == "const_as_immediate" {
		t, err := s.typeOfKind(0, types.KindConst)
		if err != nil {
			return err
		}
		desc, _ := s.c.types.Lookup(t)
		op.Elem = desc.Elem
		op.Value = desc.Value
		op.Branches = single(desc.Elem)
		return nil
	}
	if len(s.args) != 1 || s.args[0].Kind != program.ArgValue {
		return fmt.Errorf("expected a single value argument")
	}
	t, err := s.find(strings.TrimSuffix(op.Long.Name, "_const"))
	if err != nil {
		return err
	}
	op.Elem = t
	op.Value = s.args[0].Value
	op.Branches = single(t)
	return nil
}

func (s *signer) typeArg(i int) (types.TypeID, error) {
	if i >= len(s.args) || s.args[i].Kind != program.ArgType {
		return 0, fmt.Errorf("generic argument %d must be a type", i)
	}
	if _, ok := s.c.types.Lookup(s.args[i].Type); !ok {
		return 0, fmt.Errorf("type %s is not declared", s.args[i].Type)
	}
	return s.args[i].Type, nil
}

func (s *signer) typeOfKind(i int, kind types.Kind) (types.TypeID, error) {
	t, err := s.typeArg(i)
	if err != nil {
		return 0, err
	}
	desc, _ := s.c.types.Lookup(t)
	if desc.Kind != kind {
		return 0, fmt.Errorf("type %s is a %s, want %s", t, desc.Kind, kind)
	}
	return t, nil
}

// find locates the declared concrete type name<args>.
func (s *signer) find(name string, args ...types.TypeID) (types.TypeID, error) {
	if id, ok := s.c.types.FindNamed(name, args...); ok {
		return id, nil
	}
	call := program.GenericCall{Name: name}
	for _, a := range args {
		call.Args = append(call.Args, program.TypeArg(a))
	}
	return 0, fmt.Errorf("no concrete type %s is declared", call)
}
