package ops

import (
	"sierradec/internal/program"
	"sierradec/internal/types"
)

// BranchSignature lists the result types one branch produces, in order.
type BranchSignature struct {
	Results []types.TypeID
}

// Operator is the specialised form of one libfunc declaration. Which payload
// fields are set depends on Kind.
type Operator struct {
	ID       program.LibfuncID
	Kind     Kind
	Long     program.GenericCall
	Branches []BranchSignature

	// Elem is the element type of array ops and the operand type of
	// drop, dup, rename, snapshot_take and the store ops.
	Elem types.TypeID
	// Target is the constructed struct or enum, or the deconstructed struct.
	Target types.TypeID
	// Variant is the enum_init variant index.
	Variant int
	// Value is the base-10 literal of a const.
	Value string
	// Arith and Int describe checked arithmetic.
	Arith ArithOp
	Int   types.TypeID
	// Callee is the function_call target.
	Callee program.FuncID
	// Arity is the argument count of struct_construct, enum_init and
	// function_call.
	Arity int
	// Reason says why an unsupported operator has no form.
	Reason string
}

// Name returns the generic libfunc name, e.g. "array_append".
func (op *Operator) Name() string {
	return op.Long.Name
}

func (op *Operator) String() string {
	return op.Long.String()
}

func single(results ...types.TypeID) []BranchSignature {
	return []BranchSignature{{Results: results}}
}
