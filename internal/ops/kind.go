package ops

import "fmt"

// Kind is the closed set of operator kinds. Every libfunc specialises into
// exactly one of them.
type Kind uint8

const (
	KindInvalid Kind = iota

	// bookkeeping, emitted as nothing
	KindBranchAlign
	KindApTracking
	KindStoreTemp
	KindStoreLocal
	KindAllocLocal
	KindFinalizeLocals

	// single-branch effects
	KindArrayNew
	KindArrayAppend
	KindStructConstruct
	KindStructDeconstruct
	KindEnumInit
	KindConst
	KindDrop
	KindDup
	KindRename
	KindSnapshotTake
	KindFunctionCall

	// two-branch overflow-checked integer add/sub
	KindCheckedArith

	// recognised, no pseudo-source form yet
	KindGas
	KindJump
	KindEnumMatch
	KindArrayQuery
	KindIntCompare
	KindIntConvert
	KindIntArith
	KindFelt252Arith
	KindBox
	KindNullable
	KindNonZero
	KindBool
	KindHash
	KindSyscall
	KindDict
	KindEc

	// generic name not known at all
	KindUnknown
)

var kindNames = [...]string{
	KindInvalid:           "invalid",
	KindBranchAlign:       "branch-align",
	KindApTracking:        "ap-tracking",
	KindStoreTemp:         "store-temp",
	KindStoreLocal:        "store-local",
	KindAllocLocal:        "alloc-local",
	KindFinalizeLocals:    "finalize-locals",
	KindArrayNew:          "array-new",
	KindArrayAppend:       "array-append",
	KindStructConstruct:   "struct-construct",
	KindStructDeconstruct: "struct-deconstruct",
	KindEnumInit:          "enum-init",
	KindConst:             "const",
	KindDrop:              "drop",
	KindDup:               "dup",
	KindRename:            "rename",
	KindSnapshotTake:      "snapshot-take",
	KindFunctionCall:      "function-call",
	KindCheckedArith:      "checked-arith",
	KindGas:               "gas",
	KindJump:              "jump",
	KindEnumMatch:         "enum-match",
	KindArrayQuery:        "array-query",
	KindIntCompare:        "int-compare",
	KindIntConvert:        "int-convert",
	KindIntArith:          "int-arith",
	KindFelt252Arith:      "felt252-arith",
	KindBox:               "box",
	KindNullable:          "nullable",
	KindNonZero:           "non-zero",
	KindBool:              "bool",
	KindHash:              "hash",
	KindSyscall:           "syscall",
	KindDict:              "dict",
	KindEc:                "ec",
	KindUnknown:           "unknown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsNoOp reports bookkeeping kinds that produce no pseudo-source.
func (k Kind) IsNoOp() bool {
	return k >= KindBranchAlign && k <= KindFinalizeLocals
}

// Supported reports whether the decompiler has a template for k.
func (k Kind) Supported() bool {
	return k >= KindBranchAlign && k <= KindCheckedArith
}

// ArithOp is the operator of a checked arithmetic libfunc.
type ArithOp uint8

const (
	OpAdd ArithOp = iota
	OpSub
)

func (op ArithOp) String() string {
	if op == OpSub {
		return "-"
	}
	return "+"
}
