package types

import (
	"fmt"

	"sierradec/internal/program"
)

// scalarNames are generic type names that render as themselves.
var scalarNames = map[string]struct{}{
	"felt252":             {},
	"u8":                  {},
	"u16":                 {},
	"u32":                 {},
	"u64":                 {},
	"u128":                {},
	"i8":                  {},
	"i16":                 {},
	"i32":                 {},
	"i64":                 {},
	"i128":                {},
	"bytes31":             {},
	"RangeCheck":          {},
	"RangeCheck96":        {},
	"GasBuiltin":          {},
	"BuiltinCosts":        {},
	"Pedersen":            {},
	"Poseidon":            {},
	"Bitwise":             {},
	"EcOp":                {},
	"EcPoint":             {},
	"EcState":             {},
	"SegmentArena":        {},
	"System":              {},
	"Uint128MulGuarantee": {},
}

var wrapperKinds = map[string]Kind{
	"NonZero":       KindNonZero,
	"Nullable":      KindNullable,
	"Uninitialized": KindUninitialized,
	"Snapshot":      KindSnapshot,
	"Box":           KindBox,
}

// knownUnsupported are real Sierra generic types without a textual form here.
var knownUnsupported = map[string]struct{}{
	"Felt252Dict":         {},
	"Felt252DictEntry":    {},
	"SquashedFelt252Dict": {},
	"Span":                {},
	"StorageAddress":      {},
	"StorageBaseAddress":  {},
	"ContractAddress":     {},
	"ClassHash":           {},
	"EcPointNonZero":      {},
	"Bytes31":             {},
	"BoundedInt":          {},
	"Secp256k1Point":      {},
	"Secp256r1Point":      {},
	"Sha256StateHandle":   {},
	"QM31":                {},
	"Circuit":             {},
	"CircuitModulus":      {},
	"CircuitInput":        {},
	"CircuitOutputs":      {},
	"Coupon":              {},
	"Felt252Span":         {},
}

// specialize turns a declaration's generic call into a descriptor. It never
// fails: malformed declarations become KindInvalid with a reason.
func specialize(call program.GenericCall) Type {
	if _, ok := scalarNames[call.Name]; ok {
		if len(call.Args) != 0 {
			return invalid(call, "takes no generic arguments")
		}
		return MakeScalar(call.Name)
	}
	if kind, ok := wrapperKinds[call.Name]; ok {
		elem, err := singleTypeArg(call)
		if err != "" {
			return invalid(call, err)
		}
		return MakeWrapper(kind, elem)
	}
	switch call.Name {
	case "Array":
		elem, err := singleTypeArg(call)
		if err != "" {
			return invalid(call, err)
		}
		return MakeArray(elem)
	case "Struct", "Enum":
		if len(call.Args) == 0 || call.Args[0].Kind != program.ArgUserType {
			return invalid(call, "first argument must be a ut@ name")
		}
		members := make([]TypeID, 0, len(call.Args)-1)
		for _, a := range call.Args[1:] {
			if a.Kind != program.ArgType {
				return invalid(call, fmt.Sprintf("member %s is not a type", a))
			}
			members = append(members, a.Type)
		}
		if call.Name == "Struct" {
			return MakeStruct(call.Args[0].Name, members)
		}
		return MakeEnum(call.Args[0].Name, members)
	case "Const":
		if len(call.Args) < 2 || call.Args[0].Kind != program.ArgType {
			return invalid(call, "expected Const<type, value>")
		}
		if len(call.Args) != 2 || call.Args[1].Kind != program.ArgValue {
			return Type{Kind: KindUnsupported, Name: call.Name, Reason: "compound constants have no literal form"}
		}
		return MakeConst(call.Args[0].Type, call.Args[1].Value)
	}
	if _, ok := knownUnsupported[call.Name]; ok {
		return Type{Kind: KindUnsupported, Name: call.Name, Reason: "no textual form for " + call.Name}
	}
	return Type{Kind: KindUnsupported, Name: call.Name, Reason: "unknown generic type " + call.Name}
}

func singleTypeArg(call program.GenericCall) (TypeID, string) {
	if len(call.Args) != 1 || call.Args[0].Kind != program.ArgType {
		return 0, "expects exactly one type argument"
	}
	return call.Args[0].Type, ""
}

func invalid(call program.GenericCall, reason string) Type {
	return Type{Kind: KindInvalid, Name: call.Name, Reason: call.Name + " " + reason}
}
