package types

import (
	"fmt"

	"sierradec/internal/program"
)

// TypeID is the concrete type id of the loaded program.
type TypeID = program.TypeID

// Kind enumerates the structural kinds a concrete type specialises into.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindScalar
	KindArray
	KindStruct
	KindEnum
	KindNonZero
	KindNullable
	KindUninitialized
	KindSnapshot
	KindBox
	KindConst
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindNonZero:
		return "non-zero"
	case KindNullable:
		return "nullable"
	case KindUninitialized:
		return "uninitialized"
	case KindSnapshot:
		return "snapshot"
	case KindBox:
		return "box"
	case KindConst:
		return "const"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsWrapper reports kinds that render as Name<inner>.
func (k Kind) IsWrapper() bool {
	switch k {
	case KindNonZero, KindNullable, KindUninitialized, KindSnapshot, KindBox:
		return true
	}
	return false
}

// Type is the specialised descriptor of one concrete type declaration.
type Type struct {
	Kind Kind
	// Name is the scalar keyword or the generic name of the declaration.
	Name string
	// Elem is the element of arrays, the inner type of wrappers and consts.
	Elem TypeID
	// Members are struct members or enum variants, in order.
	Members []TypeID
	// User is the ut@ name of structs and enums.
	User string
	// Value is the base-10 literal of a const.
	Value string
	// Reason explains KindInvalid and KindUnsupported.
	Reason string
}

// MakeScalar describes a keyword type.
func MakeScalar(keyword string) Type {
	return Type{Kind: KindScalar, Name: keyword}
}

// MakeArray describes Array<elem>.
func MakeArray(elem TypeID) Type {
	return Type{Kind: KindArray, Name: "Array", Elem: elem}
}

// MakeWrapper describes a single-argument wrapper such as NonZero<elem>.
func MakeWrapper(kind Kind, elem TypeID) Type {
	return Type{Kind: kind, Name: wrapperNames[kind], Elem: elem}
}

// MakeStruct describes a struct with ordered members.
func MakeStruct(user string, members []TypeID) Type {
	return Type{Kind: KindStruct, Name: "Struct", User: user, Members: members}
}

// MakeEnum describes an enum with ordered variants.
func MakeEnum(user string, variants []TypeID) Type {
	return Type{Kind: KindEnum, Name: "Enum", User: user, Members: variants}
}

// MakeConst describes a constant of type inner.
func MakeConst(inner TypeID, value string) Type {
	return Type{Kind: KindConst, Name: "Const", Elem: inner, Value: value}
}

var wrapperNames = map[Kind]string{
	KindNonZero:       "NonZero",
	KindNullable:      "Nullable",
	KindUninitialized: "Uninitialized",
	KindSnapshot:      "Snapshot",
	KindBox:           "Box",
}
