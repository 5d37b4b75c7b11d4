package program

import (
	"fmt"
	"math/big"
	"strings"
)

// ArgKind distinguishes generic argument forms.
type ArgKind uint8

const (
	// ArgType references a concrete type declaration.
	ArgType ArgKind = iota
	// ArgValue is an integer literal of arbitrary precision.
	ArgValue
	// ArgUserFunc references a user function (user@...).
	ArgUserFunc
	// ArgUserType is a user type name (ut@...), kept as text.
	ArgUserType
	// ArgLibfunc references a libfunc declaration (lib@...).
	ArgLibfunc
)

// GenericArg is one argument of a generic type or libfunc.
type GenericArg struct {
	Kind    ArgKind   `msgpack:"k"`
	Type    TypeID    `msgpack:"t,omitempty"`
	Value   string    `msgpack:"v,omitempty"` // base-10
	Func    FuncID    `msgpack:"f,omitempty"`
	Name    string    `msgpack:"n,omitempty"`
	Libfunc LibfuncID `msgpack:"l,omitempty"`
}

// TypeArg builds a type argument.
func TypeArg(id TypeID) GenericArg { return GenericArg{Kind: ArgType, Type: id} }

// ValueArg builds a value argument.
func ValueArg(v *big.Int) GenericArg { return GenericArg{Kind: ArgValue, Value: v.String()} }

// IntArg builds a value argument from a machine integer.
func IntArg(v int64) GenericArg { return ValueArg(big.NewInt(v)) }

// UserFuncArg builds a user@ argument.
func UserFuncArg(id FuncID) GenericArg { return GenericArg{Kind: ArgUserFunc, Func: id} }

// UserTypeArg builds a ut@ argument.
func UserTypeArg(name string) GenericArg { return GenericArg{Kind: ArgUserType, Name: name} }

// BigValue parses the value of an ArgValue argument.
func (a GenericArg) BigValue() (*big.Int, bool) {
	if a.Kind != ArgValue {
		return nil, false
	}
	v, ok := new(big.Int).SetString(a.Value, 10)
	return v, ok
}

func (a GenericArg) String() string {
	switch a.Kind {
	case ArgType:
		return a.Type.String()
	case ArgValue:
		return a.Value
	case ArgUserFunc:
		return "user@" + a.Func.String()
	case ArgUserType:
		return "ut@" + a.Name
	case ArgLibfunc:
		return "lib@" + a.Libfunc.String()
	default:
		return "?"
	}
}

// GenericCall is a generic name applied to arguments, e.g. Array<[0]>.
type GenericCall struct {
	Name string       `msgpack:"name"`
	Args []GenericArg `msgpack:"args,omitempty"`
}

func (g GenericCall) String() string {
	if len(g.Args) == 0 {
		return g.Name
	}
	parts := make([]string, len(g.Args))
	for i, a := range g.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", g.Name, strings.Join(parts, ", "))
}
