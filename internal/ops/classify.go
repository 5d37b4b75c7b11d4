package ops

import "strings"

var exactKinds = map[string]Kind{
	"branch_align":        KindBranchAlign,
	"disable_ap_tracking": KindApTracking,
	"enable_ap_tracking":  KindApTracking,
	"store_temp":          KindStoreTemp,
	"store_local":         KindStoreLocal,
	"alloc_local":         KindAllocLocal,
	"finalize_locals":     KindFinalizeLocals,
	"array_new":           KindArrayNew,
	"array_append":        KindArrayAppend,
	"struct_construct":    KindStructConstruct,
	"struct_deconstruct":  KindStructDeconstruct,
	"enum_init":           KindEnumInit,
	"const_as_immediate":  KindConst,
	"felt252_const":       KindConst,
	"bytes31_const":       KindConst,
	"drop":                KindDrop,
	"dup":                 KindDup,
	"rename":              KindRename,
	"snapshot_take":       KindSnapshotTake,
	"function_call":       KindFunctionCall,

	"withdraw_gas":                KindGas,
	"withdraw_gas_all":            KindGas,
	"redeposit_gas":               KindGas,
	"get_builtin_costs":           KindGas,
	"get_available_gas":           KindGas,
	"jump":                        KindJump,
	"enum_match":                  KindEnumMatch,
	"enum_snapshot_match":         KindEnumMatch,
	"enum_from_bounded_int":       KindEnumMatch,
	"array_get":                   KindArrayQuery,
	"array_len":                   KindArrayQuery,
	"array_slice":                 KindArrayQuery,
	"array_pop_front":             KindArrayQuery,
	"array_pop_front_consume":     KindArrayQuery,
	"array_snapshot_pop_front":    KindArrayQuery,
	"array_snapshot_pop_back":     KindArrayQuery,
	"span_from_tuple":             KindArrayQuery,
	"tuple_from_span":             KindArrayQuery,
	"upcast":                      KindIntConvert,
	"downcast":                    KindIntConvert,
	"felt252_add":                 KindFelt252Arith,
	"felt252_sub":                 KindFelt252Arith,
	"felt252_mul":                 KindFelt252Arith,
	"felt252_div":                 KindFelt252Arith,
	"felt252_is_zero":             KindFelt252Arith,
	"into_box":                    KindBox,
	"unbox":                       KindBox,
	"box_forward_snapshot":        KindBox,
	"null":                        KindNullable,
	"nullable_from_box":           KindNullable,
	"match_nullable":              KindNullable,
	"nullable_forward_snapshot":   KindNullable,
	"unwrap_non_zero":             KindNonZero,
	"bool_and_impl":               KindBool,
	"bool_or_impl":                KindBool,
	"bool_xor_impl":               KindBool,
	"bool_not_impl":               KindBool,
	"bool_to_felt252":             KindBool,
	"pedersen":                    KindHash,
	"hades_permutation":           KindHash,
	"keccak_syscall":              KindSyscall,
	"felt252_dict_new":            KindDict,
	"felt252_dict_squash":         KindDict,
	"felt252_dict_entry_get":      KindDict,
	"felt252_dict_entry_finalize": KindDict,
}

var intTypes = []string{"u8", "u16", "u32", "u64", "u128", "u256", "u512", "i8", "i16", "i32", "i64", "i128"}

// classify maps a generic libfunc name onto its kind. For checked arithmetic
// it also returns the operator and integer type name.
func classify(name string) (Kind, ArithOp, string) {
	if k, ok := exactKinds[name]; ok {
		return k, 0, ""
	}
	if strings.HasSuffix(name, "_syscall") {
		return KindSyscall, 0, ""
	}
	if strings.HasPrefix(name, "ec_") {
		return KindEc, 0, ""
	}
	for _, it := range intTypes {
		rest, ok := strings.CutPrefix(name, it+"_")
		if !ok {
			continue
		}
		checked := it[0] == 'u' && it != "u256" && it != "u512"
		switch rest {
		case "overflowing_add":
			if checked {
				return KindCheckedArith, OpAdd, it
			}
		case "overflowing_sub":
			if checked {
				return KindCheckedArith, OpSub, it
			}
		case "const":
			return KindConst, 0, ""
		case "eq", "lt", "le", "is_zero":
			return KindIntCompare, 0, ""
		case "to_felt252", "try_from_felt252", "from_felt252", "byte_reverse":
			return KindIntConvert, 0, ""
		}
		return KindIntArith, 0, ""
	}
	if strings.HasPrefix(name, "bounded_int_") {
		return KindIntArith, 0, ""
	}
	return KindUnknown, 0, ""
}
