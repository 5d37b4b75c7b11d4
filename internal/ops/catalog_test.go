package ops

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sierradec/internal/program"
	"sierradec/internal/testkit"
	"sierradec/internal/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		arith ArithOp
		int   string
	}{
		{"branch_align", KindBranchAlign, 0, ""},
		{"disable_ap_tracking", KindApTracking, 0, ""},
		{"store_temp", KindStoreTemp, 0, ""},
		{"u32_overflowing_add", KindCheckedArith, OpAdd, "u32"},
		{"u128_overflowing_sub", KindCheckedArith, OpSub, "u128"},
		{"u8_overflowing_add", KindCheckedArith, OpAdd, "u8"},
		{"i32_overflowing_add_impl", KindIntArith, 0, ""},
		{"u32_const", KindConst, 0, ""},
		{"u64_eq", KindIntCompare, 0, ""},
		{"u16_try_from_felt252", KindIntConvert, 0, ""},
		{"u128s_from_felt252", KindUnknown, 0, ""},
		{"withdraw_gas", KindGas, 0, ""},
		{"enum_match", KindEnumMatch, 0, ""},
		{"storage_read_syscall", KindSyscall, 0, ""},
		{"ec_point_zero", KindEc, 0, ""},
		{"frobnicate", KindUnknown, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, arith, intName := classify(tt.name)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.arith, arith)
			assert.Equal(t, tt.int, intName)
		})
	}
}

func TestKind_Predicates(t *testing.T) {
	assert.True(t, KindStoreLocal.IsNoOp())
	assert.False(t, KindDrop.IsNoOp())
	assert.True(t, KindCheckedArith.Supported())
	assert.True(t, KindBranchAlign.Supported())
	assert.False(t, KindGas.Supported())
	assert.False(t, KindUnknown.Supported())
	assert.Equal(t, "checked-arith", KindCheckedArith.String())
	assert.Equal(t, "-", OpSub.String())
}

type fixture struct {
	b                        *testkit.Builder
	felt, u32, rc, arr, snap types.TypeID
	pair, option             types.TypeID
	seven                    types.TypeID
}

func newFixture() *fixture {
	b := testkit.NewBuilder()
	f := &fixture{b: b}
	f.felt = b.Type("felt252")
	f.u32 = b.Type("u32")
	f.rc = b.Type("RangeCheck")
	f.arr = b.Of("Array", f.u32)
	f.snap = b.Of("Snapshot", f.arr)
	f.pair = b.Type("Struct", program.UserTypeArg("Tuple"), program.TypeArg(f.u32), program.TypeArg(f.felt))
	f.option = b.Type("Enum", program.UserTypeArg("Option"), program.TypeArg(f.u32), program.TypeArg(f.pair))
	f.seven = b.Type("Const", program.TypeArg(f.u32), program.IntArg(7))
	return f
}

func (f *fixture) catalog() *Catalog {
	p := f.b.Program()
	return NewCatalog(p, types.NewTable(p))
}

func TestCatalog_Signatures(t *testing.T) {
	f := newFixture()
	b := f.b
	callee := program.FuncID(3)
	b.Func(callee, 0, []types.TypeID{f.u32}, f.u32, f.felt)

	libs := map[string]program.LibfuncID{
		"array_new":           b.LibOf("array_new", f.u32),
		"array_append":        b.LibOf("array_append", f.u32),
		"struct_construct":    b.LibOf("struct_construct", f.pair),
		"struct_deconstruct":  b.LibOf("struct_deconstruct", f.pair),
		"enum_init":           b.Libfunc("enum_init", program.TypeArg(f.option), program.IntArg(1)),
		"const_as_immediate":  b.LibOf("const_as_immediate", f.seven),
		"felt252_const":       b.Libfunc("felt252_const", program.IntArg(-3)),
		"drop":                b.LibOf("drop", f.arr),
		"dup":                 b.LibOf("dup", f.felt),
		"snapshot_take":       b.LibOf("snapshot_take", f.arr),
		"function_call":       b.Libfunc("function_call", program.UserFuncArg(callee)),
		"u32_overflowing_sub": b.Libfunc("u32_overflowing_sub"),
		"store_temp":          b.LibOf("store_temp", f.u32),
		"branch_align":        b.Libfunc("branch_align"),
	}
	c := f.catalog()
	require.NoError(t, c.Preload())

	op := func(name string) *Operator {
		o, err := c.Operator(libs[name])
		require.NoError(t, err, name)
		return o
	}
	results := func(o *Operator) [][]types.TypeID {
		out := make([][]types.TypeID, len(o.Branches))
		for i, br := range o.Branches {
			out[i] = br.Results
		}
		return out
	}

	assert.Equal(t, [][]types.TypeID{{f.arr}}, results(op("array_new")))
	assert.Equal(t, f.u32, op("array_append").Elem)
	assert.Equal(t, [][]types.TypeID{{f.pair}}, results(op("struct_construct")))
	assert.Equal(t, 2, op("struct_construct").Arity)
	assert.Equal(t, [][]types.TypeID{{f.u32, f.felt}}, results(op("struct_deconstruct")))

	enum := op("enum_init")
	assert.Equal(t, 1, enum.Variant)
	assert.Equal(t, f.option, enum.Target)
	assert.Equal(t, 1, enum.Arity)

	imm := op("const_as_immediate")
	assert.Equal(t, "7", imm.Value)
	assert.Equal(t, [][]types.TypeID{{f.u32}}, results(imm))

	fc := op("felt252_const")
	assert.Equal(t, "-3", fc.Value)
	assert.Equal(t, f.felt, fc.Elem)

	drop := op("drop")
	require.Len(t, drop.Branches, 1)
	assert.Empty(t, drop.Branches[0].Results)
	assert.Equal(t, [][]types.TypeID{{f.felt, f.felt}}, results(op("dup")))
	assert.Equal(t, [][]types.TypeID{{f.arr, f.snap}}, results(op("snapshot_take")))

	call := op("function_call")
	assert.Equal(t, callee, call.Callee)
	assert.Equal(t, 1, call.Arity)
	assert.Equal(t, [][]types.TypeID{{f.u32, f.felt}}, results(call))

	sub := op("u32_overflowing_sub")
	assert.Equal(t, OpSub, sub.Arith)
	assert.Equal(t, f.u32, sub.Int)
	assert.Equal(t, [][]types.TypeID{{f.rc, f.u32}, {f.rc, f.u32}}, results(sub))

	assert.True(t, op("store_temp").Kind.IsNoOp())
	align := op("branch_align")
	require.Len(t, align.Branches, 1)
	assert.Empty(t, align.Branches[0].Results)
}

func TestCatalog_Unsupported(t *testing.T) {
	f := newFixture()
	gas := f.b.Libfunc("withdraw_gas")
	odd := f.b.Libfunc("frobnicate", program.IntArg(1))
	c := f.catalog()

	op, err := c.Operator(gas)
	require.NoError(t, err)
	assert.Equal(t, KindGas, op.Kind)
	assert.Contains(t, op.Reason, "withdraw_gas")
	assert.Empty(t, op.Branches)

	op, err = c.Operator(odd)
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, op.Kind)
	assert.Equal(t, "unknown libfunc frobnicate", op.Reason)
}

func TestCatalog_LookupErrors(t *testing.T) {
	f := newFixture()
	b := f.b
	felt := f.felt
	noArray := b.LibOf("array_new", felt)
	badEnum := b.Libfunc("enum_init", program.TypeArg(f.option), program.IntArg(5))
	notStruct := b.LibOf("struct_construct", f.u32)
	noCallee := b.Libfunc("function_call", program.UserFuncArg(42))
	undeclared := b.LibOf("drop", types.TypeID(1000))
	c := f.catalog()

	tests := []struct {
		name string
		id   program.LibfuncID
		msg  string
	}{
		{"missing concrete type", noArray, "no concrete type Array<[0]>"},
		{"variant out of range", badEnum, "variant index 5 out of range"},
		{"wrong type kind", notStruct, "is a scalar, want struct"},
		{"missing callee", noCallee, "callee [42] is not declared"},
		{"undeclared type", undeclared, "type [1000] is not declared"},
		{"unknown id", 999, "unknown libfunc id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Operator(tt.id)
			require.Error(t, err)
			var lookupErr *LookupError
			require.True(t, errors.As(err, &lookupErr), "expected *LookupError, got %T", err)
			assert.Equal(t, tt.id, lookupErr.ID)
			assert.Contains(t, lookupErr.Error(), tt.msg)
		})
	}
	assert.Error(t, c.Preload())
}

func TestCatalog_ConcurrentOperator(t *testing.T) {
	f := newFixture()
	id := f.b.LibOf("array_new", f.u32)
	c := f.catalog()

	const workers = 16
	got := make([]*Operator, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			op, err := c.Operator(id)
			if err == nil {
				got[i] = op
			}
		}()
	}
	wg.Wait()
	for i := range workers {
		require.NotNil(t, got[i])
		assert.Same(t, got[0], got[i])
	}
}
