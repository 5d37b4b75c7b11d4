package types

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"sierradec/internal/testkit"
)

var scalarPool = []string{"felt252", "u8", "u16", "u32", "u64", "u128", "i8", "i64", "bytes31", "RangeCheck"}

var wrapperPool = []string{"Array", "NonZero", "Nullable", "Snapshot", "Box", "Uninitialized"}

// TestProperty_ResolveComposes checks that wrapping a type with Name<...>
// always renders as Name<resolve(inner)> and that resolution is repeatable.
func TestProperty_ResolveComposes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("wrapper resolves as Name<inner>", prop.ForAll(
		func(scalar int, chain []int) bool {
			b := testkit.NewBuilder()
			id := b.Type(scalarPool[scalar])
			want := scalarPool[scalar]
			ids := []TypeID{id}
			for _, w := range chain {
				name := wrapperPool[w]
				id = b.Of(name, id)
				want = name + "<" + want + ">"
				ids = append(ids, id)
			}
			table := NewTable(b.Program())
			got, err := table.Resolve(id)
			if err != nil || got != want {
				return false
			}
			for i := 1; i < len(ids); i++ {
				outer, err1 := table.Resolve(ids[i])
				inner, err2 := table.Resolve(ids[i-1])
				if err1 != nil || err2 != nil {
					return false
				}
				name := wrapperPool[chain[i-1]]
				if outer != name+"<"+inner+">" {
					return false
				}
			}
			again, err := table.Resolve(id)
			return err == nil && again == got
		},
		gen.IntRange(0, len(scalarPool)-1),
		gen.SliceOfN(12, gen.IntRange(0, len(wrapperPool)-1)),
	))

	properties.TestingRun(t)
}
