package decompile

import (
	"context"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"sierradec/internal/program"
	"sierradec/internal/testkit"
)

// treeGen lays out a random branching tree of statements. A script of small
// integers drives it: 1 adds a constant, 2 adds a checked add, anything else
// (or the end of the script) returns.
type treeGen struct {
	b      *testkit.Builder
	script []int
	pos    int
	next   program.VarID
	add    program.LibfuncID
	konst  program.LibfuncID

	checked int
	consts  int
	leaves  int
}

func (g *treeGen) take() int {
	if g.pos >= len(g.script) {
		return 0
	}
	v := g.script[g.pos]
	g.pos++
	return v
}

func (g *treeGen) fresh() program.VarID {
	v := g.next
	g.next++
	return v
}

func (g *treeGen) build(depth int, rc, x, y program.VarID) {
	switch op := g.take(); {
	case op == 1:
		v := g.fresh()
		g.b.Call(g.konst, nil, v)
		g.consts++
		g.build(depth, rc, v, y)
	case op == 2 && depth < 6:
		rc0, sum, rc1, wrapped := g.fresh(), g.fresh(), g.fresh(), g.fresh()
		idx := g.b.Stmt(program.Invoke(g.add, []program.VarID{rc, x, y},
			fallthroughTo(rc0, sum), jumpTo(0, rc1, wrapped)))
		g.checked++
		g.build(depth+1, rc0, sum, y)
		g.b.Statement(idx).Invocation.Branches[1].Target = program.Jump(g.b.Next())
		g.build(depth+1, rc1, wrapped, x)
	default:
		g.b.Ret(rc, x)
		g.leaves++
	}
}

func newTree(script []int) (*treeGen, *program.Program) {
	b := testkit.NewBuilder()
	u32 := b.Type("u32")
	rc := b.Type("RangeCheck")
	g := &treeGen{
		b:      b,
		script: script,
		next:   3,
		add:    b.Libfunc("u32_overflowing_add"),
		konst:  b.Libfunc("u32_const", program.IntArg(9)),
	}
	g.build(0, 0, 1, 2)
	b.Func(0, 0, []program.TypeID{rc, u32, u32}, rc, u32)
	return g, b.Program()
}

func TestProperty_TreeWalk(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every statement of a tree is visited exactly once", prop.ForAll(
		func(script []int) bool {
			g, p := newTree(script)
			res := NewFromProgram(p, Options{}).Function(context.Background(), &p.Funcs[0])
			if res.Err != nil {
				return false
			}
			return res.Steps == len(p.Statements) && res.Steps == g.checked+g.consts+g.leaves
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.Property("checked adds open exactly one if/else each", prop.ForAll(
		func(script []int) bool {
			g, p := newTree(script)
			res := NewFromProgram(p, Options{}).Function(context.Background(), &p.Funcs[0])
			if res.Err != nil {
				return false
			}
			text := res.Text
			return strings.Count(text, "_overflowed): (u32, bool) = ") == g.checked &&
				strings.Count(text, "if !v") == g.checked &&
				strings.Count(text, "} else {") == g.checked &&
				strings.Count(text, "let v") >= g.consts
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.Property("each leaf ends its path with one return", prop.ForAll(
		func(script []int) bool {
			g, p := newTree(script)
			res := NewFromProgram(p, Options{Indent: 3}).Function(context.Background(), &p.Funcs[0])
			if res.Err != nil {
				return false
			}
			returns := 0
			for _, line := range strings.Split(res.Text, "\n") {
				if strings.HasPrefix(strings.TrimSpace(line), "return ") {
					returns++
				}
			}
			return returns == g.leaves && testkit.CheckOutputInvariants(res.Text, 3) == nil
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}
