package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sierradec/internal/diag"
	"sierradec/internal/source"
)

func sampleBag() *diag.Bag {
	b := diag.NewBag(0)
	b.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.LoadSyntax,
		Message:  "unexpected ';', expected '='",
		Loc:      diag.At("/work/prog.sierra", source.LineCol{Line: 2, Col: 10}),
		Notes:    []diag.Note{{Msg: "in type declaration"}},
	})
	b.Add(diag.New(diag.SevError, diag.DecCycle, diag.InFunc("/work/prog.sierra", "f_4", 0), "control-flow cycle"))
	return b
}

func TestPrettyPlain(t *testing.T) {
	src := source.NewVirtual("/work/prog.sierra", "type [0] = felt252;\ntype [1] u32;\n")
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{
		PathMode:  PathModeBasename,
		ShowNotes: true,
		Sources: func(path string) *source.File {
			if path == "/work/prog.sierra" {
				return src
			}
			return nil
		},
	})
	want := "prog.sierra:2:10: ERROR LOD1001: unexpected ';', expected '='\n" +
		" 2 | type [1] u32;\n" +
		"   |          ^\n" +
		"  note: in type declaration\n" +
		"prog.sierra (f_4, statement 0): ERROR DEC3003: control-flow cycle\n"
	assert.Equal(t, want, buf.String())
}

func TestPrettyColor(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{Color: true, PathMode: PathModeBasename})
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "control-flow cycle")
}

func TestPathModes(t *testing.T) {
	assert.Equal(t, "prog.sierra", formatPath("/work/src/prog.sierra", PathModeBasename, ""))
	assert.Equal(t, "src/prog.sierra", formatPath("/work/src/prog.sierra", PathModeRelative, "/work"))
	assert.Equal(t, "/other/prog.sierra", formatPath("/other/prog.sierra", PathModeAuto, "/work"))
	assert.Equal(t, "-", formatPath("-", PathModeAbsolute, ""))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleBag(), JSONOpts{PathMode: PathModeBasename, IncludeNotes: true, Max: 1}))

	var out DiagnosticsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 2, out.Count)
	assert.True(t, out.Truncated)
	require.Len(t, out.Diagnostics, 1)
	d := out.Diagnostics[0]
	assert.Equal(t, "LOD1001", d.Code)
	assert.Equal(t, "prog.sierra", d.Location.File)
	assert.Equal(t, uint32(2), d.Location.Line)
	assert.Nil(t, d.Location.Statement)
	assert.Equal(t, []string{"in type declaration"}, d.Notes)
}

func TestJSONStatement(t *testing.T) {
	out := BuildJSON(sampleBag(), JSONOpts{})
	require.Len(t, out.Diagnostics, 2)
	require.NotNil(t, out.Diagnostics[1].Location.Statement)
	assert.Equal(t, 0, *out.Diagnostics[1].Location.Statement)
	assert.Equal(t, "f_4", out.Diagnostics[1].Location.Function)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "2 errors", Summary(sampleBag()))
	b := diag.NewBag(0)
	b.Add(diag.New(diag.SevWarning, diag.DecInfo, diag.Location{Stmt: -1}, "w"))
	b.Add(diag.New(diag.SevError, diag.DecInfo, diag.Location{Stmt: -1}, "e"))
	assert.Equal(t, "1 error, 1 warning", Summary(b))
	assert.Empty(t, Summary(diag.NewBag(0)))
}
