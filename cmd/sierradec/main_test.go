package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sierradec/internal/diag"
	"sierradec/internal/program"
	"sierradec/internal/testkit"
	"sierradec/internal/types"
)

const addProgram = `type RangeCheck = RangeCheck [storable: true, drop: false, dup: false, zero_sized: false];
type u32 = u32 [storable: true, drop: true, dup: true, zero_sized: false];

libfunc u32_overflowing_add = u32_overflowing_add;
libfunc drop<u32> = drop<u32>;
libfunc u32_const<0> = u32_const<0>;

u32_overflowing_add([0], [1], [2]) { fallthrough([3], [4]) 2([5], [6]) };
return([3], [4]);
drop<u32>([6]) -> ();
u32_const<0>() -> ([7]);
return([5], [7]);

demo::add@0([0]: RangeCheck, [1]: u32, [2]: u32) -> (RangeCheck, u32);
`

const addOutput = `// demo::add
pub fn f_0(v0: RangeCheck, v1: u32, v2: u32) -> (RangeCheck, u32) {
    let (v4, v4_overflowed): (u32, bool) = v1 + v2;
    if !v4_overflowed {
        let v3: RangeCheck = v0;
        return v3, v4;
    } else {
        let v5: RangeCheck = v0;
        let v6: u32 = v4;
        drop(v6);
        let v7: u32 = 0;
        return v5, v7;
    }
}
`

const gasProgram = `type u32 = u32;

libfunc u32_const<1> = u32_const<1>;
libfunc withdraw_gas = withdraw_gas;

u32_const<1>() -> ([1]);
withdraw_gas() { fallthrough() 3() };
return([1]);
return([1]);
u32_const<1>() -> ([1]);
return([1]);

gas::f@0() -> (u32);
gas::g@4() -> (u32);
`

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	a := &app{}
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--color=off"))
	err := root.ExecuteContext(context.Background())
	a.close(err)
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeFile(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestDecompile_WritesFile(t *testing.T) {
	input := writeFile(t, "add.sierra", addProgram)
	output := filepath.Join(t.TempDir(), "add.cairo_dec")

	res := execute(t, "decompile", input, "-o", output, "--no-cache", "--ui=off")
	require.NoError(t, res.err, res.stderr)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, addOutput, string(data))
	assert.Contains(t, res.stderr, "wrote 1 functions to "+output)
}

func TestRoot_PositionalToStdout(t *testing.T) {
	input := writeFile(t, "add.sierra", addProgram)
	res := execute(t, input, "-o", "-", "--no-cache", "--ui=off", "--quiet")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, addOutput, res.stdout)
	assert.Empty(t, res.stderr)
}

func TestDecompile_IndentFlag(t *testing.T) {
	input := writeFile(t, "add.sierra", addProgram)
	res := execute(t, input, "-o", "-", "--indent", "2", "--no-cache", "--ui=off", "--quiet")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "\n  let (v4, v4_overflowed)")
	assert.Contains(t, res.stdout, "\n    let v3: RangeCheck = v0;")
}

func TestDecompile_LoadErrorIsReported(t *testing.T) {
	input := writeFile(t, "bad.sierra", "type [0] = felt252;\nlibfunc [0] = ;\n")
	output := filepath.Join(t.TempDir(), "out.cairo_dec")

	res := execute(t, input, "-o", output, "--no-cache", "--ui=off")
	require.ErrorIs(t, res.err, errReported)
	assert.Contains(t, res.stderr, "ERROR LOD1001")
	assert.Contains(t, res.stderr, "2 | libfunc [0] = ;")
	assert.Contains(t, res.stderr, "1 error")
	assert.NoFileExists(t, output)
}

func TestDecompile_JSONDiagnostics(t *testing.T) {
	input := writeFile(t, "gas.sierra", gasProgram)
	res := execute(t, input, "-o", "-", "--no-cache", "--ui=off", "--diag-format=json")
	require.ErrorIs(t, res.err, errReported)
	assert.Empty(t, res.stdout)

	var doc struct {
		Count       int `json:"count"`
		Diagnostics []struct {
			Code     string `json:"code"`
			Location struct {
				Function  string `json:"function"`
				Statement *int   `json:"statement"`
			} `json:"location"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stderr), &doc))
	require.Equal(t, 1, doc.Count)
	assert.Equal(t, "DEC3001", doc.Diagnostics[0].Code)
	assert.Equal(t, "f_0", doc.Diagnostics[0].Location.Function)
	require.NotNil(t, doc.Diagnostics[0].Location.Statement)
	assert.Equal(t, 1, *doc.Diagnostics[0].Location.Statement)
}

func TestDecompile_KeepGoing(t *testing.T) {
	input := writeFile(t, "gas.sierra", gasProgram)
	output := filepath.Join(t.TempDir(), "gas.cairo_dec")

	res := execute(t, input, "-o", output, "--keep-going", "--no-cache", "--ui=off", "--diag-format=short")
	require.ErrorIs(t, res.err, errReported)
	assert.Contains(t, res.stderr, "ERROR DEC3001 gas.sierra (f_0, statement 1)")
	assert.Contains(t, res.stderr, "1 of 2 functions failed")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "// f_0: statement 1: unsupported operator withdraw_gas"))
	assert.Contains(t, string(data), "pub fn f_1() -> (u32) {")
}

func TestDecompile_Timings(t *testing.T) {
	input := writeFile(t, "add.sierra", addProgram)
	res := execute(t, input, "-o", "-", "--no-cache", "--ui=off", "--timings", "--quiet")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "timings:")
	assert.Contains(t, res.stderr, "decompile")
	assert.Contains(t, res.stderr, "total")
}

func TestDecompile_UsesCache(t *testing.T) {
	input := writeFile(t, "add.sierra", addProgram)
	cacheDir := t.TempDir()

	first := execute(t, input, "-o", "-", "--cache-dir", cacheDir, "--ui=off", "--quiet")
	require.NoError(t, first.err, first.stderr)
	entries, err := os.ReadDir(filepath.Join(cacheDir, "programs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	second := execute(t, input, "-o", "-", "--cache-dir", cacheDir, "--ui=off", "--quiet")
	require.NoError(t, second.err, second.stderr)
	assert.Equal(t, first.stdout, second.stdout)

	cleaned := execute(t, "clean", "--cache-dir", cacheDir)
	require.NoError(t, cleaned.err)
	assert.Contains(t, cleaned.stdout, "cleared "+cacheDir)
	_, err = os.Stat(filepath.Join(cacheDir, "programs"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvert_SnapshotRoundTrip(t *testing.T) {
	input := writeFile(t, "add.sierra", addProgram)
	snap := filepath.Join(t.TempDir(), "add.mp")

	res := execute(t, "convert", input, "-o", snap)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "wrote "+snap+" (1 functions, 5 statements)")

	res = execute(t, snap, "-o", "-", "--no-cache", "--ui=off", "--quiet")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, addOutput, res.stdout)
}

func TestConvert_RejectsTextOutput(t *testing.T) {
	input := writeFile(t, "add.sierra", addProgram)
	res := execute(t, "convert", input, "-o", filepath.Join(t.TempDir(), "add.txt"))
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), ".mp or .msgpack")
}

func TestTypesCommand(t *testing.T) {
	input := writeFile(t, "add.sierra", addProgram)
	res := execute(t, "types", input, "--no-cache")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "[0] RangeCheck = RangeCheck\n[1] u32 = u32\n", res.stdout)
}

func TestPrintTypes_FailuresInline(t *testing.T) {
	b := testkit.NewBuilder()
	b.Of("Array", program.TypeID(9))
	b.Named("felt", "felt252")

	var out bytes.Buffer
	require.NoError(t, printTypes(&out, types.NewTable(b.Program())))
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[0] = <type [9]"), lines[0])
	assert.Equal(t, "[1] felt = felt252", lines[1])
}

func TestConfigCommand_EnvOverride(t *testing.T) {
	t.Setenv("SIERRADEC_OUTPUT_INDENT", "2")
	res := execute(t, "config")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "indent = 2")
	assert.Contains(t, res.stdout, `path = "out.cairo_dec"`)
}

func TestConfigFile_InvalidValueIsReported(t *testing.T) {
	cfg := writeFile(t, "sierradec.toml", "[output]\nindent = 0\n")
	res := execute(t, "config", "--config", cfg)
	require.ErrorIs(t, res.err, errReported)
	assert.Contains(t, res.stderr, "IO4003")
	assert.Contains(t, res.stderr, "output.indent must be between 1 and 16")
}

func TestNewReporter_DropsRepeats(t *testing.T) {
	bag := diag.NewBag(0)
	rep := newReporter(bag)
	loc := diag.Location{Path: "prog.sierra", Stmt: -1}
	diag.ReportWarning(rep, diag.IOCache, loc, "cache dir is a file").Emit()
	diag.ReportWarning(rep, diag.IOCache, loc, "cache dir is a file").Emit()
	diag.ReportWarning(rep, diag.IOCache, loc, "cache entry is corrupt").Emit()

	items := bag.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "cache dir is a file", items[0].Message)
	assert.Equal(t, "cache entry is corrupt", items[1].Message)
}

func TestVersionCommand(t *testing.T) {
	res := execute(t, "version", "--format", "json", "--full")
	require.NoError(t, res.err)
	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &payload))
	assert.Equal(t, "sierradec", payload.Tool)
	assert.NotEmpty(t, payload.Version)
	assert.NotEmpty(t, payload.GitCommit)

	res = execute(t, "version", "--format", "xml")
	require.Error(t, res.err)
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in   string
		want uiMode
		ok   bool
	}{
		{"", uiModeAuto, true},
		{"AUTO", uiModeAuto, true},
		{" on ", uiModeOn, true},
		{"off", uiModeOff, true},
		{"sometimes", "", false},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTraceStreamToFile(t *testing.T) {
	input := writeFile(t, "add.sierra", addProgram)
	tracePath := filepath.Join(t.TempDir(), "run.ndjson")
	res := execute(t, input, "-o", "-", "--no-cache", "--ui=off", "--quiet", "--trace", tracePath, "--trace-level", "detail")
	require.NoError(t, res.err, res.stderr)

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)
	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Contains(t, string(data), "decompile")
	assert.Contains(t, string(data), "f_0")
}

func TestProfilingFlags(t *testing.T) {
	input := writeFile(t, "add.sierra", addProgram)
	memPath := filepath.Join(t.TempDir(), "mem.pprof")
	res := execute(t, input, "-o", "-", "--no-cache", "--ui=off", "--quiet", "--mem-profile", memPath)
	require.NoError(t, res.err, res.stderr)
	info, err := os.Stat(memPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
