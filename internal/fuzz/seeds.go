package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxFuzzInput = 1 << 16 // 64 KiB
	maxSeedBytes = 64 << 10
)

// languageSeeds cover every statement form plus a few broken programs.
var languageSeeds = []string{
	`type RangeCheck = RangeCheck [storable: true, drop: false, dup: false, zero_sized: false];
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
`,
	`type [0] = felt252;
type [1] = Array<[0]>;
type [2] = Struct<ut@Tuple, [0], [1]>;
type [3] = Enum<ut@core::option::Option::<core::felt252>, [0], [2]>;
libfunc [0] = array_new<[0]>;
libfunc [1] = felt252_const<-5>;
libfunc [2] = array_append<[0]>;
libfunc [3] = function_call<user@demo::main>;
[0]() -> ([0]);
[1]() -> ([1]);
[2]([0], [1]) -> ([2]);
return([2]);
demo::main@0() -> ([1]);
`,
	`type u32 = u32;
libfunc jump = jump;
jump() { 0() };
f@0() -> ();
`,
	"// only a comment\n",
	"type [0] = felt252;\nlibfunc [0] = ;\n",
	"return([0]\n",
	"f@99() -> ();",
	"type [0] = felt252 [drop: maybe];",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

// addTestdataSeeds adds every *.sierra file under the repository testdata
// directory, when there is one.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".sierra" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil || len(src) > maxSeedBytes {
			return nil
		}
		f.Add(src)
		return nil
	})
}

func clip(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}

// truncateForLog truncates input for logging purposes.
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
