package fuzztests

import (
	"bytes"
	"context"
	"testing"
	"time"

	"sierradec/internal/decompile"
	"sierradec/internal/program"
	"sierradec/internal/sierra"
)

// runTimeout bounds one decompilation; longer means the walker loops.
const runTimeout = 5 * time.Second

func FuzzParseProgram(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clip(input)
		p, err := sierra.ParseString("fuzz.sierra", string(input))
		if err != nil {
			return
		}

		// a parsed program survives the snapshot codec unchanged
		data, err := program.Marshal(p)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		back, err := program.Unmarshal(data)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		var want, got bytes.Buffer
		if err := program.Dump(&want, p); err != nil {
			t.Fatalf("dump: %v", err)
		}
		if err := program.Dump(&got, back); err != nil {
			t.Fatalf("dump: %v", err)
		}
		if want.String() != got.String() {
			t.Fatalf("snapshot round trip changed the program:\n%s\n---\n%s", want.String(), got.String())
		}
	})
}

func FuzzDecompileNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clip(input)
		p, err := sierra.ParseString("fuzz.sierra", string(input))
		if err != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			d := decompile.NewFromProgram(p, decompile.Options{Jobs: 1, KeepGoing: true, MaxSteps: 4096})
			_, _ = d.Program(ctx)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("decompile did not finish within %v\ninput (%d bytes): %q",
				runTimeout, len(input), truncateForLog(input, 200))
		}
	})
}
