package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPositionAcrossLines(t *testing.T) {
	f := NewVirtual("mem.sierra", "ab\ncd\n\nef")
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tt := range tests {
		if got := f.Position(tt.off); got != tt.want {
			t.Errorf("Position(%d) = %v, want %v", tt.off, got, tt.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	f := NewVirtual("mem.sierra", "first\nsecond\nthird")
	if got := f.GetLine(2); got != "second" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(3); got != "third" {
		t.Fatalf("GetLine(3) = %q", got)
	}
	if got := f.GetLine(0); got != "" {
		t.Fatalf("GetLine(0) = %q", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Fatalf("GetLine(9) = %q", got)
	}
}

func TestCRLFAndBOMNormalization(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\rc")...)
	f := NewFile("x", raw, FileVirtual)
	if string(f.Content) != "a\nb\rc" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags not recorded: %b", f.Flags)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.sierra")
	if err := os.WriteFile(path, []byte("return();\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Flags&FileVirtual != 0 {
		t.Fatalf("disk file must not be virtual")
	}
	if f.Len() != 10 {
		t.Fatalf("Len = %d", f.Len())
	}
	if _, err := Load(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSpanCover(t *testing.T) {
	got := Span{Start: 4, End: 6}.Cover(Span{Start: 1, End: 5})
	if got != (Span{Start: 1, End: 6}) {
		t.Fatalf("Cover = %v", got)
	}
	if !(Span{Start: 3, End: 3}).Empty() {
		t.Fatalf("expected empty span")
	}
}
