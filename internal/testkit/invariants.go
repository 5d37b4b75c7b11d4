package testkit

import (
	"fmt"
	"strings"
)

// CheckOutputInvariants runs structural checks on decompiled text:
// 1) every line is indented by a multiple of indent spaces
// 2) '{' and '}' line endings balance, and nesting never goes negative
// 3) each line's indentation matches the current nesting depth
// 4) nothing follows a return at the same depth inside one block
func CheckOutputInvariants(text string, indent int) error {
	if indent <= 0 {
		return fmt.Errorf("indent must be positive, got %d", indent)
	}
	depth := 0
	returned := map[int]bool{}
	for n, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		lineNo := n + 1
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		spaces := len(line) - len(trimmed)
		if spaces%indent != 0 {
			return fmt.Errorf("line %d: indentation %d is not a multiple of %d", lineNo, spaces, indent)
		}
		closes := strings.HasPrefix(trimmed, "}")
		want := depth
		if closes {
			want--
		}
		if want < 0 {
			return fmt.Errorf("line %d: unbalanced '}'", lineNo)
		}
		if spaces/indent != want {
			return fmt.Errorf("line %d: indentation depth %d, want %d", lineNo, spaces/indent, want)
		}
		if closes {
			delete(returned, depth)
			depth--
		}
		if returned[depth] && !closes {
			return fmt.Errorf("line %d: statement after return", lineNo)
		}
		if strings.HasPrefix(trimmed, "return") {
			returned[depth] = true
		}
		if strings.HasSuffix(trimmed, "{") {
			depth++
			delete(returned, depth)
		}
	}
	if depth != 0 {
		return fmt.Errorf("unclosed block: depth %d at end of output", depth)
	}
	return nil
}
