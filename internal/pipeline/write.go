package pipeline

import (
	"io"
	"os"
	"path/filepath"
)

// writeOutput replaces path atomically so a failed run never leaves a
// truncated file behind.
func writeOutput(path string, stdout io.Writer, text string) error {
	if path == "-" {
		if stdout == nil {
			stdout = os.Stdout
		}
		if _, err := io.WriteString(stdout, text); err != nil {
			return &WriteError{Path: path, Err: err}
		}
		return nil
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	name := tmp.Name()
	_, werr := io.WriteString(tmp, text)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(name, 0o644)
	}
	if werr == nil {
		werr = os.Rename(name, path)
	}
	if werr != nil {
		_ = os.Remove(name)
		return &WriteError{Path: path, Err: werr}
	}
	return nil
}
