package sierra

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sierradec/internal/program"
	"sierradec/internal/source"
)

// Parse reads one Sierra text file into a Program. The first malformed
// construct aborts parsing with a *LoadError.
func Parse(f *source.File) (*program.Program, error) {
	if f == nil {
		return nil, fmt.Errorf("sierra: nil file")
	}
	p := &parser{file: f, lx: NewLexer(f)}
	raw, err := p.parseFile()
	if err != nil {
		return nil, err
	}
	return newResolver(f).resolve(raw)
}

// ParseString parses Sierra text held in memory; name is used in errors.
func ParseString(name, text string) (*program.Program, error) {
	return Parse(source.NewVirtual(name, text))
}

// IsSnapshot reports whether path names an encoded program snapshot.
func IsSnapshot(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp", ".msgpack":
		return true
	}
	return false
}

// Load reads path as Sierra text or, for .mp/.msgpack files, as an encoded
// snapshot. The returned file is nil for snapshots.
func Load(path string) (*program.Program, *source.File, error) {
	if IsSnapshot(path) {
		// snapshots are binary; source.Load would rewrite CRLF bytes
		// #nosec G304 -- path is provided by the caller
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fileError(path, ErrRead, err)
		}
		prog, err := program.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, nil, fileError(path, ErrSnapshot, err)
		}
		return prog, nil, nil
	}
	f, err := source.Load(path)
	if err != nil {
		return nil, nil, fileError(path, ErrRead, err)
	}
	prog, err := Parse(f)
	if err != nil {
		return nil, f, err
	}
	return prog, f, nil
}
