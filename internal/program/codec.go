package program

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotSchema is bumped whenever the encoded layout changes.
const SnapshotSchema uint16 = 1

// Snapshot is the on-disk envelope of an encoded Program.
type Snapshot struct {
	Schema  uint16   `msgpack:"schema"`
	Source  string   `msgpack:"source,omitempty"`
	Program *Program `msgpack:"program"`
}

// Encode writes p as a msgpack snapshot.
func Encode(w io.Writer, p *Program, sourcePath string) error {
	if p == nil {
		return fmt.Errorf("program: nothing to encode")
	}
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&Snapshot{Schema: SnapshotSchema, Source: sourcePath, Program: p})
}

// Decode reads a msgpack snapshot written by Encode.
func Decode(r io.Reader) (*Program, error) {
	var snap Snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("program: decode snapshot: %w", err)
	}
	if snap.Schema != SnapshotSchema {
		return nil, fmt.Errorf("program: snapshot schema %d, want %d", snap.Schema, SnapshotSchema)
	}
	if snap.Program == nil {
		return nil, fmt.Errorf("program: snapshot has no program")
	}
	return snap.Program, nil
}

// Marshal encodes p into a byte slice.
func Marshal(p *Program) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, p, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a byte slice produced by Marshal.
func Unmarshal(data []byte) (*Program, error) {
	return Decode(bytes.NewReader(data))
}
