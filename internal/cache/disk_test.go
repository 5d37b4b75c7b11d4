package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"sierradec/internal/program"
	"sierradec/internal/testkit"
)

func sampleProgram() *program.Program {
	b := testkit.NewBuilder()
	u32 := b.Type("u32")
	dup := b.LibOf("dup", u32)
	b.Call(dup, []program.VarID{0}, 1, 2)
	b.Ret(1, 2)
	b.Func(0, 0, []program.TypeID{u32}, u32, u32)
	return b.Program()
}

func dump(t *testing.T, p *program.Program) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, program.Dump(&buf, p))
	return buf.String()
}

func TestDiskCache_PutGet(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)

	key := Sum([]byte("return();"))
	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	p := sampleProgram()
	require.NoError(t, c.Put(key, p, "prog.sierra"))

	got, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, dump(t, p), dump(t, got))

	entries, err := os.ReadDir(filepath.Join(c.Dir(), "programs"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not linger")
	assert.Equal(t, key.String()+".mp", entries[0].Name())
}

func TestDiskCache_SchemaMismatchIsMiss(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	key := Sum([]byte("x"))

	data, err := msgpack.Marshal(&payload{Schema: schema + 1, Snapshot: program.SnapshotSchema, Key: key[:], Program: sampleProgram()})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(c.Dir(), "programs"), 0o750))
	require.NoError(t, os.WriteFile(c.pathFor(key), data, 0o600))

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	key := Sum([]byte("y"))
	require.NoError(t, os.MkdirAll(filepath.Join(c.Dir(), "programs"), 0o750))
	require.NoError(t, os.WriteFile(c.pathFor(key), []byte{0xc1}, 0o600))

	_, ok, err := c.Get(key)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestDiskCache_DropAll(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.DropAll(), "dropping an empty cache is fine")

	key := Sum([]byte("z"))
	require.NoError(t, c.Put(key, sampleProgram(), ""))
	require.NoError(t, c.DropAll())

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := os.ReadDir(c.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDefaultDirHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "sierradec"), dir)
}

func TestNilCache(t *testing.T) {
	var c *DiskCache
	_, ok, err := c.Get(Digest{})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Put(Digest{}, nil, ""))
	assert.NoError(t, c.DropAll())
}
