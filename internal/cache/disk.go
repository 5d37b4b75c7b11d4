// Package cache keeps parsed programs on disk keyed by the digest of their
// Sierra text, so repeated runs over the same input skip parsing.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sierradec/internal/program"
)

// schema is bumped when the payload layout changes.
const schema uint16 = 1

// Digest identifies cached input.
type Digest [sha256.Size]byte

// Sum hashes input text.
func Sum(data []byte) Digest { return sha256.Sum256(data) }

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

type payload struct {
	Schema   uint16           `msgpack:"schema"`
	Snapshot uint16           `msgpack:"snapshot"`
	Key      []byte           `msgpack:"key"`
	Source   string           `msgpack:"source,omitempty"`
	Stored   time.Time        `msgpack:"stored"`
	Program  *program.Program `msgpack:"program"`
}

// DiskCache stores one msgpack file per digest under <dir>/programs.
// Safe for concurrent use within a process; writes replace files atomically.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir is $XDG_CACHE_HOME/sierradec, falling back to ~/.cache/sierradec.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cache: locate home directory: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "sierradec"), nil
}

// Open returns a cache rooted at dir, or at DefaultDir when dir is empty.
func Open(dir string) (*DiskCache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "programs", key.String()+".mp")
}

// Get returns the program stored for key. Entries written with another
// schema are misses, not errors.
func (c *DiskCache) Get(key Digest) (*program.Program, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: %w", err)
	}
	var p payload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	if p.Schema != schema || p.Snapshot != program.SnapshotSchema || p.Program == nil {
		return nil, false, nil
	}
	if string(p.Key) != string(key[:]) {
		return nil, false, fmt.Errorf("cache: entry %s holds key %x", key, p.Key)
	}
	return p.Program, true, nil
}

// Put stores prog under key.
func (c *DiskCache) Put(key Digest, prog *program.Program, source string) error {
	if c == nil {
		return nil
	}
	data, err := msgpack.Marshal(&payload{
		Schema:   schema,
		Snapshot: program.SnapshotSchema,
		Key:      key[:],
		Source:   source,
		Stored:   time.Now().UTC(),
		Program:  prog,
	})
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	path := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return writeAtomic(path, data)
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// rename first so a concurrent reader never sees a half-removed tree
	live := filepath.Join(c.dir, "programs")
	old := live + ".old-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := os.Rename(live, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("cache: %w", err)
	}
	return os.RemoveAll(old)
}

// writeAtomic writes data to a temp file next to path and renames it over path.
func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("cache: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}
