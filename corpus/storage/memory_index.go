package storage

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/chronotext/chronotext/corpus"
)

// MemoryIndex is an in-memory IndexAccess used for tests and small
// corpora. Values are stored encoded so cursors exercise the same
// codec path as the on-disk store.
type MemoryIndex struct {
	name   string
	values map[string][]byte
	keys   [][]byte
	sorted bool
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex(name string) *MemoryIndex {
	return &MemoryIndex{
		name:   name,
		values: make(map[string][]byte),
	}
}

// Put stores an encoded position list under key, replacing any
// previous value.
func (m *MemoryIndex) Put(key []byte, positions corpus.PositionList) {
	k := string(key)
	if _, exists := m.values[k]; !exists {
		m.keys = append(m.keys, []byte(k))
		m.sorted = false
	}
	m.values[k] = EncodePositions(positions)
}

// Append adds positions to any existing list under key.
func (m *MemoryIndex) Append(key []byte, positions ...corpus.Position) error {
	existing, ok, err := m.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		m.Put(key, positions)
		return nil
	}
	m.Put(key, append(existing, positions...))
	return nil
}

// PutRaw stores raw value bytes, bypassing the codec. Used by tests
// that need to simulate corruption.
func (m *MemoryIndex) PutRaw(key, value []byte) {
	k := string(key)
	if _, exists := m.values[k]; !exists {
		m.keys = append(m.keys, []byte(k))
		m.sorted = false
	}
	m.values[k] = value
}

func (m *MemoryIndex) ensureSorted() {
	if !m.sorted {
		sort.Slice(m.keys, func(i, j int) bool {
			return bytes.Compare(m.keys[i], m.keys[j]) < 0
		})
		m.sorted = true
	}
}

// Get implements IndexAccess.
func (m *MemoryIndex) Get(key []byte) (corpus.PositionList, bool, error) {
	blob, ok := m.values[string(key)]
	if !ok {
		return nil, false, nil
	}
	list, err := DecodePositions(blob)
	if err != nil {
		return nil, false, fmt.Errorf("index %s: %w", m.name, err)
	}
	return list, true, nil
}

// Cursor implements IndexAccess.
func (m *MemoryIndex) Cursor() (Cursor, error) {
	m.ensureSorted()
	return &memoryCursor{index: m, pos: -1}, nil
}

// IndexType implements IndexAccess.
func (m *MemoryIndex) IndexType() string { return m.name }

// Len returns the number of distinct keys.
func (m *MemoryIndex) Len() int { return len(m.keys) }

type memoryCursor struct {
	index *MemoryIndex
	pos   int
	seek  []byte
	fresh bool
}

func (c *memoryCursor) SeekToFirst() {
	c.seek = nil
	c.fresh = true
}

func (c *memoryCursor) Seek(key []byte) {
	c.seek = key
	c.fresh = true
}

func (c *memoryCursor) Next() bool {
	if c.fresh {
		c.fresh = false
		c.pos = sort.Search(len(c.index.keys), func(i int) bool {
			return bytes.Compare(c.index.keys[i], c.seek) >= 0
		})
	} else {
		c.pos++
	}
	return c.pos >= 0 && c.pos < len(c.index.keys)
}

func (c *memoryCursor) Key() []byte {
	return c.index.keys[c.pos]
}

func (c *memoryCursor) Value() ([]byte, error) {
	return c.index.values[string(c.index.keys[c.pos])], nil
}

func (c *memoryCursor) Close() error { return nil }

// MemoryIndexSet builds an IndexSet of empty in-memory indexes for
// every named index.
func MemoryIndexSet() *IndexSet {
	set := NewIndexSet()
	for _, name := range IndexNames {
		set.Register(name, NewMemoryIndex(name))
	}
	return set
}
