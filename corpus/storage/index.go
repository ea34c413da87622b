// Package storage provides ordered byte-key index access for the query
// engine: the IndexAccess contract, a BadgerDB-backed implementation,
// an in-memory implementation, the position-list codec, and the corpus
// builder that populates indexes from annotated sentences.
package storage

import (
	"bytes"
	"strings"

	"github.com/chronotext/chronotext/corpus"
)

// Delimiter separates the parts of structured index keys. Key parts
// never contain it.
const Delimiter byte = 0x00

// Names of the indexes the engine consumes. The unigram index doubles
// as the corpus universe for complement queries and must always be
// present.
const (
	IndexUnigram    = "unigram"
	IndexBigram     = "bigram"
	IndexTrigram    = "trigram"
	IndexNer        = "ner"
	IndexNerDate    = "ner_date"
	IndexPos        = "pos"
	IndexDependency = "dependency"
)

// IndexNames lists every named index in registration order.
var IndexNames = []string{
	IndexUnigram,
	IndexBigram,
	IndexTrigram,
	IndexNer,
	IndexNerDate,
	IndexPos,
	IndexDependency,
}

// IndexAccess is the read contract over a single named index.
type IndexAccess interface {
	// Get performs an exact key lookup. The boolean reports presence.
	Get(key []byte) (corpus.PositionList, bool, error)

	// Cursor opens an ordered cursor over (key, value) pairs in
	// lexicographic byte order. The caller must Close it on every
	// exit path.
	Cursor() (Cursor, error)

	// IndexType returns the index name for diagnostics.
	IndexType() string
}

// Cursor iterates an index in lexicographic byte order. The usage
// pattern follows the storage iterators elsewhere in the tree: Seek or
// SeekToFirst positions the cursor, then each Next advances and
// reports whether an entry is available.
type Cursor interface {
	// SeekToFirst positions before the first entry.
	SeekToFirst()

	// Seek positions before the first entry with key >= the argument.
	Seek(key []byte)

	// Next advances to the next entry and reports validity.
	Next() bool

	// Key returns the current entry's key. Valid until the next
	// advance; callers must copy to retain.
	Key() []byte

	// Value returns the current entry's raw value bytes.
	Value() ([]byte, error)

	// Close releases the cursor. Must be called on all exit paths.
	Close() error
}

// IndexSet is the collection of named indexes for one corpus.
type IndexSet struct {
	indexes map[string]IndexAccess
}

// NewIndexSet creates an empty index set.
func NewIndexSet() *IndexSet {
	return &IndexSet{indexes: make(map[string]IndexAccess)}
}

// Register adds or replaces a named index.
func (s *IndexSet) Register(name string, idx IndexAccess) {
	s.indexes[name] = idx
}

// Index returns the named index; the boolean reports presence.
func (s *IndexSet) Index(name string) (IndexAccess, bool) {
	idx, ok := s.indexes[name]
	return idx, ok
}

// Names returns the registered index names.
func (s *IndexSet) Names() []string {
	out := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		out = append(out, name)
	}
	return out
}

// JoinKey composes a structured key from parts with the delimiter.
func JoinKey(parts ...string) []byte {
	return []byte(strings.Join(parts, string(Delimiter)))
}

// SplitKey splits a structured key into its parts.
func SplitKey(key []byte) []string {
	return strings.Split(string(key), string(Delimiter))
}

// DisplayKey renders a structured key with delimiters replaced by a
// single space, the human-readable n-gram form.
func DisplayKey(key []byte) string {
	return string(bytes.ReplaceAll(key, []byte{Delimiter}, []byte{' '}))
}
