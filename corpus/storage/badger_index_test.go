package storage

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerIndexes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")
	db, err := OpenBadger(path)
	require.NoError(t, err)
	defer db.Close()

	b := NewBuilder()
	b.AddDocument(annotatedDoc())
	require.NoError(t, b.Flush(db))

	set := db.IndexSet()
	for _, name := range IndexNames {
		_, ok := set.Index(name)
		assert.True(t, ok, "index %s registered", name)
	}

	uni, _ := set.Index(IndexUnigram)
	list, ok, err := uni.Get([]byte("einstein"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int32(3), list[0].DocumentID)

	// Point lookups never cross index namespaces.
	bi, _ := set.Index(IndexBigram)
	_, ok, err = bi.Get([]byte("einstein"))
	require.NoError(t, err)
	assert.False(t, ok)

	// Prefix scan within one namespace.
	cur, err := uni.Cursor()
	require.NoError(t, err)
	defer cur.Close()

	var keys []string
	prefix := []byte("b")
	cur.Seek(prefix)
	for cur.Next() {
		if !bytes.HasPrefix(cur.Key(), prefix) {
			break
		}
		keys = append(keys, string(cur.Key()))
	}
	assert.Equal(t, []string{"born"}, keys)
}

func TestBadgerCursorRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")
	db, err := OpenBadger(path)
	require.NoError(t, err)
	defer db.Close()

	b := NewBuilder()
	b.AddDocument(annotatedDoc())
	require.NoError(t, b.Flush(db))

	uni, _ := db.IndexSet().Index(IndexUnigram)
	cur, err := uni.Cursor()
	require.NoError(t, err)
	defer cur.Close()

	count := func() int {
		n := 0
		for cur.Next() {
			n++
		}
		return n
	}

	cur.SeekToFirst()
	first := count()
	assert.Equal(t, 3, first, "einstein, was, born")

	// Re-seeking rewinds the cursor.
	cur.SeekToFirst()
	assert.Equal(t, first, count())
}
