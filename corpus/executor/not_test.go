package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/query"
	"github.com/chronotext/chronotext/corpus/storage"
)

func TestNotRequiresUnigramUniverse(t *testing.T) {
	set := storage.NewIndexSet()
	set.Register(storage.IndexBigram, storage.NewMemoryIndex(storage.IndexBigram))
	e := NewEngine(set, nil)

	_, err := e.Execute(&query.Query{
		Root:        &query.Not{Child: &query.Logical{Op: query.OpOr}},
		Granularity: corpus.GranularityDocument,
	})
	require.Error(t, err)
	kind, _ := corpus.KindOf(err)
	assert.Equal(t, corpus.ErrMissingIndex, kind)
}

func TestNotDoubleComplement(t *testing.T) {
	e := miniEngine(t)
	apple := &query.Contains{Terms: []string{"apple"}}

	direct := run(t, e, apple, corpus.GranularityDocument, 0)
	double := run(t, e, &query.Not{Child: &query.Not{Child: apple}}, corpus.GranularityDocument, 0)

	assert.Equal(t, docSet(direct), docSet(double), "NOT(NOT(R)) covers R's documents within the universe")
}

func TestNotPartitionsUniverse(t *testing.T) {
	e := miniEngine(t)
	apple := &query.Contains{Terms: []string{"apple"}}

	matched := run(t, e, apple, corpus.GranularityDocument, 0)
	complement := run(t, e, &query.Not{Child: apple}, corpus.GranularityDocument, 0)

	union := map[int32]struct{}{}
	for _, id := range docSet(matched) {
		union[id] = struct{}{}
	}
	overlap := false
	for _, id := range docSet(complement) {
		if _, ok := union[id]; ok {
			overlap = true
		}
		union[id] = struct{}{}
	}

	assert.False(t, overlap, "R and NOT(R) are disjoint")
	assert.Len(t, union, 3, "R union NOT(R) is the universe")
}

func TestNotSentenceGranularity(t *testing.T) {
	e := miniEngine(t)
	result := run(t, e, &query.Not{Child: &query.Contains{Terms: []string{"apple"}}}, corpus.GranularitySentence, 0)

	units := sentenceUnits(result)
	// The universe holds (1,0) (1,1) (2,0) (3,0); "apple" matches
	// (1,0) and (2,0).
	assert.Len(t, units, 2)
	_, ok := units[corpus.SentenceKey{DocumentID: 1, SentenceID: 1}]
	assert.True(t, ok)
	_, ok = units[corpus.SentenceKey{DocumentID: 3, SentenceID: 0}]
	assert.True(t, ok)
}
