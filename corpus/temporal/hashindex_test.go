package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/query"
	"github.com/chronotext/chronotext/corpus/storage"
	"github.com/chronotext/chronotext/corpus/trace"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateIndex builds an in-memory date index mapping each date to the
// documents mentioning it.
func dateIndex(t *testing.T, dates map[string][]int32) storage.IndexAccess {
	t.Helper()
	idx := storage.NewMemoryIndex(storage.IndexNerDate)
	for key, docs := range dates {
		var list corpus.PositionList
		for _, doc := range docs {
			list = append(list, corpus.Position{DocumentID: doc, SentenceID: 0, BeginChar: 0, EndChar: 8})
		}
		idx.Put([]byte(key), list)
	}
	return idx
}

func TestBuildHashIndexEmpty(t *testing.T) {
	idx := dateIndex(t, nil)
	h, err := BuildHashIndex(idx, trace.NewCollector(nil))
	require.NoError(t, err)

	docs, err := h.Query(day(1875, time.January, 1), day(1880, time.December, 31), query.PredContainedBy, 0, trace.NewCollector(nil))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestHashIndexQuery(t *testing.T) {
	idx := dateIndex(t, map[string][]int32{
		"18790314": {3},
		"19120623": {5, 7},
		"20010101": {9},
	})
	h, err := BuildHashIndex(idx, trace.NewCollector(nil))
	require.NoError(t, err)

	docs, err := h.Query(day(1875, time.January, 1), day(1880, time.December, 31), query.PredContainedBy, 0, trace.NewCollector(nil))
	require.NoError(t, err)
	assert.Equal(t, []int32{3}, docs)

	docs, err = h.Query(day(1900, time.January, 1), day(1900, time.January, 1), query.PredAfter, 0, trace.NewCollector(nil))
	require.NoError(t, err)
	assert.Equal(t, []int32{5, 7, 9}, docs)

	docs, err = h.Query(day(1912, time.June, 23), day(1912, time.June, 23), query.PredEqual, 0, trace.NewCollector(nil))
	require.NoError(t, err)
	assert.Equal(t, []int32{5, 7}, docs)
}

// The hash path and a direct predicate evaluation over the same index
// must agree document for document.
func TestHashIndexMatchesDirectEvaluation(t *testing.T) {
	dates := map[string][]int32{}
	doc := int32(1)
	for d := day(1998, time.November, 15); !d.After(day(2000, time.February, 15)); d = d.AddDate(0, 0, 11) {
		dates[d.Format("20060102")] = []int32{doc}
		doc++
	}
	idx := dateIndex(t, dates)
	h, err := BuildHashIndex(idx, trace.NewCollector(nil))
	require.NoError(t, err)

	start, end := day(1999, time.March, 1), day(1999, time.September, 30)
	preds := []query.TemporalPredicate{
		query.PredBefore, query.PredAfter, query.PredBeforeEqual,
		query.PredAfterEqual, query.PredContainedBy, query.PredIntersect,
		query.PredProximity,
	}
	for _, pred := range preds {
		want := map[int32]struct{}{}
		for key, docs := range dates {
			d, err := query.ParseDateKey(key)
			require.NoError(t, err)
			if pred.EvaluateDate(d, start, end, 14) {
				for _, id := range docs {
					want[id] = struct{}{}
				}
			}
		}

		got, err := h.Query(start, end, pred, 14, trace.NewCollector(nil))
		require.NoError(t, err)
		assert.Len(t, got, len(want), "predicate %s", pred)
		for _, id := range got {
			_, ok := want[id]
			assert.True(t, ok, "predicate %s doc %d", pred, id)
		}
	}
}
