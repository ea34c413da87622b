package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/trace"
)

func termDetail(doc, sent int32, value, cond string) corpus.MatchDetail {
	return corpus.NewMatchDetail(value, corpus.ValueTerm, corpus.Position{
		DocumentID: doc,
		SentenceID: sent,
		BeginChar:  0,
		EndChar:    int32(len(value)),
	}, cond, "")
}

func docResult(details ...corpus.MatchDetail) *corpus.QueryResult {
	return corpus.NewQueryResult(corpus.GranularityDocument, 0, details)
}

func sentResult(size int32, details ...corpus.MatchDetail) *corpus.QueryResult {
	return corpus.NewQueryResult(corpus.GranularitySentence, size, details)
}

func sameDetails(t *testing.T, a, b *corpus.QueryResult) {
	t.Helper()
	require.Equal(t, a.Size(), b.Size())
	seen := make(map[string]int)
	for _, d := range a.Details() {
		seen[d.String()]++
	}
	for _, d := range b.Details() {
		seen[d.String()]--
	}
	for k, n := range seen {
		assert.Zero(t, n, "detail %s unbalanced", k)
	}
}

func TestUnionCommutativeIdempotent(t *testing.T) {
	alg := NewAlgebra(trace.NewCollector(nil))
	r1 := docResult(termDetail(1, 0, "apple", "c1"), termDetail(2, 0, "apple", "c1"))
	r2 := docResult(termDetail(2, 0, "juice", "c2"))

	sameDetails(t, alg.Union(r1, r2), alg.Union(r2, r1))
	sameDetails(t, alg.Union(r1, r1), r1)
}

func TestIntersectCommutativeIdempotent(t *testing.T) {
	alg := NewAlgebra(trace.NewCollector(nil))
	r1 := docResult(termDetail(1, 0, "apple", "c1"), termDetail(2, 0, "apple", "c1"))
	r2 := docResult(termDetail(2, 0, "juice", "c2"), termDetail(3, 0, "juice", "c2"))

	sameDetails(t, alg.Intersect(r1, r2), alg.Intersect(r2, r1))
	sameDetails(t, corpus.NewQueryResult(corpus.GranularityDocument, 0,
		corpus.DeduplicateDetails(alg.Intersect(r1, r1).Details())), r1)
}

func TestIntersectDocumentKeepsBothSides(t *testing.T) {
	alg := NewAlgebra(trace.NewCollector(nil))
	r1 := docResult(termDetail(1, 0, "apple", "c1"), termDetail(2, 0, "apple", "c1"))
	r2 := docResult(termDetail(2, 0, "juice", "c2"))

	out := alg.Intersect(r1, r2)
	require.Equal(t, 2, out.Size(), "all details of the common document, from both sides")
	for _, d := range out.Details() {
		assert.Equal(t, int32(2), d.DocumentID())
	}
}

func TestIntersectEmptyWhenDisjoint(t *testing.T) {
	alg := NewAlgebra(trace.NewCollector(nil))
	r1 := docResult(termDetail(1, 0, "apple", "c1"))
	r2 := docResult(termDetail(2, 0, "juice", "c2"))
	assert.True(t, alg.Intersect(r1, r2).IsEmpty())
}

func TestSentenceWindowSymmetry(t *testing.T) {
	// Window w admits |Δ| <= (w-1)/2 on both sides.
	cases := []struct {
		window  int32
		s1, s2  int32
		matches bool
	}{
		{0, 4, 4, true},
		{0, 4, 5, false},
		{1, 4, 5, false},
		{3, 4, 5, true},
		{3, 4, 6, false},
		{5, 4, 6, true},
		{5, 4, 7, false},
	}
	for _, tc := range cases {
		alg := NewAlgebra(trace.NewCollector(nil))
		r1 := sentResult(tc.window, termDetail(1, tc.s1, "left", "c1"))
		r2 := sentResult(tc.window, termDetail(1, tc.s2, "right", "c2"))

		forward := alg.Intersect(r1, r2)
		backward := alg.Intersect(r2, r1)
		assert.Equal(t, tc.matches, !forward.IsEmpty(), "w=%d |Δ|=%d", tc.window, tc.s2-tc.s1)
		sameDetails(t, forward, backward)

		if tc.matches {
			units := sentenceUnits(forward)
			_, ok1 := units[corpus.SentenceKey{DocumentID: 1, SentenceID: tc.s1}]
			_, ok2 := units[corpus.SentenceKey{DocumentID: 1, SentenceID: tc.s2}]
			assert.True(t, ok1 && ok2, "both surviving sentences emit")
		}
	}
}

func TestSentenceIntersectDocumentWideDetail(t *testing.T) {
	alg := NewAlgebra(trace.NewCollector(nil))
	wide := corpus.NewMatchDetail("everywhere", corpus.ValueTerm, corpus.DocumentPosition(1), "c1", "")
	r1 := sentResult(0, wide)
	r2 := sentResult(0, termDetail(1, 7, "narrow", "c2"))

	out := alg.Intersect(r1, r2)
	require.False(t, out.IsEmpty(), "document-wide details match any sentence")
	units := sentenceUnits(out)
	_, ok := units[corpus.SentenceKey{DocumentID: 1, SentenceID: 7}]
	assert.True(t, ok)
}

func TestMixedGranularityRejected(t *testing.T) {
	events := trace.NewCollector(func(trace.Event) {})
	alg := NewAlgebra(events)
	r1 := docResult(termDetail(1, 0, "apple", "c1"))
	r2 := sentResult(0, termDetail(1, 0, "apple", "c1"))

	assert.True(t, alg.Union(r1, r2).IsEmpty())
	assert.True(t, alg.Intersect(r1, r2).IsEmpty())

	warned := false
	for _, ev := range events.Events() {
		if ev.Name == trace.WarnGranularityMismatch {
			warned = true
		}
	}
	assert.True(t, warned, "mismatch leaves a log entry")
}

func TestUnionDeduplicates(t *testing.T) {
	alg := NewAlgebra(trace.NewCollector(nil))
	d := termDetail(1, 0, "apple", "c1")
	out := alg.Union(docResult(d), docResult(d))
	assert.Equal(t, 1, out.Size())
}
