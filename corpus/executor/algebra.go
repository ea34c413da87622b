package executor

import (
	"sort"
	"time"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/trace"
)

// Algebra combines query results: union, intersection at both
// granularities with the symmetric sentence window, and the helpers
// the NOT executor builds on. Operations never mutate their inputs.
type Algebra struct {
	events *trace.Collector
}

// NewAlgebra creates an algebra emitting to the given collector.
func NewAlgebra(events *trace.Collector) *Algebra {
	return &Algebra{events: events}
}

// Union concatenates both detail lists and removes structural
// duplicates. Results with mismatched granularity or window do not
// combine; the mismatch is logged and an empty result returned.
func (a *Algebra) Union(r1, r2 *corpus.QueryResult) *corpus.QueryResult {
	began := time.Now()
	if !r1.Combinable(r2) {
		return a.rejectMismatch(r1, r2)
	}

	details := make([]corpus.MatchDetail, 0, r1.Size()+r2.Size())
	details = append(details, r1.Details()...)
	details = append(details, r2.Details()...)
	details = corpus.DeduplicateDetails(details)

	out := corpus.NewQueryResult(r1.Granularity(), r1.GranularitySize(), details)
	a.events.AddTiming(trace.ResultsUnion, began, map[string]interface{}{
		"left.count":   r1.Size(),
		"right.count":  r2.Size(),
		"result.count": out.Size(),
	})
	return out
}

// Intersect keeps details from both sides that fall in the common
// granularity units. At DOCUMENT granularity a unit is a document; at
// SENTENCE granularity units are (document, sentence) pairs surviving
// the symmetric window match.
func (a *Algebra) Intersect(r1, r2 *corpus.QueryResult) *corpus.QueryResult {
	began := time.Now()
	if !r1.Combinable(r2) {
		return a.rejectMismatch(r1, r2)
	}

	var details []corpus.MatchDetail
	if r1.Granularity() == corpus.GranularitySentence {
		details = intersectSentences(r1, r2)
	} else {
		details = intersectDocuments(r1, r2)
	}

	out := corpus.NewQueryResult(r1.Granularity(), r1.GranularitySize(), details)
	a.events.AddTiming(trace.ResultsIntersection, began, map[string]interface{}{
		"left.count":   r1.Size(),
		"right.count":  r2.Size(),
		"result.count": out.Size(),
	})
	return out
}

func (a *Algebra) rejectMismatch(r1, r2 *corpus.QueryResult) *corpus.QueryResult {
	a.events.Emit(trace.WarnGranularityMismatch, map[string]interface{}{
		"message": "results with different granularity or window cannot combine",
		"left":    r1.Granularity().String(),
		"right":   r2.Granularity().String(),
	})
	return corpus.EmptyResult(r1.Granularity(), r1.GranularitySize())
}

// intersectDocuments keeps every detail from either side whose
// document appears on both. The smaller document set is probed first.
func intersectDocuments(r1, r2 *corpus.QueryResult) []corpus.MatchDetail {
	d1, d2 := r1.DocumentIDs(), r2.DocumentIDs()
	small, large := d1, d2
	if len(d2) < len(d1) {
		small, large = d2, d1
	}
	common := make(map[int32]struct{}, len(small))
	for id := range small {
		if _, ok := large[id]; ok {
			common[id] = struct{}{}
		}
	}
	if len(common) == 0 {
		return nil
	}

	var out []corpus.MatchDetail
	for _, r := range []*corpus.QueryResult{r1, r2} {
		for _, d := range r.Details() {
			if _, ok := common[d.DocumentID()]; ok {
				out = append(out, d)
			}
		}
	}
	return out
}

// intersectSentences applies the symmetric sentence window. With
// window w, allowed distance is max(0, (w-1)/2); a sentence survives
// if the other side holds a sentence within the allowed distance in
// the same document. Details with no sentence id are document-wide
// and match any sentence. Output is structurally deduplicated.
func intersectSentences(r1, r2 *corpus.QueryResult) []corpus.MatchDetail {
	allowed := int32((r1.GranularitySize() - 1) / 2)
	if allowed < 0 {
		allowed = 0
	}

	s1, s2 := r1.BySentence(), r2.BySentence()

	docSentences := func(m map[corpus.SentenceKey][]corpus.MatchDetail) map[int32][]int32 {
		out := make(map[int32][]int32)
		for k := range m {
			out[k.DocumentID] = append(out[k.DocumentID], k.SentenceID)
		}
		return out
	}
	perDoc1, perDoc2 := docSentences(s1), docSentences(s2)

	var docs []int32
	for doc := range perDoc1 {
		if _, ok := perDoc2[doc]; ok {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i] < docs[j] })

	units := make(map[corpus.SentenceKey]struct{})
	for _, doc := range docs {
		for _, s := range perDoc1[doc] {
			if anyWithin(s, perDoc2[doc], allowed) {
				units[corpus.SentenceKey{DocumentID: doc, SentenceID: s}] = struct{}{}
			}
		}
		for _, s := range perDoc2[doc] {
			if anyWithin(s, perDoc1[doc], allowed) {
				units[corpus.SentenceKey{DocumentID: doc, SentenceID: s}] = struct{}{}
			}
		}
	}
	if len(units) == 0 {
		return nil
	}

	var out []corpus.MatchDetail
	for _, m := range []map[corpus.SentenceKey][]corpus.MatchDetail{s1, s2} {
		keys := make([]corpus.SentenceKey, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].DocumentID != keys[j].DocumentID {
				return keys[i].DocumentID < keys[j].DocumentID
			}
			return keys[i].SentenceID < keys[j].SentenceID
		})
		for _, k := range keys {
			if _, ok := units[k]; ok {
				out = append(out, m[k]...)
			}
		}
	}
	return corpus.DeduplicateDetails(out)
}

// anyWithin reports whether candidate s lies within the allowed
// distance of any sentence in others. A missing sentence id on either
// side is document-wide and matches unconditionally.
func anyWithin(s int32, others []int32, allowed int32) bool {
	for _, t := range others {
		if s == corpus.NoSentence || t == corpus.NoSentence {
			return true
		}
		delta := s - t
		if delta < 0 {
			delta = -delta
		}
		if delta <= allowed {
			return true
		}
	}
	return false
}
