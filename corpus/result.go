package corpus

import (
	"sync"
	"time"
)

// SentenceKey identifies one (document, sentence) unit.
type SentenceKey struct {
	DocumentID int32
	SentenceID int32
}

// QueryResult is the immutable aggregate returned by every executor:
// the granularity the query ran at, the sentence-window size, and the
// flat list of match details.
//
// The grouping accessors (ByDocument, BySentence, ByDate, ByVariable)
// are memoized views over the detail list. They are computed on first
// access and cached; because the detail list is immutable they never
// diverge from it. Concurrent readers are safe.
type QueryResult struct {
	granularity Granularity
	size        int32
	details     []MatchDetail

	docOnce  sync.Once
	byDoc    map[int32][]MatchDetail
	sentOnce sync.Once
	bySent   map[SentenceKey][]MatchDetail
	dateOnce sync.Once
	byDate   map[time.Time][]MatchDetail
	varOnce  sync.Once
	byVar    map[string][]MatchDetail
}

// NewQueryResult constructs a result. The details slice is owned by the
// result after the call and must not be mutated by the caller.
func NewQueryResult(granularity Granularity, size int32, details []MatchDetail) *QueryResult {
	return &QueryResult{
		granularity: granularity,
		size:        size,
		details:     details,
	}
}

// EmptyResult returns a result with no details.
func EmptyResult(granularity Granularity, size int32) *QueryResult {
	return NewQueryResult(granularity, size, nil)
}

// Granularity returns the result's granularity.
func (r *QueryResult) Granularity() Granularity { return r.granularity }

// GranularitySize returns the sentence-window parameter the result was
// produced under.
func (r *QueryResult) GranularitySize() int32 { return r.size }

// Details returns the detail list. Callers must not mutate it.
func (r *QueryResult) Details() []MatchDetail { return r.details }

// Size returns the number of details.
func (r *QueryResult) Size() int { return len(r.details) }

// IsEmpty reports whether the result has no details.
func (r *QueryResult) IsEmpty() bool { return len(r.details) == 0 }

// Combinable reports whether two results agree on granularity and
// window size, the precondition for every algebra operation.
func (r *QueryResult) Combinable(other *QueryResult) bool {
	return r.granularity == other.granularity && r.size == other.size
}

// ByDocument groups details by document id.
func (r *QueryResult) ByDocument() map[int32][]MatchDetail {
	r.docOnce.Do(func() {
		r.byDoc = make(map[int32][]MatchDetail)
		for _, d := range r.details {
			id := d.DocumentID()
			r.byDoc[id] = append(r.byDoc[id], d)
		}
	})
	return r.byDoc
}

// BySentence groups details by (document, sentence).
func (r *QueryResult) BySentence() map[SentenceKey][]MatchDetail {
	r.sentOnce.Do(func() {
		r.bySent = make(map[SentenceKey][]MatchDetail)
		for _, d := range r.details {
			k := SentenceKey{d.DocumentID(), d.SentenceID()}
			r.bySent[k] = append(r.bySent[k], d)
		}
	})
	return r.bySent
}

// ByDate groups DATE-valued details by their matched date.
func (r *QueryResult) ByDate() map[time.Time][]MatchDetail {
	r.dateOnce.Do(func() {
		r.byDate = make(map[time.Time][]MatchDetail)
		for _, d := range r.details {
			if t, ok := d.MatchedDate(); ok {
				r.byDate[t] = append(r.byDate[t], d)
			}
		}
	})
	return r.byDate
}

// ByVariable groups binding details by variable name.
func (r *QueryResult) ByVariable() map[string][]MatchDetail {
	r.varOnce.Do(func() {
		r.byVar = make(map[string][]MatchDetail)
		for _, d := range r.details {
			if d.Variable != "" {
				r.byVar[d.Variable] = append(r.byVar[d.Variable], d)
			}
		}
	})
	return r.byVar
}

// DocumentIDs returns the set of document ids present in the result.
func (r *QueryResult) DocumentIDs() map[int32]struct{} {
	docs := r.ByDocument()
	out := make(map[int32]struct{}, len(docs))
	for id := range docs {
		out[id] = struct{}{}
	}
	return out
}
