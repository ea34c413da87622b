package executor

import (
	"time"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/query"
	"github.com/chronotext/chronotext/corpus/storage"
	"github.com/chronotext/chronotext/corpus/temporal"
	"github.com/chronotext/chronotext/corpus/temporal/timehash"
	"github.com/chronotext/chronotext/corpus/trace"
)

// temporalExecutor evaluates date predicates. Document-level queries
// without a binding go through the memoized temporal hash index and
// emit one placeholder detail per document; binding or sentence-level
// queries scan the date index directly so positions and dates survive.
type temporalExecutor struct {
	indexes   *storage.IndexSet
	events    *trace.Collector
	hashIndex func() (*temporal.HashIndex, error)
}

func (x *temporalExecutor) Execute(c *query.Temporal, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	if _, ok := x.indexes.Index(storage.IndexNerDate); !ok {
		return nil, corpus.Errorf(corpus.ErrMissingIndex, c.String(), "index %q is not present", storage.IndexNerDate)
	}
	start, end := c.Interval()
	if end.Before(start) {
		return nil, corpus.Errorf(corpus.ErrInvalidCondition, c.String(), "interval end precedes start")
	}

	binding := c.Variable != ""
	if !binding && g == corpus.GranularityDocument {
		hash, err := x.hashIndex()
		if err == nil {
			return x.executeHashed(hash, c, g, size, start, end)
		}
		x.events.Emit(trace.WarnHashIndexFallback, map[string]interface{}{
			"message": "temporal hash index unavailable, falling back to index scan",
			"error":   err.Error(),
		})
	}
	return x.executeScan(c, g, size, start, end)
}

func (x *temporalExecutor) executeHashed(hash *temporal.HashIndex, c *query.Temporal, g corpus.Granularity, size int32, start, end time.Time) (*corpus.QueryResult, error) {
	docs, err := hash.Query(start, end, c.Predicate, c.ProximityDays, x.events)
	if err != nil {
		return nil, corpus.WrapError(corpus.ErrInternal, c.String(), err)
	}
	interval := timehash.FormatInterval(start, end)
	details := make([]corpus.MatchDetail, 0, len(docs))
	for _, doc := range docs {
		details = append(details, corpus.NewMatchDetail(
			interval, corpus.ValueTerm, corpus.DocumentPosition(doc), c.ID(), ""))
	}
	return corpus.NewQueryResult(g, size, details), nil
}

func (x *temporalExecutor) executeScan(c *query.Temporal, g corpus.Granularity, size int32, start, end time.Time) (*corpus.QueryResult, error) {
	idx, _ := x.indexes.Index(storage.IndexNerDate)

	began := time.Now()
	cur, err := idx.Cursor()
	if err != nil {
		return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
	}
	defer cur.Close()

	variable := query.NormalizeVariable(c.Variable)
	var details []corpus.MatchDetail
	keys, matched := 0, 0
	cur.SeekToFirst()
	for cur.Next() {
		keys++
		date, err := query.ParseDateKey(string(cur.Key()))
		if err != nil {
			return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
		}
		if !c.Predicate.EvaluateDate(date, start, end, c.ProximityDays) {
			continue
		}
		blob, err := cur.Value()
		if err != nil {
			return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
		}
		positions, err := storage.DecodePositions(blob)
		if err != nil {
			return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
		}
		matched++
		details = append(details, emitPositions(positions, date, corpus.ValueDate, c.ID(), variable)...)
	}

	x.events.AddTiming(trace.IndexScan, began, map[string]interface{}{
		"index":       idx.IndexType(),
		"prefix":      "",
		"key.count":   keys,
		"match.count": matched,
	})
	return corpus.NewQueryResult(g, size, details), nil
}
