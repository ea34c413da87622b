package temporal

import (
	"time"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/query"
	"github.com/chronotext/chronotext/corpus/trace"
)

// Joiner combines two materialized subquery results pairwise under a
// temporal or structural predicate. Only INNER joins execute; the
// other flavors are recognized and rejected.
type Joiner struct {
	events *trace.Collector
}

// NewJoiner creates a joiner emitting to the given collector.
func NewJoiner(events *trace.Collector) *Joiner {
	return &Joiner{events: events}
}

// Execute runs the join condition of q over the subquery context. The
// output carries q's granularity and window, with one join-result
// detail per matching pair, structurally deduplicated.
func (j *Joiner) Execute(q *query.Query, results map[string]*corpus.QueryResult) (*corpus.QueryResult, error) {
	jc := q.Join
	if jc == nil {
		return nil, corpus.Errorf(corpus.ErrInternal, "", "joiner invoked without a join condition")
	}
	if jc.Type != query.JoinInner {
		return nil, corpus.Errorf(corpus.ErrUnsupported, jc.String(), "%s joins are not implemented", jc.Type)
	}

	left, ok := results[jc.Left.Alias]
	if !ok {
		return nil, corpus.Errorf(corpus.ErrInvalidCondition, jc.String(), "unknown subquery alias %q", jc.Left.Alias)
	}
	right, ok := results[jc.Right.Alias]
	if !ok {
		return nil, corpus.Errorf(corpus.ErrInvalidCondition, jc.String(), "unknown subquery alias %q", jc.Right.Alias)
	}

	began := time.Now()
	var out []corpus.MatchDetail
	for _, dl := range left.Details() {
		for _, dr := range right.Details() {
			matched, err := j.pairMatches(jc, dl, dr)
			if err != nil {
				return nil, err
			}
			if matched {
				out = append(out, corpus.JoinDetail(dl, dr.Value, dr.Type, dr.Variable))
			}
		}
	}
	out = corpus.DeduplicateDetails(out)

	j.events.AddTiming(trace.JoinExecuted, began, map[string]interface{}{
		"left.count":   left.Size(),
		"right.count":  right.Size(),
		"result.count": len(out),
	})
	return corpus.NewQueryResult(q.Granularity, q.GranularitySize, out), nil
}

// pairMatches evaluates the join predicate for one (left, right) pair.
func (j *Joiner) pairMatches(jc *query.JoinCondition, dl, dr corpus.MatchDetail) (bool, error) {
	if jc.Left.IsStructural() || jc.Right.IsStructural() {
		if jc.Left.Key != jc.Right.Key {
			// Structural keys join only against the same key.
			return false, nil
		}
		switch jc.Left.Key {
		case query.ColumnDocumentID:
			return dl.DocumentID() == dr.DocumentID(), nil
		case query.ColumnSentenceID:
			if dl.SentenceID() == corpus.NoSentence || dr.SentenceID() == corpus.NoSentence {
				return false, nil
			}
			return dl.SentenceID() == dr.SentenceID(), nil
		}
		return false, corpus.Errorf(corpus.ErrInvalidCondition, jc.String(), "unknown structural key %q", jc.Left.Key)
	}

	lv, lt, ok := boundValue(dl, jc.Left.Key)
	if !ok {
		return false, nil
	}
	rv, rt, ok := boundValue(dr, jc.Right.Key)
	if !ok {
		return false, nil
	}

	if lt == corpus.ValueDate && rt == corpus.ValueDate {
		ld, lok := lv.(time.Time)
		rd, rok := rv.(time.Time)
		if !lok || !rok {
			return false, corpus.Errorf(corpus.ErrInternal, jc.String(), "DATE detail without time value")
		}
		return jc.Predicate.EvaluateDate(ld, rd, rd, jc.ProximityDays), nil
	}

	if lt == rt && jc.Predicate == query.PredEqual {
		return lv == rv, nil
	}
	return false, nil
}

// boundValue resolves a variable column against a detail, consulting
// the right-hand side when the detail is itself a join result.
func boundValue(d corpus.MatchDetail, variable string) (corpus.Value, corpus.ValueType, bool) {
	if d.Variable == variable {
		return d.Value, d.Type, true
	}
	if d.IsJoinResult() && d.RightVariable == variable {
		return d.RightValue, d.RightType, true
	}
	return nil, 0, false
}
