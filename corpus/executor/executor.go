// Package executor translates parsed query conditions into results
// over the ordered byte-key indexes: one executor per condition
// variant, a dispatcher that owns recursion, the result algebra, and
// the top-level engine that ties in subqueries and the temporal join.
package executor

import (
	"sync"
	"time"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/query"
	"github.com/chronotext/chronotext/corpus/storage"
	"github.com/chronotext/chronotext/corpus/temporal"
	"github.com/chronotext/chronotext/corpus/trace"
)

// Engine executes parsed queries against one corpus. A single engine
// serves concurrent queries: index handles are shared read-only and
// the temporal hash index is built at most once.
type Engine struct {
	indexes *storage.IndexSet
	events  *trace.Collector
	algebra *Algebra
	joiner  *temporal.Joiner

	contains   *containsExecutor
	ner        *nerExecutor
	pos        *posExecutor
	dependency *dependencyExecutor
	temporal   *temporalExecutor
	logical    *logicalExecutor
	not        *notExecutor

	hashOnce sync.Once
	hash     *temporal.HashIndex
	hashErr  error
}

// NewEngine creates an engine over the given index set. A non-nil
// handler receives trace events during execution.
func NewEngine(indexes *storage.IndexSet, handler trace.Handler) *Engine {
	events := trace.NewCollector(handler)
	e := &Engine{
		indexes: indexes,
		events:  events,
		algebra: NewAlgebra(events),
		joiner:  temporal.NewJoiner(events),
	}
	e.contains = &containsExecutor{indexes: indexes, events: events}
	e.ner = &nerExecutor{indexes: indexes, events: events}
	e.pos = &posExecutor{indexes: indexes, events: events}
	e.dependency = &dependencyExecutor{indexes: indexes, events: events}
	e.temporal = &temporalExecutor{indexes: indexes, events: events, hashIndex: e.hashIndex}
	e.logical = &logicalExecutor{engine: e}
	e.not = &notExecutor{engine: e}
	return e
}

// Events returns the engine's trace collector.
func (e *Engine) Events() *trace.Collector { return e.events }

// Execute runs a full query: subqueries first, then either the join
// over their results or the root condition tree. The first
// per-condition failure propagates unchanged.
func (e *Engine) Execute(q *query.Query) (*corpus.QueryResult, error) {
	began := time.Now()
	e.events.Emit(trace.QueryInvoked, map[string]interface{}{"query": q.Corpus})

	result, err := e.execute(q)

	data := map[string]interface{}{"detail.count": 0}
	if result != nil {
		data["detail.count"] = result.Size()
	}
	if err != nil {
		data["error"] = err
	}
	e.events.AddTiming(trace.QueryComplete, began, data)
	return result, err
}

func (e *Engine) execute(q *query.Query) (*corpus.QueryResult, error) {
	subResults := make(map[string]*corpus.QueryResult, len(q.Subqueries))
	for _, sub := range q.Subqueries {
		r, err := e.execute(sub.Query)
		if err != nil {
			return nil, err
		}
		subResults[sub.Alias] = r
	}

	if q.Join != nil {
		return e.joiner.Execute(q, subResults)
	}
	if q.Root == nil {
		return nil, corpus.Errorf(corpus.ErrInvalidCondition, "", "query has neither a condition tree nor a join")
	}
	return e.executeCondition(q.Root, q.Granularity, q.GranularitySize)
}

// executeCondition dispatches one condition to its executor. This is
// the single place that knows the full set of condition variants.
func (e *Engine) executeCondition(c query.Condition, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	began := time.Now()
	e.events.Emit(trace.ConditionBegin, map[string]interface{}{"condition": c.String()})

	var result *corpus.QueryResult
	var err error
	switch cond := c.(type) {
	case *query.Contains:
		result, err = e.contains.Execute(cond, g, size)
	case *query.Ner:
		result, err = e.ner.Execute(cond, g, size)
	case *query.Pos:
		result, err = e.pos.Execute(cond, g, size)
	case *query.Dependency:
		result, err = e.dependency.Execute(cond, g, size)
	case *query.Temporal:
		result, err = e.temporal.Execute(cond, g, size)
	case *query.Logical:
		result, err = e.logical.Execute(cond, g, size)
	case *query.Not:
		result, err = e.not.Execute(cond, g, size)
	default:
		err = corpus.Errorf(corpus.ErrInternal, c.String(), "unknown condition variant %T", c)
	}
	if err != nil {
		return nil, err
	}

	e.events.AddTiming(trace.ConditionComplete, began, map[string]interface{}{
		"condition":    c.String(),
		"detail.count": result.Size(),
	})
	return result, nil
}

// hashIndex builds the temporal hash index on first use. Concurrent
// first queries block until one build completes; afterwards the index
// is immutable.
func (e *Engine) hashIndex() (*temporal.HashIndex, error) {
	e.hashOnce.Do(func() {
		dates, ok := e.indexes.Index(storage.IndexNerDate)
		if !ok {
			e.hashErr = corpus.Errorf(corpus.ErrMissingIndex, "", "index %q is required for temporal queries", storage.IndexNerDate)
			return
		}
		e.hash, e.hashErr = temporal.BuildHashIndex(dates, e.events)
	})
	return e.hash, e.hashErr
}
