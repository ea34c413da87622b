package executor

import (
	"bytes"
	"strings"
	"time"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/query"
	"github.com/chronotext/chronotext/corpus/storage"
	"github.com/chronotext/chronotext/corpus/trace"
)

// containsExecutor matches 1-3 term n-gram patterns. The term count
// selects the index; a single trailing '*' turns the lookup into an
// ordered prefix scan.
type containsExecutor struct {
	indexes *storage.IndexSet
	events  *trace.Collector
}

var ngramIndexes = [...]string{
	1: storage.IndexUnigram,
	2: storage.IndexBigram,
	3: storage.IndexTrigram,
}

func (x *containsExecutor) Execute(c *query.Contains, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	if len(c.Terms) == 0 || len(c.Terms) > 3 {
		return nil, corpus.Errorf(corpus.ErrInvalidCondition, c.String(), "CONTAINS takes 1-3 terms, got %d", len(c.Terms))
	}

	terms := make([]string, len(c.Terms))
	for i, t := range c.Terms {
		terms[i] = strings.ToLower(t)
	}

	indexName := ngramIndexes[len(terms)]
	idx, ok := x.indexes.Index(indexName)
	if !ok {
		return nil, corpus.Errorf(corpus.ErrMissingIndex, c.String(), "index %q is not present", indexName)
	}

	prefix, exact, err := x.pattern(c, terms)
	if err != nil {
		return nil, err
	}

	variable := query.NormalizeVariable(c.Variable)
	var details []corpus.MatchDetail
	if exact != nil {
		details, err = x.lookup(idx, exact, c, variable)
	} else {
		details, err = x.scan(idx, prefix, c, variable)
	}
	if err != nil {
		return nil, err
	}
	return corpus.NewQueryResult(g, size, details), nil
}

// pattern validates wildcard placement and returns either an exact key
// or a scan prefix. Only a single trailing wildcard is supported;
// anything else is rejected.
func (x *containsExecutor) pattern(c *query.Contains, terms []string) (prefix, exact []byte, err error) {
	wildcards := 0
	for _, t := range terms {
		wildcards += strings.Count(t, "*")
	}
	if wildcards == 0 {
		return nil, storage.JoinKey(terms...), nil
	}
	if wildcards > 1 {
		x.warnWildcard(c, "multiple wildcards in one pattern")
		return nil, nil, corpus.Errorf(corpus.ErrUnsupported, c.String(), "more than one wildcard is not supported")
	}

	last := terms[len(terms)-1]
	if !strings.HasSuffix(last, "*") || strings.Count(last, "*") != 1 {
		x.warnWildcard(c, "wildcard in a non-trailing position")
		return nil, nil, corpus.Errorf(corpus.ErrUnsupported, c.String(), "wildcards are only supported in the trailing position")
	}

	parts := append([]string(nil), terms[:len(terms)-1]...)
	parts = append(parts, strings.TrimSuffix(last, "*"))
	return storage.JoinKey(parts...), nil, nil
}

func (x *containsExecutor) warnWildcard(c *query.Contains, reason string) {
	x.events.Emit(trace.WarnWildcardPattern, map[string]interface{}{
		"message":   reason,
		"condition": c.String(),
	})
}

func (x *containsExecutor) lookup(idx storage.IndexAccess, key []byte, c *query.Contains, variable string) ([]corpus.MatchDetail, error) {
	began := time.Now()
	positions, found, err := idx.Get(key)
	if err != nil {
		return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
	}
	x.events.AddTiming(trace.IndexLookup, began, map[string]interface{}{
		"index":          idx.IndexType(),
		"key":            storage.DisplayKey(key),
		"position.count": len(positions),
	})
	if !found {
		return nil, nil
	}
	return emitPositions(positions, storage.DisplayKey(key), corpus.ValueTerm, c.ID(), variable), nil
}

func (x *containsExecutor) scan(idx storage.IndexAccess, prefix []byte, c *query.Contains, variable string) ([]corpus.MatchDetail, error) {
	began := time.Now()
	cur, err := idx.Cursor()
	if err != nil {
		return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
	}
	defer cur.Close()

	var details []corpus.MatchDetail
	keys, matched := 0, 0
	cur.Seek(prefix)
	for cur.Next() {
		key := cur.Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		keys++
		blob, err := cur.Value()
		if err != nil {
			return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
		}
		positions, err := storage.DecodePositions(blob)
		if err != nil {
			return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
		}
		matched++
		details = append(details, emitPositions(positions, storage.DisplayKey(key), corpus.ValueTerm, c.ID(), variable)...)
	}

	x.events.AddTiming(trace.IndexScan, began, map[string]interface{}{
		"index":       idx.IndexType(),
		"prefix":      storage.DisplayKey(prefix),
		"key.count":   keys,
		"match.count": matched,
	})
	return details, nil
}

// emitPositions fans one value out to a detail per position.
func emitPositions(positions corpus.PositionList, value corpus.Value, t corpus.ValueType, conditionID, variable string) []corpus.MatchDetail {
	details := make([]corpus.MatchDetail, 0, len(positions))
	for _, p := range positions {
		details = append(details, corpus.NewMatchDetail(value, t, p, conditionID, variable))
	}
	return details
}
