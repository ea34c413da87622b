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

// posExecutor matches part-of-speech tagged terms, keyed tag +
// delimiter + term. With a variable and no term the tag is enumerated
// by prefix scan; otherwise the single key is looked up.
type posExecutor struct {
	indexes *storage.IndexSet
	events  *trace.Collector
}

func (x *posExecutor) Execute(c *query.Pos, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	tag := strings.ToLower(strings.TrimSpace(c.Tag))
	if tag == "" {
		return nil, corpus.Errorf(corpus.ErrInvalidCondition, c.String(), "part-of-speech tag is required")
	}

	idx, ok := x.indexes.Index(storage.IndexPos)
	if !ok {
		return nil, corpus.Errorf(corpus.ErrMissingIndex, c.String(), "index %q is not present", storage.IndexPos)
	}

	variable := query.NormalizeVariable(c.Variable)
	term := strings.ToLower(strings.TrimSpace(c.Term))

	if term != "" {
		return x.lookup(idx, c, tag, term, variable, g, size)
	}
	if variable == "" {
		return nil, corpus.Errorf(corpus.ErrInvalidCondition, c.String(), "POS without a term requires a variable binding")
	}
	return x.enumerate(idx, c, tag, variable, g, size)
}

func (x *posExecutor) lookup(idx storage.IndexAccess, c *query.Pos, tag, term, variable string, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	began := time.Now()
	key := storage.JoinKey(tag, term)
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
		return corpus.EmptyResult(g, size), nil
	}
	details := emitPositions(positions, term+"/"+tag, corpus.ValuePosTerm, c.ID(), variable)
	return corpus.NewQueryResult(g, size, details), nil
}

func (x *posExecutor) enumerate(idx storage.IndexAccess, c *query.Pos, tag, variable string, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	began := time.Now()
	cur, err := idx.Cursor()
	if err != nil {
		return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
	}
	defer cur.Close()

	prefix := append(storage.JoinKey(tag), storage.Delimiter)
	var details []corpus.MatchDetail
	keys := 0
	cur.Seek(prefix)
	for cur.Next() {
		key := cur.Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		keys++
		term := string(key[len(prefix):])
		blob, err := cur.Value()
		if err != nil {
			return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
		}
		positions, err := storage.DecodePositions(blob)
		if err != nil {
			return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
		}
		details = append(details, emitPositions(positions, term+"/"+tag, corpus.ValuePosTerm, c.ID(), variable)...)
	}

	x.events.AddTiming(trace.IndexScan, began, map[string]interface{}{
		"index":       idx.IndexType(),
		"prefix":      tag,
		"key.count":   keys,
		"match.count": keys,
	})
	return corpus.NewQueryResult(g, size, details), nil
}
