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

// nerExecutor matches named entities. DATE entities live in the date
// index keyed by YYYYMMDD; every other type lives in the entity index
// keyed by TYPE + delimiter + surface text.
type nerExecutor struct {
	indexes *storage.IndexSet
	events  *trace.Collector
}

func (x *nerExecutor) Execute(c *query.Ner, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	entityType := strings.ToUpper(strings.TrimSpace(c.EntityType))
	if entityType == "" {
		return nil, corpus.Errorf(corpus.ErrInvalidCondition, c.String(), "entity type is required")
	}
	if entityType == "*" {
		return nil, corpus.Errorf(corpus.ErrUnsupported, c.String(), "wildcard entity type is not supported")
	}

	if entityType == "DATE" {
		return x.executeDates(c, g, size)
	}

	idx, ok := x.indexes.Index(storage.IndexNer)
	if !ok {
		return nil, corpus.Errorf(corpus.ErrMissingIndex, c.String(), "index %q is not present", storage.IndexNer)
	}

	began := time.Now()
	cur, err := idx.Cursor()
	if err != nil {
		return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
	}
	defer cur.Close()

	prefix := append(storage.JoinKey(entityType), storage.Delimiter)
	target := strings.ToLower(c.Target)
	variable := query.NormalizeVariable(c.Variable)

	var details []corpus.MatchDetail
	keys, matched := 0, 0
	cur.Seek(prefix)
	for cur.Next() {
		key := cur.Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}
		keys++
		surface := string(key[len(prefix):])
		if target != "" && strings.ToLower(surface) != target {
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

		// Search mode reports what was asked for; extraction mode
		// reports what was found.
		value := surface
		if variable == "" {
			value = entityType
			if c.Target != "" {
				value = c.Target
			}
		}
		details = append(details, emitPositions(positions, value, corpus.ValueEntity, c.ID(), variable)...)
	}

	x.events.AddTiming(trace.IndexScan, began, map[string]interface{}{
		"index":       idx.IndexType(),
		"prefix":      entityType,
		"key.count":   keys,
		"match.count": matched,
	})
	return corpus.NewQueryResult(g, size, details), nil
}

// executeDates enumerates the date index, which stores bare YYYYMMDD
// keys. Details carry the parsed date so downstream grouping and joins
// see a DATE value in both modes.
func (x *nerExecutor) executeDates(c *query.Ner, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	idx, ok := x.indexes.Index(storage.IndexNerDate)
	if !ok {
		return nil, corpus.Errorf(corpus.ErrMissingIndex, c.String(), "index %q is not present", storage.IndexNerDate)
	}

	began := time.Now()
	cur, err := idx.Cursor()
	if err != nil {
		return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
	}
	defer cur.Close()

	target := strings.TrimSpace(c.Target)
	variable := query.NormalizeVariable(c.Variable)

	var details []corpus.MatchDetail
	keys, matched := 0, 0
	cur.SeekToFirst()
	for cur.Next() {
		key := string(cur.Key())
		keys++
		if target != "" && key != target {
			continue
		}
		date, err := query.ParseDateKey(key)
		if err != nil {
			return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
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
