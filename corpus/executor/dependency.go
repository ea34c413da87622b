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

// dependencyExecutor matches grammatical dependency arcs, keyed
// governor + relation + dependent, all lowercased. All three parts
// literal means a point lookup; in variable mode empty parts act as
// wildcards and the longest literal key prefix bounds the scan.
type dependencyExecutor struct {
	indexes *storage.IndexSet
	events  *trace.Collector
}

func (x *dependencyExecutor) Execute(c *query.Dependency, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	idx, ok := x.indexes.Index(storage.IndexDependency)
	if !ok {
		return nil, corpus.Errorf(corpus.ErrMissingIndex, c.String(), "index %q is not present", storage.IndexDependency)
	}

	parts := [3]string{
		strings.ToLower(strings.TrimSpace(c.Governor)),
		strings.ToLower(strings.TrimSpace(c.Relation)),
		strings.ToLower(strings.TrimSpace(c.Dependent)),
	}
	variable := query.NormalizeVariable(c.Variable)

	if parts[0] != "" && parts[1] != "" && parts[2] != "" {
		return x.lookup(idx, c, parts, variable, g, size)
	}
	if variable == "" {
		return nil, corpus.Errorf(corpus.ErrInvalidCondition, c.String(), "partial dependency patterns require a variable binding")
	}
	return x.scan(idx, c, parts, variable, g, size)
}

func (x *dependencyExecutor) lookup(idx storage.IndexAccess, c *query.Dependency, parts [3]string, variable string, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	began := time.Now()
	key := storage.JoinKey(parts[0], parts[1], parts[2])
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
	details := emitPositions(positions, arcValue(parts), corpus.ValueDependency, c.ID(), variable)
	return corpus.NewQueryResult(g, size, details), nil
}

func (x *dependencyExecutor) scan(idx storage.IndexAccess, c *query.Dependency, parts [3]string, variable string, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	began := time.Now()
	cur, err := idx.Cursor()
	if err != nil {
		return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
	}
	defer cur.Close()

	// Leading literal parts bound the scan; the rest filter.
	var literal []string
	for _, p := range parts {
		if p == "" {
			break
		}
		literal = append(literal, p)
	}
	var prefix []byte
	if len(literal) > 0 {
		prefix = append(storage.JoinKey(literal...), storage.Delimiter)
	}

	var details []corpus.MatchDetail
	keys, matched := 0, 0
	if prefix != nil {
		cur.Seek(prefix)
	} else {
		cur.SeekToFirst()
	}
	for cur.Next() {
		key := cur.Key()
		if prefix != nil && !bytes.HasPrefix(key, prefix) {
			break
		}
		keys++
		found := storage.SplitKey(key)
		if len(found) != 3 {
			return nil, corpus.Errorf(corpus.ErrInternal, c.String(), "malformed dependency key %q", storage.DisplayKey(key))
		}
		if !arcMatches(parts, found) {
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
		details = append(details, emitPositions(positions, arcValue([3]string{found[0], found[1], found[2]}), corpus.ValueDependency, c.ID(), variable)...)
	}

	x.events.AddTiming(trace.IndexScan, began, map[string]interface{}{
		"index":       idx.IndexType(),
		"prefix":      storage.DisplayKey(prefix),
		"key.count":   keys,
		"match.count": matched,
	})
	return corpus.NewQueryResult(g, size, details), nil
}

func arcMatches(want [3]string, found []string) bool {
	for i := range want {
		if want[i] != "" && want[i] != found[i] {
			return false
		}
	}
	return true
}

// arcValue renders the arc the way results display it:
// governor-relation->dependent.
func arcValue(parts [3]string) string {
	return parts[0] + "-" + parts[1] + "->" + parts[2]
}
