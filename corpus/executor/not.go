package executor

import (
	"sort"
	"time"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/query"
	"github.com/chronotext/chronotext/corpus/storage"
	"github.com/chronotext/chronotext/corpus/trace"
)

// notMatchValue marks complement placeholder details.
const notMatchValue = "NOT_MATCH"

// notExecutor complements its child against the corpus universe: the
// document (or document, sentence) identifiers reachable through an
// exhaustive scan of the unigram index. Expensive by construction;
// callers should prefer bounded predicates where they can.
type notExecutor struct {
	engine *Engine
}

func (x *notExecutor) Execute(c *query.Not, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	idx, ok := x.engine.indexes.Index(storage.IndexUnigram)
	if !ok {
		return nil, corpus.Errorf(corpus.ErrMissingIndex, c.String(), "index %q is required as the complement universe", storage.IndexUnigram)
	}

	child, err := x.engine.executeCondition(c.Child, g, size)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	universe, err := x.collectUniverse(idx, c, g)
	if err != nil {
		return nil, err
	}

	matched := make(map[corpus.SentenceKey]struct{})
	for _, d := range child.Details() {
		k := corpus.SentenceKey{DocumentID: d.DocumentID()}
		if g == corpus.GranularitySentence {
			k.SentenceID = d.SentenceID()
		} else {
			k.SentenceID = corpus.NoSentence
		}
		matched[k] = struct{}{}
	}

	var keep []corpus.SentenceKey
	for unit := range universe {
		if _, hit := matched[unit]; !hit {
			keep = append(keep, unit)
		}
	}
	sort.Slice(keep, func(i, j int) bool {
		if keep[i].DocumentID != keep[j].DocumentID {
			return keep[i].DocumentID < keep[j].DocumentID
		}
		return keep[i].SentenceID < keep[j].SentenceID
	})

	details := make([]corpus.MatchDetail, 0, len(keep))
	for _, unit := range keep {
		pos := corpus.SentencePosition(unit.DocumentID, unit.SentenceID)
		details = append(details, corpus.NewMatchDetail(notMatchValue, corpus.ValueTerm, pos, c.ID(), ""))
	}

	x.engine.events.AddTiming(trace.ResultsComplement, began, map[string]interface{}{
		"universe.count": len(universe),
		"result.count":   len(details),
	})
	return corpus.NewQueryResult(g, size, details), nil
}

// collectUniverse walks every unigram position list and records the
// identifiers at the requested granularity. Document-level units use
// the NoSentence sentinel so keys stay uniform with the child's.
func (x *notExecutor) collectUniverse(idx storage.IndexAccess, c *query.Not, g corpus.Granularity) (map[corpus.SentenceKey]struct{}, error) {
	cur, err := idx.Cursor()
	if err != nil {
		return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
	}
	defer cur.Close()

	universe := make(map[corpus.SentenceKey]struct{})
	cur.SeekToFirst()
	for cur.Next() {
		blob, err := cur.Value()
		if err != nil {
			return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
		}
		positions, err := storage.DecodePositions(blob)
		if err != nil {
			return nil, corpus.WrapError(corpus.ErrIndexAccess, c.String(), err)
		}
		for _, p := range positions {
			k := corpus.SentenceKey{DocumentID: p.DocumentID, SentenceID: corpus.NoSentence}
			if g == corpus.GranularitySentence && p.SentenceID >= 0 {
				k.SentenceID = p.SentenceID
			}
			universe[k] = struct{}{}
		}
	}
	return universe, nil
}
