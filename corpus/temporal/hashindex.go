// Package temporal implements the date subsystem of the query engine:
// the per-corpus temporal hash index over the date index, and the
// temporal join over materialized subquery results.
package temporal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chronotext/chronotext/corpus/query"
	"github.com/chronotext/chronotext/corpus/storage"
	"github.com/chronotext/chronotext/corpus/temporal/timehash"
	"github.com/chronotext/chronotext/corpus/trace"
)

// HashIndex maps time-hash prefixes to the documents whose dates fall
// in the prefixed calendar segment. Built once per corpus from the
// date index and immutable afterwards, so concurrent reads need no
// locking.
type HashIndex struct {
	prefixes []string           // sorted bucket prefixes
	buckets  map[string][]int32 // prefix → sorted distinct document ids
}

// BuildHashIndex scans the full date index, feeds every key as a
// single-day interval to the inverter, and expands each interval back
// to the documents of its position list. An empty date index yields an
// empty but initialized index.
func BuildHashIndex(dates storage.IndexAccess, events *trace.Collector) (*HashIndex, error) {
	start := time.Now()

	cur, err := dates.Cursor()
	if err != nil {
		return nil, fmt.Errorf("open date cursor: %w", err)
	}
	defer cur.Close()

	var intervals []string
	var docSets [][]int32

	cur.SeekToFirst()
	for cur.Next() {
		key := string(cur.Key())
		date, err := query.ParseDateKey(key)
		if err != nil {
			return nil, err
		}
		blob, err := cur.Value()
		if err != nil {
			return nil, fmt.Errorf("read date entry %q: %w", key, err)
		}
		positions, err := storage.DecodePositions(blob)
		if err != nil {
			return nil, fmt.Errorf("date entry %q: %w", key, err)
		}
		docs := make(map[int32]struct{}, len(positions))
		for _, p := range positions {
			docs[p.DocumentID] = struct{}{}
		}
		intervals = append(intervals, timehash.FormatInterval(date, date))
		docSets = append(docSets, sortedDocs(docs))
	}

	inverted, err := timehash.Invert(intervals)
	if err != nil {
		return nil, fmt.Errorf("invert date intervals: %w", err)
	}

	idx := &HashIndex{buckets: make(map[string][]int32, len(inverted))}
	for prefix, listIndexes := range inverted {
		merged := make(map[int32]struct{})
		for _, li := range listIndexes {
			for _, doc := range docSets[li] {
				merged[doc] = struct{}{}
			}
		}
		idx.buckets[prefix] = sortedDocs(merged)
		idx.prefixes = append(idx.prefixes, prefix)
	}
	sort.Strings(idx.prefixes)

	events.AddTiming(trace.TemporalHashBuilt, start, map[string]interface{}{
		"bucket.count":   len(idx.buckets),
		"interval.count": len(intervals),
	})
	return idx, nil
}

// Query returns the sorted distinct document ids whose dates satisfy
// the predicate against [start, end]. Year-expanded intervals are the
// caller's responsibility; proximityDays applies only to PROXIMITY.
func (h *HashIndex) Query(start, end time.Time, pred query.TemporalPredicate, proximityDays int, events *trace.Collector) ([]int32, error) {
	began := time.Now()

	variant, ok := variantFor(pred)
	if !ok {
		return nil, fmt.Errorf("no hash variant for predicate %s", pred)
	}
	if pred == query.PredProximity {
		start = start.AddDate(0, 0, -proximityDays)
		end = end.AddDate(0, 0, proximityDays)
	}

	interval := timehash.FormatInterval(start, end)
	probes, err := timehash.Generate(interval, variant)
	if err != nil {
		return nil, fmt.Errorf("generate time hashes: %w", err)
	}

	merged := make(map[int32]struct{})
	for _, probe := range probes {
		h.collect(probe, merged)
	}
	docs := sortedDocs(merged)

	events.AddTiming(trace.TemporalHashQueried, began, map[string]interface{}{
		"interval":       interval,
		"prefix.count":   len(probes),
		"document.count": len(docs),
	})
	return docs, nil
}

// collect unions into dst every bucket whose prefix is in a
// string-prefix relation with the probe: ancestors by truncation,
// descendants by a range scan over the sorted prefix list.
func (h *HashIndex) collect(probe string, dst map[int32]struct{}) {
	for _, l := range []int{3, 4, 6} {
		if l >= len(probe) {
			break
		}
		h.union(probe[:l], dst)
	}
	h.union(probe, dst)

	from := sort.SearchStrings(h.prefixes, probe)
	for i := from; i < len(h.prefixes); i++ {
		if !strings.HasPrefix(h.prefixes[i], probe) {
			break
		}
		h.union(h.prefixes[i], dst)
	}
}

func (h *HashIndex) union(prefix string, dst map[int32]struct{}) {
	for _, doc := range h.buckets[prefix] {
		dst[doc] = struct{}{}
	}
}

func variantFor(pred query.TemporalPredicate) (timehash.PredicateVariant, bool) {
	switch pred {
	case query.PredBefore:
		return timehash.VariantBefore, true
	case query.PredAfter:
		return timehash.VariantAfter, true
	case query.PredBeforeEqual:
		return timehash.VariantBeforeEqual, true
	case query.PredAfterEqual:
		return timehash.VariantAfterEqual, true
	case query.PredEqual:
		return timehash.VariantEqual, true
	case query.PredContains:
		return timehash.VariantContains, true
	case query.PredContainedBy:
		return timehash.VariantContainedBy, true
	case query.PredIntersect, query.PredProximity:
		return timehash.VariantIntersect, true
	}
	return 0, false
}

func sortedDocs(set map[int32]struct{}) []int32 {
	out := make([]int32, 0, len(set))
	for doc := range set {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
