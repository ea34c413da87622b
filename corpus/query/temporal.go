package query

import (
	"fmt"
	"strings"
	"time"
)

// DateKeyLayout is the date format used as raw keys in the date index.
const DateKeyLayout = "20060102"

// TemporalPredicate relates a document date (a single-day interval) to
// the query interval [start, end].
type TemporalPredicate uint8

const (
	// PredBefore matches dates strictly before the interval start.
	PredBefore TemporalPredicate = iota
	// PredAfter matches dates strictly after the interval end.
	PredAfter
	// PredBeforeEqual matches dates at or before the interval end.
	PredBeforeEqual
	// PredAfterEqual matches dates at or after the interval start.
	PredAfterEqual
	// PredEqual matches a date equal to a degenerate single-day interval.
	PredEqual
	// PredContains matches dates whose interval contains the query
	// interval; for single-day document dates this requires start == end.
	PredContains
	// PredContainedBy matches dates inside the interval, inclusive.
	PredContainedBy
	// PredIntersect matches dates overlapping the interval; for
	// single-day document dates this coincides with PredContainedBy.
	PredIntersect
	// PredProximity matches dates within a configured number of days
	// of the interval.
	PredProximity
)

var predicateNames = map[TemporalPredicate]string{
	PredBefore:      "BEFORE",
	PredAfter:       "AFTER",
	PredBeforeEqual: "BEFORE_EQUAL",
	PredAfterEqual:  "AFTER_EQUAL",
	PredEqual:       "EQUAL",
	PredContains:    "CONTAINS",
	PredContainedBy: "CONTAINED_BY",
	PredIntersect:   "INTERSECT",
	PredProximity:   "PROXIMITY",
}

func (p TemporalPredicate) String() string {
	if s, ok := predicateNames[p]; ok {
		return s
	}
	return fmt.Sprintf("TemporalPredicate(%d)", uint8(p))
}

// ParseTemporalPredicate maps a predicate name to its value.
func ParseTemporalPredicate(s string) (TemporalPredicate, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for p, n := range predicateNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown temporal predicate %q", s)
}

// EvaluateDate applies the predicate to a single document date against
// the query interval [start, end]. proximityDays is consulted only for
// PredProximity.
func (p TemporalPredicate) EvaluateDate(date, start, end time.Time, proximityDays int) bool {
	switch p {
	case PredBefore:
		return date.Before(start)
	case PredAfter:
		return date.After(end)
	case PredBeforeEqual:
		return !date.After(end)
	case PredAfterEqual:
		return !date.Before(start)
	case PredEqual:
		return start.Equal(end) && date.Equal(start)
	case PredContains:
		return start.Equal(end) && date.Equal(start)
	case PredContainedBy, PredIntersect:
		return !date.Before(start) && !date.After(end)
	case PredProximity:
		lo := start.AddDate(0, 0, -proximityDays)
		hi := end.AddDate(0, 0, proximityDays)
		return !date.Before(lo) && !date.After(hi)
	}
	return false
}

// ParseDateKey parses a YYYYMMDD date-index key.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date key %q: %w", key, err)
	}
	return t, nil
}

// FormatDateKey renders a date as a YYYYMMDD index key.
func FormatDateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}
