// Package timehash implements lexicographic interval hashing for
// calendar-date intervals. An interval is reduced to a small set of
// hash prefixes — aligned decade, year, month and day segments of its
// YYYYMMDD form — such that two intervals overlap only if one side
// holds a prefix of the other side's hash. Invert builds the stored
// multimap; Generate produces the probe prefixes for a predicate.
package timehash

import (
	"fmt"
	"strings"
	"time"
)

// PredicateVariant selects the candidate region Generate probes.
type PredicateVariant uint8

const (
	VariantBefore PredicateVariant = iota
	VariantAfter
	VariantBeforeEqual
	VariantAfterEqual
	VariantEqual
	VariantContains
	VariantContainedBy
	VariantIntersect
)

const dayLayout = "20060102"

// The calendar span hashable by this package.
var (
	MinDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// FormatInterval renders an interval in the wire form consumed by
// Invert and Generate.
func FormatInterval(start, end time.Time) string {
	return start.Format(dayLayout) + ".." + end.Format(dayLayout)
}

// ParseInterval parses the wire form produced by FormatInterval.
func ParseInterval(s string) (time.Time, time.Time, error) {
	lo, hi, ok := strings.Cut(s, "..")
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed interval %q", s)
	}
	start, err := time.ParseInLocation(dayLayout, lo, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed interval %q: %w", s, err)
	}
	end, err := time.ParseInLocation(dayLayout, hi, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed interval %q: %w", s, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("inverted interval %q", s)
	}
	return start, end, nil
}

// Invert maps every interval to its hash prefixes and returns the
// multimap from prefix to interval list-index.
func Invert(intervals []string) (map[string][]int, error) {
	out := make(map[string][]int, len(intervals))
	for i, s := range intervals {
		start, end, err := ParseInterval(s)
		if err != nil {
			return nil, err
		}
		for _, prefix := range cover(start, end) {
			out[prefix] = append(out[prefix], i)
		}
	}
	return out, nil
}

// Generate returns the hash prefixes whose buckets can hold intervals
// satisfying the predicate variant against the query interval. A
// stored interval matches iff one of its Invert prefixes and one of
// the generated prefixes are in a string-prefix relation.
func Generate(interval string, v PredicateVariant) ([]string, error) {
	start, end, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}

	var lo, hi time.Time
	switch v {
	case VariantBefore:
		lo, hi = MinDate, start.AddDate(0, 0, -1)
	case VariantAfter:
		lo, hi = end.AddDate(0, 0, 1), MaxDate
	case VariantBeforeEqual:
		lo, hi = MinDate, end
	case VariantAfterEqual:
		lo, hi = start, MaxDate
	case VariantEqual, VariantContains:
		// A stored single-day interval can only equal or contain a
		// degenerate query interval.
		if !start.Equal(end) {
			return nil, nil
		}
		lo, hi = start, end
	case VariantContainedBy, VariantIntersect:
		lo, hi = start, end
	default:
		return nil, fmt.Errorf("unknown predicate variant %d", v)
	}

	if hi.Before(lo) {
		return nil, nil
	}
	return cover(lo, hi), nil
}

// cover decomposes [lo, hi] into maximal aligned segments: whole
// decades, then years, months, and single days at the ragged edges.
func cover(lo, hi time.Time) []string {
	if lo.Before(MinDate) {
		lo = MinDate
	}
	if hi.After(MaxDate) {
		hi = MaxDate
	}

	var out []string
	d := lo
	for !d.After(hi) {
		if d.Day() == 1 && d.Month() == time.January {
			if d.Year()%10 == 0 {
				decadeEnd := time.Date(d.Year()+9, time.December, 31, 0, 0, 0, 0, time.UTC)
				if !decadeEnd.After(hi) {
					out = append(out, fmt.Sprintf("%04d", d.Year())[:3])
					d = decadeEnd.AddDate(0, 0, 1)
					continue
				}
			}
			yearEnd := time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
			if !yearEnd.After(hi) {
				out = append(out, fmt.Sprintf("%04d", d.Year()))
				d = yearEnd.AddDate(0, 0, 1)
				continue
			}
		}
		if d.Day() == 1 {
			monthEnd := d.AddDate(0, 1, -1)
			if !monthEnd.After(hi) {
				out = append(out, d.Format("200601"))
				d = monthEnd.AddDate(0, 0, 1)
				continue
			}
		}
		out = append(out, d.Format(dayLayout))
		d = d.AddDate(0, 0, 1)
	}
	return out
}
