package corpus

import (
	"fmt"
	"time"
)

// Value is the matched value carried by a MatchDetail.
// Valid concrete types are string (TERM, ENTITY, POS_TERM, DEPENDENCY)
// and time.Time (DATE).
type Value interface{}

// ValueType tags how a matched value should be interpreted downstream.
type ValueType uint8

const (
	ValueTerm ValueType = iota
	ValueEntity
	ValuePosTerm
	ValueDate
	ValueDependency
)

func (t ValueType) String() string {
	switch t {
	case ValueTerm:
		return "TERM"
	case ValueEntity:
		return "ENTITY"
	case ValuePosTerm:
		return "POS_TERM"
	case ValueDate:
		return "DATE"
	case ValueDependency:
		return "DEPENDENCY"
	}
	return fmt.Sprintf("ValueType(%d)", uint8(t))
}

// Granularity selects whether results are grouped per document or per
// (document, sentence) pair.
type Granularity uint8

const (
	GranularityDocument Granularity = iota
	GranularitySentence
)

func (g Granularity) String() string {
	if g == GranularitySentence {
		return "SENTENCE"
	}
	return "DOCUMENT"
}

// MatchDetail is the atomic output record of query execution: one
// matched value at one position, attributed to the condition that
// produced it. Details are immutable after construction.
//
// A detail produced by the temporal joiner additionally carries the
// right-hand side of the matched pair; IsJoinResult reports this.
type MatchDetail struct {
	Value       Value
	Type        ValueType
	Position    Position
	ConditionID string
	Variable    string // normalized "?name", empty for non-binding conditions

	// Right-hand side of a join result. Zero-valued otherwise.
	RightValue    Value
	RightType     ValueType
	RightVariable string
	joined        bool
}

// NewMatchDetail constructs a plain (non-join) detail.
func NewMatchDetail(value Value, t ValueType, pos Position, conditionID, variable string) MatchDetail {
	return MatchDetail{
		Value:       value,
		Type:        t,
		Position:    pos,
		ConditionID: conditionID,
		Variable:    variable,
	}
}

// JoinDetail constructs a join-result detail from a left detail and the
// matched right-hand triple.
func JoinDetail(left MatchDetail, rightValue Value, rightType ValueType, rightVariable string) MatchDetail {
	out := left
	out.RightValue = rightValue
	out.RightType = rightType
	out.RightVariable = rightVariable
	out.joined = true
	return out
}

// IsJoinResult reports whether the detail was produced by the temporal
// joiner and carries a right-hand side.
func (d MatchDetail) IsJoinResult() bool { return d.joined }

// DocumentID returns the document of the embedded position.
func (d MatchDetail) DocumentID() int32 { return d.Position.DocumentID }

// SentenceID returns the sentence of the embedded position, or
// NoSentence for document-level details.
func (d MatchDetail) SentenceID() int32 { return d.Position.SentenceID }

// MatchedDate returns the matched date and true iff the detail carries
// a DATE value.
func (d MatchDetail) MatchedDate() (time.Time, bool) {
	if d.Type != ValueDate {
		return time.Time{}, false
	}
	t, ok := d.Value.(time.Time)
	return t, ok
}

func (d MatchDetail) String() string {
	s := fmt.Sprintf("%v (%s) @ %s", d.Value, d.Type, d.Position)
	if d.Variable != "" {
		s = d.Variable + "=" + s
	}
	if d.joined {
		s += fmt.Sprintf(" | %v (%s)", d.RightValue, d.RightType)
	}
	return s
}

// detailKey is the structural identity used for deduplication. Value
// concrete types (string, time.Time) are comparable, so the whole key
// is usable as a map key.
type detailKey struct {
	value         Value
	valueType     ValueType
	position      Position
	conditionID   string
	variable      string
	rightValue    Value
	rightType     ValueType
	rightVariable string
	joined        bool
}

func keyOf(d MatchDetail) detailKey {
	return detailKey{
		value:         d.Value,
		valueType:     d.Type,
		position:      d.Position,
		conditionID:   d.ConditionID,
		variable:      d.Variable,
		rightValue:    d.RightValue,
		rightType:     d.RightType,
		rightVariable: d.RightVariable,
		joined:        d.joined,
	}
}

// DeduplicateDetails removes structural duplicates, preserving first
// occurrence order.
func DeduplicateDetails(details []MatchDetail) []MatchDetail {
	if len(details) < 2 {
		return details
	}
	seen := make(map[detailKey]struct{}, len(details))
	out := make([]MatchDetail, 0, len(details))
	for _, d := range details {
		k := keyOf(d)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return out
}
