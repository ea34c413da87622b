package query

import (
	"fmt"
	"strings"

	"github.com/chronotext/chronotext/corpus"
)

// Query is the parsed form the executor consumes. Parsing itself is an
// external collaborator; this model is the contract between the two.
type Query struct {
	Corpus          string
	Root            Condition
	Select          []string
	OrderBy         string
	OrderDescending bool
	Limit           int
	Granularity     corpus.Granularity
	GranularitySize int32
	Join            *JoinCondition
	Subqueries      []SubquerySpec
}

// SubquerySpec names a nested query whose materialized result can be
// referenced by the join condition.
type SubquerySpec struct {
	Alias string
	Query *Query
}

// JoinType discriminates join flavors. Only INNER is executed; the
// others are recognized so the parser can hand them through.
type JoinType uint8

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
)

func (t JoinType) String() string {
	switch t {
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	case JoinFull:
		return "FULL"
	}
	return "INNER"
}

// JoinCondition relates two subquery results pairwise on a temporal or
// structural predicate.
type JoinCondition struct {
	Type          JoinType
	Left          ColumnRef
	Right         ColumnRef
	Predicate     TemporalPredicate
	ProximityDays int
}

func (j *JoinCondition) String() string {
	s := fmt.Sprintf("%s JOIN %s %s %s", j.Type, j.Left, j.Predicate, j.Right)
	if j.Predicate == PredProximity {
		s += fmt.Sprintf(" WITHIN %dd", j.ProximityDays)
	}
	return s
}

// Structural join keys.
const (
	ColumnDocumentID = "document_id"
	ColumnSentenceID = "sentence_id"
)

// ColumnRef addresses one column of a subquery result: a structural
// key (document_id, sentence_id) or a bound variable (?name).
type ColumnRef struct {
	Alias string
	Key   string
}

func (c ColumnRef) String() string { return c.Alias + "." + c.Key }

// IsStructural reports whether the ref addresses an identifier column
// rather than a bound variable.
func (c ColumnRef) IsStructural() bool {
	return c.Key == ColumnDocumentID || c.Key == ColumnSentenceID
}

// ParseColumnRef parses "alias.key" where key is document_id,
// sentence_id, or a variable name. Variable keys are normalized.
func ParseColumnRef(s string) (ColumnRef, error) {
	alias, key, ok := strings.Cut(s, ".")
	if !ok || alias == "" || key == "" {
		return ColumnRef{}, corpus.Errorf(corpus.ErrInvalidCondition, s, "malformed column reference %q: want alias.key", s)
	}
	if key != ColumnDocumentID && key != ColumnSentenceID {
		key = NormalizeVariable(key)
	}
	return ColumnRef{Alias: alias, Key: key}, nil
}
