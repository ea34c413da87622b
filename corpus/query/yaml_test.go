package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronotext/chronotext/corpus"
)

func TestUnmarshalQueryConditionTree(t *testing.T) {
	doc := []byte(`
corpus: news
granularity: sentence
window: 3
select: [document, value]
order_by: document
limit: 10
where:
  and:
    - contains:
        terms: [apple, pie]
    - not:
        contains:
          terms: [juice]
    - ner:
        type: PERSON
        as: "?p"
`)
	q, err := UnmarshalQuery(doc)
	require.NoError(t, err)

	assert.Equal(t, "news", q.Corpus)
	assert.Equal(t, corpus.GranularitySentence, q.Granularity)
	assert.Equal(t, int32(3), q.GranularitySize)
	assert.Equal(t, []string{"document", "value"}, q.Select)
	assert.Equal(t, 10, q.Limit)

	root, ok := q.Root.(*Logical)
	require.True(t, ok)
	require.Len(t, root.Children, 3)
	assert.Equal(t, OpAnd, root.Op)

	contains, ok := root.Children[0].(*Contains)
	require.True(t, ok)
	assert.Equal(t, []string{"apple", "pie"}, contains.Terms)

	not, ok := root.Children[1].(*Not)
	require.True(t, ok)
	_, ok = not.Child.(*Contains)
	assert.True(t, ok)

	ner, ok := root.Children[2].(*Ner)
	require.True(t, ok)
	assert.Equal(t, "PERSON", ner.EntityType)
	assert.Equal(t, "?p", ner.Variable)
}

func TestUnmarshalQueryTemporalYearExpansion(t *testing.T) {
	doc := []byte(`
corpus: news
where:
  temporal:
    predicate: contained_by
    start: "1875"
    end: "1880"
`)
	q, err := UnmarshalQuery(doc)
	require.NoError(t, err)

	temporal, ok := q.Root.(*Temporal)
	require.True(t, ok)
	assert.Equal(t, PredContainedBy, temporal.Predicate)
	assert.Equal(t, time.Date(1875, time.January, 1, 0, 0, 0, 0, time.UTC), temporal.Start)
	assert.Equal(t, time.Date(1880, time.December, 31, 0, 0, 0, 0, time.UTC), temporal.End)
}

func TestUnmarshalQueryJoin(t *testing.T) {
	doc := []byte(`
corpus: news
join:
  left: a.?d1
  right: b.?d2
  predicate: proximity
  within_days: 30
subqueries:
  - alias: a
    query:
      corpus: news
      where:
        temporal: {predicate: after_equal, start: "1900", as: "?d1"}
  - alias: b
    query:
      corpus: news
      where:
        temporal: {predicate: after_equal, start: "1900", as: "?d2"}
`)
	q, err := UnmarshalQuery(doc)
	require.NoError(t, err)

	require.NotNil(t, q.Join)
	assert.Equal(t, JoinInner, q.Join.Type)
	assert.Equal(t, ColumnRef{Alias: "a", Key: "?d1"}, q.Join.Left)
	assert.Equal(t, PredProximity, q.Join.Predicate)
	assert.Equal(t, 30, q.Join.ProximityDays)
	require.Len(t, q.Subqueries, 2)
	assert.Equal(t, "a", q.Subqueries[0].Alias)
}

func TestUnmarshalQueryRejectsUnknownVariant(t *testing.T) {
	_, err := UnmarshalQuery([]byte("where:\n  regex: {pattern: x}\n"))
	require.Error(t, err)

	_, err = UnmarshalQuery([]byte("granularity: paragraph\n"))
	require.Error(t, err)
}
