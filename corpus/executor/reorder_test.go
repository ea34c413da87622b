package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chronotext/chronotext/corpus/query"
)

type fakeCondition struct {
	query.Contains
	name     string
	produces []string
	consumes []string
}

func (f *fakeCondition) String() string     { return f.name }
func (f *fakeCondition) Produces() []string { return f.produces }
func (f *fakeCondition) Consumes() []string { return f.consumes }

func names(conds []query.Condition) []string {
	out := make([]string, len(conds))
	for i, c := range conds {
		out[i] = c.String()
	}
	return out
}

func TestReorderProducersFirst(t *testing.T) {
	consumer := &fakeCondition{name: "consumer", consumes: []string{"?d"}}
	producer := &fakeCondition{name: "producer", produces: []string{"?d"}}
	neutral := &fakeCondition{name: "neutral"}

	ordered := reorderProducersFirst([]query.Condition{consumer, producer, neutral})
	assert.Equal(t, []string{"producer", "consumer", "neutral"}, names(ordered))
}

func TestReorderKeepsIndependentOrder(t *testing.T) {
	a := &fakeCondition{name: "a", consumes: []string{"?x"}}
	b := &fakeCondition{name: "b", consumes: []string{"?x"}}
	p := &fakeCondition{name: "p", produces: []string{"?x"}}

	ordered := reorderProducersFirst([]query.Condition{a, b, p})
	assert.Equal(t, []string{"p", "a", "b"}, names(ordered))
}

func TestReorderNoDependencies(t *testing.T) {
	a := &fakeCondition{name: "a"}
	b := &fakeCondition{name: "b"}
	ordered := reorderProducersFirst([]query.Condition{a, b})
	assert.Equal(t, []string{"a", "b"}, names(ordered))
}

func TestReorderCyclePreservesOriginal(t *testing.T) {
	a := &fakeCondition{name: "a", produces: []string{"?x"}, consumes: []string{"?y"}}
	b := &fakeCondition{name: "b", produces: []string{"?y"}, consumes: []string{"?x"}}
	lead := &fakeCondition{name: "lead"}

	ordered := reorderProducersFirst([]query.Condition{a, b, lead})
	assert.Equal(t, []string{"lead", "a", "b"}, names(ordered))
}
