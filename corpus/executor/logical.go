package executor

import (
	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/query"
	"github.com/chronotext/chronotext/corpus/trace"
)

// logicalExecutor folds child results left to right with the result
// algebra. AND children may be reordered so variable producers run
// before consumers; evaluation order is otherwise the written order.
type logicalExecutor struct {
	engine *Engine
}

func (x *logicalExecutor) Execute(c *query.Logical, g corpus.Granularity, size int32) (*corpus.QueryResult, error) {
	if len(c.Children) == 0 {
		x.engine.events.Emit(trace.WarnEmptyChildren, map[string]interface{}{
			"message":   "logical condition has no children",
			"condition": c.String(),
		})
		return corpus.EmptyResult(g, size), nil
	}

	children := c.Children
	if c.Op == query.OpAnd {
		children = reorderProducersFirst(children)
	}

	var acc *corpus.QueryResult
	for _, child := range children {
		result, err := x.engine.executeCondition(child, g, size)
		if err != nil {
			return nil, err
		}

		switch {
		case acc == nil:
			acc = result
		case c.Op == query.OpAnd:
			acc = x.engine.algebra.Intersect(acc, result)
		default:
			acc = x.engine.algebra.Union(acc, result)
		}

		// AND cannot recover once any contribution is empty.
		if c.Op == query.OpAnd && acc.IsEmpty() {
			return corpus.EmptyResult(g, size), nil
		}
	}
	return acc, nil
}
