package executor

import (
	"github.com/chronotext/chronotext/corpus/query"
)

// reorderProducersFirst topologically orders AND children so that a
// child producing a variable runs before a child consuming it. The
// sort is stable: children with no dependency between them keep their
// written order, and a cyclic subsequence is appended unchanged.
func reorderProducersFirst(children []query.Condition) []query.Condition {
	n := len(children)
	if n < 2 {
		return children
	}

	produced := make([]map[string]struct{}, n)
	consumed := make([]map[string]struct{}, n)
	anyDeps := false
	for i, c := range children {
		produced[i] = toSet(c.Produces())
		consumed[i] = toSet(c.Consumes())
		if len(consumed[i]) > 0 {
			anyDeps = true
		}
	}
	if !anyDeps {
		return children
	}

	// dependsOn[i][j]: child i consumes a variable child j produces.
	dependsOn := make([][]bool, n)
	indegree := make([]int, n)
	for i := range children {
		dependsOn[i] = make([]bool, n)
		for j := range children {
			if i == j {
				continue
			}
			if intersects(consumed[i], produced[j]) {
				dependsOn[i][j] = true
				indegree[i]++
			}
		}
	}

	ordered := make([]query.Condition, 0, n)
	done := make([]bool, n)
	remaining := n
	for remaining > 0 {
		// Take the earliest ready child in written order.
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			// Cycle: keep the original order for what is left.
			for i := 0; i < n; i++ {
				if !done[i] {
					ordered = append(ordered, children[i])
				}
			}
			break
		}
		ordered = append(ordered, children[next])
		done[next] = true
		remaining--
		for k := 0; k < n; k++ {
			if !done[k] && dependsOn[k][next] {
				dependsOn[k][next] = false
				indegree[k]--
			}
		}
	}
	return ordered
}

func toSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
