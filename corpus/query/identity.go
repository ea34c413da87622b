package query

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// conditionID derives the stable identifier of a condition from its
// string form. Two structurally identical conditions share an id.
func conditionID(c Condition) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(c.String()))
}

// NormalizeVariable returns the variable name with exactly one leading
// '?'. Empty input stays empty; every executor emits only the
// normalized form.
func NormalizeVariable(name string) string {
	if name == "" {
		return ""
	}
	return "?" + strings.TrimLeft(name, "?")
}
