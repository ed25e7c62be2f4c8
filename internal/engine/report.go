package engine

import (
	"fmt"
	"strings"

	"gridwarden/internal/domain"
)

// Render formats a validation result as a human-readable summary.
// Violations appear in field declaration order, so identical inputs always
// render identically.
func Render(result domain.ValidationResult) string {
	var b strings.Builder

	if result.Passed {
		fmt.Fprintf(&b, "role %s: PASS\n", result.Role)
		return b.String()
	}

	fmt.Fprintf(&b, "role %s: FAIL (%d violations)\n", result.Role, len(result.Violations))
	for _, v := range result.Violations {
		actual := v.Actual
		if actual == "" {
			actual = "(not reported)"
		}
		fmt.Fprintf(&b, "  %s: expected %s, got %s [%s]\n", v.FieldPath, v.Expected, actual, v.Reason)
	}

	return b.String()
}
