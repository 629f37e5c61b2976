// Package matching scores and ranks storefront products against task names.
package matching

import (
	"regexp"
	"strings"
)

var (
	// Leading quantity with an optional unit, e.g. "2x", "3 kg", "500g".
	leadingQuantity = regexp.MustCompile(`(?i)^\d+\s*(x|kg|g|l|ml|pieces?|pcs?|stück|stk)?\s*`)

	parenNumber   = regexp.MustCompile(`\(\d+\)`)
	leadingNumber = regexp.MustCompile(`^\d+\s+`)
	leadingDigits = regexp.MustCompile(`^\d+\s*`)
)

// Sanitize strips quantity noise from a task title to produce a search query.
// A purely numeric title is returned unchanged (trimmed).
func Sanitize(title string) string {
	s := leadingQuantity.ReplaceAllString(title, "")
	s = parenNumber.ReplaceAllString(s, "")
	s = leadingNumber.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s != "" {
		return s
	}

	s = strings.TrimSpace(leadingDigits.ReplaceAllString(title, ""))
	if s != "" {
		return s
	}
	return strings.TrimSpace(title)
}
