// Package normalize canonicalizes raw message text before any analysis.
package normalize

import "strings"

// Normalize replaces non-breaking spaces with ordinary spaces and trims
// surrounding whitespace. It never fails; empty input yields empty output,
// which downstream code treats as "not a listing" or "empty query".
func Normalize(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	return strings.TrimSpace(text)
}
