// Package filter turns a free-form query string into a structured filter.
//
// The grammar is deliberately tiny: whitespace-separated tokens, each
// classified independently as a year, a price range, a comparator price, or
// a free-text term. There is no escaping and no operator precedence.
package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dkropachev/autocatalog/internal/model"
)

var (
	bareYearRe = regexp.MustCompile(`^(19|20)\d{2}$`)

	// <digits>-<digits>, each side possibly using period-grouped notation.
	priceRangeRe = regexp.MustCompile(`^(\d[\d.]*)-(\d[\d.]*)$`)

	// Optional comparator followed by a grouped or bare numeric string.
	// Group separators inside a token can only be periods; spaces would
	// have split the token already.
	comparatorRe = regexp.MustCompile(`^(<=|>=|<|>|=)?(\d[\d.]*)$`)

	nonDigitRe = regexp.MustCompile(`\D`)
)

// minPriceDigits is the smallest number of significant digits a token needs
// to be read as a price rather than a free term. Anything shorter ("650",
// "2021") is either a year or a word to search for.
const minPriceDigits = 6

// tokenKind tags the result of classifying a single query token.
type tokenKind int

const (
	tokenTerm tokenKind = iota
	tokenYear
	tokenRange
	tokenComparator
)

// token is the typed result of classifying one whitespace-separated word.
type token struct {
	term string
	kind tokenKind
	year int
	cmp  model.PriceComparator
	rng  model.PriceRange
}

// Parse tokenizes a normalized query and folds the tokens into a structured
// filter. Later tokens overwrite earlier ones of the same kind; this
// last-write-wins policy is deliberate, not an error. An empty query yields
// an empty filter, which the query engine treats as "match everything
// active". Parse never fails.
func Parse(query string) model.StructuredFilter {
	var f model.StructuredFilter

	for _, word := range strings.Fields(query) {
		switch tok := classifyToken(word); tok.kind {
		case tokenYear:
			year := tok.year
			f.Year = &year
		case tokenRange:
			rng := tok.rng
			f.Range = &rng
		case tokenComparator:
			cmp := tok.cmp
			f.PriceCmp = &cmp
		default:
			f.Terms = append(f.Terms, tok.term)
		}
	}

	return f
}

// classifyToken applies the token patterns in priority order; the first
// pattern that matches wins.
func classifyToken(word string) token {
	if bareYearRe.MatchString(word) {
		year, _ := strconv.Atoi(word)
		return token{kind: tokenYear, year: year}
	}

	if m := priceRangeRe.FindStringSubmatch(word); m != nil {
		if lo, ok := parsePrice(m[1]); ok {
			if hi, ok := parsePrice(m[2]); ok {
				if lo > hi {
					lo, hi = hi, lo
				}
				return token{kind: tokenRange, rng: model.PriceRange{Min: lo, Max: hi}}
			}
		}
	}

	if m := comparatorRe.FindStringSubmatch(word); m != nil {
		if value, ok := parsePrice(m[2]); ok {
			op := model.CompareOp(m[1])
			if op == "" {
				op = model.OpEqual
			}
			return token{kind: tokenComparator, cmp: model.PriceComparator{Op: op, Value: value}}
		}
	}

	return token{kind: tokenTerm, term: strings.ToLower(word)}
}

// parsePrice strips grouping separators and converts the remaining digits.
// Tokens with fewer than minPriceDigits significant digits are not prices.
func parsePrice(s string) (int, bool) {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if len(digits) < minPriceDigits {
		return 0, false
	}
	value, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return value, true
}
