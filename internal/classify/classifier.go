// Package classify decides whether a chat message is a sale listing by
// extracting a plausible model year and price from its text.
package classify

import (
	"regexp"
	"strconv"
	"time"

	"github.com/dkropachev/autocatalog/internal/model"
)

var (
	// Coarse 4-digit year token. Candidates still have to pass the runtime
	// bound check in Classify.
	yearRe = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

	// A price is either groups of three digits separated by space, period or
	// non-breaking space ("2 350 000"), or a bare run of six or more digits.
	priceRe = regexp.MustCompile(`\b\d{1,3}(?:[ .\x{00A0}]\d{3})+\b|\b\d{6,}\b`)

	nonDigitRe = regexp.MustCompile(`\D`)
)

// Config holds the classifier thresholds.
type Config struct {
	// MinPrice is the floor below which a numeric match is treated as a
	// false positive (phone numbers, mileage, engine displacement).
	MinPrice int
	// YearFloor is the oldest model year accepted.
	YearFloor int
	// Now supplies the current time for the upper year bound. Tests inject
	// a fixed clock here.
	Now func() time.Time
}

// DefaultConfig returns the thresholds used in production.
func DefaultConfig() Config {
	return Config{
		MinPrice:  50_000,
		YearFloor: 1970,
		Now:       time.Now,
	}
}

// Classifier extracts year and price tokens from normalized text. It is
// stateless and safe for concurrent use.
type Classifier struct {
	now       func() time.Time
	minPrice  int
	yearFloor int
}

// New creates a classifier from the given config, filling in defaults for
// any zero fields.
func New(cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.MinPrice <= 0 {
		cfg.MinPrice = def.MinPrice
	}
	if cfg.YearFloor <= 0 {
		cfg.YearFloor = def.YearFloor
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	return &Classifier{
		minPrice:  cfg.MinPrice,
		yearFloor: cfg.YearFloor,
		now:       cfg.Now,
	}
}

// Classify inspects normalized text and reports whether it is a listing.
// A message is a listing only when both a year and a price are found; a
// partial extraction is reported as a rejection with both fields zero.
// Classify never fails: unparseable input simply yields IsListing=false.
func (c *Classifier) Classify(text string) model.ClassifyResult {
	year, okYear := c.findYear(text)
	price, okPrice := c.findPrice(text)

	if !okYear || !okPrice {
		return model.ClassifyResult{}
	}
	return model.ClassifyResult{IsListing: true, Year: year, Price: price}
}

// findYear returns the leftmost 4-digit year token, if it also satisfies the
// runtime bound [YearFloor, currentYear+1]. The bound is evaluated against
// the clock on every call, never cached: a token that was valid in December
// may stop being valid in January. Only the first match is considered; a
// later in-bound token does not rescue an out-of-bound first one.
func (c *Classifier) findYear(text string) (int, bool) {
	m := yearRe.FindString(text)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil || year < c.yearFloor || year > c.now().Year()+1 {
		return 0, false
	}
	return year, true
}

// findPrice returns the leftmost price token at or above the configured
// floor. Values below the floor are treated as "no price found".
func (c *Classifier) findPrice(text string) (int, bool) {
	m := priceRe.FindString(text)
	if m == "" {
		return 0, false
	}
	price, err := strconv.Atoi(nonDigitRe.ReplaceAllString(m, ""))
	if err != nil || price < c.minPrice {
		return 0, false
	}
	return price, true
}
