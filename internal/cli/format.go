package cli

import (
	"fmt"
	"strings"

	"github.com/dkropachev/autocatalog/internal/model"
)

// FormatPrice renders a price with space-grouped thousands ("2 350 000").
// A zero price renders as an em-dash placeholder.
func FormatPrice(price int) string {
	if price <= 0 {
		return "—"
	}

	digits := fmt.Sprintf("%d", price)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return strings.Join(groups, " ")
}

// FormatListing renders one listing card: a status header with year and
// price, the listing text, and the source reference.
func FormatListing(l model.Listing) string {
	header := fmt.Sprintf("%s | %d | %s", statusPrefix(l), l.Year, FormatPrice(l.Price))

	var sb strings.Builder
	if l.Sold() {
		sb.WriteString(SoldStyle.Render(header))
	} else {
		sb.WriteString(ActiveStyle.Render(header))
	}
	sb.WriteString("\n")
	sb.WriteString(l.Text)
	sb.WriteString("\n")
	sb.WriteString(SubtleStyle.Render("src: " + l.Source.String()))
	return sb.String()
}

// FormatListings renders a result set with an optional title; an empty set
// renders the no-matches message.
func FormatListings(title string, listings []model.Listing) string {
	if len(listings) == 0 {
		return FormatError("Nothing found")
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(FormatTitle(title))
		sb.WriteString("\n")
	}
	for i, l := range listings {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(FormatListing(l))
	}
	return sb.String()
}

func statusPrefix(l model.Listing) string {
	if l.Sold() {
		return SoldIcon + " SOLD"
	}
	return ActiveIcon
}
