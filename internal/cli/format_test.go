package cli

import (
	"strings"
	"testing"

	"github.com/dkropachev/autocatalog/internal/model"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name  string
		price int
		want  string
	}{
		{name: "millions", price: 2350000, want: "2 350 000"},
		{name: "thousands", price: 999000, want: "999 000"},
		{name: "small", price: 650, want: "650"},
		{name: "exact group", price: 100000, want: "100 000"},
		{name: "zero placeholder", price: 0, want: "—"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPrice(tt.price); got != tt.want {
				t.Errorf("FormatPrice(%d) = %q, want %q", tt.price, got, tt.want)
			}
		})
	}
}

func TestFormatListing(t *testing.T) {
	listing := model.Listing{
		ID:     3,
		Source: model.SourceRef{ChatID: -100, MessageID: 42},
		Text:   "BMW 2019, 2 350 000",
		Year:   2019,
		Price:  2350000,
		Status: model.StatusActive,
	}

	out := FormatListing(listing)
	for _, want := range []string{"2019", "2 350 000", "BMW", "src: -100:42"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}

	listing.Status = model.StatusSold
	if !strings.Contains(FormatListing(listing), "SOLD") {
		t.Error("sold card should carry the SOLD marker")
	}
}

func TestFormatListings_Empty(t *testing.T) {
	if out := FormatListings("Search", nil); !strings.Contains(out, "Nothing found") {
		t.Errorf("empty result should render the no-matches message, got %q", out)
	}
}
