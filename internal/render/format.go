package render

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sirdesai22/recap-service/internal/blocks"
)

// FormatStatValue groups thousands for numeric values in the given locale.
// String values ("TBD", "500+") pass through unchanged.
func FormatStatValue(tag language.Tag, v blocks.StatValue) string {
	if !v.Numeric {
		return v.Text
	}
	return message.NewPrinter(tag).Sprint(number.Decimal(v.Number))
}

// stars renders a rating as filled and hollow stars; 0 means unrated.
func stars(rating int) string {
	if rating <= 0 {
		return ""
	}
	rating = clamp(rating, blocks.MinRating, blocks.MaxRating)
	return strings.Repeat("★", rating) + strings.Repeat("☆", blocks.MaxRating-rating)
}
