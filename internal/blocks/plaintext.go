package blocks

import (
	"strings"

	"golang.org/x/net/html"
)

// PlainText flattens the displayable text of a document for the search index.
// Blocks are visited in display order; empty and malformed blocks contribute nothing.
func PlainText(list []ContentBlock) string {
	var parts []string
	for _, b := range Sorted(list) {
		c, err := Decode(b)
		if err != nil || IsEmptyContent(c) {
			continue
		}
		if s := strings.TrimSpace(Visit[string](c, plainText{})); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// StripHTML returns the text nodes of an HTML fragment joined by single spaces.
func StripHTML(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var words []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(words, " ")
		case html.TextToken:
			words = append(words, strings.Fields(string(z.Text()))...)
		}
	}
}

type plainText struct{}

var _ Visitor[string] = plainText{}

func (plainText) Text(c *TextContent) string { return StripHTML(c.Text) }

func (plainText) ImageGallery(c *GalleryContent) string {
	var out []string
	for _, img := range c.Images {
		if img.Caption != "" {
			out = append(out, img.Caption)
		}
	}
	return strings.Join(out, "\n")
}

func (plainText) Statistics(c *StatisticsContent) string {
	var out []string
	for _, s := range c.Stats {
		out = append(out, s.Value.String()+" "+s.Label)
	}
	return strings.Join(out, "\n")
}

func (plainText) Quote(c *QuoteContent) string {
	return strings.TrimSpace(c.Quote + "\n" + c.Author)
}

func (plainText) Highlights(c *HighlightsContent) string {
	var out []string
	for _, it := range c.Items {
		if t := strings.TrimSpace(it.Text); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

func (plainText) AttendeeFeedback(c *FeedbackContent) string {
	var out []string
	for _, f := range c.Feedback {
		if t := strings.TrimSpace(f.Comment); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}
