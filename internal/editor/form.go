package editor

import (
	"github.com/sirdesai22/recap-service/internal/blocks"
)

// Field describes one input of the admin form.
type Field struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"` // html | text | textarea | select | bool | number | url
	Value   any      `json:"value"`
	Options []string `json:"options,omitempty"`
}

// Form is the editable representation of a block: scalar fields plus
// repeatable rows for list-shaped types.
type Form struct {
	Type   blocks.Type `json:"type"`
	Fields []Field     `json:"fields"`
	Rows   [][]Field   `json:"rows,omitempty"`
	// Uploads marks forms whose rows are created from object-store uploads.
	Uploads bool `json:"uploads,omitempty"`
}

// Form describes the form of the session's working copy.
func (s *Session) Form() Form {
	return blocks.Visit[Form](s.working, formBuilder{})
}

type formBuilder struct{}

var _ blocks.Visitor[Form] = formBuilder{}

func options[T ~string](vals ...T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

func (formBuilder) Text(c *blocks.TextContent) Form {
	return Form{Type: blocks.TypeText, Fields: []Field{
		{Name: "text", Kind: "html", Value: c.Text},
		{Name: "style", Kind: "select", Value: string(c.Style.Normalize()),
			Options: options(blocks.TextNormal, blocks.TextCallout, blocks.TextCentered)},
	}}
}

func (formBuilder) ImageGallery(c *blocks.GalleryContent) Form {
	f := Form{Type: blocks.TypeImageGallery, Uploads: true, Fields: []Field{
		{Name: "layout", Kind: "select", Value: string(c.Layout.Normalize()),
			Options: options(blocks.GalleryGrid, blocks.GalleryMasonry, blocks.GalleryCarousel)},
		{Name: "show_captions", Kind: "bool", Value: c.ShowCaptions},
	}}
	for _, img := range c.Images {
		f.Rows = append(f.Rows, []Field{
			{Name: "url", Kind: "url", Value: img.URL},
			{Name: "caption", Kind: "text", Value: img.Caption},
			{Name: "alt_text", Kind: "text", Value: img.AltText},
		})
	}
	return f
}

func (formBuilder) Statistics(c *blocks.StatisticsContent) Form {
	f := Form{Type: blocks.TypeStatistics, Fields: []Field{
		{Name: "layout", Kind: "select", Value: string(c.Layout.Normalize()),
			Options: options(blocks.StatsGrid, blocks.StatsCards, blocks.StatsHorizontal)},
		{Name: "style", Kind: "select", Value: string(c.Style.Normalize()),
			Options: options(blocks.StatsMinimal, blocks.StatsColorful, blocks.StatsGradient)},
	}}
	for _, st := range c.Stats {
		f.Rows = append(f.Rows, []Field{
			{Name: "label", Kind: "text", Value: st.Label},
			{Name: "value", Kind: "text", Value: st.Value.String()},
			{Name: "icon", Kind: "select", Value: st.Icon, Options: StatIcons},
			{Name: "highlight", Kind: "bool", Value: st.Highlight},
		})
	}
	return f
}

func (formBuilder) Quote(c *blocks.QuoteContent) Form {
	return Form{Type: blocks.TypeQuote, Fields: []Field{
		{Name: "quote", Kind: "textarea", Value: c.Quote},
		{Name: "author", Kind: "text", Value: c.Author},
		{Name: "author_title", Kind: "text", Value: c.AuthorTitle},
		{Name: "author_image", Kind: "url", Value: c.AuthorImage},
		{Name: "style", Kind: "select", Value: string(c.Style.Normalize()),
			Options: options(blocks.QuoteSimple, blocks.QuoteCard, blocks.QuoteTestimonial)},
	}}
}

func (formBuilder) Highlights(c *blocks.HighlightsContent) Form {
	f := Form{Type: blocks.TypeHighlights, Fields: []Field{
		{Name: "style", Kind: "select", Value: string(c.Style.Normalize()),
			Options: options(blocks.HighlightsChecklist, blocks.HighlightsBullets, blocks.HighlightsNumbered)},
	}}
	for _, it := range c.Items {
		f.Rows = append(f.Rows, []Field{{Name: "text", Kind: "text", Value: it.Text}})
	}
	return f
}

func (formBuilder) AttendeeFeedback(c *blocks.FeedbackContent) Form {
	f := Form{Type: blocks.TypeAttendeeFeedback, Fields: []Field{
		{Name: "display_style", Kind: "select", Value: string(c.DisplayStyle.Normalize()),
			Options: options(blocks.FeedbackCards, blocks.FeedbackDefault)},
	}}
	for _, fb := range c.Feedback {
		f.Rows = append(f.Rows, []Field{
			{Name: "comment", Kind: "textarea", Value: fb.Comment},
			{Name: "author", Kind: "text", Value: fb.Author},
			{Name: "role", Kind: "text", Value: fb.Role},
			{Name: "rating", Kind: "number", Value: fb.Rating},
		})
	}
	return f
}

// StatIcons are the icon names the public site has artwork for.
var StatIcons = []string{"users", "trending", "star", "award", "briefcase", "building", "calendar", "heart"}
