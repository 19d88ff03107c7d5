package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Content is the typed payload of a block. The set of implementations is closed.
type Content interface {
	BlockType() Type
	sealed()
}

// ---------------- TEXT ----------------
type TextStyle string

const (
	TextNormal   TextStyle = "normal"
	TextCallout  TextStyle = "callout"
	TextCentered TextStyle = "centered"
)

func (s TextStyle) Normalize() TextStyle {
	switch s {
	case TextNormal, TextCallout, TextCentered:
		return s
	}
	return TextNormal
}

type TextContent struct {
	Text  string    `json:"text"`
	Style TextStyle `json:"style"`
}

// ---------------- IMAGE GALLERY ----------------
type GalleryLayout string

const (
	GalleryGrid     GalleryLayout = "grid"
	GalleryMasonry  GalleryLayout = "masonry"
	GalleryCarousel GalleryLayout = "carousel"
)

func (l GalleryLayout) Normalize() GalleryLayout {
	switch l {
	case GalleryGrid, GalleryMasonry, GalleryCarousel:
		return l
	}
	return GalleryGrid
}

type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
	AltText string `json:"alt_text"`
}

type GalleryContent struct {
	Images       []GalleryImage `json:"images"`
	Layout       GalleryLayout  `json:"layout"`
	ShowCaptions bool           `json:"show_captions"`
}

// ---------------- STATISTICS ----------------
type StatsLayout string

const (
	StatsGrid       StatsLayout = "grid"
	StatsCards      StatsLayout = "cards"
	StatsHorizontal StatsLayout = "horizontal"
)

func (l StatsLayout) Normalize() StatsLayout {
	switch l {
	case StatsGrid, StatsCards, StatsHorizontal:
		return l
	}
	return StatsGrid
}

type StatsStyle string

const (
	StatsMinimal  StatsStyle = "minimal"
	StatsColorful StatsStyle = "colorful"
	StatsGradient StatsStyle = "gradient"
)

func (s StatsStyle) Normalize() StatsStyle {
	switch s {
	case StatsMinimal, StatsColorful, StatsGradient:
		return s
	}
	return StatsColorful
}

// StatValue is either a JSON number or a JSON string ("TBD", "500+").
type StatValue struct {
	Number  float64
	Text    string
	Numeric bool
}

func NumberValue(f float64) StatValue { return StatValue{Number: f, Numeric: true} }
func TextValue(s string) StatValue    { return StatValue{Text: s} }

// String returns the value without locale formatting.
func (v StatValue) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

func (v StatValue) MarshalJSON() ([]byte, error) {
	if v.Numeric {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.Text)
}

func (v *StatValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = StatValue{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("stat value %s: %w", data, err)
	}
	*v = NumberValue(f)
	return nil
}

type Stat struct {
	Label     string    `json:"label"`
	Value     StatValue `json:"value"`
	Icon      string    `json:"icon,omitempty"`
	Highlight bool      `json:"highlight,omitempty"`
}

type StatisticsContent struct {
	Stats  []Stat      `json:"stats"`
	Layout StatsLayout `json:"layout"`
	Style  StatsStyle  `json:"style"`
}

// ---------------- QUOTE ----------------
type QuoteStyle string

const (
	QuoteSimple      QuoteStyle = "simple"
	QuoteCard        QuoteStyle = "card"
	QuoteTestimonial QuoteStyle = "testimonial"
)

func (s QuoteStyle) Normalize() QuoteStyle {
	switch s {
	case QuoteSimple, QuoteCard, QuoteTestimonial:
		return s
	}
	return QuoteSimple
}

type QuoteContent struct {
	Quote       string     `json:"quote"`
	Author      string     `json:"author"`
	AuthorTitle string     `json:"author_title,omitempty"`
	AuthorImage string     `json:"author_image,omitempty"`
	Style       QuoteStyle `json:"style"`
}

// ---------------- HIGHLIGHTS ----------------
type HighlightsStyle string

const (
	HighlightsChecklist HighlightsStyle = "checklist"
	HighlightsBullets   HighlightsStyle = "bullets"
	HighlightsNumbered  HighlightsStyle = "numbered"
)

func (s HighlightsStyle) Normalize() HighlightsStyle {
	switch s {
	case HighlightsChecklist, HighlightsBullets, HighlightsNumbered:
		return s
	}
	return HighlightsChecklist
}

type HighlightItem struct {
	Text string `json:"text"`
}

type HighlightsContent struct {
	Items []HighlightItem `json:"items"`
	Style HighlightsStyle `json:"style"`
}

// ---------------- ATTENDEE FEEDBACK ----------------
type FeedbackDisplay string

const (
	FeedbackCards   FeedbackDisplay = "cards"
	FeedbackDefault FeedbackDisplay = "default"
)

func (d FeedbackDisplay) Normalize() FeedbackDisplay {
	switch d {
	case FeedbackCards, FeedbackDefault:
		return d
	}
	return FeedbackCards
}

const (
	MinRating = 1
	MaxRating = 5
)

type Feedback struct {
	Comment string `json:"comment"`
	Author  string `json:"author"`
	Role    string `json:"role,omitempty"`
	Rating  int    `json:"rating,omitempty"`
}

type FeedbackContent struct {
	Feedback     []Feedback      `json:"feedback"`
	DisplayStyle FeedbackDisplay `json:"display_style"`
}

func (*TextContent) BlockType() Type       { return TypeText }
func (*GalleryContent) BlockType() Type    { return TypeImageGallery }
func (*StatisticsContent) BlockType() Type { return TypeStatistics }
func (*QuoteContent) BlockType() Type      { return TypeQuote }
func (*HighlightsContent) BlockType() Type { return TypeHighlights }
func (*FeedbackContent) BlockType() Type   { return TypeAttendeeFeedback }

func (*TextContent) sealed()       {}
func (*GalleryContent) sealed()    {}
func (*StatisticsContent) sealed() {}
func (*QuoteContent) sealed()      {}
func (*HighlightsContent) sealed() {}
func (*FeedbackContent) sealed()   {}

func newContent(t Type) (Content, error) {
	switch t {
	case TypeText:
		return &TextContent{}, nil
	case TypeImageGallery:
		return &GalleryContent{}, nil
	case TypeStatistics:
		return &StatisticsContent{}, nil
	case TypeQuote:
		return &QuoteContent{}, nil
	case TypeHighlights:
		return &HighlightsContent{}, nil
	case TypeAttendeeFeedback:
		return &FeedbackContent{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// Decode returns the typed view of b. Fields it does not recognise are ignored;
// style and layout values are left as stored (renderers normalise them).
func Decode(b ContentBlock) (Content, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	c, err := newContent(b.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b.Content, c); err != nil {
		return nil, fmt.Errorf("%w: block %q: %v", ErrMalformed, b.ID, err)
	}
	return c, nil
}

// Merge writes the known fields of c over raw, keeping any other keys raw carries.
func Merge(raw json.RawMessage, c Content) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, fmt.Errorf("merge content: %w", err)
		}
	}
	known, err := encode(c)
	if err != nil {
		return nil, err
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(known, &overlay); err != nil {
		return nil, err
	}
	for k, v := range overlay {
		fields[k] = v
	}
	// omitempty fields cleared by the edit must not resurrect from raw.
	for _, k := range optionalKeys[c.BlockType()] {
		if _, ok := overlay[k]; !ok {
			delete(fields, k)
		}
	}
	return encode(fields)
}

var optionalKeys = map[Type][]string{
	TypeQuote: {"author_title", "author_image"},
}

// DefaultContent is the starter payload for a block added from the admin UI.
func DefaultContent(t Type) (Content, error) {
	switch t {
	case TypeText:
		return &TextContent{Text: "", Style: TextNormal}, nil
	case TypeImageGallery:
		return &GalleryContent{Images: []GalleryImage{}, Layout: GalleryGrid, ShowCaptions: true}, nil
	case TypeStatistics:
		return &StatisticsContent{Stats: []Stat{}, Layout: StatsGrid, Style: StatsColorful}, nil
	case TypeQuote:
		return &QuoteContent{Style: QuoteSimple}, nil
	case TypeHighlights:
		return &HighlightsContent{Items: []HighlightItem{}, Style: HighlightsChecklist}, nil
	case TypeAttendeeFeedback:
		return &FeedbackContent{Feedback: []Feedback{}, DisplayStyle: FeedbackCards}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}
