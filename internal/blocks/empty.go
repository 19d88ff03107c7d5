package blocks

import "strings"

// emptyParagraphs are the markers rich-text editors leave behind for a cleared field.
var emptyParagraphs = map[string]bool{
	"<p></p>":       true,
	"<p><br></p>":   true,
	"<p><br/></p>":  true,
	"<p><br /></p>": true,
	"<p>&nbsp;</p>": true,
}

// IsEmpty reports whether b has nothing worth displaying. Unknown types and
// payloads that do not decode are reported as not empty so they are never hidden silently.
func IsEmpty(b ContentBlock) bool {
	c, err := Decode(b)
	if err != nil {
		return false
	}
	return Visit[bool](c, emptiness{})
}

// IsEmptyContent applies the emptiness rules to an already decoded payload.
func IsEmptyContent(c Content) bool {
	return Visit[bool](c, emptiness{})
}

func blankHTML(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || emptyParagraphs[strings.ToLower(s)]
}

type emptiness struct{}

var _ Visitor[bool] = emptiness{}

func (emptiness) Text(c *TextContent) bool { return blankHTML(c.Text) }

func (emptiness) ImageGallery(c *GalleryContent) bool { return len(c.Images) == 0 }

func (emptiness) Statistics(c *StatisticsContent) bool { return len(c.Stats) == 0 }

func (emptiness) Quote(c *QuoteContent) bool { return strings.TrimSpace(c.Quote) == "" }

func (emptiness) Highlights(c *HighlightsContent) bool {
	for _, it := range c.Items {
		if strings.TrimSpace(it.Text) != "" {
			return false
		}
	}
	return true
}

func (emptiness) AttendeeFeedback(c *FeedbackContent) bool {
	for _, f := range c.Feedback {
		if strings.TrimSpace(f.Comment) != "" {
			return false
		}
	}
	return true
}
