package blocks

import "fmt"

// Visitor has one method per block type. Renderer and editor implement it, so a
// new block type fails to compile until both handle it.
type Visitor[T any] interface {
	Text(*TextContent) T
	ImageGallery(*GalleryContent) T
	Statistics(*StatisticsContent) T
	Quote(*QuoteContent) T
	Highlights(*HighlightsContent) T
	AttendeeFeedback(*FeedbackContent) T
}

// Visit is the single dispatch point on the block type.
func Visit[T any](c Content, v Visitor[T]) T {
	switch c := c.(type) {
	case *TextContent:
		return v.Text(c)
	case *GalleryContent:
		return v.ImageGallery(c)
	case *StatisticsContent:
		return v.Statistics(c)
	case *QuoteContent:
		return v.Quote(c)
	case *HighlightsContent:
		return v.Highlights(c)
	case *FeedbackContent:
		return v.AttendeeFeedback(c)
	}
	// Content is sealed; reaching here means a type was added without a case.
	panic(fmt.Sprintf("blocks: unhandled content %T", c))
}
