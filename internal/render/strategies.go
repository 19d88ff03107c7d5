package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/sirdesai22/recap-service/internal/blocks"
)

// view names the template for a block and the data it executes with.
type view struct {
	name string
	data any
}

// strategy lays out one block. Unknown style and layout values fall back to
// the type's default variant through Normalize.
type strategy struct {
	rc      *Context
	blockID string
}

var _ blocks.Visitor[view] = strategy{}

type textView struct {
	Class string
	HTML  template.HTML
}

func (s strategy) Text(c *blocks.TextContent) view {
	class := "recap-text"
	switch c.Style.Normalize() {
	case blocks.TextCallout:
		class += " recap-text--callout"
	case blocks.TextCentered:
		class += " recap-text--centered"
	}
	// Authors are trusted admins; their HTML is emitted as stored.
	return view{"text", textView{Class: class, HTML: template.HTML(c.Text)}}
}

type imageView struct {
	URL     string
	Alt     string
	Caption string
	Href    string
}

type slideView struct {
	Current  imageView
	Position int
	Count    int
	HasPrev  bool
	HasNext  bool
	PrevHref string
	NextHref string
}

type lightboxView struct {
	slideView
	CloseHref string
}

type galleryView struct {
	Class        string
	ShowCaptions bool
	Images       []imageView
	Carousel     *slideView
	Lightbox     *lightboxView
}

func (s strategy) ImageGallery(c *blocks.GalleryContent) view {
	layout := c.Layout.Normalize()
	v := galleryView{
		Class:        "recap-gallery recap-gallery--" + string(layout),
		ShowCaptions: c.ShowCaptions,
		Images:       make([]imageView, len(c.Images)),
	}
	for i, img := range c.Images {
		v.Images[i] = imageView{
			URL:     img.URL,
			Alt:     altText(img, i),
			Caption: img.Caption,
			Href:    s.rc.lightboxHref(s.blockID, i),
		}
	}

	if layout == blocks.GalleryCarousel {
		nav := NewNavigator(len(c.Images), s.rc.slide(s.blockID))
		sv := s.slide(v.Images, nav, s.rc.slideHref)
		v.Carousel = &sv
		return view{"image_gallery", v}
	}
	if i, open := s.rc.lightboxFor(s.blockID); open {
		nav := NewNavigator(len(c.Images), i)
		v.Lightbox = &lightboxView{
			slideView: s.slide(v.Images, nav, s.rc.lightboxHref),
			CloseHref: s.rc.closeHref(s.blockID),
		}
	}
	return view{"image_gallery", v}
}

func (s strategy) slide(images []imageView, nav Navigator, href func(string, int) string) slideView {
	return slideView{
		Current:  images[nav.Index()],
		Position: nav.Index() + 1,
		Count:    nav.Count(),
		HasPrev:  nav.HasPrev(),
		HasNext:  nav.HasNext(),
		PrevHref: href(s.blockID, nav.Prev().Index()),
		NextHref: href(s.blockID, nav.Next().Index()),
	}
}

func altText(img blocks.GalleryImage, i int) string {
	if img.AltText != "" {
		return img.AltText
	}
	if img.Caption != "" {
		return img.Caption
	}
	return fmt.Sprintf("Event photo %d", i+1)
}

type statView struct {
	Class string
	Label string
	Value string
	Icon  string
}

type statsView struct {
	Class string
	Stats []statView
}

// colorful cycles through this many accent classes.
const statPalette = 4

func (s strategy) Statistics(c *blocks.StatisticsContent) view {
	layout := c.Layout.Normalize()
	style := c.Style.Normalize()
	v := statsView{
		Class: fmt.Sprintf("recap-stats recap-stats--%s recap-stats--%s", layout, style),
		Stats: make([]statView, len(c.Stats)),
	}
	for i, st := range c.Stats {
		classes := []string{"recap-stat"}
		switch layout {
		case blocks.StatsCards:
			classes = append(classes, "recap-stat--card")
		case blocks.StatsHorizontal:
			classes = append(classes, "recap-stat--inline")
		}
		switch style {
		case blocks.StatsColorful:
			classes = append(classes, fmt.Sprintf("recap-stat--accent-%d", i%statPalette))
		case blocks.StatsGradient:
			classes = append(classes, "recap-stat--gradient")
		}
		if st.Highlight {
			classes = append(classes, "recap-stat--highlight")
		}
		v.Stats[i] = statView{
			Class: strings.Join(classes, " "),
			Label: st.Label,
			Value: FormatStatValue(s.rc.lang(), st.Value),
			Icon:  st.Icon,
		}
	}
	return view{"statistics", v}
}

type quoteView struct {
	Class       string
	Style       string
	Quote       string
	Author      string
	AuthorTitle string
	AuthorImage string
}

func (s strategy) Quote(c *blocks.QuoteContent) view {
	style := c.Style.Normalize()
	return view{"quote", quoteView{
		Class:       "recap-quote recap-quote--" + string(style),
		Style:       string(style),
		Quote:       strings.TrimSpace(c.Quote),
		Author:      c.Author,
		AuthorTitle: c.AuthorTitle,
		AuthorImage: c.AuthorImage,
	}}
}

type highlightsView struct {
	Class string
	Style string
	Items []string
}

func (s strategy) Highlights(c *blocks.HighlightsContent) view {
	style := c.Style.Normalize()
	v := highlightsView{Class: "recap-highlights recap-highlights--" + string(style), Style: string(style)}
	for _, it := range c.Items {
		if t := strings.TrimSpace(it.Text); t != "" {
			v.Items = append(v.Items, t)
		}
	}
	return view{"highlights", v}
}

type feedbackItem struct {
	Comment string
	Author  string
	Role    string
	Rating  int
	Stars   string
}

type feedbackView struct {
	Class string
	Items []feedbackItem
}

func (s strategy) AttendeeFeedback(c *blocks.FeedbackContent) view {
	v := feedbackView{Class: "recap-feedback recap-feedback--" + string(c.DisplayStyle.Normalize())}
	for _, f := range c.Feedback {
		if strings.TrimSpace(f.Comment) == "" {
			continue
		}
		item := feedbackItem{Comment: f.Comment, Author: f.Author, Role: f.Role, Stars: stars(f.Rating)}
		if item.Stars != "" {
			item.Rating = clamp(f.Rating, blocks.MinRating, blocks.MaxRating)
		}
		v.Items = append(v.Items, item)
	}
	return view{"attendee_feedback", v}
}
