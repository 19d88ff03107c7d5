package editor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirdesai22/recap-service/internal/blocks"
)

// ---------------- TEXT ----------------

func (s *Session) SetText(html string) error {
	c, err := content[*blocks.TextContent](s)
	if err != nil {
		return err
	}
	c.Text = html
	return nil
}

func (s *Session) SetTextStyle(style blocks.TextStyle) error {
	c, err := content[*blocks.TextContent](s)
	if err != nil {
		return err
	}
	c.Style = style.Normalize()
	return nil
}

// ---------------- STATISTICS ----------------

func (s *Session) AddStat() error {
	c, err := content[*blocks.StatisticsContent](s)
	if err != nil {
		return err
	}
	c.Stats = appendRow(c.Stats, blocks.Stat{Value: blocks.TextValue(""), Icon: "users"})
	return nil
}

// UpdateStat sets one field of stat i. Values that parse as numbers are stored as numbers.
func (s *Session) UpdateStat(i int, field, value string) error {
	c, err := content[*blocks.StatisticsContent](s)
	if err != nil {
		return err
	}
	c.Stats, err = updateRow(c.Stats, i, func(st *blocks.Stat) error {
		switch field {
		case "label":
			st.Label = value
		case "value":
			st.Value = parseStatValue(value)
		case "icon":
			st.Icon = value
		case "highlight":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%w: highlight %q", ErrInvalidValue, value)
			}
			st.Highlight = b
		default:
			return fmt.Errorf("%w: stat.%s", ErrUnknownField, field)
		}
		return nil
	})
	return err
}

func parseStatValue(s string) blocks.StatValue {
	t := strings.TrimSpace(s)
	// NaN and Inf parse but have no JSON encoding; they stay text.
	if f, err := strconv.ParseFloat(t, 64); err == nil && t != "" && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return blocks.NumberValue(f)
	}
	return blocks.TextValue(s)
}

func (s *Session) RemoveStat(i int) error {
	c, err := content[*blocks.StatisticsContent](s)
	if err != nil {
		return err
	}
	c.Stats, err = removeRow(c.Stats, i)
	return err
}

func (s *Session) SetStatsLayout(layout blocks.StatsLayout) error {
	c, err := content[*blocks.StatisticsContent](s)
	if err != nil {
		return err
	}
	c.Layout = layout.Normalize()
	return nil
}

func (s *Session) SetStatsStyle(style blocks.StatsStyle) error {
	c, err := content[*blocks.StatisticsContent](s)
	if err != nil {
		return err
	}
	c.Style = style.Normalize()
	return nil
}

// ---------------- HIGHLIGHTS ----------------

func (s *Session) AddHighlight() error {
	c, err := content[*blocks.HighlightsContent](s)
	if err != nil {
		return err
	}
	c.Items = appendRow(c.Items, blocks.HighlightItem{})
	return nil
}

func (s *Session) UpdateHighlight(i int, text string) error {
	c, err := content[*blocks.HighlightsContent](s)
	if err != nil {
		return err
	}
	c.Items, err = updateRow(c.Items, i, func(it *blocks.HighlightItem) error {
		it.Text = text
		return nil
	})
	return err
}

func (s *Session) RemoveHighlight(i int) error {
	c, err := content[*blocks.HighlightsContent](s)
	if err != nil {
		return err
	}
	c.Items, err = removeRow(c.Items, i)
	return err
}

func (s *Session) SetHighlightsStyle(style blocks.HighlightsStyle) error {
	c, err := content[*blocks.HighlightsContent](s)
	if err != nil {
		return err
	}
	c.Style = style.Normalize()
	return nil
}

// ---------------- QUOTE ----------------

func (s *Session) SetQuoteField(field, value string) error {
	c, err := content[*blocks.QuoteContent](s)
	if err != nil {
		return err
	}
	switch field {
	case "quote":
		c.Quote = value
	case "author":
		c.Author = value
	case "author_title":
		c.AuthorTitle = value
	case "author_image":
		c.AuthorImage = value
	default:
		return fmt.Errorf("%w: quote.%s", ErrUnknownField, field)
	}
	return nil
}

func (s *Session) SetQuoteStyle(style blocks.QuoteStyle) error {
	c, err := content[*blocks.QuoteContent](s)
	if err != nil {
		return err
	}
	c.Style = style.Normalize()
	return nil
}

// ---------------- ATTENDEE FEEDBACK ----------------

func (s *Session) AddFeedback() error {
	c, err := content[*blocks.FeedbackContent](s)
	if err != nil {
		return err
	}
	c.Feedback = appendRow(c.Feedback, blocks.Feedback{Rating: blocks.MaxRating})
	return nil
}

func (s *Session) UpdateFeedback(i int, field, value string) error {
	if field == "rating" {
		r, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: rating %q", ErrInvalidValue, value)
		}
		return s.SetFeedbackRating(i, r)
	}
	c, err := content[*blocks.FeedbackContent](s)
	if err != nil {
		return err
	}
	c.Feedback, err = updateRow(c.Feedback, i, func(f *blocks.Feedback) error {
		switch field {
		case "comment":
			f.Comment = value
		case "author":
			f.Author = value
		case "role":
			f.Role = value
		default:
			return fmt.Errorf("%w: feedback.%s", ErrUnknownField, field)
		}
		return nil
	})
	return err
}

// SetFeedbackRating clamps rating into [MinRating, MaxRating].
func (s *Session) SetFeedbackRating(i, rating int) error {
	c, err := content[*blocks.FeedbackContent](s)
	if err != nil {
		return err
	}
	c.Feedback, err = updateRow(c.Feedback, i, func(f *blocks.Feedback) error {
		f.Rating = min(max(rating, blocks.MinRating), blocks.MaxRating)
		return nil
	})
	return err
}

func (s *Session) RemoveFeedback(i int) error {
	c, err := content[*blocks.FeedbackContent](s)
	if err != nil {
		return err
	}
	c.Feedback, err = removeRow(c.Feedback, i)
	return err
}

func (s *Session) SetFeedbackDisplay(d blocks.FeedbackDisplay) error {
	c, err := content[*blocks.FeedbackContent](s)
	if err != nil {
		return err
	}
	c.DisplayStyle = d.Normalize()
	return nil
}

// ---------------- IMAGE GALLERY ----------------

// AddImage appends an already uploaded image; bytes go through the object store.
func (s *Session) AddImage(url, altText string) error {
	c, err := content[*blocks.GalleryContent](s)
	if err != nil {
		return err
	}
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: image url is empty", ErrInvalidValue)
	}
	c.Images = appendRow(c.Images, blocks.GalleryImage{URL: url, AltText: altText})
	return nil
}

func (s *Session) UpdateImage(i int, field, value string) error {
	c, err := content[*blocks.GalleryContent](s)
	if err != nil {
		return err
	}
	c.Images, err = updateRow(c.Images, i, func(img *blocks.GalleryImage) error {
		switch field {
		case "url":
			img.URL = value
		case "caption":
			img.Caption = value
		case "alt_text":
			img.AltText = value
		default:
			return fmt.Errorf("%w: image.%s", ErrUnknownField, field)
		}
		return nil
	})
	return err
}

func (s *Session) RemoveImage(i int) error {
	c, err := content[*blocks.GalleryContent](s)
	if err != nil {
		return err
	}
	c.Images, err = removeRow(c.Images, i)
	return err
}

func (s *Session) SetGalleryLayout(layout blocks.GalleryLayout) error {
	c, err := content[*blocks.GalleryContent](s)
	if err != nil {
		return err
	}
	c.Layout = layout.Normalize()
	return nil
}

func (s *Session) SetShowCaptions(show bool) error {
	c, err := content[*blocks.GalleryContent](s)
	if err != nil {
		return err
	}
	c.ShowCaptions = show
	return nil
}
