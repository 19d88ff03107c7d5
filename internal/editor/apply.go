package editor

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sirdesai22/recap-service/internal/blocks"
)

var ErrUnknownOp = errors.New("unknown edit operation")

// Op is one serialisable edit, as sent by the admin UI.
//
//	{"op":"update_row","index":1,"field":"label","value":"Employers"}
//
// add_row on a gallery takes the uploaded image URL in Value and its alt text in Field.
type Op struct {
	Op    string `json:"op"`
	Index int    `json:"index,omitempty"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

const (
	OpSetText         = "set_text"
	OpSetStyle        = "set_style"
	OpSetLayout       = "set_layout"
	OpSetShowCaptions = "set_show_captions"
	OpSetField        = "set_field"
	OpAddRow          = "add_row"
	OpUpdateRow       = "update_row"
	OpRemoveRow       = "remove_row"
)

// ApplyAll runs ops in order and stops at the first failure.
func (s *Session) ApplyAll(ops []Op) error {
	for i, op := range ops {
		if err := s.Apply(op); err != nil {
			return fmt.Errorf("op %d (%s): %w", i, op.Op, err)
		}
	}
	return nil
}

func (s *Session) Apply(op Op) error {
	t := s.Type()
	switch op.Op {
	case OpSetText:
		return s.SetText(op.Value)

	case OpSetStyle:
		switch t {
		case blocks.TypeText:
			return s.SetTextStyle(blocks.TextStyle(op.Value))
		case blocks.TypeStatistics:
			return s.SetStatsStyle(blocks.StatsStyle(op.Value))
		case blocks.TypeQuote:
			return s.SetQuoteStyle(blocks.QuoteStyle(op.Value))
		case blocks.TypeHighlights:
			return s.SetHighlightsStyle(blocks.HighlightsStyle(op.Value))
		case blocks.TypeAttendeeFeedback:
			return s.SetFeedbackDisplay(blocks.FeedbackDisplay(op.Value))
		}

	case OpSetLayout:
		switch t {
		case blocks.TypeStatistics:
			return s.SetStatsLayout(blocks.StatsLayout(op.Value))
		case blocks.TypeImageGallery:
			return s.SetGalleryLayout(blocks.GalleryLayout(op.Value))
		}

	case OpSetShowCaptions:
		show, err := strconv.ParseBool(op.Value)
		if err != nil {
			return fmt.Errorf("%w: show_captions %q", ErrInvalidValue, op.Value)
		}
		return s.SetShowCaptions(show)

	case OpSetField:
		return s.SetQuoteField(op.Field, op.Value)

	case OpAddRow:
		switch t {
		case blocks.TypeStatistics:
			return s.AddStat()
		case blocks.TypeHighlights:
			return s.AddHighlight()
		case blocks.TypeAttendeeFeedback:
			return s.AddFeedback()
		case blocks.TypeImageGallery:
			return s.AddImage(op.Value, op.Field)
		}

	case OpUpdateRow:
		switch t {
		case blocks.TypeStatistics:
			return s.UpdateStat(op.Index, op.Field, op.Value)
		case blocks.TypeHighlights:
			return s.UpdateHighlight(op.Index, op.Value)
		case blocks.TypeAttendeeFeedback:
			return s.UpdateFeedback(op.Index, op.Field, op.Value)
		case blocks.TypeImageGallery:
			return s.UpdateImage(op.Index, op.Field, op.Value)
		}

	case OpRemoveRow:
		switch t {
		case blocks.TypeStatistics:
			return s.RemoveStat(op.Index)
		case blocks.TypeHighlights:
			return s.RemoveHighlight(op.Index)
		case blocks.TypeAttendeeFeedback:
			return s.RemoveFeedback(op.Index)
		case blocks.TypeImageGallery:
			return s.RemoveImage(op.Index)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Op)
	}
	return fmt.Errorf("%w: %s on %s", ErrWrongType, op.Op, t)
}
