// Package blocks defines the recap content-block document model.
package blocks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type Type string

const (
	TypeText             Type = "text"
	TypeImageGallery     Type = "image_gallery"
	TypeStatistics       Type = "statistics"
	TypeQuote            Type = "quote"
	TypeHighlights       Type = "highlights"
	TypeAttendeeFeedback Type = "attendee_feedback"
)

// AllTypes lists every known block type in the order the admin UI offers them.
var AllTypes = []Type{
	TypeText,
	TypeImageGallery,
	TypeStatistics,
	TypeQuote,
	TypeHighlights,
	TypeAttendeeFeedback,
}

func (t Type) Known() bool {
	for _, k := range AllTypes {
		if t == k {
			return true
		}
	}
	return false
}

var (
	ErrMalformed   = errors.New("malformed content block")
	ErrUnknownType = errors.New("unknown content block type")
)

// ContentBlock is one unit of recap content as persisted in event_recaps.content_blocks.
// Content stays raw so fields this code does not know about survive a save.
type ContentBlock struct {
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Order   int             `json:"order"`
	Content json.RawMessage `json:"content"`
}

// Validate reports ErrMalformed when type or content is missing and
// ErrUnknownType when the tag is not one of AllTypes.
func (b ContentBlock) Validate() error {
	if b.Type == "" {
		return fmt.Errorf("%w: block %q has no type", ErrMalformed, b.ID)
	}
	c := bytes.TrimSpace(b.Content)
	if len(c) == 0 || bytes.Equal(c, []byte("null")) {
		return fmt.Errorf("%w: block %q has no content", ErrMalformed, b.ID)
	}
	if !b.Type.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownType, b.Type)
	}
	return nil
}

// ParseList decodes a persisted content_blocks array. A null or empty column yields an empty list.
func ParseList(data []byte) ([]ContentBlock, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []ContentBlock{}, nil
	}
	var list []ContentBlock
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode content blocks: %w", err)
	}
	if list == nil {
		list = []ContentBlock{}
	}
	return list, nil
}

// MarshalList encodes blocks for storage. A nil list is written as [].
// HTML is not escaped so text payloads are stored byte for byte.
func MarshalList(list []ContentBlock) ([]byte, error) {
	if list == nil {
		list = []ContentBlock{}
	}
	return encode(list)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
