// Package editor applies admin edits to a single content block.
package editor

import (
	"errors"
	"fmt"

	"github.com/sirdesai22/recap-service/internal/blocks"
)

var (
	ErrWrongType    = errors.New("operation does not apply to this block type")
	ErrRowIndex     = errors.New("row index out of range")
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// Session is one editing pass over a block. Edits touch only the working
// content; the id, type and order of the block are fixed for the session.
type Session struct {
	original blocks.ContentBlock
	working  blocks.Content
}

// DeleteRequest asks the owner of the document to drop a block.
type DeleteRequest struct {
	BlockID string `json:"block_id"`
}

func NewSession(b blocks.ContentBlock) (*Session, error) {
	c, err := blocks.Decode(b)
	if err != nil {
		return nil, err
	}
	return &Session{original: b, working: c}, nil
}

func (s *Session) BlockID() string         { return s.original.ID }
func (s *Session) Type() blocks.Type       { return s.original.Type }
func (s *Session) Content() blocks.Content { return s.working }

// Save returns the edited block. Content keys this package does not model are
// carried over from the stored payload.
func (s *Session) Save() (blocks.ContentBlock, error) {
	merged, err := blocks.Merge(s.original.Content, s.working)
	if err != nil {
		return blocks.ContentBlock{}, fmt.Errorf("save block %s: %w", s.original.ID, err)
	}
	out := s.original
	out.Content = merged
	return out, nil
}

// Cancel drops the working copy and returns the block as it was loaded.
func (s *Session) Cancel() blocks.ContentBlock {
	c, err := blocks.Decode(s.original)
	if err == nil {
		s.working = c
	}
	return s.original
}

func (s *Session) Delete() DeleteRequest {
	return DeleteRequest{BlockID: s.original.ID}
}

func content[T blocks.Content](s *Session) (T, error) {
	c, ok := s.working.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrWrongType, s.original.Type)
	}
	return c, nil
}
