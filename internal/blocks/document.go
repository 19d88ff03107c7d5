package blocks

import (
	"cmp"
	"errors"
	"slices"

	"github.com/google/uuid"
)

var ErrBlockNotFound = errors.New("content block not found")

// Sorted returns a copy of list ordered by Order. Equal orders keep their relative position.
func Sorted(list []ContentBlock) []ContentBlock {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b ContentBlock) int { return cmp.Compare(a.Order, b.Order) })
	return out
}

// New builds a block with a fresh id around c.
func New(c Content, order int) (ContentBlock, error) {
	raw, err := encode(c)
	if err != nil {
		return ContentBlock{}, err
	}
	return ContentBlock{
		ID:      uuid.NewString(),
		Type:    c.BlockType(),
		Order:   order,
		Content: raw,
	}, nil
}

// NextOrder is one past the largest order in list, or 0 for an empty list.
func NextOrder(list []ContentBlock) int {
	next := 0
	for _, b := range list {
		if b.Order >= next {
			next = b.Order + 1
		}
	}
	return next
}

// Append adds a default block of type t at the end of list.
func Append(list []ContentBlock, t Type) ([]ContentBlock, ContentBlock, error) {
	c, err := DefaultContent(t)
	if err != nil {
		return list, ContentBlock{}, err
	}
	b, err := New(c, NextOrder(list))
	if err != nil {
		return list, ContentBlock{}, err
	}
	return append(slices.Clone(list), b), b, nil
}

func Find(list []ContentBlock, id string) (int, bool) {
	i := slices.IndexFunc(list, func(b ContentBlock) bool { return b.ID == id })
	return i, i >= 0
}

// Replace swaps in updated by id. The stored type and order are kept.
func Replace(list []ContentBlock, updated ContentBlock) ([]ContentBlock, error) {
	i, ok := Find(list, updated.ID)
	if !ok {
		return list, ErrBlockNotFound
	}
	out := slices.Clone(list)
	updated.Type = out[i].Type
	updated.Order = out[i].Order
	out[i] = updated
	return out, nil
}

func Remove(list []ContentBlock, id string) ([]ContentBlock, error) {
	i, ok := Find(list, id)
	if !ok {
		return list, ErrBlockNotFound
	}
	return slices.Delete(slices.Clone(list), i, i+1), nil
}

// Move shifts the block with id by delta positions in display order and renumbers
// orders 0..n-1. The target position is clamped to the list bounds.
func Move(list []ContentBlock, id string, delta int) ([]ContentBlock, error) {
	sorted := Sorted(list)
	i, ok := Find(sorted, id)
	if !ok {
		return list, ErrBlockNotFound
	}
	n := len(sorted)
	delta = min(max(delta, -n), n)
	j := min(max(i+delta, 0), n-1)
	b := sorted[i]
	sorted = slices.Delete(sorted, i, i+1)
	sorted = slices.Insert(sorted, j, b)
	return Renumber(sorted), nil
}

// Renumber assigns orders 0..n-1 following the current display order.
func Renumber(list []ContentBlock) []ContentBlock {
	out := Sorted(list)
	for i := range out {
		out[i].Order = i
	}
	return out
}
