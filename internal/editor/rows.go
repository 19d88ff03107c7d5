package editor

import (
	"fmt"
	"slices"
)

// Row helpers return new slices; untouched rows keep their relative order and values.

func appendRow[T any](rows []T, row T) []T {
	return append(slices.Clone(rows), row)
}

func updateRow[T any](rows []T, i int, fn func(*T) error) ([]T, error) {
	if i < 0 || i >= len(rows) {
		return rows, fmt.Errorf("%w: %d of %d", ErrRowIndex, i, len(rows))
	}
	out := slices.Clone(rows)
	if err := fn(&out[i]); err != nil {
		return rows, err
	}
	return out, nil
}

func removeRow[T any](rows []T, i int) ([]T, error) {
	if i < 0 || i >= len(rows) {
		return rows, fmt.Errorf("%w: %d of %d", ErrRowIndex, i, len(rows))
	}
	return slices.Delete(slices.Clone(rows), i, i+1), nil
}
