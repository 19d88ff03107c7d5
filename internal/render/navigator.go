package render

// Navigator is a position in a gallery of count images. Moves past either end
// leave it where it is; there is no wraparound.
type Navigator struct {
	index int
	count int
}

// NewNavigator clamps index into [0, count-1]. An empty gallery pins the index at 0.
func NewNavigator(count, index int) Navigator {
	if count < 0 {
		count = 0
	}
	return Navigator{index: clamp(index, 0, max(count-1, 0)), count: count}
}

func (n Navigator) Index() int { return n.index }
func (n Navigator) Count() int { return n.count }

func (n Navigator) HasPrev() bool { return n.index > 0 }
func (n Navigator) HasNext() bool { return n.index < n.count-1 }

func (n Navigator) Next() Navigator {
	if n.HasNext() {
		n.index++
	}
	return n
}

func (n Navigator) Prev() Navigator {
	if n.HasPrev() {
		n.index--
	}
	return n
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
