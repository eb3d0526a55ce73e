package navigation

// History is a stack of previously visited catalog indices. A positive limit
// bounds the stack; when full, the oldest entry is dropped.
type History struct {
	items []int
	limit int
}

// NewHistory creates a history stack. limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// Push adds index to the top of the stack.
func (h *History) Push(index int) {
	if h.limit > 0 && len(h.items) >= h.limit {
		copy(h.items, h.items[1:])
		h.items = h.items[:len(h.items)-1]
	}
	h.items = append(h.items, index)
}

// Pop removes and returns the top of the stack.
func (h *History) Pop() (int, bool) {
	if len(h.items) == 0 {
		return 0, false
	}
	top := h.items[len(h.items)-1]
	h.items = h.items[:len(h.items)-1]
	return top, true
}

// Clear empties the stack.
func (h *History) Clear() {
	h.items = h.items[:0]
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.items)
}

// Items returns a copy of the stack, bottom first.
func (h *History) Items() []int {
	out := make([]int, len(h.items))
	copy(out, h.items)
	return out
}
