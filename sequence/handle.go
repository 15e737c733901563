package sequence

// Handle is a mutable sequence with an internal focus. Edits happen in
// place. Cloning is O(1) because the underlying nodes are immutable.
type Handle struct {
	left, right *node
	gauge       int
	tick        uint64
}

// NewHandle returns an empty handle focused at position 0.
func NewHandle(gauge int) *Handle {
	return &Handle{gauge: normGauge(gauge)}
}

// Len returns the number of elements.
func (h *Handle) Len() int { return h.left.count() + h.right.count() }

// Pos returns the focus position.
func (h *Handle) Pos() int { return h.left.count() }

// Refocus moves the focus before element pos.
func (h *Handle) Refocus(pos int) error {
	if pos < 0 || pos > h.Len() {
		return &RangeError{Pos: pos, Len: h.Len()}
	}

	if pos == h.Pos() {
		return nil
	}

	h.tick++
	h.left, h.right = split(merge(h.left, h.right), pos, splitmix64(h.tick))

	return nil
}

// PushRight inserts v immediately right of the focus.
func (h *Handle) PushRight(v uint64) {
	h.tick++
	h.right = pushFront(h.right, v, h.gauge, splitmix64(h.tick))
}

// Clone returns an independent handle with the same contents and focus.
func (h *Handle) Clone() *Handle {
	c := *h

	return &c
}

// Snapshot returns the current contents in sequence state.
func (h *Handle) Snapshot() Seq {
	return Seq{root: merge(h.left, h.right), gauge: h.gauge, tick: h.tick}
}
