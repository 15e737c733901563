package sequence

import "fmt"

// RangeError reports a focus position outside [0, Len].
type RangeError struct {
	Pos int
	Len int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("sequence: position %d out of range [0, %d]", e.Pos, e.Len)
}

// Seq is a persistent sequence in sequence state. The zero value is an
// empty sequence with gauge 1.
type Seq struct {
	root  *node
	gauge int
	tick  uint64
}

// New returns an empty sequence whose chunks hold at most gauge elements.
func New(gauge int) Seq {
	return Seq{gauge: normGauge(gauge)}
}

// Len returns the number of elements.
func (s Seq) Len() int { return s.root.count() }

// Gauge returns the chunk bound of the sequence.
func (s Seq) Gauge() int { return normGauge(s.gauge) }

// ZipTo enters focus state with the focus placed before element pos.
func (s Seq) ZipTo(pos int) (Zip, error) {
	if pos < 0 || pos > s.Len() {
		return Zip{}, &RangeError{Pos: pos, Len: s.Len()}
	}

	tick := s.tick + 1
	l, r := split(s.root, pos, splitmix64(tick))

	return Zip{left: l, right: r, gauge: s.Gauge(), tick: tick}, nil
}

// Each calls f on every element in order.
func (s Seq) Each(f func(uint64)) { each(s.root, f) }

// Items returns the elements in order.
func (s Seq) Items() []uint64 {
	out := make([]uint64, 0, s.Len())
	s.Each(func(v uint64) { out = append(out, v) })

	return out
}

// Map returns a sequence of the same shape with f applied to every element.
func (s Seq) Map(f func(uint64) uint64) Seq {
	return Seq{root: mapNode(s.root, f), gauge: s.gauge, tick: s.tick}
}

// TreeFold folds the elements following the tree shape. It reports false
// for an empty sequence.
func (s Seq) TreeFold(init func(uint64) uint64, bin func(a, b uint64) uint64) (uint64, bool) {
	return treeFold(s.root, init, bin)
}

// Zip is a persistent sequence in focus state.
type Zip struct {
	left, right *node
	gauge       int
	tick        uint64
}

// Len returns the number of elements on both sides of the focus.
func (z Zip) Len() int { return z.left.count() + z.right.count() }

// Pos returns the focus position.
func (z Zip) Pos() int { return z.left.count() }

// PushRight inserts v immediately right of the focus.
func (z Zip) PushRight(v uint64) Zip {
	tick := z.tick + 1

	return Zip{
		left:  z.left,
		right: pushFront(z.right, v, normGauge(z.gauge), splitmix64(tick)),
		gauge: z.gauge,
		tick:  tick,
	}
}

// Unzip leaves focus state.
func (z Zip) Unzip() Seq {
	return Seq{root: merge(z.left, z.right), gauge: z.gauge, tick: z.tick}
}
