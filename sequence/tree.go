// Package sequence provides persistent sequences of uint64 values with an
// editable focus.
//
// Two forms are offered. The value form pairs Seq (sequence state) with Zip
// (focus state): every edit returns a new value and prior versions stay
// valid. The handle form is a single mutable Handle whose focus moves with
// Refocus. Both are backed by the same persistent implicit treap, whose
// nodes carry chunks of up to gauge elements and the element count of their
// subtree.
package sequence

// node is an immutable treap node. Chunks are never written after
// construction, so nodes may be shared freely between versions.
type node struct {
	left, right *node
	chunk       []uint64
	prio        uint64
	size        int
}

func (n *node) count() int {
	if n == nil {
		return 0
	}

	return n.size
}

func mk(left *node, chunk []uint64, right *node, prio uint64) *node {
	return &node{
		left:  left,
		right: right,
		chunk: chunk,
		prio:  prio,
		size:  left.count() + len(chunk) + right.count(),
	}
}

func leaf(v uint64, prio uint64) *node {
	return mk(nil, []uint64{v}, nil, prio)
}

// merge concatenates a and b.
func merge(a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	if a.prio >= b.prio {
		return mk(a.left, a.chunk, merge(a.right, b), a.prio)
	}

	return mk(merge(a, b.left), b.chunk, b.right, b.prio)
}

// split returns the first pos elements of n and the remainder. A chunk
// straddling pos is cut in two: the left half keeps the node and its
// priority, the right half becomes a node of priority cut merged in front
// of the right subtree. At most one chunk is cut per call.
func split(n *node, pos int, cut uint64) (*node, *node) {
	if n == nil {
		return nil, nil
	}

	ls := n.left.count()

	switch {
	case pos <= ls:
		l, r := split(n.left, pos, cut)
		return l, mk(r, n.chunk, n.right, n.prio)

	case pos >= ls+len(n.chunk):
		l, r := split(n.right, pos-ls-len(n.chunk), cut)
		return mk(n.left, n.chunk, l, n.prio), r

	default:
		k := pos - ls
		tail := mk(nil, n.chunk[k:], nil, cut)

		return mk(n.left, n.chunk[:k:k], nil, n.prio), merge(tail, n.right)
	}
}

// pushFront prepends v to n, growing the leftmost chunk when it has room.
func pushFront(n *node, v uint64, gauge int, prio uint64) *node {
	if n == nil {
		return leaf(v, prio)
	}

	if grown := growFront(n, v, gauge); grown != nil {
		return grown
	}

	return merge(leaf(v, prio), n)
}

func growFront(n *node, v uint64, gauge int) *node {
	if n.left != nil {
		l := growFront(n.left, v, gauge)
		if l == nil {
			return nil
		}

		return mk(l, n.chunk, n.right, n.prio)
	}

	if len(n.chunk) >= gauge {
		return nil
	}

	chunk := make([]uint64, 0, len(n.chunk)+1)
	chunk = append(chunk, v)
	chunk = append(chunk, n.chunk...)

	return mk(nil, chunk, n.right, n.prio)
}

func each(n *node, f func(uint64)) {
	for n != nil {
		each(n.left, f)
		for _, v := range n.chunk {
			f(v)
		}
		n = n.right
	}
}

func mapNode(n *node, f func(uint64) uint64) *node {
	if n == nil {
		return nil
	}

	chunk := make([]uint64, len(n.chunk))
	for i, v := range n.chunk {
		chunk[i] = f(v)
	}

	return mk(mapNode(n.left, f), chunk, mapNode(n.right, f), n.prio)
}

// treeFold folds along the tree shape: each chunk is folded left to right
// and combined with its subtrees as bin(bin(left, chunk), right).
func treeFold(n *node, init func(uint64) uint64, bin func(a, b uint64) uint64) (uint64, bool) {
	if n == nil {
		return 0, false
	}

	acc := init(n.chunk[0])
	for _, v := range n.chunk[1:] {
		acc = bin(acc, init(v))
	}

	if l, ok := treeFold(n.left, init, bin); ok {
		acc = bin(l, acc)
	}
	if r, ok := treeFold(n.right, init, bin); ok {
		acc = bin(acc, r)
	}

	return acc, true
}

// splitmix64 turns a counter into a well spread priority.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb

	return x ^ (x >> 31)
}

func normGauge(gauge int) int {
	if gauge < 1 {
		return 1
	}

	return gauge
}
