package workload

// Zipper is a value-semantic sequence that can enter focus state.
type Zipper[Z any] interface {
	Len() int
	ZipTo(pos int) (Z, error)
}

// Focus is a value-semantic focus that returns to sequence state S.
type Focus[Z, S any] interface {
	PushRight(v uint64) Z
	Unzip() S
}

// Refocuser is a handle-semantic sequence edited in place.
type Refocuser interface {
	Len() int
	Refocus(pos int) error
	PushRight(v uint64)
}

// BatchSize is the number of elements pushed per focus by the batched
// strategies.
const BatchSize = 10

// Retained keeps every intermediate value produced by InsertNSave so none
// becomes unreachable while a group is timed. Values are appended in
// insertion order and never looked up.
type Retained[S, Z any] struct {
	Seqs []S
	Zips []Z
}

// Len returns the number of retained values.
func (r *Retained[S, Z]) Len() int {
	return len(r.Seqs) + len(r.Zips)
}

// InsertN inserts n elements, each at its own sampled position. seq holds
// size elements. Element i has value size+i.
func InsertN[S Zipper[Z], Z Focus[Z, S]](seq S, n, size int, s *Sampler) (S, int) {
	for i := 0; i < n; i++ {
		pos := s.Position(size, i)
		z := mustFocus(seq.ZipTo(pos))
		seq = z.PushRight(uint64(size + i)).Unzip()
	}

	return seq, n
}

// Insert10N inserts n/10 batches of ten consecutive elements, focusing once
// per batch. The remainder of n modulo 10 is not inserted.
func Insert10N[S Zipper[Z], Z Focus[Z, S]](seq S, n, size int, s *Sampler) (S, int) {
	batches := n / BatchSize

	for i := 0; i < batches; i++ {
		pos := s.Position(size, i*BatchSize)
		z := mustFocus(seq.ZipTo(pos))
		for j := 0; j < BatchSize; j++ {
			z = z.PushRight(uint64(size + i + j))
		}
		seq = z.Unzip()
	}

	return seq, batches * BatchSize
}

// Insert10NMut is Insert10N for a handle: the handle is refocused once per
// batch and edited in place.
func Insert10NMut(h Refocuser, n, size int, s *Sampler) int {
	batches := n / BatchSize

	for i := 0; i < batches; i++ {
		pos := s.Position(size, i*BatchSize)
		if err := h.Refocus(pos); err != nil {
			panic(err)
		}
		for j := 0; j < BatchSize; j++ {
			h.PushRight(uint64(size + i + j))
		}
	}

	return batches * BatchSize
}

// InsertNSave is InsertN that appends every sequence and focus value it
// produces to keep.
func InsertNSave[S Zipper[Z], Z Focus[Z, S]](seq S, n, size int, s *Sampler, keep *Retained[S, Z]) (S, int) {
	for i := 0; i < n; i++ {
		pos := s.Position(size, i)
		keep.Seqs = append(keep.Seqs, seq)

		z := mustFocus(seq.ZipTo(pos))
		keep.Zips = append(keep.Zips, z)

		z = z.PushRight(uint64(size + i))
		keep.Zips = append(keep.Zips, z)

		seq = z.Unzip()
	}

	return seq, n
}

// mustFocus panics on a focus error. Positions come from the Sampler and are
// always in range, so an error here is a harness defect.
func mustFocus[Z any](z Z, err error) Z {
	if err != nil {
		panic(err)
	}

	return z
}
