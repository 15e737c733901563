package harness

import (
	"math/rand"
	"time"

	"github.com/weiihann/seqbench/action"
	"github.com/weiihann/seqbench/sequence"
	"github.com/weiihann/seqbench/workload"
)

type retained = workload.Retained[sequence.Seq, sequence.Zip]

// container is the state a variant threads through a run: either a
// valueContainer or a handleContainer.
type container interface {
	Len() int
	clone() container
	// grow inserts n elements into a container of size elements. keep is
	// non-nil when intermediate values must be retained.
	grow(n, size int, s *workload.Sampler, keep *retained) container
}

// create builds the primed container of v through the action contracts.
func (v Variant) create(size int, tuning action.Tuning, rng *rand.Rand) (time.Duration, container) {
	if v.Kind == MutableHandle {
		return action.Creation[handleContainer]{
			Builder: handleBuilder{}, Size: size, Tuning: tuning,
		}.Create(rng)
	}

	return action.Creation[valueContainer]{
		Builder: valueBuilder{batched: v.Batched}, Size: size, Tuning: tuning,
	}.Create(rng)
}

var (
	_ action.Builder[valueContainer]     = valueBuilder{}
	_ action.EditInsert[valueContainer]  = valueContainer{}
	_ action.EditExtend[valueContainer]  = valueContainer{}
	_ action.EditAppend[valueContainer]  = valueContainer{}
	_ action.Builder[handleContainer]    = handleBuilder{}
	_ action.EditInsert[handleContainer] = handleContainer{}
	_ action.EditExtend[handleContainer] = handleContainer{}
	_ action.EditAppend[handleContainer] = handleContainer{}
)

// valueContainer holds a persistent sequence. Edits return new values.
type valueContainer struct {
	seq     sequence.Seq
	batched bool
}

type valueBuilder struct{ batched bool }

// Create fills a new sequence with single insertions.
func (b valueBuilder) Create(size int, tuning action.Tuning, rng *rand.Rand) (time.Duration, valueContainer) {
	c := valueContainer{seq: sequence.New(tuning.Gauge), batched: b.batched}
	s := workload.SamplerFrom(rng)

	d := action.Timed(func() {
		c.seq, _ = workload.InsertN[sequence.Seq, sequence.Zip](c.seq, size, 0, s)
	})

	return d, c
}

func (c valueContainer) Len() int { return c.seq.Len() }

func (c valueContainer) clone() container { return c }

func (c valueContainer) grow(n, size int, s *workload.Sampler, keep *retained) container {
	return c.insert(n, size, s, keep)
}

func (c valueContainer) insert(n, size int, s *workload.Sampler, keep *retained) valueContainer {
	switch {
	case keep != nil:
		c.seq, _ = workload.InsertNSave(c.seq, n, size, s, keep)
	case c.batched:
		c.seq, _ = workload.Insert10N[sequence.Seq, sequence.Zip](c.seq, n, size, s)
	default:
		c.seq, _ = workload.InsertN[sequence.Seq, sequence.Zip](c.seq, n, size, s)
	}

	return c
}

// Insert implements action.EditInsert with the variant's strategy.
func (c valueContainer) Insert(batch int, rng *rand.Rand) (time.Duration, valueContainer) {
	s := workload.SamplerFrom(rng)
	size := c.Len()

	var out valueContainer
	d := action.Timed(func() { out = c.insert(batch, size, s, nil) })

	return d, out
}

// Extend implements action.EditExtend: one focus at the end, batch pushes.
func (c valueContainer) Extend(batch int, _ *rand.Rand) (time.Duration, valueContainer) {
	size := c.Len()

	d := action.Timed(func() {
		z := focus(c.seq, size)
		for i := batch - 1; i >= 0; i-- {
			z = z.PushRight(uint64(size + i))
		}
		c.seq = z.Unzip()
	})

	return d, c
}

// Append implements action.EditAppend: one focus per appended element.
func (c valueContainer) Append(batch int, _ *rand.Rand) (time.Duration, valueContainer) {
	d := action.Timed(func() {
		for i := 0; i < batch; i++ {
			size := c.seq.Len()
			c.seq = focus(c.seq, size).PushRight(uint64(size)).Unzip()
		}
	})

	return d, c
}

func (c valueContainer) Max(_ *rand.Rand) (time.Duration, uint64) {
	return seqMax(c.seq)
}

func (c valueContainer) Fold(accum uint64, f func(uint64, uint64) uint64, _ *rand.Rand) (time.Duration, uint64) {
	return seqFold(c.seq, accum, f)
}

func (c valueContainer) TreeFold(init func(uint64) uint64, bin func(uint64, uint64) uint64, _ *rand.Rand) (time.Duration, uint64) {
	return seqTreeFold(c.seq, init, bin)
}

func (c valueContainer) Map(f func(uint64) uint64, _ *rand.Rand) (time.Duration, valueContainer) {
	out := c
	d := action.Timed(func() { out.seq = c.seq.Map(f) })

	return d, out
}

// handleContainer holds a mutable handle. Edits happen in place and return
// the same handle.
type handleContainer struct {
	h *sequence.Handle
}

type handleBuilder struct{}

// Create fills a new handle with batches of ten. Sizes that are not a
// multiple of ten are truncated.
func (handleBuilder) Create(size int, tuning action.Tuning, rng *rand.Rand) (time.Duration, handleContainer) {
	c := handleContainer{h: sequence.NewHandle(tuning.Gauge)}
	s := workload.SamplerFrom(rng)

	d := action.Timed(func() {
		workload.Insert10NMut(c.h, size, 0, s)
	})

	return d, c
}

func (c handleContainer) Len() int { return c.h.Len() }

func (c handleContainer) clone() container { return handleContainer{h: c.h.Clone()} }

func (c handleContainer) grow(n, size int, s *workload.Sampler, _ *retained) container {
	workload.Insert10NMut(c.h, n, size, s)
	return c
}

// Insert implements action.EditInsert.
func (c handleContainer) Insert(batch int, rng *rand.Rand) (time.Duration, handleContainer) {
	s := workload.SamplerFrom(rng)
	size := c.Len()

	d := action.Timed(func() { workload.Insert10NMut(c.h, batch, size, s) })

	return d, c
}

// Extend implements action.EditExtend.
func (c handleContainer) Extend(batch int, _ *rand.Rand) (time.Duration, handleContainer) {
	size := c.Len()

	d := action.Timed(func() {
		refocus(c.h, size)
		for i := batch - 1; i >= 0; i-- {
			c.h.PushRight(uint64(size + i))
		}
	})

	return d, c
}

// Append implements action.EditAppend.
func (c handleContainer) Append(batch int, _ *rand.Rand) (time.Duration, handleContainer) {
	d := action.Timed(func() {
		for i := 0; i < batch; i++ {
			size := c.h.Len()
			refocus(c.h, size)
			c.h.PushRight(uint64(size))
		}
	})

	return d, c
}

func (c handleContainer) Max(_ *rand.Rand) (time.Duration, uint64) {
	return seqMax(c.h.Snapshot())
}

func (c handleContainer) Fold(accum uint64, f func(uint64, uint64) uint64, _ *rand.Rand) (time.Duration, uint64) {
	return seqFold(c.h.Snapshot(), accum, f)
}

func (c handleContainer) TreeFold(init func(uint64) uint64, bin func(uint64, uint64) uint64, _ *rand.Rand) (time.Duration, uint64) {
	return seqTreeFold(c.h.Snapshot(), init, bin)
}

func (c handleContainer) Map(f func(uint64) uint64, _ *rand.Rand) (time.Duration, handleContainer) {
	var out handleContainer

	d := action.Timed(func() {
		mapped := c.h.Snapshot().Map(f)
		out.h = sequence.NewHandle(mapped.Gauge())
		refocus(out.h, 0)
		items := mapped.Items()
		for i := len(items) - 1; i >= 0; i-- {
			out.h.PushRight(items[i])
		}
	})

	return d, out
}

func seqMax(s sequence.Seq) (time.Duration, uint64) {
	var m uint64
	d := action.Timed(func() {
		s.Each(func(v uint64) { m = max(m, v) })
	})

	return d, m
}

func seqFold(s sequence.Seq, accum uint64, f func(uint64, uint64) uint64) (time.Duration, uint64) {
	d := action.Timed(func() {
		s.Each(func(v uint64) { accum = f(accum, v) })
	})

	return d, accum
}

func seqTreeFold(s sequence.Seq, init func(uint64) uint64, bin func(uint64, uint64) uint64) (time.Duration, uint64) {
	var out uint64
	d := action.Timed(func() { out, _ = s.TreeFold(init, bin) })

	return d, out
}

// focus and refocus target positions derived from the container length, so
// a failure is a harness defect.
func focus(s sequence.Seq, pos int) sequence.Zip {
	z, err := s.ZipTo(pos)
	if err != nil {
		panic(err)
	}

	return z
}

func refocus(h *sequence.Handle, pos int) {
	if err := h.Refocus(pos); err != nil {
		panic(err)
	}
}
