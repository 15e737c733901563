package action

import (
	"math/rand"
	"time"
)

// Creation adapts a Builder into a Creator.
type Creation[T any] struct {
	Builder Builder[T]
	Size    int
	Tuning  Tuning
}

// Create implements Creator.
func (c Creation[T]) Create(rng *rand.Rand) (time.Duration, T) {
	return c.Builder.Create(c.Size, c.Tuning, rng)
}

// Insertion adapts EditInsert into an Editor.
type Insertion[T EditInsert[T]] struct{ Batch int }

// Edit implements Editor.
func (a Insertion[T]) Edit(data T, rng *rand.Rand) (time.Duration, T) {
	return data.Insert(a.Batch, rng)
}

// Extension adapts EditExtend into an Editor.
type Extension[T EditExtend[T]] struct{ Batch int }

// Edit implements Editor.
func (a Extension[T]) Edit(data T, rng *rand.Rand) (time.Duration, T) {
	return data.Extend(a.Batch, rng)
}

// Appending adapts EditAppend into an Editor.
type Appending[T EditAppend[T]] struct{ Batch int }

// Edit implements Editor.
func (a Appending[T]) Edit(data T, rng *rand.Rand) (time.Duration, T) {
	return data.Append(a.Batch, rng)
}

// Maximum adapts CompMax into a Computor.
type Maximum[D CompMax[E], E any] struct{}

// Compute implements Computor.
func (Maximum[D, E]) Compute(data D, rng *rand.Rand) time.Duration {
	d, _ := data.Max(rng)
	return d
}

// Folding adapts CompFold into a Computor.
type Folding[D CompFold[E], E any] struct {
	Accum E
	F     func(E, E) E
}

// Compute implements Computor.
func (a Folding[D, E]) Compute(data D, rng *rand.Rand) time.Duration {
	d, _ := data.Fold(a.Accum, a.F, rng)
	return d
}

// TreeFolding adapts CompTreeFold into a Computor.
type TreeFolding[D CompTreeFold[E], E any] struct {
	Init func(E) E
	Bin  func(E, E) E
}

// Compute implements Computor.
func (a TreeFolding[D, E]) Compute(data D, rng *rand.Rand) time.Duration {
	d, _ := data.TreeFold(a.Init, a.Bin, rng)
	return d
}

// Mapping adapts CompMap into a Computor. The mapped container is dropped.
type Mapping[D CompMap[D, E], E any] struct {
	F func(E) E
}

// Compute implements Computor.
func (a Mapping[D, E]) Compute(data D, rng *rand.Rand) time.Duration {
	d, _ := data.Map(a.F, rng)
	return d
}
