// Package action defines the contracts a container must satisfy to be
// driven by the benchmark harness.
//
// Capability contracts describe what a container can do (create, extend,
// append, insert, compute). Role contracts describe how a one-shot action is
// used by a test driver: a Creator produces data, an Editor consumes and
// returns it, a Computor only reads it. Adapters in roles.go turn
// capabilities into roles, and Sequence composes roles under a seeded random
// driver. A container lacking a capability simply does not satisfy the
// interface, so the mismatch is found by the compiler.
package action

import (
	"math/rand"
	"time"
)

// Tuning carries construction parameters that some containers ignore.
type Tuning struct {
	// Gauge bounds the number of elements a container stores per chunk.
	Gauge int
}

// Builder constructs a container of T holding size elements.
type Builder[T any] interface {
	Create(size int, tuning Tuning, rng *rand.Rand) (time.Duration, T)
}

// EditExtend adds elements at the end, as if initialization was longer.
type EditExtend[T any] interface {
	Extend(batch int, rng *rand.Rand) (time.Duration, T)
}

// EditAppend adds elements at the end one edit at a time, as a user would.
type EditAppend[T any] interface {
	Append(batch int, rng *rand.Rand) (time.Duration, T)
}

// EditInsert inserts elements at random positions.
type EditInsert[T any] interface {
	Insert(batch int, rng *rand.Rand) (time.Duration, T)
}

// CompMax computes the largest element.
type CompMax[E any] interface {
	Max(rng *rand.Rand) (time.Duration, E)
}

// CompTreeFold folds following the container's internal shape.
type CompTreeFold[E any] interface {
	TreeFold(init func(E) E, bin func(E, E) E, rng *rand.Rand) (time.Duration, E)
}

// CompMap produces a new container with f applied to every element.
type CompMap[T, E any] interface {
	Map(f func(E) E, rng *rand.Rand) (time.Duration, T)
}

// CompFold folds every element into accum, in order.
type CompFold[E any] interface {
	Fold(accum E, f func(E, E) E, rng *rand.Rand) (time.Duration, E)
}

// Creator produces data.
type Creator[R, D any] interface {
	Create(rng *rand.Rand) (R, D)
}

// Editor consumes data and produces its successor.
type Editor[R, D any] interface {
	Edit(data D, rng *rand.Rand) (R, D)
}

// Computor reads data without changing it.
type Computor[R, D any] interface {
	Compute(data D, rng *rand.Rand) R
}

// Testor runs a complete test and aggregates its outcome.
type Testor[R any] interface {
	Test(rng *rand.Rand) R
}

// Timed measures f.
func Timed(f func()) time.Duration {
	start := time.Now()
	f()

	return time.Since(start)
}
