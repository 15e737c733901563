package action

import (
	"math/rand"
	"time"
)

// Named attaches a name to an action for reporting.
type Named[A any] struct {
	Name   string
	Action A
}

// Stat accumulates the calls and time of one named action. Added counts
// the elements its calls added to Sized data.
type Stat struct {
	Name    string
	Calls   int
	Elapsed time.Duration
	Added   int
}

// Sized is implemented by data whose length the testor tracks.
type Sized interface {
	Len() int
}

func sizeOf(data any) int {
	if s, ok := data.(Sized); ok {
		return s.Len()
	}

	return 0
}

// Tally is the ordered set of Stats produced by a test. Names appear in the
// order they were first recorded.
type Tally struct {
	stats []Stat
	index map[string]int
}

// Add records one call of name taking d.
func (t *Tally) Add(name string, d time.Duration) {
	st := t.stat(name)
	st.Calls++
	st.Elapsed += d
}

// Grow records n elements added by name.
func (t *Tally) Grow(name string, n int) {
	t.stat(name).Added += n
}

func (t *Tally) stat(name string) *Stat {
	if t.index == nil {
		t.index = make(map[string]int)
	}

	i, ok := t.index[name]
	if !ok {
		i = len(t.stats)
		t.index[name] = i
		t.stats = append(t.stats, Stat{Name: name})
	}

	return &t.stats[i]
}

// Get returns the Stat for name.
func (t *Tally) Get(name string) (Stat, bool) {
	i, ok := t.index[name]
	if !ok {
		return Stat{}, false
	}

	return t.stats[i], true
}

// Stats returns a copy of all Stats in first-recorded order.
func (t *Tally) Stats() []Stat {
	return append([]Stat(nil), t.stats...)
}

// Sequence is a Testor that creates data once and then, for each round,
// applies one randomly chosen editor followed by every computor. When D is
// Sized the growth caused by the creator and each editor is tallied.
type Sequence[D any] struct {
	Creator   Named[Creator[time.Duration, D]]
	Editors   []Named[Editor[time.Duration, D]]
	Computors []Named[Computor[time.Duration, D]]
	Rounds    int
}

var _ Testor[Tally] = (*Sequence[int])(nil)

// Test implements Testor.
func (s *Sequence[D]) Test(rng *rand.Rand) Tally {
	var tally Tally

	d, data := s.Creator.Action.Create(rng)
	tally.Add(s.Creator.Name, d)
	tally.Grow(s.Creator.Name, sizeOf(data))

	for round := 0; round < s.Rounds; round++ {
		if len(s.Editors) > 0 {
			ed := s.Editors[rng.Intn(len(s.Editors))]
			before := sizeOf(data)
			d, data = ed.Action.Edit(data, rng)
			tally.Add(ed.Name, d)
			tally.Grow(ed.Name, sizeOf(data)-before)
		}

		for _, c := range s.Computors {
			tally.Add(c.Name, c.Action.Compute(data, rng))
		}
	}

	return tally
}
