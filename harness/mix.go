package harness

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/weiihann/seqbench/action"
	"github.com/weiihann/seqbench/workload"
)

// Edit and compute actions accepted by Mix.
var (
	EditActions    = []string{"insert", "extend", "append"}
	ComputeActions = []string{"max", "fold", "treefold", "map"}
)

// MixConfig describes a mixed edit/compute test.
type MixConfig struct {
	Start    int
	Batch    int
	Rounds   int
	Seed     int64
	Gauge    int
	Edits    []string
	Computes []string
}

// Validate rejects negative sizes and unknown actions.
func (c MixConfig) Validate() error {
	if c.Start < 0 || c.Batch < 0 || c.Rounds < 0 {
		return fmt.Errorf("%w: start, batch and rounds must be >= 0",
			workload.ErrInvalidConfig)
	}

	if c.Gauge < 1 {
		return fmt.Errorf("%w: gauge must be >= 1, got %d",
			workload.ErrInvalidConfig, c.Gauge)
	}

	for _, name := range c.Edits {
		if !slices.Contains(EditActions, name) {
			return fmt.Errorf("%w: unknown edit action %q", workload.ErrInvalidConfig, name)
		}
	}

	for _, name := range c.Computes {
		if !slices.Contains(ComputeActions, name) {
			return fmt.Errorf("%w: unknown compute action %q", workload.ErrInvalidConfig, name)
		}
	}

	return nil
}

// mixable is the capability set a container needs for every Mix action.
type mixable[T any] interface {
	action.EditInsert[T]
	action.EditExtend[T]
	action.EditAppend[T]
	action.CompMax[uint64]
	action.CompFold[uint64]
	action.CompTreeFold[uint64]
	action.CompMap[T, uint64]
}

// Mix runs a seeded action.Sequence against v and emits one measurement per
// action: the variant name is suffixed with the action and the elapsed time
// is the action's total.
func Mix(v Variant, cfg MixConfig, emit Emitter, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	tuning := v.Tuning(cfg.Gauge)

	var tally action.Tally
	if v.Kind == MutableHandle {
		tally = newMix[handleContainer](handleBuilder{}, cfg, tuning).Test(rng)
	} else {
		tally = newMix[valueContainer](valueBuilder{batched: v.Batched}, cfg, tuning).Test(rng)
	}

	// Batched variants truncate sizes to whole batches, so counts come from
	// the elements each action actually added.
	created, _ := tally.Get("create")

	for _, st := range tally.Stats() {
		m := Measurement{
			Variant:    v.Name + "/" + st.Name,
			Prior:      created.Added,
			Insertions: st.Added,
			Elapsed:    st.Elapsed,
		}
		if st.Name == "create" {
			m.Prior = 0
		}

		if err := emit.Emit(m); err != nil {
			return fmt.Errorf("emit %s: %w", m.Variant, err)
		}

		logger.Debug("mix action measured",
			zap.String("variant", v.Name),
			zap.String("action", st.Name),
			zap.Int("calls", st.Calls),
			zap.Duration("elapsed", st.Elapsed),
		)
	}

	return nil
}

func newMix[T mixable[T]](b action.Builder[T], cfg MixConfig, tuning action.Tuning) *action.Sequence[T] {
	seq := &action.Sequence[T]{
		Creator: action.Named[action.Creator[time.Duration, T]]{
			Name:   "create",
			Action: action.Creation[T]{Builder: b, Size: cfg.Start, Tuning: tuning},
		},
		Rounds: cfg.Rounds,
	}

	for _, name := range cfg.Edits {
		var ed action.Editor[time.Duration, T]

		switch name {
		case "insert":
			ed = action.Insertion[T]{Batch: cfg.Batch}
		case "extend":
			ed = action.Extension[T]{Batch: cfg.Batch}
		case "append":
			ed = action.Appending[T]{Batch: cfg.Batch}
		}

		seq.Editors = append(seq.Editors, action.Named[action.Editor[time.Duration, T]]{
			Name: name, Action: ed,
		})
	}

	for _, name := range cfg.Computes {
		var comp action.Computor[time.Duration, T]

		switch name {
		case "max":
			comp = action.Maximum[T, uint64]{}
		case "fold":
			comp = action.Folding[T, uint64]{F: func(a, b uint64) uint64 { return a + b }}
		case "treefold":
			comp = action.TreeFolding[T, uint64]{
				Init: func(x uint64) uint64 { return x },
				Bin:  func(a, b uint64) uint64 { return max(a, b) },
			}
		case "map":
			comp = action.Mapping[T, uint64]{F: func(x uint64) uint64 { return x + 1 }}
		}

		seq.Computors = append(seq.Computors, action.Named[action.Computor[time.Duration, T]]{
			Name: name, Action: comp,
		})
	}

	return seq
}
