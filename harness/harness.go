package harness

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weiihann/seqbench/workload"
)

// State is the lifecycle position of a Controller.
type State int

// Controller states, in order.
const (
	Uninitialized State = iota
	Primed
	Running
	Done
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Primed:
		return "primed"
	case Running:
		return "running"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrState is returned when a Controller step is called out of order.
var ErrState = errors.New("controller called out of order")

// Controller runs the growth loop: it primes one container per variant,
// then for every run grows a clone of each primed container group by group,
// timing every group.
type Controller struct {
	cfg      workload.Config
	variants []Variant
	emit     Emitter
	logger   *zap.Logger
	id       uuid.UUID

	state      State
	run, group int
	primed     []container
	final      map[string]int
}

// NewController validates cfg and returns a Controller in the
// Uninitialized state. A nil logger discards logs.
func NewController(cfg workload.Config, emit Emitter, logger *zap.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	variants, err := ParseVariants(cfg.Variants)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	id := uuid.New()

	return &Controller{
		cfg:      cfg,
		variants: variants,
		emit:     emit,
		logger:   logger.With(zap.String("experiment", id.String())),
		id:       id,
		final:    make(map[string]int, len(variants)),
	}, nil
}

// ID identifies this experiment.
func (c *Controller) ID() uuid.UUID { return c.id }

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Progress returns the run and group most recently started.
func (c *Controller) Progress() (run, group int) { return c.run, c.group }

// Variants returns the variants being benchmarked, in run order.
func (c *Controller) Variants() []Variant {
	return append([]Variant(nil), c.variants...)
}

// FinalLen returns the element count of the named variant's container at
// the end of the most recent run.
func (c *Controller) FinalLen(variant string) (int, bool) {
	n, ok := c.final[variant]
	return n, ok
}

// Execute primes and runs the experiment.
func (c *Controller) Execute() error {
	c.logger.Info("starting experiment",
		zap.Int("start", c.cfg.Start),
		zap.Int("insertions", c.cfg.Insertions),
		zap.Int("groups", c.cfg.Groups),
		zap.Int("runs", c.cfg.Runs),
		zap.Bool("multi", c.cfg.Multi),
		zap.Bool("save_mem", c.cfg.SaveMem),
		zap.Int64("seed", c.cfg.Seed),
		zap.Int("variants", len(c.variants)),
	)

	if err := c.Prime(); err != nil {
		return fmt.Errorf("prime: %w", err)
	}

	if err := c.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	c.logger.Info("experiment complete")

	return nil
}

// Prime builds the starting container of every variant. A non-zero start
// size is timed and emitted as run 0 with no prior elements.
func (c *Controller) Prime() error {
	if c.state != Uninitialized {
		return fmt.Errorf("%w: prime while %s", ErrState, c.state)
	}

	c.primed = make([]container, len(c.variants))

	for i, v := range c.variants {
		rng := rand.New(rand.NewSource(c.cfg.Seed))
		elapsed, ctr := v.create(c.cfg.Start, v.Tuning(c.cfg.Gauge), rng)
		c.primed[i] = ctr

		if c.cfg.Start == 0 {
			continue
		}

		if err := c.emit.Emit(Measurement{
			Variant:    v.Name,
			Prior:      0,
			Insertions: c.cfg.Start,
			Elapsed:    elapsed,
		}); err != nil {
			return fmt.Errorf("emit %s priming: %w", v.Name, err)
		}

		c.logger.Debug("variant primed",
			zap.String("variant", v.Name),
			zap.Int("elements", ctr.Len()),
			zap.Duration("elapsed", elapsed),
		)
	}

	c.state = Primed

	return nil
}

// Run measures every group of every run. Each run restarts every variant
// from a clone of its primed container. A failed Run leaves the controller
// in the Running state.
func (c *Controller) Run() error {
	if c.state != Primed {
		return fmt.Errorf("%w: run while %s", ErrState, c.state)
	}

	c.state = Running

	for r := 0; r < c.cfg.Runs; r++ {
		c.run = r
		ins := c.cfg.GroupInsertions(r)

		for i, v := range c.variants {
			if err := c.runVariant(v, c.primed[i].clone(), r, ins); err != nil {
				return err
			}
		}

		c.logger.Debug("run complete",
			zap.Int("run", r),
			zap.Int("insertions_per_group", ins),
		)
	}

	c.state = Done

	return nil
}

func (c *Controller) runVariant(v Variant, cur container, run, ins int) error {
	var keep *retained
	if c.cfg.SaveMem && v.Kind == Immutable {
		keep = &retained{}
	}

	// prior is the nominal count recorded with each group and advances by
	// the requested insertions. size is the actual length the strategies
	// sample against; batched strategies drop remainders so it may lag.
	prior := c.cfg.Start
	size := cur.Len()

	for g := 0; g < c.cfg.Groups; g++ {
		c.group = g
		s := workload.NewSampler(c.cfg.Seed)

		start := time.Now()
		cur = cur.grow(ins, size, s, keep)
		elapsed := time.Since(start)

		if err := c.emit.Emit(Measurement{
			Variant:    v.Name,
			Run:        run,
			Prior:      prior,
			Insertions: ins,
			Elapsed:    elapsed,
		}); err != nil {
			return fmt.Errorf("emit %s run %d group %d: %w", v.Name, run, g, err)
		}

		prior += ins
		size = cur.Len()
	}

	c.final[v.Name] = size

	if keep != nil {
		c.logger.Debug("releasing retained values",
			zap.String("variant", v.Name),
			zap.Int("run", run),
			zap.Int("values", keep.Len()),
		)
	}

	return nil
}
