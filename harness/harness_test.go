package harness

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/weiihann/seqbench/workload"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type collector struct {
	got []Measurement
}

func (c *collector) Emit(m Measurement) error {
	c.got = append(c.got, m)
	return nil
}

var ignoreElapsed = cmpopts.IgnoreFields(Measurement{}, "Elapsed")

func config(mutate func(*workload.Config)) workload.Config {
	cfg := workload.DefaultConfig()
	cfg.Insertions = 100
	cfg.Groups = 1
	cfg.Runs = 1
	mutate(&cfg)

	return cfg
}

func execute(t *testing.T, cfg workload.Config) (*Controller, []Measurement) {
	t.Helper()

	var out collector
	c, err := NewController(cfg, &out, nil)
	require.NoError(t, err)
	require.NoError(t, c.Execute())
	assert.Equal(t, Done, c.State())

	return c, out.got
}

func items(c container) []uint64 {
	switch c := c.(type) {
	case valueContainer:
		return c.seq.Items()
	case handleContainer:
		return c.h.Snapshot().Items()
	default:
		return nil
	}
}

func TestSingleInsertScenario(t *testing.T) {
	c, got := execute(t, config(func(cfg *workload.Config) {
		cfg.Variants = []string{"graz"}
	}))

	want := []Measurement{{Variant: "GRAZ", Run: 0, Prior: 0, Insertions: 100}}
	if diff := cmp.Diff(want, got, ignoreElapsed); diff != "" {
		t.Errorf("measurements mismatch (-want +got):\n%s", diff)
	}

	n, ok := c.FinalLen("GRAZ")
	require.True(t, ok)
	assert.Equal(t, 100, n)
}

func TestBatchedTruncatesScenario(t *testing.T) {
	c, got := execute(t, config(func(cfg *workload.Config) {
		cfg.Start = 50
		cfg.Insertions = 23
		cfg.Variants = []string{"raz"}
	}))

	want := []Measurement{
		{Variant: "RAZ", Run: 0, Prior: 0, Insertions: 50},
		{Variant: "RAZ", Run: 0, Prior: 50, Insertions: 23},
	}
	if diff := cmp.Diff(want, got, ignoreElapsed); diff != "" {
		t.Errorf("measurements mismatch (-want +got):\n%s", diff)
	}

	n, _ := c.FinalLen("RAZ")
	assert.Equal(t, 70, n)
}

func TestPriorAdvancesByRequestedInsertions(t *testing.T) {
	c, got := execute(t, config(func(cfg *workload.Config) {
		cfg.Start = 50
		cfg.Insertions = 23
		cfg.Groups = 3
		cfg.Variants = []string{"raz", "mraz"}
	}))

	want := []Measurement{
		{Variant: "RAZ", Run: 0, Prior: 0, Insertions: 50},
		{Variant: "MRAZ", Run: 0, Prior: 0, Insertions: 50},
		{Variant: "RAZ", Run: 0, Prior: 50, Insertions: 23},
		{Variant: "RAZ", Run: 0, Prior: 73, Insertions: 23},
		{Variant: "RAZ", Run: 0, Prior: 96, Insertions: 23},
		{Variant: "MRAZ", Run: 0, Prior: 50, Insertions: 23},
		{Variant: "MRAZ", Run: 0, Prior: 73, Insertions: 23},
		{Variant: "MRAZ", Run: 0, Prior: 96, Insertions: 23},
	}
	if diff := cmp.Diff(want, got, ignoreElapsed); diff != "" {
		t.Errorf("measurements mismatch (-want +got):\n%s", diff)
	}

	// Batched strategies insert only whole batches of ten.
	n, _ := c.FinalLen("RAZ")
	assert.Equal(t, 50+3*20, n)
	n, _ = c.FinalLen("MRAZ")
	assert.Equal(t, 50+3*20, n)
}

func TestMultiScenario(t *testing.T) {
	c, got := execute(t, config(func(cfg *workload.Config) {
		cfg.Insertions = 10
		cfg.Groups = 2
		cfg.Runs = 3
		cfg.Multi = true
		cfg.Variants = []string{"GRAZ"}
	}))

	want := []Measurement{
		{Variant: "GRAZ", Run: 0, Prior: 0, Insertions: 0},
		{Variant: "GRAZ", Run: 0, Prior: 0, Insertions: 0},
		{Variant: "GRAZ", Run: 1, Prior: 0, Insertions: 10},
		{Variant: "GRAZ", Run: 1, Prior: 10, Insertions: 10},
		{Variant: "GRAZ", Run: 2, Prior: 0, Insertions: 20},
		{Variant: "GRAZ", Run: 2, Prior: 20, Insertions: 20},
	}
	if diff := cmp.Diff(want, got, ignoreElapsed); diff != "" {
		t.Errorf("measurements mismatch (-want +got):\n%s", diff)
	}

	n, _ := c.FinalLen("GRAZ")
	assert.Equal(t, 40, n)
}

func TestAllVariantsGrowIndependently(t *testing.T) {
	c, got := execute(t, config(func(cfg *workload.Config) {
		cfg.Start = 30
		cfg.Insertions = 40
		cfg.Groups = 3
		cfg.Runs = 2
		cfg.Variants = []string{"mraz", "raz", "graz"}
	}))

	// 3 priming records, then runs x variants x groups.
	require.Len(t, got, 3+2*3*3)

	order := []string{"RAZ", "GRAZ", "MRAZ"}
	for i, name := range order {
		assert.Equal(t, name, got[i].Variant)
		assert.Equal(t, 30, got[i].Insertions)
	}

	for _, m := range got {
		assert.GreaterOrEqual(t, m.Elapsed.Nanoseconds(), int64(0))
	}

	for _, name := range order {
		n, ok := c.FinalLen(name)
		require.True(t, ok)
		assert.Equal(t, 30+3*40, n, name)
	}
}

func TestHandlePrimingTruncates(t *testing.T) {
	c, got := execute(t, config(func(cfg *workload.Config) {
		cfg.Start = 25
		cfg.Insertions = 10
		cfg.Variants = []string{"mraz"}
	}))

	want := []Measurement{
		{Variant: "MRAZ", Run: 0, Prior: 0, Insertions: 25},
		{Variant: "MRAZ", Run: 0, Prior: 25, Insertions: 10},
	}
	if diff := cmp.Diff(want, got, ignoreElapsed); diff != "" {
		t.Errorf("measurements mismatch (-want +got):\n%s", diff)
	}

	n, _ := c.FinalLen("MRAZ")
	assert.Equal(t, 30, n)
}

func TestSaveMemMatchesSingleInsert(t *testing.T) {
	saved, savedGot := execute(t, config(func(cfg *workload.Config) {
		cfg.Start = 10
		cfg.Insertions = 37
		cfg.Groups = 4
		cfg.SaveMem = true
		cfg.Variants = []string{"raz"}
	}))
	plain, _ := execute(t, config(func(cfg *workload.Config) {
		cfg.Start = 10
		cfg.Insertions = 37
		cfg.Groups = 4
		cfg.Variants = []string{"graz"}
	}))

	for _, m := range savedGot {
		assert.GreaterOrEqual(t, m.Elapsed.Nanoseconds(), int64(0))
	}

	s, _ := saved.FinalLen("RAZ")
	p, _ := plain.FinalLen("GRAZ")
	assert.Equal(t, p, s)
	assert.Equal(t, 10+4*37, s)
}

func TestNoInsertions(t *testing.T) {
	_, got := execute(t, config(func(cfg *workload.Config) {
		cfg.Insertions = 0
		cfg.Groups = 2
		cfg.Variants = []string{"raz", "mraz"}
	}))

	require.Len(t, got, 4)
	for _, m := range got {
		assert.Equal(t, 0, m.Insertions)
		assert.Equal(t, 0, m.Prior)
	}
}

func TestStateOrder(t *testing.T) {
	var out collector
	c, err := NewController(config(func(*workload.Config) {}), &out, nil)
	require.NoError(t, err)
	assert.Equal(t, Uninitialized, c.State())

	assert.ErrorIs(t, c.Run(), ErrState)

	require.NoError(t, c.Prime())
	assert.Equal(t, Primed, c.State())
	assert.ErrorIs(t, c.Prime(), ErrState)

	require.NoError(t, c.Run())
	assert.Equal(t, Done, c.State())
	assert.ErrorIs(t, c.Run(), ErrState)

	run, group := c.Progress()
	assert.Equal(t, 0, run)
	assert.Equal(t, 0, group)
}

func TestInvalidConfigEmitsNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*workload.Config)
	}{
		{"negative insertions", func(c *workload.Config) { c.Insertions = -1 }},
		{"unknown variant", func(c *workload.Config) { c.Variants = []string{"vec"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out collector
			_, err := NewController(config(tt.mutate), &out, nil)
			require.ErrorIs(t, err, workload.ErrInvalidConfig)
			assert.Empty(t, out.got)
		})
	}
}

func TestEmitErrorStopsRun(t *testing.T) {
	sinkErr := errors.New("sink closed")
	calls := 0

	c, err := NewController(config(func(cfg *workload.Config) {
		cfg.Groups = 5
	}), EmitterFunc(func(Measurement) error {
		calls++
		if calls == 2 {
			return sinkErr
		}
		return nil
	}), nil)
	require.NoError(t, err)

	err = c.Execute()
	require.ErrorIs(t, err, sinkErr)
	assert.Equal(t, 2, calls)
	assert.Equal(t, Running, c.State())
}

func TestParseVariants(t *testing.T) {
	vs, err := ParseVariants(nil)
	require.NoError(t, err)
	assert.Equal(t, []Variant{RAZ}, vs)

	vs, err = ParseVariants([]string{"MRAZ", "raz", " Raz "})
	require.NoError(t, err)
	assert.Equal(t, []Variant{RAZ, MRAZ}, vs)

	_, err = ParseVariants([]string{"raz", "zipper"})
	assert.ErrorIs(t, err, workload.ErrInvalidConfig)

	assert.Equal(t, 1, RAZ.Tuning(16).Gauge)
	assert.Equal(t, 16, GRAZ.Tuning(16).Gauge)
	assert.Equal(t, "handle", MRAZ.Kind.String())
}

func TestDeterministicContents(t *testing.T) {
	for _, v := range KnownVariants() {
		t.Run(v.Name, func(t *testing.T) {
			contents := func() []uint64 {
				cfg := config(func(cfg *workload.Config) { cfg.Start = 40 })
				_, ctr := v.create(cfg.Start, v.Tuning(cfg.Gauge), rand.New(rand.NewSource(cfg.Seed)))
				ctr = ctr.grow(30, ctr.Len(), workload.NewSampler(cfg.Seed), nil)
				return items(ctr)
			}

			assert.Equal(t, contents(), contents())
		})
	}
}
