// Package workload describes reproducible insertion workloads and the
// strategies that apply them to sequence containers.
package workload

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid workload config")

// Defaults applied when neither a flag nor a config file sets a value.
const (
	DefaultSeed       = 0
	DefaultStart      = 0
	DefaultInsertions = 10_000
	DefaultGroups     = 10
	DefaultRuns       = 1
	DefaultGauge      = 16
)

// Config fully determines an experiment given its seed.
type Config struct {
	// Start is the number of elements inserted before the first run.
	Start int `yaml:"start"`
	// Insertions is the number of elements inserted per measured group.
	Insertions int `yaml:"insertions"`
	// Groups is the number of measured groups per run.
	Groups int `yaml:"groups"`
	// Runs is the number of independent runs, each from the primed container.
	Runs int `yaml:"runs"`
	// Multi scales the insertions of each group by the run index.
	Multi bool `yaml:"multi"`
	// SaveMem retains every intermediate value so nothing is released
	// while a group is timed.
	SaveMem bool `yaml:"save_mem"`
	// Seed initializes every position sampler.
	Seed int64 `yaml:"seed"`
	// Gauge bounds the chunk length of gauged containers.
	Gauge int `yaml:"gauge"`
	// Variants names the containers to benchmark.
	Variants []string `yaml:"variants"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Start:      DefaultStart,
		Insertions: DefaultInsertions,
		Groups:     DefaultGroups,
		Runs:       DefaultRuns,
		Seed:       DefaultSeed,
		Gauge:      DefaultGauge,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	checks := []struct {
		name  string
		value int
		min   int
	}{
		{"start", c.Start, 0},
		{"insertions", c.Insertions, 0},
		{"groups", c.Groups, 0},
		{"runs", c.Runs, 0},
		{"gauge", c.Gauge, 1},
	}

	for _, chk := range checks {
		if chk.value < chk.min {
			return fmt.Errorf("%w: %s must be >= %d, got %d",
				ErrInvalidConfig, chk.name, chk.min, chk.value)
		}
	}

	return nil
}

// GroupInsertions returns the insertions per group for the given run.
// With Multi, run 0 inserts nothing.
func (c Config) GroupInsertions(run int) int {
	if c.Multi {
		return c.Insertions * run
	}

	return c.Insertions
}

// LoadConfig reads a YAML workload file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open workload config: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode %s: %v", ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}
