package harness

import (
	"fmt"
	"strings"

	"github.com/weiihann/seqbench/action"
	"github.com/weiihann/seqbench/workload"
)

// Kind separates value-semantic containers from mutable handles.
type Kind int

const (
	// Immutable containers return a new value from every edit.
	Immutable Kind = iota
	// MutableHandle containers are edited in place through a handle.
	MutableHandle
)

func (k Kind) String() string {
	switch k {
	case Immutable:
		return "immutable"
	case MutableHandle:
		return "handle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Variant is one container strategy under benchmark.
type Variant struct {
	Name string
	Kind Kind
	// Gauged containers store up to the configured gauge elements per chunk.
	Gauged bool
	// Batched variants grow ten elements per focus.
	Batched bool
}

// The benchmarked variants.
var (
	RAZ  = Variant{Name: "RAZ", Kind: Immutable, Batched: true}
	GRAZ = Variant{Name: "GRAZ", Kind: Immutable, Gauged: true}
	MRAZ = Variant{Name: "MRAZ", Kind: MutableHandle, Gauged: true, Batched: true}
)

// KnownVariants returns the variants in the order they are run.
func KnownVariants() []Variant {
	return []Variant{RAZ, GRAZ, MRAZ}
}

// ParseVariant resolves a variant by name, ignoring case.
func ParseVariant(name string) (Variant, error) {
	for _, v := range KnownVariants() {
		if strings.EqualFold(v.Name, strings.TrimSpace(name)) {
			return v, nil
		}
	}

	return Variant{}, fmt.Errorf("%w: unknown variant %q", workload.ErrInvalidConfig, name)
}

// ParseVariants resolves names into run order without duplicates. No names
// selects RAZ.
func ParseVariants(names []string) ([]Variant, error) {
	if len(names) == 0 {
		return []Variant{RAZ}, nil
	}

	want := make(map[string]bool, len(names))
	for _, name := range names {
		v, err := ParseVariant(name)
		if err != nil {
			return nil, err
		}
		want[v.Name] = true
	}

	out := make([]Variant, 0, len(want))
	for _, v := range KnownVariants() {
		if want[v.Name] {
			out = append(out, v)
		}
	}

	return out, nil
}

// Tuning returns the construction parameters of v for the given gauge.
func (v Variant) Tuning(gauge int) action.Tuning {
	if !v.Gauged {
		gauge = 1
	}

	return action.Tuning{Gauge: gauge}
}
