// Package harness drives sequence variants through measured insertion
// workloads and hands every measurement to an Emitter.
package harness

import "time"

// Measurement is one timed group of insertions.
type Measurement struct {
	Variant    string        `json:"variant"`
	Run        int           `json:"run"`
	Prior      int           `json:"prior_elements"`
	Insertions int           `json:"insertions"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Emitter receives measurements in the order they are taken.
type Emitter interface {
	Emit(m Measurement) error
}

// EmitterFunc adapts a function into an Emitter.
type EmitterFunc func(m Measurement) error

// Emit implements Emitter.
func (f EmitterFunc) Emit(m Measurement) error { return f(m) }
