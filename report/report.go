// Package report writes benchmark measurements as CSV records and
// summarizes them into per-variant comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/weiihann/seqbench/harness"
)

// Row aggregates every measurement of one variant.
type Row struct {
	Variant      string        `json:"variant"`
	Groups       int           `json:"groups"`
	Insertions   int           `json:"insertions"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	PerInsertion time.Duration `json:"per_insertion_ns"`
	Slowdown     float64       `json:"slowdown"`
}

// Rows aggregates measurements per variant, in order of first appearance.
// Slowdown compares each variant's time per insertion with the fastest.
func Rows(measurements []harness.Measurement) []Row {
	var rows []Row
	index := make(map[string]int)

	for _, m := range measurements {
		i, ok := index[m.Variant]
		if !ok {
			i = len(rows)
			index[m.Variant] = i
			rows = append(rows, Row{Variant: m.Variant})
		}

		rows[i].Groups++
		rows[i].Insertions += m.Insertions
		rows[i].Elapsed += m.Elapsed
	}

	for i := range rows {
		if rows[i].Insertions > 0 {
			rows[i].PerInsertion = rows[i].Elapsed / time.Duration(rows[i].Insertions)
		}
	}

	fastest := findFastest(rows)
	for i := range rows {
		rows[i].Slowdown = 1.0
		if fastest > 0 && rows[i].PerInsertion > 0 {
			rows[i].Slowdown = float64(rows[i].PerInsertion) / float64(fastest)
		}
	}

	return rows
}

// Summarize writes a markdown comparison table for the measurements of
// one experiment.
func Summarize(w io.Writer, experiment string, measurements []harness.Measurement) error {
	if len(measurements) == 0 {
		return fmt.Errorf("no measurements to report")
	}

	p := message.NewPrinter(language.English)

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Experiment: %s\n", experiment)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Variant | Groups | Insertions | Elapsed "+
		"| Per Insertion | Slowdown |")
	fmt.Fprintln(w, "|---------|--------|------------|---------"+
		"|---------------|----------|")

	for _, r := range Rows(measurements) {
		fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %.2fx |\n",
			r.Variant,
			r.Groups,
			p.Sprintf("%d", r.Insertions),
			formatDuration(r.Elapsed),
			formatPerInsertion(r.PerInsertion),
			r.Slowdown,
		)
	}

	return nil
}

// SummarizeJSON writes the summary rows as JSON to w.
func SummarizeJSON(w io.Writer, experiment string, measurements []harness.Measurement) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(struct {
		Experiment string `json:"experiment"`
		Rows       []Row  `json:"rows"`
	}{
		Experiment: experiment,
		Rows:       Rows(measurements),
	})
}

func findFastest(rows []Row) time.Duration {
	fastest := time.Duration(math.MaxInt64)
	for _, r := range rows {
		if r.PerInsertion > 0 && r.PerInsertion < fastest {
			fastest = r.PerInsertion
		}
	}

	if fastest == math.MaxInt64 {
		return 0
	}

	return fastest
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fµs", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

func formatPerInsertion(d time.Duration) string {
	if d == 0 {
		return "-"
	}

	return fmt.Sprintf("%dns", d.Nanoseconds())
}
