package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/weiihann/seqbench/harness"
)

// Default tag values.
const (
	DefaultTag       = "None"
	DefaultTagHeader = "Tag"
)

// CSVOptions configures the CSV emitter.
type CSVOptions struct {
	Seed int64
	// Tag is written verbatim, so an empty tag leaves the column empty.
	Tag string
	// TagHeader titles the tag column. Defaults to DefaultTagHeader.
	TagHeader string
	// Now stamps each record. Defaults to time.Now.
	Now func() time.Time
}

// CSV writes one line per measurement:
//
//	UnixTime,Seed,SeqType,SeqNum,PriorElements,Insertions,Time,<tag header>
type CSV struct {
	w    *csv.Writer
	opts CSVOptions
}

var _ harness.Emitter = (*CSV)(nil)

// NewCSV creates a CSV emitter writing to w.
func NewCSV(w io.Writer, opts CSVOptions) *CSV {
	if opts.TagHeader == "" {
		opts.TagHeader = DefaultTagHeader
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &CSV{w: csv.NewWriter(w), opts: opts}
}

// Header writes the column names.
func (c *CSV) Header() error {
	return c.write([]string{
		"UnixTime", "Seed", "SeqType", "SeqNum",
		"PriorElements", "Insertions", "Time", c.opts.TagHeader,
	})
}

// Emit writes m and flushes it.
func (c *CSV) Emit(m harness.Measurement) error {
	return c.write([]string{
		strconv.FormatInt(c.opts.Now().Unix(), 10),
		strconv.FormatInt(c.opts.Seed, 10),
		m.Variant,
		strconv.Itoa(m.Run),
		strconv.Itoa(m.Prior),
		strconv.Itoa(m.Insertions),
		FormatElapsed(m.Elapsed),
		c.opts.Tag,
	})
}

func (c *CSV) write(record []string) error {
	if err := c.w.Write(record); err != nil {
		return fmt.Errorf("write csv record: %w", err)
	}

	c.w.Flush()

	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// FormatElapsed renders d as an ISO 8601 duration in seconds with
// nanosecond precision, e.g. PT0.001500000S.
func FormatElapsed(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	secs := int64(d / time.Second)
	nanos := int64(d % time.Second)

	return fmt.Sprintf("%sPT%d.%09dS", sign, secs, nanos)
}

// Collector keeps measurements in memory.
type Collector struct {
	Measurements []harness.Measurement
}

// Emit implements harness.Emitter.
func (c *Collector) Emit(m harness.Measurement) error {
	c.Measurements = append(c.Measurements, m)
	return nil
}

// Tee forwards every measurement to each emitter in order, stopping at the
// first error.
type Tee []harness.Emitter

// Emit implements harness.Emitter.
func (t Tee) Emit(m harness.Measurement) error {
	for _, e := range t {
		if err := e.Emit(m); err != nil {
			return err
		}
	}

	return nil
}
