// Package sample consumes the RTT samples a Driver emits and delivers
// them to reporting sinks: a JSONL broadcast over a Unix socket, modeled
// on the teacher's eventsocket package, and a CSV file dump using the
// same gocsv convention the teacher uses for its own records.
package sample

import "github.com/mami-project/latencynode/internal/rtt"

// Sink receives every emitted RTT sample. Implementations must not block
// the driver for long; Broadcaster and CSVWriter both buffer internally.
type Sink interface {
	Record(s rtt.Sample)
}

// Fanout delivers every sample to all of its Sinks. A Fanout with no sinks
// is valid and discards samples.
type Fanout struct {
	sinks []Sink
}

// NewFanout returns a Fanout delivering to the given sinks.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Run drains in until it is closed, delivering every sample read to each
// configured sink in turn. It is meant to run in its own goroutine.
func (f *Fanout) Run(in <-chan rtt.Sample) {
	for s := range in {
		for _, sink := range f.sinks {
			sink.Record(s)
		}
	}
}
