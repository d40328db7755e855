package sample

import (
	"os"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/mami-project/latencynode/internal/rtt"
)

// CSVWriter accumulates samples in memory and dumps them to a CSV file on
// Flush, using gocsv's struct-tag marshalling — the same convention the
// teacher uses for its own typed records.
type CSVWriter struct {
	mu      sync.Mutex
	path    string
	samples []rtt.Sample
}

// NewCSVWriter returns a CSVWriter that will write to path on Flush.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Record implements Sink by appending s to the in-memory buffer.
func (w *CSVWriter) Record(s rtt.Sample) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = append(w.samples, s)
}

// Flush writes every buffered sample to the CSV file, truncating any
// prior contents.
func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.Marshal(w.samples, f)
}
