package sample

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mami-project/latencynode/internal/rtt"
)

func TestCSVWriterFlush(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "samples.csv")

	w := NewCSVWriter(path)
	w.Record(rtt.Sample{FlowIndex: 0, Kind: "TCP", Method: "spin", RTT: 5 * time.Millisecond})
	w.Record(rtt.Sample{FlowIndex: 1, Kind: "QUIC", Method: "psn_pse", RTT: 7 * time.Millisecond})

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output file: %v", err)
	}
	out := string(data)

	if !strings.Contains(out, "flow_index") {
		t.Errorf("expected a header row with csv tag names, got:\n%s", out)
	}
	if !strings.Contains(out, "spin") || !strings.Contains(out, "psn_pse") {
		t.Errorf("expected both sample methods present, got:\n%s", out)
	}
}

func TestCSVWriterFlushTruncatesPriorContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "samples.csv")

	w := NewCSVWriter(path)
	w.Record(rtt.Sample{FlowIndex: 0, Kind: "TCP", Method: "spin"})
	if err := w.Flush(); err != nil {
		t.Fatalf("first flush: %v", err)
	}

	w2 := NewCSVWriter(path)
	w2.Record(rtt.Sample{FlowIndex: 9, Kind: "PLUS", Method: "psn_pse"})
	if err := w2.Flush(); err != nil {
		t.Fatalf("second flush: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output file: %v", err)
	}
	if strings.Contains(string(data), "TCP") {
		t.Errorf("second flush should have truncated the first writer's rows, got:\n%s", string(data))
	}
}
