package rtt

import (
	"testing"
	"time"

	"github.com/mami-project/latencynode/internal/flow"
	"github.com/mami-project/latencynode/internal/wire"
)

func TestUpdateTCPSpinSample(t *testing.T) {
	var s flow.TCPEstimatorState
	t0 := time.Unix(0, 0)

	// Reverse packet records spin 0.
	UpdateTCP(&s, 1, false, 0, false, wire.TCPTimestamps{}, false, 0, 0, t0)

	// Forward packet 50ms later with a different spin value produces a sample.
	t1 := t0.Add(50 * time.Millisecond)
	out := UpdateTCP(&s, 1, true, 1, false, wire.TCPTimestamps{}, false, 0, 0, t1)
	if len(out) != 1 {
		t.Fatalf("expected 1 sample, got %d: %v", len(out), out)
	}
	if out[0].Method != "spin" || out[0].RTT != 50*time.Millisecond {
		t.Errorf("sample = %+v, want method=spin rtt=50ms", out[0])
	}
}

func TestUpdateTCPSpinSameValueNoSample(t *testing.T) {
	var s flow.TCPEstimatorState
	t0 := time.Unix(0, 0)
	UpdateTCP(&s, 1, false, 0, false, wire.TCPTimestamps{}, false, 0, 0, t0)
	out := UpdateTCP(&s, 1, true, 0, false, wire.TCPTimestamps{}, false, 0, 0, t0.Add(time.Millisecond))
	if len(out) != 0 {
		t.Errorf("equal spin values should not produce a sample, got %v", out)
	}
}

func TestUpdateTCPTimestampSample(t *testing.T) {
	var s flow.TCPEstimatorState
	t0 := time.Unix(0, 0)

	UpdateTCP(&s, 1, true, 0, false, wire.TCPTimestamps{Present: true, TSval: 100, TSecr: 0}, false, 0, 0, t0)

	t1 := t0.Add(30 * time.Millisecond)
	out := UpdateTCP(&s, 1, false, 0, false, wire.TCPTimestamps{Present: true, TSval: 200, TSecr: 100}, false, 0, 0, t1)

	found := false
	for _, sample := range out {
		if sample.Method == "timestamp" {
			found = true
			if sample.RTT != 30*time.Millisecond {
				t.Errorf("timestamp RTT = %v, want 30ms", sample.RTT)
			}
		}
	}
	if !found {
		t.Fatalf("expected a timestamp sample, got %v", out)
	}
}

func TestUpdateTCPHandshakeFallback(t *testing.T) {
	var s flow.TCPEstimatorState
	t0 := time.Unix(0, 0)

	// Forward SYN, seq=1000.
	UpdateTCP(&s, 1, true, 0, false, wire.TCPTimestamps{}, true, 1000, 0, t0)

	// Reverse SYN+ACK 20ms later, correctly acknowledging seq+1.
	t1 := t0.Add(20 * time.Millisecond)
	out := UpdateTCP(&s, 1, false, 0, true, wire.TCPTimestamps{}, true, 0, 1001, t1)

	if len(out) != 1 || out[0].Method != "handshake" {
		t.Fatalf("expected one handshake sample, got %v", out)
	}
	if out[0].RTT != 20*time.Millisecond {
		t.Errorf("handshake RTT = %v, want 20ms", out[0].RTT)
	}
}

func TestUpdateTCPHandshakeRequiresMatchingAck(t *testing.T) {
	var s flow.TCPEstimatorState
	t0 := time.Unix(0, 0)

	// Forward SYN, seq=1000.
	UpdateTCP(&s, 1, true, 0, false, wire.TCPTimestamps{}, true, 1000, 0, t0)

	// Reverse SYN+ACK whose ack number does not acknowledge seq+1 — e.g. a
	// SYN+ACK belonging to a different, unrelated handshake that happens to
	// share this flow's 5-tuple. Must not be paired with the stale SYN.
	out := UpdateTCP(&s, 1, false, 0, true, wire.TCPTimestamps{}, true, 0, 5000, t0.Add(20*time.Millisecond))
	for _, sample := range out {
		if sample.Method == "handshake" {
			t.Fatalf("handshake sample should require ack == seq+1, got %v", out)
		}
	}

	// The correctly acknowledging SYN+ACK, arriving later, still pairs.
	out = UpdateTCP(&s, 1, false, 0, true, wire.TCPTimestamps{}, true, 0, 1001, t0.Add(30*time.Millisecond))
	found := false
	for _, sample := range out {
		if sample.Method == "handshake" {
			found = true
			if sample.RTT != 30*time.Millisecond {
				t.Errorf("handshake RTT = %v, want 30ms", sample.RTT)
			}
		}
	}
	if !found {
		t.Fatal("expected the correctly-acknowledging SYN+ACK to produce a handshake sample")
	}
}

func TestUpdateTCPHandshakeFiresOnlyOnce(t *testing.T) {
	var s flow.TCPEstimatorState
	t0 := time.Unix(0, 0)
	UpdateTCP(&s, 1, true, 0, false, wire.TCPTimestamps{}, true, 1000, 0, t0)
	UpdateTCP(&s, 1, false, 0, true, wire.TCPTimestamps{}, true, 0, 1001, t0.Add(10*time.Millisecond))

	out := UpdateTCP(&s, 1, false, 0, true, wire.TCPTimestamps{}, true, 0, 1001, t0.Add(40*time.Millisecond))
	for _, sample := range out {
		if sample.Method == "handshake" {
			t.Fatalf("handshake sample should only fire once, got a second: %v", out)
		}
	}
}
