package rtt

import (
	"testing"
	"time"

	"github.com/mami-project/latencynode/internal/flow"
)

// TestUpdateQUICSpinSample mirrors the worked example: a forward packet
// establishes spin=0, the reverse side toggles to spin=1, and the next
// forward packet catches up to that toggle. The sample fires at the
// catch-up packet, valued at the gap since the reverse toggle was seen —
// not at the reverse packet itself.
func TestUpdateQUICSpinSample(t *testing.T) {
	var s flow.QUICEstimatorState
	t1 := time.Unix(0, 0)

	UpdateQUIC(&s, 1, true, 0, false, 0, 1, t1)

	t2 := t1.Add(10 * time.Millisecond)
	out := UpdateQUIC(&s, 1, false, 0, false, 1, 1, t2)
	if out != nil {
		t.Fatalf("reverse toggle alone should not produce a sample, got %v", out)
	}

	t3 := t2.Add(25 * time.Millisecond)
	out = UpdateQUIC(&s, 1, true, 0, false, 1, 2, t3)
	if len(out) != 1 || out[0].RTT != 25*time.Millisecond {
		t.Fatalf("expected one 25ms sample at the catch-up packet, got %v", out)
	}
}

// TestUpdateQUICNoSampleWhenNoCatchUp checks that a direction diverging
// from the other side's last value, without that other side having
// already shown the new value, does not fire a sample.
func TestUpdateQUICNoSampleWhenNoCatchUp(t *testing.T) {
	var s flow.QUICEstimatorState
	t0 := time.Unix(0, 0)

	UpdateQUIC(&s, 1, true, 0, false, 0, 1, t0)
	out := UpdateQUIC(&s, 1, false, 0, false, 1, 1, t0.Add(25*time.Millisecond))
	if out != nil {
		t.Fatalf("a direction's first toggle away from the other side's value should not sample, got %v", out)
	}
}

func TestUpdateQUICDiscardsOutOfOrder(t *testing.T) {
	var s flow.QUICEstimatorState
	t0 := time.Unix(0, 0)

	UpdateQUIC(&s, 1, true, 0, false, 0, 5, t0)
	// Packet number 3 is not greater than the last recorded 5: discarded.
	out := UpdateQUIC(&s, 1, true, 0, false, 1, 3, t0.Add(time.Millisecond))
	if out != nil {
		t.Fatalf("out-of-order packet should produce no sample, got %v", out)
	}
	if s.FwdPacketNum != 5 {
		t.Errorf("state should not update on discard, FwdPacketNum = %d, want 5", s.FwdPacketNum)
	}
}

func TestUpdateQUICRecordsConnID(t *testing.T) {
	var s flow.QUICEstimatorState
	UpdateQUIC(&s, 1, true, 0xdead, true, 0, 1, time.Unix(0, 0))
	if !s.HasConnID || s.ConnectionID != 0xdead {
		t.Errorf("ConnectionID = %#x, HasConnID = %v, want 0xdead, true", s.ConnectionID, s.HasConnID)
	}
}

func TestUpdateQUICConnIDStaysOnceSet(t *testing.T) {
	var s flow.QUICEstimatorState
	UpdateQUIC(&s, 1, true, 0xdead, true, 0, 1, time.Unix(0, 0))
	UpdateQUIC(&s, 1, true, 0xbeef, true, 0, 2, time.Unix(0, 0))
	if s.ConnectionID != 0xdead {
		t.Errorf("ConnectionID changed after being set, got %#x", s.ConnectionID)
	}
}
