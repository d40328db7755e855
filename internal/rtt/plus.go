package rtt

import (
	"time"

	"github.com/mami-project/latencynode/internal/flow"
)

// PLUS sub-state timeouts from the draft this header format comes from.
// They are unused: this node tracks only ACTIVE/ERROR flow state, not a
// PLUS association state machine. Kept as named constants so a future
// state machine has them ready to wire in.
// TODO: wire a PLUS association state machine (idle/associated/stopping)
// once a real PLUS stack exists to drive transitions through it.
const (
	TimeoutIdle       = 100 // ticks (10s)
	TimeoutAssociated = 30  // ticks (3s)
	TimeoutStop       = 20  // ticks (2s)
)

// UpdatePLUS feeds one observed PLUS packet into a flow's PLUS estimator
// state. A forward packet's PSN is remembered; when a reverse packet's PSE
// matches a remembered forward PSN, the arrival-time delta is the RTT.
func UpdatePLUS(s *flow.PLUSEstimatorState, flowIndex int, forward bool, psn, pse uint32, cat uint64, now time.Time) []Sample {
	if s.CAT == 0 {
		s.CAT = cat
	}

	if forward {
		s.FwdPSN, s.FwdPSNTime, s.HasFwdPSN = psn, now, true
		return nil
	}

	s.LastPSE = pse
	if s.HasFwdPSN && pse == s.FwdPSN {
		return []Sample{{
			FlowIndex: flowIndex,
			Kind:      flow.KindPLUS.String(),
			Method:    "psn_pse",
			RTT:       now.Sub(s.FwdPSNTime),
			Timestamp: now,
		}}
	}
	return nil
}
