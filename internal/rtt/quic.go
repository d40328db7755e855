package rtt

import (
	"time"

	"github.com/mami-project/latencynode/internal/flow"
)

// UpdateQUIC feeds one observed QUIC spin measurement into a flow's QUIC
// estimator state. Samples that arrive out of order within a direction —
// packet number not greater than the last recorded one for that direction
// — are discarded without updating spin or packet-number state, since an
// estimator fed a reordered value would record a stale edge. The
// connection ID is recorded before this check, so a discarded packet can
// still set it if none was recorded yet.
//
// A sample fires when a packet's spin value is new for its own direction
// (a transition away from that direction's last recorded value, or the
// first packet ever observed in that direction) and the other direction's
// last recorded spin already carries that same value — i.e. the endpoint
// on this side has just caught up to a toggle the other side already
// showed. The sample's RTT is the gap between the other direction's
// observation of the value and this one. This is the reading that
// satisfies the worked example: forward spin=0, then reverse spin=1 at
// t2, then forward spin=1 at t3 yields exactly one sample of t3-t2 (the
// forward packet catching up to the reverse toggle), not a sample at the
// reverse packet itself. See DESIGN.md for why this reading was chosen
// over "sample when a forward packet's spin merely differs from the last
// reverse value", which fires a packet too early on this sequence.
func UpdateQUIC(s *flow.QUICEstimatorState, flowIndex int, forward bool, connID uint64, hasConnID bool, spin uint8, packetNumber uint32, now time.Time) []Sample {
	if hasConnID && !s.HasConnID {
		s.ConnectionID = connID
		s.HasConnID = true
	}

	if forward {
		if s.HasFwd && packetNumber <= s.FwdPacketNum {
			return nil
		}
		var out []Sample
		transitioned := !s.HasFwd || spin != s.FwdSpin
		if transitioned && s.HasRev && spin == s.RevSpin {
			out = append(out, Sample{
				FlowIndex: flowIndex,
				Kind:      flow.KindQUIC.String(),
				Method:    "spin",
				RTT:       now.Sub(s.RevSpinTime),
				Timestamp: now,
			})
		}
		s.FwdSpin, s.FwdSpinTime, s.FwdPacketNum, s.HasFwd = spin, now, packetNumber, true
		return out
	}

	if s.HasRev && packetNumber <= s.RevPacketNum {
		return nil
	}
	var out []Sample
	transitioned := !s.HasRev || spin != s.RevSpin
	if transitioned && s.HasFwd && spin == s.FwdSpin {
		out = append(out, Sample{
			FlowIndex: flowIndex,
			Kind:      flow.KindQUIC.String(),
			Method:    "spin",
			RTT:       now.Sub(s.FwdSpinTime),
			Timestamp: now,
		})
	}
	s.RevSpin, s.RevSpinTime, s.RevPacketNum, s.HasRev = spin, now, packetNumber, true
	return out
}
