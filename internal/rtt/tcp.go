package rtt

import (
	"time"

	"github.com/mami-project/latencynode/internal/flow"
	"github.com/mami-project/latencynode/internal/wire"
)

// UpdateTCP feeds one observed TCP packet into a flow's TCP estimator
// state and returns the samples, if any, it produces. forward reports
// whether this packet came from the flow's originating endpoint
// (flow.IsForward). synAck suppresses spin measurement for the SYN+ACK of
// the handshake, which carries no meaningful VEC value. ack is the
// packet's acknowledgment number, used only to validate the handshake
// fallback sample against the initial SYN's sequence number.
func UpdateTCP(s *flow.TCPEstimatorState, flowIndex int, forward bool, vec uint8, synAck bool, ts wire.TCPTimestamps, syn bool, seq, ack uint32, now time.Time) []Sample {
	var out []Sample

	if syn && !synAck && forward && !s.HasHandshake {
		s.HandshakeSeq = seq
		s.HandshakeSeqTime = now
		s.HasHandshake = true
	}

	if !synAck {
		if sample, ok := updateTCPSpin(s, flowIndex, forward, vec, now); ok {
			out = append(out, sample)
		}
	}

	if ts.Present {
		if sample, ok := updateTCPTimestamp(s, flowIndex, forward, ts, now); ok {
			out = append(out, sample)
		}
	}

	// Handshake fallback: once the reverse side's SYN+ACK arrives
	// acknowledging the original SYN (ack == seq+1, the standard TCP
	// handshake relationship), pair it with the original SYN. This fires
	// at most once per flow, whether or not spin or timestamp samples have
	// already fired.
	if synAck && !forward && s.HasHandshake && !s.HandshakeUsed && ack == s.HandshakeSeq+1 {
		s.HandshakeUsed = true
		out = append(out, Sample{
			FlowIndex: flowIndex,
			Kind:      flow.KindTCP.String(),
			Method:    "handshake",
			RTT:       now.Sub(s.HandshakeSeqTime),
			Timestamp: now,
		})
	}

	return out
}

func updateTCPSpin(s *flow.TCPEstimatorState, flowIndex int, forward bool, vec uint8, now time.Time) (Sample, bool) {
	if forward {
		var sample Sample
		ok := false
		if s.HasRevSpin && vec != s.RevSpin {
			sample = Sample{
				FlowIndex: flowIndex,
				Kind:      flow.KindTCP.String(),
				Method:    "spin",
				RTT:       now.Sub(s.RevSpinTime),
				Timestamp: now,
			}
			ok = true
		}
		s.FwdSpin, s.FwdSpinTime, s.HasFwdSpin = vec, now, true
		return sample, ok
	}
	var sample Sample
	ok := false
	if s.HasFwdSpin && vec != s.FwdSpin {
		sample = Sample{
			FlowIndex: flowIndex,
			Kind:      flow.KindTCP.String(),
			Method:    "spin",
			RTT:       now.Sub(s.FwdSpinTime),
			Timestamp: now,
		}
		ok = true
	}
	s.RevSpin, s.RevSpinTime, s.HasRevSpin = vec, now, true
	return sample, ok
}

func updateTCPTimestamp(s *flow.TCPEstimatorState, flowIndex int, forward bool, ts wire.TCPTimestamps, now time.Time) (Sample, bool) {
	if forward {
		var sample Sample
		ok := false
		if s.HasRevTS && ts.TSecr == s.RevTSval {
			sample = Sample{
				FlowIndex: flowIndex,
				Kind:      flow.KindTCP.String(),
				Method:    "timestamp",
				RTT:       now.Sub(s.RevTSvalTime),
				Timestamp: now,
			}
			ok = true
		}
		s.FwdTSval, s.FwdTSvalTime, s.HasFwdTS = ts.TSval, now, true
		return sample, ok
	}
	var sample Sample
	ok := false
	if s.HasFwdTS && ts.TSecr == s.FwdTSval {
		sample = Sample{
			FlowIndex: flowIndex,
			Kind:      flow.KindTCP.String(),
			Method:    "timestamp",
			RTT:       now.Sub(s.FwdTSvalTime),
			Timestamp: now,
		}
		ok = true
	}
	s.RevTSval, s.RevTSvalTime, s.HasRevTS = ts.TSval, now, true
	return sample, ok
}
