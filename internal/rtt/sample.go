// Package rtt implements the per-protocol RTT estimators: TCP (spin bit +
// timestamp option + handshake fallback), QUIC (spin bit with
// packet-number reordering guard), and PLUS (PSN/PSE pairing). Each
// estimator is fed one wire observation at a time and emits a Sample
// whenever it can pair a forward and reverse signal.
package rtt

import "time"

// Sample is one RTT observation, ready for CSV archival or broadcast.
// Field names and the csv tag convention follow the teacher's
// tcp.LinuxTCPInfo struct.
type Sample struct {
	FlowIndex int           `csv:"flow_index"`
	Kind      string        `csv:"kind"`
	Method    string        `csv:"method"` // "spin", "timestamp", "handshake", "psn_pse"
	RTT       time.Duration `csv:"rtt"`
	Timestamp time.Time     `csv:"timestamp"`
}
