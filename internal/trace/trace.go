// Package trace formats the packet trace record this node attaches to a
// buffer when tracing is enabled, in the exact layout of the original
// plugin's format_latency_trace.
package trace

import "fmt"

// Record is one traced packet's worth of fields.
type Record struct {
	SrcPort   uint16
	DstPort   uint16
	NewSrcIP  uint32
	NewDstIP  uint32
	Kind      string // "TCP", "QUIC", or "PLUS"
	PktCount  uint64
}

// Format renders r in the fixed four-line layout a reader of the original
// trace output would recognize.
func Format(r Record) string {
	return fmt.Sprintf(
		"LATENCY packet: type: %s\n   src port: %d, dst port: %d\n   (new) src ip: %d, (new) dst ip: %d\n   pkt number in flow: %d\n",
		r.Kind, r.SrcPort, r.DstPort, r.NewSrcIP, r.NewDstIP, r.PktCount,
	)
}
