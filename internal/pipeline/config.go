package pipeline

// Config holds the inputs the driver needs that come from the management
// plane rather than from the wire: the QUIC detection port and the
// admission oracle mapping a destination port to its rewrite target.
type Config struct {
	// QUICPort is the UDP port whose presence on either side of a
	// datagram selects QUIC parsing over a PLUS attempt.
	QUICPort uint16

	// LookupDst is the admission oracle: given a packet's destination
	// port, it returns the IP address new flows for that port should be
	// rewritten to, or ok=false to decline admission.
	LookupDst func(dstPort uint16) (newDstIP uint32, ok bool)

	// FlowCapacity sizes the initial flow store allocation.
	FlowCapacity int
}
