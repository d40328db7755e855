package wire

import "encoding/binary"

const (
	optKindEnd       = 0
	optKindNOP       = 1
	optKindTimestamp = 8
	optLenTimestamp  = 10
)

// TCPTimestamps holds the TSval/TSecr pair from the TCP Timestamps option
// (RFC 7323), when present.
type TCPTimestamps struct {
	TSval   uint32
	TSecr   uint32
	Present bool
}

// ParseTCPOptions scans a bounded TCP options area looking for the
// Timestamps option. It stops at an explicit End-of-Options (kind 0) or
// when the area is exhausted, skipping NOPs (kind 1) and any other
// single-TLV option by its declared length. It returns ok=false if an
// option's declared length runs past the end of the options area or is
// too short to hold its own kind/length bytes; per spec, malformed options
// abort processing of the whole packet.
func ParseTCPOptions(opts []byte) (ts TCPTimestamps, ok bool) {
	i := 0
	for i < len(opts) {
		kind := opts[i]
		switch kind {
		case optKindEnd:
			return ts, true
		case optKindNOP:
			i++
			continue
		}
		if i+1 >= len(opts) {
			return TCPTimestamps{}, false
		}
		length := int(opts[i+1])
		if length < 2 || i+length > len(opts) {
			return TCPTimestamps{}, false
		}
		if kind == optKindTimestamp && length == optLenTimestamp {
			val := opts[i+2 : i+length]
			ts.TSval = binary.BigEndian.Uint32(val[0:4])
			ts.TSecr = binary.BigEndian.Uint32(val[4:8])
			ts.Present = true
		}
		i += length
	}
	return ts, true
}
