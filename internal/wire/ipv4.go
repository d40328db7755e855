package wire

import "encoding/binary"

// Transport protocol numbers this node understands. Anything else skips
// transport processing, per spec.
const (
	ProtoTCP = 6
	ProtoUDP = 17
)

const sizeIPv4 = 20

// IPv4Header is the subset of RFC 791 fields this node reads or rewrites.
// Only the fixed 20-byte header is supported; IHL != 5 (IPv4 options) aborts
// parsing, and IPv6 (version 6) aborts parsing, per spec.
type IPv4Header struct {
	raw       []byte // the 20 header bytes, backing array shared with the packet
	SrcIP     uint32
	DstIP     uint32
	Protocol  uint8
	TotalLen  uint16
	HeaderLen uint8 // in bytes, always 20 for a parsed header
}

// ParseIPv4 reads a fixed 20-byte IPv4 header from c. It returns ok=false for
// anything shorter than 20 bytes, any non-4 version, or IHL != 5.
func ParseIPv4(c *Cursor) (hdr IPv4Header, ok bool) {
	b, ok := c.Advance(sizeIPv4)
	if !ok {
		return IPv4Header{}, false
	}
	verIHL := b[0]
	if verIHL>>4 != 4 {
		return IPv4Header{}, false
	}
	if verIHL&0x0f != 5 {
		// IHL != 5: IPv4 options present. Unsupported; abort per spec §4.1/§9(a).
		return IPv4Header{}, false
	}
	return IPv4Header{
		raw:       b,
		TotalLen:  binary.BigEndian.Uint16(b[2:4]),
		Protocol:  b[9],
		SrcIP:     binary.BigEndian.Uint32(b[12:16]),
		DstIP:     binary.BigEndian.Uint32(b[16:20]),
		HeaderLen: sizeIPv4,
	}, true
}

// SetSrcIP overwrites the source address field in place.
func (h *IPv4Header) SetSrcIP(ip uint32) {
	binary.BigEndian.PutUint32(h.raw[12:16], ip)
	h.SrcIP = ip
}

// SetDstIP overwrites the destination address field in place.
func (h *IPv4Header) SetDstIP(ip uint32) {
	binary.BigEndian.PutUint32(h.raw[16:20], ip)
	h.DstIP = ip
}

// SetChecksum overwrites the header checksum field in place.
func (h *IPv4Header) SetChecksum(sum uint16) {
	binary.BigEndian.PutUint16(h.raw[10:12], sum)
}

// Bytes returns the 20 raw header bytes, shared with the underlying packet
// buffer, for checksum computation.
func (h *IPv4Header) Bytes() []byte {
	return h.raw
}
