package wire

import "encoding/binary"

const sizeUDP = 8

// UDPHeader is the fixed 8-byte UDP header (RFC 768).
type UDPHeader struct {
	raw      []byte
	SrcPort  uint16
	DstPort  uint16
	Length   uint16
	Checksum uint16
}

// ParseUDP reads the fixed 8-byte UDP header from c.
func ParseUDP(c *Cursor) (hdr UDPHeader, ok bool) {
	b, ok := c.Advance(sizeUDP)
	if !ok {
		return UDPHeader{}, false
	}
	return UDPHeader{
		raw:      b,
		SrcPort:  binary.BigEndian.Uint16(b[0:2]),
		DstPort:  binary.BigEndian.Uint16(b[2:4]),
		Length:   binary.BigEndian.Uint16(b[4:6]),
		Checksum: binary.BigEndian.Uint16(b[6:8]),
	}, true
}

// SetChecksum overwrites the checksum field in place.
func (h *UDPHeader) SetChecksum(sum uint16) {
	binary.BigEndian.PutUint16(h.raw[6:8], sum)
	h.Checksum = sum
}

// Bytes returns the 8 raw header bytes, shared with the underlying packet
// buffer.
func (h *UDPHeader) Bytes() []byte {
	return h.raw
}

// IsQUICPort reports whether either port matches the configured QUIC
// detection port. QUIC branch selection is purely port-based, per spec
// §4.1.
func (h *UDPHeader) IsQUICPort(quicPort uint16) bool {
	return h.SrcPort == quicPort || h.DstPort == quicPort
}
