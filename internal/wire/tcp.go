package wire

import "encoding/binary"

const sizeTCP = 20

// TCP flag bits, in the flags byte following the data-offset/reserved byte.
const (
	flagFIN = 0x01
	flagSYN = 0x02
	flagRST = 0x04
	flagPSH = 0x08
	flagACK = 0x10
)

// VEC ("spin-equivalent") bit is taken from the reserved bits of the
// data-offset/reserved byte: mask 0x0E, shifted right by one.
const (
	tcpLatencyMask  = 0x0E
	tcpLatencyShift = 1
)

// TCPHeader is the fixed 20-byte TCP header (RFC 793). TCP options, if any,
// follow immediately and are parsed separately by ParseTCPOptions.
type TCPHeader struct {
	raw        []byte
	SrcPort    uint16
	DstPort    uint16
	SeqNum     uint32
	AckNum     uint32
	DataOffset uint8 // header length in bytes, including options
	Flags      uint8
	Window     uint16
	Checksum   uint16
	UrgentPtr  uint16
}

// ParseTCP reads the fixed 20-byte TCP header from c. The variable-length
// options area, if any, is left for the caller to read with ParseTCPOptions.
func ParseTCP(c *Cursor) (hdr TCPHeader, ok bool) {
	b, ok := c.Advance(sizeTCP)
	if !ok {
		return TCPHeader{}, false
	}
	return TCPHeader{
		raw:        b,
		SrcPort:    binary.BigEndian.Uint16(b[0:2]),
		DstPort:    binary.BigEndian.Uint16(b[2:4]),
		SeqNum:     binary.BigEndian.Uint32(b[4:8]),
		AckNum:     binary.BigEndian.Uint32(b[8:12]),
		DataOffset: (b[12] >> 4) * 4,
		Flags:      b[13],
		Window:     binary.BigEndian.Uint16(b[14:16]),
		Checksum:   binary.BigEndian.Uint16(b[16:18]),
		UrgentPtr:  binary.BigEndian.Uint16(b[18:20]),
	}, true
}

// SYN reports whether the SYN flag is set.
func (h *TCPHeader) SYN() bool { return h.Flags&flagSYN != 0 }

// ACK reports whether the ACK flag is set.
func (h *TCPHeader) ACK() bool { return h.Flags&flagACK != 0 }

// VEC extracts the spin-equivalent measurement bit from the reserved field
// of the data-offset/reserved byte.
func (h *TCPHeader) VEC() uint8 {
	return (h.raw[12] & tcpLatencyMask) >> tcpLatencyShift
}

// SetChecksum overwrites the checksum field in place.
func (h *TCPHeader) SetChecksum(sum uint16) {
	binary.BigEndian.PutUint16(h.raw[16:18], sum)
	h.Checksum = sum
}

// Bytes returns the 20 raw header bytes, shared with the underlying packet
// buffer.
func (h *TCPHeader) Bytes() []byte {
	return h.raw
}

// OptionsLen reports how many option bytes follow the fixed header,
// derived from DataOffset. It returns false if DataOffset claims a header
// shorter than the fixed 20 bytes, which is malformed.
func (h *TCPHeader) OptionsLen() (n int, ok bool) {
	if h.DataOffset < sizeTCP {
		return 0, false
	}
	return int(h.DataOffset) - sizeTCP, true
}
