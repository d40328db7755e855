package wire

import "encoding/binary"

// QUIC header bits. This module speaks the short/long header layout of
// IETF QUIC draft-05 (the pinq/minq implementation era), not modern QUIC —
// do not generalize this parser to later drafts or RFC 9000.
const (
	quicIsLong  = 0x80
	quicHasID   = 0x40
	quicPNMask  = 0x1F
	quicPN8     = 0x01
	quicPN16    = 0x02
	quicPN32    = 0x03
)

// SizeQUICMin is the minimum number of bytes a short-header QUIC packet
// needs (type byte + 1-byte packet number + spin-measurement byte);
// callers check this before attempting ParseQUIC.
const SizeQUICMin = 3

// QUICHeader is the subset of the draft-05 long/short header this node
// reads: connection ID (long header only, or short header with the
// has-ID bit set) and packet number, decoded according to the PN-length
// bits in the type byte.
type QUICHeader struct {
	Long         bool
	HasConnID    bool
	ConnectionID uint64 // valid only if HasConnID
	PacketNumber uint32
}

// ParseQUIC decodes a draft-05 QUIC header from c. c must have at least
// SizeQUICMin bytes remaining; callers are expected to have already
// checked this via Remaining().
func ParseQUIC(c *Cursor) (hdr QUICHeader, ok bool) {
	typeByte, ok := c.Peek(1)
	if !ok {
		return QUICHeader{}, false
	}
	t := typeByte[0]

	if t&quicIsLong != 0 {
		return parseQUICLong(c)
	}
	return parseQUICShort(c, t)
}

func parseQUICLong(c *Cursor) (hdr QUICHeader, ok bool) {
	if _, ok = c.Advance(SizeType); !ok {
		return QUICHeader{}, false
	}
	idBytes, ok := c.Advance(sizeID)
	if !ok {
		return QUICHeader{}, false
	}
	pnBytes, ok := c.Advance(4)
	if !ok {
		return QUICHeader{}, false
	}
	// Version follows but this node has no use for it beyond consuming it.
	if _, ok = c.Advance(sizeVersion); !ok {
		return QUICHeader{}, false
	}
	return QUICHeader{
		Long:         true,
		HasConnID:    true,
		ConnectionID: binary.BigEndian.Uint64(idBytes),
		PacketNumber: binary.BigEndian.Uint32(pnBytes),
	}, true
}

func parseQUICShort(c *Cursor, t byte) (hdr QUICHeader, ok bool) {
	if _, ok = c.Advance(SizeType); !ok {
		return QUICHeader{}, false
	}

	var connID uint64
	var hasConnID bool
	// Only true for draft-05: a later draft reverses the meaning of this bit.
	if t&quicHasID != 0 {
		idBytes, ok := c.Advance(sizeID)
		if !ok {
			return QUICHeader{}, false
		}
		connID = binary.BigEndian.Uint64(idBytes)
		hasConnID = true
	}

	var pn uint32
	switch t & quicPNMask {
	case quicPN8:
		b, ok := c.Advance(1)
		if !ok {
			return QUICHeader{}, false
		}
		pn = uint32(b[0])
	case quicPN16:
		b, ok := c.Advance(2)
		if !ok {
			return QUICHeader{}, false
		}
		pn = uint32(binary.BigEndian.Uint16(b))
	case quicPN32:
		b, ok := c.Advance(4)
		if !ok {
			return QUICHeader{}, false
		}
		pn = binary.BigEndian.Uint32(b)
	default:
		// Unknown packet-number-length encoding: abort per spec.
		return QUICHeader{}, false
	}

	return QUICHeader{
		Long:         false,
		HasConnID:    hasConnID,
		ConnectionID: connID,
		PacketNumber: pn,
	}, true
}

// Sizes of the fixed draft-05 fields this parser consumes.
const (
	SizeType    = 1
	sizeID      = 8
	sizeVersion = 4
)
