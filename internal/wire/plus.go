package wire

import "encoding/binary"

// PLUS base header layout (20 bytes): a 1-byte magic/flags octet, 3 bytes
// of reserved padding, a 32-bit PSN, a 32-bit PSE, and a 64-bit CAT.
const (
	sizePLUS         = 20
	sizePLUSExtHello = 3

	plusMagicMask  = 0xF0 // top 4 bits of the first octet
	plusMagicValue = 0xD0 // fixed magic this node expects
	plusFlagExtended = 0x01
)

// PLUSHeader is the 20-byte PLUS base header this node reads and, for the
// hop-count extension, mutates in place.
type PLUSHeader struct {
	raw      []byte
	Magic    uint8
	Extended bool
	PSN      uint32
	PSE      uint32
	CAT      uint64
}

// ParsePLUS reads the fixed 20-byte PLUS base header from c. ok=false
// means either too few bytes remained or the magic nibble did not match;
// either way the caller aborts processing of this packet.
func ParsePLUS(c *Cursor) (hdr PLUSHeader, ok bool) {
	b, ok := c.Advance(sizePLUS)
	if !ok {
		return PLUSHeader{}, false
	}
	magic := b[0] & plusMagicMask
	if magic != plusMagicValue {
		return PLUSHeader{}, false
	}
	return PLUSHeader{
		raw:      b,
		Magic:    magic,
		Extended: b[0]&plusFlagExtended != 0,
		PSN:      binary.BigEndian.Uint32(b[4:8]),
		PSE:      binary.BigEndian.Uint32(b[8:12]),
		CAT:      binary.BigEndian.Uint64(b[12:20]),
	}, true
}

// PLUS extension header field offsets, within the 3-byte hop-count
// extension (SIZE_PLUS_EXT_HELLO in the original plugin).
const (
	plusExtTypeHopCount = 1
	plusExtIIMask       = 0x03
)

// ApplyHopCountExtension inspects the 3 bytes immediately following the
// base header, if present, and increments the hop-count byte in place when
// the extension is type 1 ("hop count") with instance-index 0. It is a
// no-op, not an error, if fewer than 3 bytes remain — the extension is
// optional.
func ApplyHopCountExtension(c *Cursor) {
	ext, ok := c.Peek(sizePLUSExtHello)
	if !ok {
		return
	}
	pcfType := ext[0]
	ii := ext[1] & plusExtIIMask
	if pcfType == plusExtTypeHopCount && ii == 0 {
		ext[2]++
	}
}
