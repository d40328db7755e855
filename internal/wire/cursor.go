// Package wire contains bounds-checked decoders for the wire formats this
// node inspects: IPv4, UDP, TCP (plus the TCP Timestamps option), the
// draft-05 QUIC short/long headers, and the experimental PLUS header.
//
// Every decoder reads through a Cursor and never reads past the bytes it was
// given. A decoder that hits a check it cannot satisfy returns ok=false; the
// cursor may already have moved past fields read before the failing check,
// but the underlying buffer is never moved. The caller is expected to leave
// the buffer untouched and forward the packet as-is.
package wire

// Cursor is a non-destructive view over a packet buffer. Advance returns the
// next n bytes and moves the cursor forward only when that many bytes remain;
// otherwise it reports ok=false and leaves the cursor where it was.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a Cursor positioned at the start of buf.
func NewCursor(buf []byte) Cursor {
	return Cursor{buf: buf}
}

// Remaining reports how many bytes are left to read.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Advance returns the next n bytes and moves the cursor past them. It
// returns ok=false and does not move the cursor if fewer than n bytes
// remain.
func (c *Cursor) Advance(n int) (chunk []byte, ok bool) {
	if n < 0 || c.Remaining() < n {
		return nil, false
	}
	chunk = c.buf[c.pos : c.pos+n]
	c.pos += n
	return chunk, true
}

// Peek returns the next n bytes without moving the cursor.
func (c *Cursor) Peek(n int) (chunk []byte, ok bool) {
	if n < 0 || c.Remaining() < n {
		return nil, false
	}
	return c.buf[c.pos : c.pos+n], true
}

// Pos returns the total number of bytes consumed so far. The pipeline driver
// uses this to record where the transport header starts; since a Cursor is
// only a view, the buffer itself is never advanced and the downstream sink
// sees it starting at the IPv4 header.
func (c *Cursor) Pos() int {
	return c.pos
}
