// Package flow identifies and stores per-flow RTT-estimator state: a 64-bit
// key derived from the 5-tuple (plus, for PLUS, the Connection-Association
// Token), a table mapping keys to flow records, and a dense slot pool that
// backs the table so records can be reused without per-flow allocation.
package flow

// Key identifies a directional flow. Two packets of the same tracked flow
// in the same direction this node indexes by produce equal keys; since the
// key is a lossy hash, unrelated tuples can also collide. See MakeKey and
// MakeReverseKey for the asymmetry between forward and reverse lookups.
type Key uint64

// MakeKey packs a TCP/UDP/QUIC 5-tuple into a 64-bit key: a 24-bit fold of
// the XOR of the source and destination addresses, 16 bits each of source
// and destination port, and 8 bits of IP protocol, laid out in
// non-overlapping bit ranges (24+16+16+8 = 64) so the port and protocol
// fields never collide with one another. The address fold is lossy: it is
// symmetric in the two addresses and folds 32 bits into 24, so distinct
// address pairs can share a key. This mirrors the teacher's
// reduction of a socket identity to a single lookup word
// (inetdiag.InetDiagSockID.Cookie), generalized from "inode cookie" to
// "5-tuple hash".
func MakeKey(srcIP, dstIP uint32, srcPort, dstPort uint16, proto uint8) Key {
	addrMix := srcIP ^ dstIP
	foldedAddr := uint64(addrMix>>24) ^ uint64(addrMix&0x00ffffff)
	return Key(foldedAddr<<40 | uint64(srcPort)<<24 | uint64(dstPort)<<8 | uint64(proto))
}

// MakePlusKey additionally mixes the 64-bit Connection-Association Token
// into the key, since PLUS associations are identified by CAT rather than
// solely by address/port.
func MakePlusKey(srcIP, dstIP uint32, srcPort, dstPort uint16, proto uint8, cat uint64) Key {
	base := MakeKey(srcIP, dstIP, srcPort, dstPort, proto)
	return Key(uint64(base) ^ cat)
}

// MakeReverseKey builds the key that a reverse-direction packet will
// present. It wildcards the source address to 0 but keeps the forward
// packet's ports (and rewritten destination address) unchanged — this is
// intentional and unusual: the rewriter changes the packet's *addresses*,
// not its ports, so the reverse packet's addresses after a symmetric NAT
// hairpin won't match a naive swap. Keeping the source wildcarded and
// reusing the forward ports is how the original packet-plane matches both
// directions to one session despite the address rewrite.
func MakeReverseKey(newDstIP uint32, srcPort, dstPort uint16, proto uint8) Key {
	return MakeKey(0, newDstIP, srcPort, dstPort, proto)
}

// MakePlusReverseKey is MakeReverseKey's CAT-mixing counterpart for PLUS
// associations.
func MakePlusReverseKey(newDstIP uint32, srcPort, dstPort uint16, proto uint8, cat uint64) Key {
	base := MakeReverseKey(newDstIP, srcPort, dstPort, proto)
	return Key(uint64(base) ^ cat)
}

// ReverseLookupKey reconstructs the key an arriving packet would have
// been registered under if it is actually the reverse leg of an
// already-admitted flow. A genuine reverse packet carries the rewritten
// destination as its own source address and its ports swapped relative
// to the forward packet's own fields (it's a reply: what the forward
// packet sent as its destination port, the reply sends as its source
// port). srcIP here stands in for the admission-time new_dst_ip, and the
// wire ports are swapped back into the order MakeReverseKey packed them
// in.
func ReverseLookupKey(srcIP uint32, srcPort, dstPort uint16, proto uint8) Key {
	return MakeReverseKey(srcIP, dstPort, srcPort, proto)
}

// PlusReverseLookupKey is ReverseLookupKey's CAT-mixing counterpart for
// PLUS associations.
func PlusReverseLookupKey(srcIP uint32, srcPort, dstPort uint16, proto uint8, cat uint64) Key {
	return MakePlusReverseKey(srcIP, dstPort, srcPort, proto, cat)
}
