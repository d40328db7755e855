package flow

import "testing"

// TestReverseKeyAsymmetry documents Open Question (d): the reverse key is
// not simply the forward key with source/destination swapped. It
// wildcards the source address but keeps the forward packet's ports, and
// matches against the rewritten destination address, not the original
// one.
func TestReverseKeyAsymmetry(t *testing.T) {
	const (
		initSrcIP = 0x0a000001 // 10.0.0.1
		newDstIP  = 0xac100001 // 172.16.0.1
		srcPort   = 51000
		dstPort   = 443
		proto     = 6
	)

	fwdKey := MakeKey(initSrcIP, newDstIP, srcPort, dstPort, proto)
	revKey := MakeReverseKey(newDstIP, srcPort, dstPort, proto)

	if fwdKey == revKey {
		t.Fatal("forward and reverse keys must differ")
	}

	// The reverse key must be derived from the rewritten destination
	// address with the source wildcarded, not a naive swap of the forward
	// tuple.
	naiveSwap := MakeKey(newDstIP, initSrcIP, dstPort, srcPort, proto)
	if revKey == naiveSwap {
		t.Fatal("reverse key should not equal a naive address/port swap")
	}

	wildcarded := MakeKey(0, newDstIP, srcPort, dstPort, proto)
	if revKey != wildcarded {
		t.Errorf("MakeReverseKey = %#x, want %#x (src wildcarded, forward ports kept)", revKey, wildcarded)
	}
}

func TestMakeKeyDeterministic(t *testing.T) {
	a := MakeKey(1, 2, 3, 4, 6)
	b := MakeKey(1, 2, 3, 4, 6)
	if a != b {
		t.Fatal("MakeKey should be deterministic for identical inputs")
	}
}

func TestMakeKeyDistinguishesPorts(t *testing.T) {
	a := MakeKey(1, 2, 3, 4, 6)
	b := MakeKey(1, 2, 5, 4, 6)
	if a == b {
		t.Fatal("differing source ports should not collide")
	}
}

func TestPlusKeyMixesCAT(t *testing.T) {
	base := MakeKey(1, 2, 3, 4, 17)
	plus1 := MakePlusKey(1, 2, 3, 4, 17, 0xaaaa)
	plus2 := MakePlusKey(1, 2, 3, 4, 17, 0xbbbb)

	if plus1 == uint64AsKey(base) {
		t.Fatal("PLUS key should differ from the unmixed base key")
	}
	if plus1 == plus2 {
		t.Fatal("different CATs should not collide")
	}
}

func uint64AsKey(k Key) Key { return k }

func TestPlusReverseKeyAsymmetry(t *testing.T) {
	const newDstIP = 0xac100001
	rev := MakePlusReverseKey(newDstIP, 1000, 443, 17, 0xcafe)
	revNoCAT := MakeReverseKey(newDstIP, 1000, 443, 17)
	if rev == revNoCAT {
		t.Fatal("PLUS reverse key should be mixed with CAT")
	}
}

// TestReverseLookupKeyMatchesAdmissionReverseKey asserts the property
// lookupOrAdmit depends on: a genuine reverse wire packet (whose own
// source/destination ports are swapped relative to the forward packet's
// fields) must reconstruct, via ReverseLookupKey, exactly the key that was
// registered under MakeReverseKey at admission time.
func TestReverseLookupKeyMatchesAdmissionReverseKey(t *testing.T) {
	const (
		newDstIP = 0xac100001
		srcPort  = 51000 // forward packet's source port
		dstPort  = 443   // forward packet's destination port
		proto    = 6
	)

	admitted := MakeReverseKey(newDstIP, srcPort, dstPort, proto)

	// The reverse wire packet carries newDstIP as its own source address,
	// and its ports swapped: its source port is the forward dstPort, its
	// destination port is the forward srcPort.
	looked := ReverseLookupKey(newDstIP, dstPort, srcPort, proto)

	if looked != admitted {
		t.Errorf("ReverseLookupKey = %#x, want %#x (admission-time reverse key)", looked, admitted)
	}
}

func TestPlusReverseLookupKeyMatchesAdmissionReverseKey(t *testing.T) {
	const (
		newDstIP = 0xac100001
		srcPort  = 51000
		dstPort  = 443
		proto    = 17
		cat      = 0xcafe
	)

	admitted := MakePlusReverseKey(newDstIP, srcPort, dstPort, proto, cat)
	looked := PlusReverseLookupKey(newDstIP, dstPort, srcPort, proto, cat)

	if looked != admitted {
		t.Errorf("PlusReverseLookupKey = %#x, want %#x", looked, admitted)
	}
}

func TestReverseLookupKeyDoesNotMatchForwardKey(t *testing.T) {
	const (
		initSrcIP = 0x0a000001
		newDstIP  = 0xac100001
		srcPort   = 51000
		dstPort   = 443
		proto     = 6
	)

	fwdKey := MakeKey(initSrcIP, newDstIP, srcPort, dstPort, proto)
	looked := ReverseLookupKey(newDstIP, dstPort, srcPort, proto)

	if looked == fwdKey {
		t.Fatal("reverse lookup key should not collide with the forward key")
	}
}
