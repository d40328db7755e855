package rewrite

import (
	"testing"

	"github.com/mami-project/latencynode/internal/wire"
)

func ipHeader(src, dst uint32) wire.IPv4Header {
	b := make([]byte, 20)
	b[0] = 0x45
	b[9] = wire.ProtoTCP
	b[12], b[13], b[14], b[15] = byte(src>>24), byte(src>>16), byte(src>>8), byte(src)
	b[16], b[17], b[18], b[19] = byte(dst>>24), byte(dst>>16), byte(dst>>8), byte(dst)
	c := wire.NewCursor(b)
	hdr, ok := wire.ParseIPv4(&c)
	if !ok {
		panic("test helper: ParseIPv4 failed")
	}
	return hdr
}

func TestNATTranslateForward(t *testing.T) {
	const initSrc, origDst, newDst = 10, 20, 30
	hdr := ipHeader(initSrc, origDst)

	ok := NATTranslate(&hdr, true, initSrc, newDst)
	if !ok {
		t.Fatal("forward translate should succeed")
	}
	if hdr.DstIP != newDst {
		t.Errorf("DstIP = %d, want %d", hdr.DstIP, newDst)
	}
	if hdr.SrcIP != initSrc {
		t.Errorf("SrcIP should be untouched, got %d", hdr.SrcIP)
	}
}

func TestNATTranslateReverse(t *testing.T) {
	const initSrc, newDst = 10, 30
	hdr := ipHeader(newDst, newDst) // reverse packet's dst is the rewritten address
	hdr.SetSrcIP(newDst)

	ok := NATTranslate(&hdr, false, initSrc, newDst)
	if !ok {
		t.Fatal("reverse translate should succeed")
	}
	if hdr.DstIP != initSrc {
		t.Errorf("DstIP = %d, want %d (restored to init src)", hdr.DstIP, initSrc)
	}
}

func TestNATTranslateRoundTrip(t *testing.T) {
	const initSrc, newDst = 10, 30
	hdr := ipHeader(initSrc, 99)

	if !NATTranslate(&hdr, true, initSrc, newDst) {
		t.Fatal("forward leg failed")
	}
	if hdr.DstIP != newDst {
		t.Fatalf("forward leg DstIP = %d, want %d", hdr.DstIP, newDst)
	}

	if !NATTranslate(&hdr, false, initSrc, newDst) {
		t.Fatal("reverse leg failed")
	}
	if hdr.DstIP != initSrc {
		t.Errorf("round trip should restore DstIP to %d, got %d", initSrc, hdr.DstIP)
	}
}

func TestNATTranslateRejectsMismatchedForward(t *testing.T) {
	hdr := ipHeader(999, 20) // SrcIP doesn't match initSrcIP
	if NATTranslate(&hdr, true, 10, 30) {
		t.Fatal("forward translate should fail when SrcIP doesn't match initSrcIP")
	}
	if hdr.DstIP != 20 {
		t.Error("header should be left untouched on rejection")
	}
}

func TestNATTranslateRejectsMismatchedReverse(t *testing.T) {
	hdr := ipHeader(1, 999) // DstIP doesn't match newDstIP
	if NATTranslate(&hdr, false, 10, 30) {
		t.Fatal("reverse translate should fail when DstIP doesn't match newDstIP")
	}
}
