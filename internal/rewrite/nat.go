package rewrite

import "github.com/mami-project/latencynode/internal/wire"

// NATTranslate rewrites ip's destination address: on a forward packet
// (forward == true) the destination is set to newDstIP, the rewrite
// target chosen at admission; on a reverse packet the destination is set
// back to initSrcIP, undoing the forward rewrite so the reply reaches the
// original initiator unchanged. It mirrors the original plugin's
// ip_nat_translation contract: it returns false, leaving ip untouched,
// when the packet's current addressing is inconsistent with the flow's
// recorded endpoints — a forward packet not actually from initSrcIP, or a
// reverse packet not actually addressed to newDstIP — and the caller
// forwards the packet unmodified rather than mutate it.
func NATTranslate(ip *wire.IPv4Header, forward bool, initSrcIP, newDstIP uint32) bool {
	if forward {
		if ip.SrcIP != initSrcIP {
			return false
		}
		ip.SetDstIP(newDstIP)
		return true
	}
	if ip.DstIP != newDstIP {
		return false
	}
	ip.SetDstIP(initSrcIP)
	return true
}
