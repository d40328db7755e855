// Package capture implements the host side of the ingress/egress
// interface: an AF_PACKET raw socket that hands whole Ethernet frames to
// the pipeline and writes them back out once processed, standing in for
// the "ip4-lookup" sink a real forwarding plane would provide. Grounded
// on Spellinfo-sstop's packetCounter — an AF_PACKET SOCK_RAW socket with
// a receive-timeout so the read loop can be interrupted — generalized
// from "count bytes per flow" to "hand the frame to the pipeline and
// write it back".
package capture

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

const ethHeaderLen = 14

// Socket is a bound AF_PACKET raw socket on one interface.
type Socket struct {
	fd      int
	ifindex int
}

// Open binds a SOCK_RAW AF_PACKET socket to the named interface, filtered
// to IPv4 EtherType frames.
func Open(ifaceName string) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, htons(unix.ETH_P_IP))
	if err != nil {
		return nil, fmt.Errorf("capture: socket: %w", err)
	}

	iface, err := ifaceIndex(ifaceName)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	addr := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_IP),
		Ifindex:  iface,
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("capture: bind to %s: %w", ifaceName, err)
	}

	tv := unix.Timeval{Sec: 0, Usec: 200_000}
	unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
	unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, 4*1024*1024)

	return &Socket{fd: fd, ifindex: iface}, nil
}

func htons(v uint16) uint16 {
	return (v<<8)&0xff00 | v>>8
}

// ReadFrame reads one Ethernet frame into buf, returning the number of
// bytes read. A read that times out (no frame within the socket's
// SO_RCVTIMEO) returns n=0 and a nil error, so the caller's loop can check
// for shutdown between reads.
func (s *Socket) ReadFrame(buf []byte) (n int, err error) {
	n, _, err = unix.Recvfrom(s.fd, buf, 0)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0, nil
	}
	return n, err
}

// WriteFrame transmits a full Ethernet frame back out the bound
// interface.
func (s *Socket) WriteFrame(frame []byte) error {
	addr := &unix.SockaddrLinklayer{Ifindex: s.ifindex}
	return unix.Sendto(s.fd, frame, 0, addr)
}

// Close releases the underlying socket.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

// IPv4Payload returns the slice of frame following the fixed 14-byte
// Ethernet header, i.e. the IPv4 datagram the pipeline operates on. It
// shares the backing array with frame, so in-place rewrites the pipeline
// makes are visible when the same frame is later passed to WriteFrame.
func IPv4Payload(frame []byte) ([]byte, bool) {
	if len(frame) < ethHeaderLen {
		return nil, false
	}
	return frame[ethHeaderLen:], true
}

func ifaceIndex(name string) (int, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return 0, fmt.Errorf("capture: looking up interface %s: %w", name, err)
	}
	return iface.Index, nil
}
