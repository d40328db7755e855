// Package pipeline drives the per-frame processing loop: parse, admit or
// look up a flow, update its RTT estimator, rewrite and recompute
// checksums, refresh the flow's timer, and forward. It is grounded on the
// teacher's collector.Run/collectDefaultNamespace shape — accumulate work
// over one pass per tick — generalized from "collect diag messages" to
// "process and forward buffers", with the per-buffer control flow taken
// from the original plugin's node function.
package pipeline

import (
	"time"

	"github.com/mami-project/latencynode/internal/flow"
	"github.com/mami-project/latencynode/internal/metrics"
	"github.com/mami-project/latencynode/internal/rewrite"
	"github.com/mami-project/latencynode/internal/rtt"
	"github.com/mami-project/latencynode/internal/timerwheel"
	"github.com/mami-project/latencynode/internal/trace"
	"github.com/mami-project/latencynode/internal/wire"
)

// Buffer is one packet handed to the driver. Data is the full IPv4
// datagram, from the IPv4 header onward; the driver never resizes it,
// only mutates fields in place. Traced requests a trace record for this
// buffer, mirroring the host pipeline's per-buffer IS_TRACED flag.
type Buffer struct {
	Data   []byte
	Traced bool
}

// Driver is a single worker's view of the system: its own flow table,
// flow store, and timer wheel, per the per-worker-sharded concurrency
// model. A Driver is not safe for concurrent use by multiple goroutines;
// run one per worker.
type Driver struct {
	cfg   Config
	table *flow.Table
	store *flow.Store
	wheel *timerwheel.Wheel

	start   time.Time
	samples chan<- rtt.Sample
	traces  chan<- string
}

// NewDriver returns a Driver ready to process frames. samples and traces
// may be nil if the caller doesn't want RTT samples or trace strings
// delivered anywhere.
func NewDriver(cfg Config, samples chan<- rtt.Sample, traces chan<- string) *Driver {
	capacity := cfg.FlowCapacity
	if capacity <= 0 {
		capacity = 4096
	}
	return &Driver{
		cfg:     cfg,
		table:   flow.NewTable(),
		store:   flow.NewStore(capacity),
		wheel:   timerwheel.New(),
		samples: samples,
		traces:  traces,
	}
}

// ProcessFrame processes every buffer in frame, in order, advancing the
// timer wheel once before each one — matching the original plugin's
// per-iteration expire_timers call. It never drops a buffer: every buffer
// in frame is left ready for the caller to forward to its single egress
// sink, whether or not this driver did anything to it.
func (d *Driver) ProcessFrame(now time.Time, frame []*Buffer) {
	if d.start.IsZero() {
		d.start = now
	}
	for _, b := range frame {
		d.expireTimers(now)
		d.processBuffer(now, b)
	}
}

func (d *Driver) expireTimers(now time.Time) {
	elapsed := now.Sub(d.start)
	for _, idx := range d.wheel.ExpireNow(elapsed) {
		d.destroyFlow(idx)
	}
}

func (d *Driver) destroyFlow(idx int) {
	f, ok := d.store.Get(idx)
	if !ok {
		return
	}
	d.table.Remove(f.Key)
	d.table.Remove(f.KeyReverse)
	d.store.Destroy(idx)
	metrics.FlowsExpired.Inc()
	metrics.FlowTableSizeGauge.Set(float64(d.table.Len()))
}

// lookupOrAdmit resolves a packet to a flow. It first tries key, which
// matches an existing flow only if this packet is itself the forward
// leg (or a repeat of it); then revLookupKey, which matches an existing
// flow's reverse leg. Only if neither matches does it attempt admission,
// registering the new flow under key and the key mkReverse builds from
// the chosen rewrite target. It declines admission, returning ok=false,
// when the destination port has no lookup_dst entry.
func (d *Driver) lookupOrAdmit(key, revLookupKey flow.Key, mkReverse func(newDstIP uint32) flow.Key, dstPort uint16, kind flow.Kind, srcIP uint32, srcPort uint16) (f *flow.Flow, isNew bool, ok bool) {
	if idx, found := d.table.Get(key); found {
		f, ok = d.store.Get(idx)
		return f, false, ok
	}
	if idx, found := d.table.Get(revLookupKey); found {
		f, ok = d.store.Get(idx)
		return f, false, ok
	}

	newDst, ok := d.cfg.LookupDst(dstPort)
	if !ok {
		return nil, false, false
	}

	idx := d.store.Create(kind)
	f, _ = d.store.Get(idx)
	f.Key = key
	f.InitSrcIP = srcIP
	f.InitSrcPort = srcPort
	f.NewDstIP = newDst
	f.PktCount = 1

	d.table.Insert(key, idx)
	revKey := mkReverse(newDst)
	f.KeyReverse = revKey
	d.table.Insert(revKey, idx)

	d.wheel.Start(idx, timerwheel.DefaultTimeout)
	metrics.FlowsAdmitted.Inc()
	metrics.FlowTableSizeGauge.Set(float64(d.table.Len()))
	return f, true, true
}

func (d *Driver) processBuffer(now time.Time, b *Buffer) {
	c := wire.NewCursor(b.Data)
	ip, ok := wire.ParseIPv4(&c)
	if !ok {
		return
	}

	transportStart := c.Pos()

	switch ip.Protocol {
	case wire.ProtoUDP:
		d.processUDP(now, &c, ip, transportStart, b)
	case wire.ProtoTCP:
		d.processTCP(now, &c, ip, transportStart, b)
	default:
		// Unsupported transport protocol; forward unmodified.
	}
}

func (d *Driver) processUDP(now time.Time, c *wire.Cursor, ip wire.IPv4Header, transportStart int, b *Buffer) {
	udp, ok := wire.ParseUDP(c)
	if !ok {
		return
	}

	if udp.IsQUICPort(d.cfg.QUICPort) && c.Remaining() >= wire.SizeQUICMin {
		d.processQUIC(now, c, ip, udp, transportStart, b)
		return
	}
	d.processPLUS(now, c, ip, udp, transportStart, b)
}

func (d *Driver) processQUIC(now time.Time, c *wire.Cursor, ip wire.IPv4Header, udp wire.UDPHeader, transportStart int, b *Buffer) {
	q, ok := wire.ParseQUIC(c)
	if !ok {
		return
	}
	spinByte, ok := c.Advance(1)
	if !ok {
		return
	}
	spin := spinByte[0]

	key := flow.MakeKey(ip.SrcIP, ip.DstIP, udp.SrcPort, udp.DstPort, ip.Protocol)
	revLookup := flow.ReverseLookupKey(ip.SrcIP, udp.SrcPort, udp.DstPort, ip.Protocol)
	mkReverse := func(newDst uint32) flow.Key {
		return flow.MakeReverseKey(newDst, udp.SrcPort, udp.DstPort, ip.Protocol)
	}
	f, isNew, ok := d.lookupOrAdmit(key, revLookup, mkReverse, udp.DstPort, flow.KindQUIC, ip.SrcIP, udp.SrcPort)
	if !ok {
		return
	}
	metrics.PacketsProcessed.WithLabelValues("quic").Inc()

	forward := f.IsForward(ip.SrcIP, udp.SrcPort)
	samples := rtt.UpdateQUIC(&f.QUIC, f.Index, forward, q.ConnectionID, q.HasConnID, spin, q.PacketNumber, now)

	d.finishPacket(now, &ip, f, isNew, forward, udp.SrcPort, udp.DstPort, samples, b, func() {
		udp.SetChecksum(0)
		cs := rewrite.TransportChecksum(ip.SrcIP, ip.DstIP, ip.Protocol, b.Data[transportStart:])
		udp.SetChecksum(cs)
	})
}

func (d *Driver) processPLUS(now time.Time, c *wire.Cursor, ip wire.IPv4Header, udp wire.UDPHeader, transportStart int, b *Buffer) {
	p, ok := wire.ParsePLUS(c)
	if !ok {
		return
	}

	key := flow.MakePlusKey(ip.SrcIP, ip.DstIP, udp.SrcPort, udp.DstPort, ip.Protocol, p.CAT)
	revLookup := flow.PlusReverseLookupKey(ip.SrcIP, udp.SrcPort, udp.DstPort, ip.Protocol, p.CAT)
	mkReverse := func(newDst uint32) flow.Key {
		return flow.MakePlusReverseKey(newDst, udp.SrcPort, udp.DstPort, ip.Protocol, p.CAT)
	}
	f, isNew, ok := d.lookupOrAdmit(key, revLookup, mkReverse, udp.DstPort, flow.KindPLUS, ip.SrcIP, udp.SrcPort)
	if !ok {
		return
	}
	metrics.PacketsProcessed.WithLabelValues("plus").Inc()

	forward := f.IsForward(ip.SrcIP, udp.SrcPort)
	samples := rtt.UpdatePLUS(&f.PLUS, f.Index, forward, p.PSN, p.PSE, p.CAT, now)

	if p.Extended {
		wire.ApplyHopCountExtension(c)
	}

	d.finishPacket(now, &ip, f, isNew, forward, udp.SrcPort, udp.DstPort, samples, b, func() {
		udp.SetChecksum(0)
		cs := rewrite.TransportChecksum(ip.SrcIP, ip.DstIP, ip.Protocol, b.Data[transportStart:])
		udp.SetChecksum(cs)
	})
}

func (d *Driver) processTCP(now time.Time, c *wire.Cursor, ip wire.IPv4Header, transportStart int, b *Buffer) {
	tcp, ok := wire.ParseTCP(c)
	if !ok {
		return
	}
	optLen, ok := tcp.OptionsLen()
	if !ok {
		return
	}
	opts, ok := c.Advance(optLen)
	if !ok {
		return
	}
	ts, ok := wire.ParseTCPOptions(opts)
	if !ok {
		return
	}

	synAck := tcp.SYN() && tcp.ACK()
	vec := tcp.VEC()

	key := flow.MakeKey(ip.SrcIP, ip.DstIP, tcp.SrcPort, tcp.DstPort, ip.Protocol)
	revLookup := flow.ReverseLookupKey(ip.SrcIP, tcp.SrcPort, tcp.DstPort, ip.Protocol)
	mkReverse := func(newDst uint32) flow.Key {
		return flow.MakeReverseKey(newDst, tcp.SrcPort, tcp.DstPort, ip.Protocol)
	}
	f, isNew, ok := d.lookupOrAdmit(key, revLookup, mkReverse, tcp.DstPort, flow.KindTCP, ip.SrcIP, tcp.SrcPort)
	if !ok {
		return
	}
	metrics.PacketsProcessed.WithLabelValues("tcp").Inc()

	forward := f.IsForward(ip.SrcIP, tcp.SrcPort)
	samples := rtt.UpdateTCP(&f.TCP, f.Index, forward, vec, synAck, ts, tcp.SYN(), tcp.SeqNum, tcp.AckNum, now)

	d.finishPacket(now, &ip, f, isNew, forward, tcp.SrcPort, tcp.DstPort, samples, b, func() {
		tcp.SetChecksum(0)
		cs := rewrite.TransportChecksum(ip.SrcIP, ip.DstIP, ip.Protocol, b.Data[transportStart:])
		tcp.SetChecksum(cs)
	})
}

// finishPacket applies the steps common to every protocol branch once a
// flow has been resolved: bump pkt_count on repeat observations, emit any
// RTT samples, rewrite addressing, recompute checksums, refresh the timer,
// and emit a trace. recomputeTransportChecksum is supplied by the caller
// because the transport header type (UDP vs TCP) differs.
func (d *Driver) finishPacket(now time.Time, ip *wire.IPv4Header, f *flow.Flow, isNew, forward bool, srcPort, dstPort uint16, samples []rtt.Sample, b *Buffer, recomputeTransportChecksum func()) {
	if !isNew {
		f.PktCount++
	}

	for _, s := range samples {
		metrics.RTTSamplesHistogram.WithLabelValues(s.Kind, s.Method).Observe(s.RTT.Seconds())
		if d.samples != nil {
			d.samples <- s
		}
	}

	if !rewrite.NATTranslate(ip, forward, f.InitSrcIP, f.NewDstIP) {
		// NAT consistency failure: forward unmodified, no checksum
		// recompute, no timer refresh, no trace.
		return
	}

	recomputeTransportChecksum()
	ip.SetChecksum(0)
	ip.SetChecksum(rewrite.IPv4HeaderChecksum(ip.Bytes()))

	if f.State == flow.StateActive {
		d.wheel.Update(f.Index, timerwheel.DefaultTimeout)
	}

	if b.Traced && d.traces != nil {
		d.traces <- trace.Format(trace.Record{
			SrcPort:  srcPort,
			DstPort:  dstPort,
			NewSrcIP: ip.SrcIP,
			NewDstIP: ip.DstIP,
			Kind:     f.Kind.String(),
			PktCount: f.PktCount,
		})
	}
}
