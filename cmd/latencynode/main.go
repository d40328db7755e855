// Command latencynode runs the transparent RTT-measurement node: it
// captures IPv4 traffic on an interface, measures per-flow round-trip
// time from TCP/QUIC/PLUS signals, rewrites and forwards every packet,
// and reports samples to a CSV file and a JSONL broadcast socket.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"

	"github.com/mami-project/latencynode/internal/admission"
	"github.com/mami-project/latencynode/internal/capture"
	"github.com/mami-project/latencynode/internal/pipeline"
	"github.com/mami-project/latencynode/internal/rtt"
	"github.com/mami-project/latencynode/internal/sample"
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

var (
	iface        = flag.String("iface", "eth0", "Interface to capture IPv4 traffic on")
	promPort     = flag.String("prom", ":9090", "Prometheus metrics export address and port")
	destTable    = flag.String("dest-table", "", "CSV file of port,addr rows driving the admission oracle")
	quicPort     = flag.Uint("quic-port", 4433, "UDP port used to detect QUIC traffic")
	csvOut       = flag.String("csv-out", "samples.csv", "File to flush RTT samples to on shutdown")
	socketPath   = flag.String("socket", "", "Unix socket path to broadcast RTT samples on; empty disables it")
	frameSize    = flag.Int("frame-size", 64, "Maximum number of buffers per processed frame")
	flowCapacity = flag.Int("flow-capacity", 16384, "Initial flow table capacity")

	ctx, cancel = context.WithCancel(context.Background())
)

func main() {
	flag.Parse()
	flagx.ArgsFromEnv(flag.CommandLine)

	promSrv := prometheusx.MustStartPrometheus(*promPort)
	defer promSrv.Shutdown(ctx)

	destTab, err := admission.Load(*destTable)
	rtx.Must(err, "Could not load destination table from %s", *destTable)

	samples := make(chan rtt.Sample, 4096)
	csvSink := sample.NewCSVWriter(*csvOut)
	sinks := []sample.Sink{csvSink}

	if *socketPath != "" {
		bcast := sample.NewBroadcaster(*socketPath)
		rtx.Must(bcast.Listen(), "Could not listen on %s", *socketPath)
		go bcast.Serve(ctx)
		defer os.Remove(*socketPath)
		sinks = append(sinks, bcast)
	}

	fanout := sample.NewFanout(sinks...)
	go fanout.Run(samples)

	cfg := pipeline.Config{
		QUICPort:     uint16(*quicPort),
		LookupDst:    destTab.Lookup,
		FlowCapacity: *flowCapacity,
	}
	driver := pipeline.NewDriver(cfg, samples, nil)

	sock, err := capture.Open(*iface)
	rtx.Must(err, "Could not open capture socket on %s", *iface)
	defer sock.Close()

	go runCaptureLoop(sock, driver)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	cancel()
	rtx.Must(csvSink.Flush(), "Could not flush RTT samples to %s", *csvOut)
}

// runCaptureLoop reads Ethernet frames in batches, hands their IPv4
// payload to the driver one frame at a time, and writes each frame back
// out — the driver's in-place rewrites are visible in the same backing
// array capture.IPv4Payload returned.
func runCaptureLoop(sock *capture.Socket, driver *pipeline.Driver) {
	raw := make([][]byte, *frameSize)
	for i := range raw {
		raw[i] = make([]byte, 65536)
	}

	for {
		frame := make([]*pipeline.Buffer, 0, *frameSize)
		lens := make([]int, 0, *frameSize)

		for len(frame) < *frameSize {
			n, err := sock.ReadFrame(raw[len(frame)])
			if err != nil {
				log.Println("latencynode: capture read failed:", err)
				break
			}
			if n == 0 {
				break
			}
			payload, ok := capture.IPv4Payload(raw[len(frame)][:n])
			if !ok {
				continue
			}
			frame = append(frame, &pipeline.Buffer{Data: payload})
			lens = append(lens, n)
		}

		if len(frame) == 0 {
			continue
		}

		driver.ProcessFrame(time.Now(), frame)

		for i := range frame {
			if err := sock.WriteFrame(raw[i][:lens[i]]); err != nil {
				log.Println("latencynode: capture write failed:", err)
			}
		}
	}
}
