package sample

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/mami-project/latencynode/internal/rtt"
)

func TestBroadcasterDeliversSampleToClient(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "broadcast.sock")
	b := NewBroadcaster(sock)
	if err := b.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- b.Serve(ctx) }()

	conn, err := net.Dial("unix", sock)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// Give Serve's accept loop a moment to register the client before we
	// publish a sample; Record itself is non-blocking so there is no
	// synchronization point to wait on otherwise.
	time.Sleep(20 * time.Millisecond)

	want := rtt.Sample{FlowIndex: 3, Kind: "TCP", Method: "handshake", RTT: 12 * time.Millisecond}
	b.Record(want)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		t.Fatalf("expected a line from the broadcaster, scan error: %v", scanner.Err())
	}

	var got rtt.Sample
	if err := json.Unmarshal(scanner.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.FlowIndex != want.FlowIndex || got.Kind != want.Kind || got.Method != want.Method {
		t.Errorf("got %+v, want %+v", got, want)
	}

	cancel()
	<-serveErr
}
