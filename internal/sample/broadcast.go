package sample

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/mami-project/latencynode/internal/rtt"
)

// Broadcaster serves RTT samples as JSONL over a Unix domain socket to
// any number of connected listeners, modeled directly on the teacher's
// eventsocket.Server — a client registry guarded by a mutex, one
// goroutine draining an internal channel and fanning each message out to
// every registered connection, repurposed here from TCP open/close
// events to RTT sample events.
type Broadcaster struct {
	sampleC      chan rtt.Sample
	filename     string
	clients      map[net.Conn]struct{}
	unixListener net.Listener
	mutex        sync.Mutex
	servingWG    sync.WaitGroup
}

// NewBroadcaster returns a Broadcaster that will listen on filename once
// Listen is called.
func NewBroadcaster(filename string) *Broadcaster {
	return &Broadcaster{
		sampleC:  make(chan rtt.Sample, 1024),
		filename: filename,
		clients:  make(map[net.Conn]struct{}),
	}
}

// Record implements Sink by queuing s for delivery to connected clients.
func (b *Broadcaster) Record(s rtt.Sample) {
	b.sampleC <- s
}

func (b *Broadcaster) addClient(c net.Conn) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.clients[c] = struct{}{}
}

func (b *Broadcaster) removeClient(c net.Conn) {
	b.servingWG.Add(1)
	defer b.servingWG.Done()
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if _, ok := b.clients[c]; !ok {
		return
	}
	delete(b.clients, c)
}

func (b *Broadcaster) sendToAllListeners(data string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for c := range b.clients {
		if _, err := fmt.Fprintln(c, data); err != nil {
			log.Println("latencytop broadcast: write to client", c, "failed:", err, "- removing")
			go b.removeClient(c)
			go c.Close()
		}
	}
}

func (b *Broadcaster) notify(ctx context.Context) {
	b.servingWG.Add(1)
	defer b.servingWG.Done()
	for ctx.Err() == nil {
		s, ok := <-b.sampleC
		if !ok {
			return
		}
		out, err := json.Marshal(s)
		if err != nil {
			log.Println("latencytop broadcast: marshal failed:", err)
			continue
		}
		b.sendToAllListeners(string(out))
	}
}

// Listen binds the Unix socket. It must be called before Serve.
func (b *Broadcaster) Listen() error {
	b.servingWG.Add(1)
	var err error
	b.unixListener, err = net.Listen("unix", b.filename)
	return err
}

// Serve accepts connections and fans samples out to them until ctx is
// canceled. It should run in its own goroutine.
func (b *Broadcaster) Serve(ctx context.Context) error {
	defer b.servingWG.Done()
	derivedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go b.notify(derivedCtx)

	b.servingWG.Add(1)
	go func() {
		<-derivedCtx.Done()
		b.unixListener.Close()
		close(b.sampleC)
		b.servingWG.Done()
	}()

	var err error
	for derivedCtx.Err() == nil {
		var conn net.Conn
		conn, err = b.unixListener.Accept()
		if err != nil {
			log.Printf("latencytop broadcast: accept on %q failed: %s\n", b.filename, err)
			break
		}
		b.addClient(conn)
	}
	return err
}
