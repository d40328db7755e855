// Command latencytop is a terminal dashboard showing live flows and
// their most recent RTT estimate, read from a latencynode broadcast
// socket.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mami-project/latencynode/internal/rtt"
	"github.com/mami-project/latencynode/internal/tui"
)

func main() {
	socketPath := flag.String("socket", "/tmp/latencynode.sock", "Unix socket a running latencynode is broadcasting samples on")
	flag.Parse()

	logFile, err := os.CreateTemp("", "latencytop-*.log")
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	samples := make(chan rtt.Sample, 256)
	go readSamples(*socketPath, samples)

	model := tui.New(samples)
	prog := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := prog.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "latencytop: %v\n", err)
		os.Exit(1)
	}
}

// readSamples dials the broadcast socket and decodes one JSON sample per
// line, forwarding each to out. It returns only when the dial fails or
// the connection ends, and then closes out so the UI's WaitForSample
// command sees tea.Quit.
func readSamples(socketPath string, out chan<- rtt.Sample) {
	defer close(out)

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		log.Println("latencytop: dial", socketPath, "failed:", err)
		return
	}
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var s rtt.Sample
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			log.Println("latencytop: malformed sample:", err)
			continue
		}
		out <- s
	}
	if err := scanner.Err(); err != nil {
		log.Println("latencytop: connection error:", err)
	}
}
