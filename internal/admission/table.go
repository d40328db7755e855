// Package admission implements the lookup_dst oracle: a mapping from a
// packet's destination port to the address new flows for that port
// should be rewritten to. The mapping is populated from a CSV file using
// the same gocsv struct-tag convention the teacher uses for its own
// record marshalling.
package admission

import (
	"encoding/binary"
	"fmt"
	"net"
	"os"

	"github.com/gocarina/gocsv"
)

// Entry is one row of the destination table CSV: a port and the dotted
// IPv4 address new flows for that port are rewritten to.
type Entry struct {
	Port int    `csv:"port"`
	Addr string `csv:"addr"`
}

// Table is an in-memory lookup_dst oracle, keyed by destination port.
type Table struct {
	byPort map[uint16]uint32
}

// Load reads a destination table from a CSV file with "port,addr"
// columns and returns a Table ready to drive Config.LookupDst.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("admission: opening %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	if err := gocsv.Unmarshal(f, &entries); err != nil {
		return nil, fmt.Errorf("admission: parsing %s: %w", path, err)
	}

	t := &Table{byPort: make(map[uint16]uint32, len(entries))}
	for _, e := range entries {
		ip := net.ParseIP(e.Addr).To4()
		if ip == nil {
			return nil, fmt.Errorf("admission: entry for port %d has invalid address %q", e.Port, e.Addr)
		}
		t.byPort[uint16(e.Port)] = binary.BigEndian.Uint32(ip)
	}
	return t, nil
}

// NewFromMap builds a Table directly from a port->address map, bypassing
// CSV loading; useful for tests and for synthetic configuration.
func NewFromMap(m map[uint16]uint32) *Table {
	byPort := make(map[uint16]uint32, len(m))
	for k, v := range m {
		byPort[k] = v
	}
	return &Table{byPort: byPort}
}

// Lookup implements the lookup_dst oracle contract: given a destination
// port, it returns the rewrite target IP, or ok=false if the port has no
// entry.
func (t *Table) Lookup(dstPort uint16) (newDstIP uint32, ok bool) {
	newDstIP, ok = t.byPort[dstPort]
	return newDstIP, ok
}
