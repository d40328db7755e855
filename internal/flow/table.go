package flow

import "sync"

// Table is a concurrent-safe map from Key to a flow's store index, modeled
// on the teacher's Cache: a plain map guarded by a mutex rather than a
// lock-free structure, since lookups happen once per packet, not in a
// tight per-byte loop. Unlike Cache's two-generation current/previous
// pair, Table keeps a single live map — eviction here is driven by the
// timer wheel's explicit destroy, not by a polling generation boundary.
type Table struct {
	mu   sync.RWMutex
	byKey map[Key]int
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{byKey: make(map[Key]int, 1024)}
}

// Get returns the store index registered for key, if any.
func (t *Table) Get(key Key) (index int, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	index, ok = t.byKey[key]
	return index, ok
}

// Insert registers key as mapping to index, overwriting any prior
// registration for that key.
func (t *Table) Insert(key Key, index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byKey[key] = index
}

// Remove deletes key's registration, if any.
func (t *Table) Remove(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byKey, key)
}

// Len reports the number of registered keys. Since every admitted flow
// registers both its forward and reverse key, this is ordinarily twice
// the live flow count.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byKey)
}
