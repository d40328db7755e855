package flow

// Store is a densely indexed pool of Flow records. Index is the stable
// handle a Flow keeps for its lifetime; Destroy returns a slot to a
// freelist for reuse by a later Create, so a long-running node with many
// short flows does not grow the backing slice without bound. Grounded on
// the teacher's INET_DIAG_MAX-bounded, pre-sized attribute arrays: bound,
// preallocate, reuse, rather than allocate-per-record.
type Store struct {
	slots []Flow
	live  []bool
	free  []int // stack of reusable indices
}

// NewStore returns an empty Store pre-sized to hold capacity flows without
// reallocating.
func NewStore(capacity int) *Store {
	return &Store{
		slots: make([]Flow, 0, capacity),
		live:  make([]bool, 0, capacity),
	}
}

// Create allocates a new Flow of the given kind and returns its stable
// index. It reuses a freed slot when one is available.
func (s *Store) Create(kind Kind) int {
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[idx] = Flow{Index: idx, Kind: kind, TimerHandle: -1}
		s.live[idx] = true
		return idx
	}
	idx := len(s.slots)
	s.slots = append(s.slots, Flow{Index: idx, Kind: kind, TimerHandle: -1})
	s.live = append(s.live, true)
	return idx
}

// Get returns a pointer to the flow at index. The second return value is
// false if the index is out of range or its slot has been destroyed.
func (s *Store) Get(index int) (*Flow, bool) {
	if index < 0 || index >= len(s.slots) || !s.live[index] {
		return nil, false
	}
	return &s.slots[index], true
}

// Destroy frees the slot at index, making it available for reuse. It is a
// no-op if the index is already free or out of range.
func (s *Store) Destroy(index int) {
	if index < 0 || index >= len(s.slots) || !s.live[index] {
		return
	}
	s.live[index] = false
	s.free = append(s.free, index)
}

// Len reports the number of live flows currently held.
func (s *Store) Len() int {
	n := 0
	for _, v := range s.live {
		if v {
			n++
		}
	}
	return n
}
