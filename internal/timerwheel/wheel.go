// Package timerwheel implements a hashed timer wheel keyed by 100ms
// ticks, used to expire flow records that have gone quiet. It is grounded
// on the teacher's collector.Run poll loop — a fixed-period ticker driving
// a bounded pass over live state — generalized from "poll the kernel" to
// "advance a clock and sweep expired entries".
package timerwheel

import "time"

// TickDuration is the wheel's resolution: one bucket per 100ms.
const TickDuration = 100 * time.Millisecond

// DefaultTimeout is the default per-flow idle timeout, in ticks (30s).
const DefaultTimeout = 300

// numBuckets bounds how far into the future a deadline can be scheduled
// without wrapping into an already-passed bucket. It must exceed the
// longest timeout this wheel is asked to schedule.
const numBuckets = DefaultTimeout * 2

type node struct {
	id       int
	deadline int64 // absolute tick
	prev     *node
	next     *node
}

// Wheel schedules a single timer per id (the flow's store index) and
// expires ids whose deadline has passed. It is not safe for concurrent
// use; the pipeline driver owns one wheel per worker.
type Wheel struct {
	buckets   []*node // each is the head of a doubly linked ring for that bucket
	byID      map[int]*node
	now       int64 // current absolute tick
}

// New returns an empty Wheel with its clock at tick 0.
func New() *Wheel {
	return &Wheel{
		buckets: make([]*node, numBuckets),
		byID:    make(map[int]*node, 1024),
	}
}

func (w *Wheel) bucketIndex(deadline int64) int {
	return int(deadline % numBuckets)
}

func (w *Wheel) unlink(n *node) {
	idx := w.bucketIndex(n.deadline)
	if n.next == n {
		w.buckets[idx] = nil
	} else {
		n.prev.next = n.next
		n.next.prev = n.prev
		if w.buckets[idx] == n {
			w.buckets[idx] = n.next
		}
	}
	n.next, n.prev = nil, nil
}

func (w *Wheel) link(n *node) {
	idx := w.bucketIndex(n.deadline)
	head := w.buckets[idx]
	if head == nil {
		n.next, n.prev = n, n
		w.buckets[idx] = n
		return
	}
	tail := head.prev
	n.next = head
	n.prev = tail
	tail.next = n
	head.prev = n
}

// Start schedules id to expire after the given number of ticks from the
// wheel's current clock. If id already has a timer running, it is
// rescheduled (equivalent to calling Update).
func (w *Wheel) Start(id int, ticks int) {
	w.Update(id, ticks)
}

// Update reschedules id's deadline to ticks ticks from now, creating the
// timer if it does not already exist.
func (w *Wheel) Update(id int, ticks int) {
	if n, ok := w.byID[id]; ok {
		w.unlink(n)
		n.deadline = w.now + int64(ticks)
		w.link(n)
		return
	}
	n := &node{id: id, deadline: w.now + int64(ticks)}
	w.byID[id] = n
	w.link(n)
}

// Remove cancels id's timer, if any. Used when a flow is destroyed by
// something other than expiry.
func (w *Wheel) Remove(id int) {
	n, ok := w.byID[id]
	if !ok {
		return
	}
	w.unlink(n)
	delete(w.byID, id)
}

// ExpireNow advances the wheel's clock to match elapsed, a monotonic
// duration measured from the wheel's tick 0 (not from the previous call;
// an elapsed at or before the current tick is a no-op), and returns the
// ids of every timer whose deadline is now at or before the current tick.
// Advancing by more than numBuckets ticks in a single call is still safe:
// every bucket is swept in order.
func (w *Wheel) ExpireNow(elapsed time.Duration) []int {
	target := int64(elapsed / TickDuration)
	if target <= w.now {
		return nil
	}
	var expired []int
	for w.now < target {
		w.now++
		idx := w.bucketIndex(w.now)
		head := w.buckets[idx]
		if head == nil {
			continue
		}
		// Snapshot the ring before unlinking anything: unlink can move or
		// clear buckets[idx] and always drops the unlinked node's own
		// next/prev, so walking live .next pointers while mutating the
		// ring loses track of where it started (or revisits a freed
		// node). Entries scheduled for a later wrap of the same bucket
		// slot are distinguished by deadline, not presence.
		nodes := make([]*node, 0, 4)
		nodes = append(nodes, head)
		for n := head.next; n != head; n = n.next {
			nodes = append(nodes, n)
		}
		for _, n := range nodes {
			if n.deadline <= w.now {
				expired = append(expired, n.id)
				w.unlink(n)
				delete(w.byID, n.id)
			}
		}
	}
	return expired
}

// Now returns the wheel's current absolute tick.
func (w *Wheel) Now() int64 {
	return w.now
}
