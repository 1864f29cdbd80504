package stream

import "sync"

// History is a fixed-capacity ring buffer holding the most recent events in
// insertion order. Its content is always a contiguous suffix of the global
// event sequence: recording beyond capacity evicts the oldest entry, never
// reorders, never leaves gaps.
//
// Lookup is by event identity rather than position so resume tokens stay
// meaningful to external clients across internal compaction. The linear scan
// is fine at the capacities this engine targets (hundreds to low thousands).
type History struct {
	mu    sync.RWMutex
	buf   []Event
	start int
	count int
}

// NewHistory creates a history retaining up to capacity events. A minimum
// capacity of 1 is enforced.
func NewHistory(capacity int) *History {
	return &History{buf: make([]Event, max(capacity, 1))}
}

// Record appends the event, evicting the oldest entry when full.
func (h *History) Record(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf[(h.start+h.count)%len(h.buf)] = e
	if h.count < len(h.buf) {
		h.count++
	} else {
		h.start = (h.start + 1) % len(h.buf)
	}
}

// SuffixAfter returns copies of all retained events strictly after the one
// with the given id, in insertion order. An id that was evicted, never
// existed, or matches the most recent event yields an empty suffix; that is
// the normal "too old to replay" or "fully caught up" outcome, not an error.
func (h *History) SuffixAfter(id string) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := range h.count {
		if h.buf[(h.start+i)%len(h.buf)].ID != id {
			continue
		}
		suffix := make([]Event, 0, h.count-i-1)
		for j := i + 1; j < h.count; j++ {
			suffix = append(suffix, h.buf[(h.start+j)%len(h.buf)])
		}
		return suffix
	}
	return nil
}

// LatestID returns the id of the most recently recorded event. The second
// return value is false when the history is empty.
func (h *History) LatestID() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 {
		return "", false
	}
	return h.buf[(h.start+h.count-1)%len(h.buf)].ID, true
}

// Size returns the number of events currently retained.
func (h *History) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Capacity returns the maximum number of retained events.
func (h *History) Capacity() int {
	return len(h.buf)
}
