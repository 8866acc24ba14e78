package proclog

import "sync"

const (
	// DefaultCapacity is the retention of the full process log.
	DefaultCapacity = 50
	// CompactCapacity is the retention of the compact monitor view.
	CompactCapacity = 20
)

// Buffer retains the most recent entries up to a fixed capacity, evicting
// the oldest first. Safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	cap     int
	entries []Entry
}

// NewBuffer creates a buffer with the given capacity. Non-positive
// capacities fall back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Buffer{cap: capacity}
}

// Append adds an entry, evicting the oldest when full.
func (b *Buffer) Append(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, e)
	if len(b.entries) > b.cap {
		b.entries = b.entries[len(b.entries)-b.cap:]
	}
}

// Entries returns a copy of the retained entries, oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)

	return out
}

// Len reports the number of retained entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.entries)
}

// Clear discards all retained entries.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = nil
}
