package core

import "sync"

// DefaultLogLines is the serial log ring capacity and the most lines any
// snapshot of it will return.
const DefaultLogLines = 50

// LogBuffer is a fixed-capacity FIFO ring of raw serial lines kept for the
// dashboard. Oldest lines are evicted on write once the ring is full, so
// memory stays bounded no matter how chatty the controller is.
type LogBuffer struct {
	mu       sync.RWMutex
	buf      []string
	capacity int
	head     int // next write position
	count    int
}

// NewLogBuffer creates an empty ring holding at most capacity lines.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = DefaultLogLines
	}
	return &LogBuffer{buf: make([]string, capacity), capacity: capacity}
}

// Append stores one line, evicting the oldest when full.
func (b *LogBuffer) Append(line string) {
	b.mu.Lock()
	b.buf[b.head] = line
	b.head = (b.head + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
	b.mu.Unlock()
}

// Tail returns up to limit of the most recent lines in arrival order.
// limit <= 0 means everything currently buffered.
func (b *LogBuffer) Tail(limit int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := b.count
	if limit > 0 && limit < n {
		n = limit
	}
	if n == 0 {
		return nil
	}
	out := make([]string, n)
	start := (b.head - n + b.capacity) % b.capacity
	for i := 0; i < n; i++ {
		out[i] = b.buf[(start+i)%b.capacity]
	}
	return out
}

// Len reports how many lines are currently buffered.
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}
