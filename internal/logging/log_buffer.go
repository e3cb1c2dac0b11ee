package logging

import (
	"sync"

	"tracked/internal/buffer"
)

// LogBuffer keeps the most recent entries for inspection after the fact.
type LogBuffer struct {
	mu      sync.Mutex
	entries *buffer.Ring[LogEntry]
	dropped uint64
}

func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{
		entries: buffer.NewRing[LogEntry](size),
	}
}

func (b *LogBuffer) Add(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.entries == nil {
		return
	}
	if b.entries.Add(entry) {
		b.dropped++
	}
}

func (b *LogBuffer) List() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.entries.List()
}

// Tail returns up to n of the newest entries, oldest first.
func (b *LogBuffer) Tail(n int) []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.entries.Tail(n)
}

// Dropped reports how many entries were evicted to make room.
func (b *LogBuffer) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.dropped
}
