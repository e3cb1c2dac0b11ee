package logging

import (
	"sync"

	"tracked/internal/event"
)

const defaultSubscriberBuffer = 256

// LogHub fans entries out to channel subscribers. The notifier it wraps is
// single-threaded, so every access goes through mu.
type LogHub struct {
	mu       sync.Mutex
	entries  *event.Notifier1[*LogHub, LogEntry]
	trigger  *event.Trigger1[*LogHub, LogEntry]
	channels map[*channelListener]struct{}
	closed   bool
}

type channelListener struct {
	ch chan LogEntry
}

func (c *channelListener) HandleEvent(_ *LogHub, entry LogEntry) {
	select {
	case c.ch <- entry:
	default:
	}
}

func NewLogHub() *LogHub {
	hub := &LogHub{
		channels: make(map[*channelListener]struct{}),
	}
	hub.entries, hub.trigger = event.New1[*LogHub, LogEntry](hub)
	return hub
}

func (h *LogHub) Subscribe(buffer int) (<-chan LogEntry, func()) {
	if h == nil {
		return nil, func() {}
	}
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		ch := make(chan LogEntry)
		close(ch)
		return ch, func() {}
	}
	listener := &channelListener{ch: make(chan LogEntry, buffer)}
	h.channels[listener] = struct{}{}
	h.entries.Subscribe(listener)
	return listener.ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.channels[listener]; ok {
			delete(h.channels, listener)
			h.entries.Unsubscribe(listener)
			close(listener.ch)
		}
	}
}

func (h *LogHub) Broadcast(entry LogEntry) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.trigger.Invoke(entry)
}

// Subscribers reports how many channels are attached.
func (h *LogHub) Subscribers() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries.SubscriberCount()
}

func (h *LogHub) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.trigger.Dispose()
	for listener := range h.channels {
		delete(h.channels, listener)
		close(listener.ch)
	}
}
