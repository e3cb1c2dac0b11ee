package logging

import (
	"fmt"
	"sync"
	"testing"
)

func messages(entries []LogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Message)
	}
	return out
}

func TestLogBufferKeepsNewestEntries(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		added   []string
		want    []string
		dropped uint64
	}{
		{name: "under capacity", size: 3, added: []string{"one", "two"}, want: []string{"one", "two"}},
		{name: "wraps", size: 2, added: []string{"one", "two", "three"}, want: []string{"two", "three"}, dropped: 1},
		{name: "zero size holds one", size: 0, added: []string{"one", "two"}, want: []string{"two"}, dropped: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buffer := NewLogBuffer(tc.size)
			for _, message := range tc.added {
				buffer.Add(LogEntry{Message: message})
			}
			got := messages(buffer.List())
			if fmt.Sprint(got) != fmt.Sprint(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			if buffer.Dropped() != tc.dropped {
				t.Fatalf("expected %d dropped, got %d", tc.dropped, buffer.Dropped())
			}
		})
	}
}

func TestLogBufferTail(t *testing.T) {
	buffer := NewLogBuffer(4)
	for _, message := range []string{"a", "b", "c"} {
		buffer.Add(LogEntry{Message: message})
	}
	if got := messages(buffer.Tail(2)); fmt.Sprint(got) != "[b c]" {
		t.Fatalf("expected [b c], got %v", got)
	}
	if got := buffer.Tail(0); got != nil {
		t.Fatalf("expected nil tail, got %v", got)
	}
}

func TestLogBufferConcurrentAdds(t *testing.T) {
	buffer := NewLogBuffer(50)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				buffer.Add(LogEntry{Level: LevelDebug, Message: "tick"})
			}
		}()
	}
	wg.Wait()

	if got := len(buffer.List()); got != 50 {
		t.Fatalf("expected 50 entries, got %d", got)
	}
	if buffer.Dropped() != 150 {
		t.Fatalf("expected 150 dropped, got %d", buffer.Dropped())
	}
}
