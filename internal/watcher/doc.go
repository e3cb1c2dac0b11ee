// Package watcher reports filesystem changes to registered callbacks.
//
// The Watcher API is safe for concurrent use and delivers best-effort events:
// bursts on one path are coalesced by the debounce window, and callbacks run
// on a timer goroutine. Use them to trigger a reload rather than to track
// exact operations.
package watcher
