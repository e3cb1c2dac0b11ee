// Package resource loads data files and keeps them current while the
// program runs.
//
// A File decodes one file into a typed snapshot. Every successful reload
// with new content publishes a fresh *Snapshot through Current, marks the
// file Ready, and invokes Refreshed. A failed reload is logged and keeps the
// previous snapshot, so a resource that has loaded once always has data to
// serve.
//
// A Manager owns the files under one directory and reloads them when the
// filesystem watcher reports a change, with periodic polling as a fallback.
package resource
