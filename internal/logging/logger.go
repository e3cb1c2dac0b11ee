package logging

import (
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"tracked/internal/observable"
)

const DefaultBufferSize = 1000

// sink is shared by a logger and everything derived from it with With.
type sink struct {
	buffer *LogBuffer
	out    *log.Logger
	level  atomic.Pointer[Level]
	hub    *LogHub
	now    func() time.Time
}

type Logger struct {
	sink   *sink
	fields map[string]string
}

// NewLogger writes to stdout.
func NewLogger(buffer *LogBuffer, minLevel Level) *Logger {
	return NewLoggerWithOutput(buffer, minLevel, os.Stdout)
}

// NewLoggerWithOutput records entries in buffer and prints them to output.
// A nil buffer gets a default one; a nil output prints nothing.
func NewLoggerWithOutput(buffer *LogBuffer, minLevel Level, output io.Writer) *Logger {
	if buffer == nil {
		buffer = NewLogBuffer(DefaultBufferSize)
	}
	if output == nil {
		output = io.Discard
	}
	logger := &Logger{sink: &sink{
		buffer: buffer,
		out:    log.New(output, "", log.LstdFlags),
		hub:    NewLogHub(),
		now:    time.Now,
	}}
	logger.SetLevel(minLevel)
	return logger
}

// SetLevel changes the minimum level for this logger and every logger
// derived from it with With.
func (l *Logger) SetLevel(level Level) {
	if l == nil || l.sink == nil {
		return
	}
	normalized := normalizeLevel(level)
	l.sink.level.Store(&normalized)
}

func (l *Logger) Level() Level {
	if l == nil || l.sink == nil {
		return LevelInfo
	}
	if level := l.sink.level.Load(); level != nil {
		return *level
	}
	return LevelInfo
}

// FollowLevel keeps logger's minimum level in step with level, starting with
// its current value. The returned func stops following.
func FollowLevel[O any](logger *Logger, level *observable.Value[O, Level]) (cancel func()) {
	if logger == nil || level == nil {
		return func() {}
	}
	logger.SetLevel(level.Get())
	return level.Observe(func(_ O, _, next Level) {
		logger.SetLevel(next)
	})
}

func (l *Logger) Buffer() *LogBuffer {
	if l == nil || l.sink == nil {
		return nil
	}
	return l.sink.buffer
}

// Subscribe streams entries logged from now on. Entries are dropped for a
// subscriber whose channel is full.
func (l *Logger) Subscribe() (<-chan LogEntry, func()) {
	if l == nil || l.sink == nil {
		return nil, func() {}
	}
	return l.sink.hub.Subscribe(0)
}

// With returns a logger that adds fields to every entry.
func (l *Logger) With(fields map[string]string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{sink: l.sink, fields: mergeFields(l.fields, fields)}
}

func (l *Logger) Debug(message string, fields map[string]string) {
	l.log(LevelDebug, message, fields)
}

func (l *Logger) Info(message string, fields map[string]string) {
	l.log(LevelInfo, message, fields)
}

func (l *Logger) Warn(message string, fields map[string]string) {
	l.log(LevelWarning, message, fields)
}

func (l *Logger) Error(message string, fields map[string]string) {
	l.log(LevelError, message, fields)
}

func (l *Logger) Enabled(level Level) bool {
	if l == nil || l.sink == nil {
		return false
	}
	return LevelAtLeast(level, l.Level())
}

func (l *Logger) log(level Level, message string, fields map[string]string) {
	if !l.Enabled(level) {
		return
	}
	entry := LogEntry{
		Timestamp: l.sink.now().UTC(),
		Level:     level,
		Message:   message,
		Context:   mergeFields(l.fields, fields),
	}
	l.sink.buffer.Add(entry)
	l.sink.hub.Broadcast(entry)
	l.sink.out.Print(entry.String())
}
