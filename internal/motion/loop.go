package motion

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"tracked/internal/event"
	"tracked/internal/logging"
	"tracked/internal/metrics"
)

const (
	DefaultTick     = 16 * time.Millisecond
	postQueueLength = 64
)

var ErrLoopRunning = errors.New("frame loop already running or closed")

type LoopOptions struct {
	Tick    time.Duration
	Clock   clock.Clock
	Logger  *logging.Logger
	Metrics *metrics.Registry
}

// Loop emits Ticks at a fixed rate. Tick listeners and posted functions run
// on the goroutine inside Run, one at a time.
type Loop struct {
	clock   clock.Clock
	logger  *logging.Logger
	metrics *metrics.Registry

	ticks   *event.Notifier1[*Loop, time.Duration]
	trigger *event.Trigger1[*Loop, time.Duration]
	posts   chan func()
	done    chan struct{}

	mu      sync.Mutex
	tick    time.Duration
	running bool
	closed  bool
	frames  int64
}

func NewLoop(options LoopOptions) *Loop {
	tick := options.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := options.Logger
	if logger == nil {
		logger = logging.NewLoggerWithOutput(nil, logging.LevelInfo, nil)
	}
	loop := &Loop{
		clock:   clk,
		logger:  logger.With(map[string]string{"component": "loop"}),
		metrics: options.Metrics,
		posts:   make(chan func(), postQueueLength),
		done:    make(chan struct{}),
		tick:    tick,
	}
	loop.ticks, loop.trigger = event.New1[*Loop, time.Duration](loop)
	return loop
}

// Ticks fires once per frame with the time since the previous frame.
// Subscribe before Run or from a posted function.
func (l *Loop) Ticks() *event.Notifier1[*Loop, time.Duration] { return l.ticks }

// Frames returns the number of frames run so far.
func (l *Loop) Frames() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Post queues fn to run on the loop goroutine. It blocks while the queue is
// full and reports false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.posts <- fn:
		return true
	case <-l.done:
		return false
	}
}

// SetTick changes the frame rate; it takes effect from the next frame.
func (l *Loop) SetTick(tick time.Duration) {
	if tick <= 0 {
		return
	}
	l.mu.Lock()
	l.tick = tick
	l.mu.Unlock()
}

func (l *Loop) currentTick() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}

// Run drives frames until ctx ends or, when frames is positive, that many
// frames have run. Ticks are disposed when Run returns.
func (l *Loop) Run(ctx context.Context, frames int64) error {
	l.mu.Lock()
	if l.running || l.closed {
		l.mu.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	l.mu.Unlock()
	defer l.trigger.Dispose()
	defer l.Close()

	tick := l.currentTick()
	ticker := l.clock.Ticker(tick)
	defer ticker.Stop()
	last := l.clock.Now()
	l.logger.Debug("frame loop started", map[string]string{"tick": tick.String()})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.posts:
			fn()
		case <-ticker.C:
			now := l.clock.Now()
			dt := now.Sub(last)
			last = now
			if dt > 2*tick {
				l.metrics.IncFrameOverruns()
			}
			l.trigger.Invoke(dt)
			l.metrics.IncFrames()
			count := l.countFrame()
			if frames > 0 && count >= frames {
				l.logger.Debug("frame budget reached", map[string]string{"frames": strconv.FormatInt(count, 10)})
				return nil
			}
			if next := l.currentTick(); next != tick {
				tick = next
				ticker.Reset(tick)
			}
		}
	}
}

func (l *Loop) countFrame() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frames++
	return l.frames
}

// Close stops a running loop and rejects further posts. Queued posts are
// dropped. Ticks is disposed by Run on its way out, or here when the loop
// never ran.
func (l *Loop) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	running := l.running
	l.mu.Unlock()
	close(l.done)
	if !running {
		l.trigger.Dispose()
	}
	return nil
}
