package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/crimson-sun/authwatch/internal/output"
)

const (
	defaultBufferSize   = 1024
	defaultWorkers      = 4
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the queue capacity. Default: 1024.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithWorkers bounds how many alerts are delivered concurrently. Default: 4.
func WithWorkers(n int) Option {
	return func(a *Async) { a.workers = n }
}

// WithOnError sets the callback invoked when the inner notifier's Send fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithBlockOnFull makes Send wait for queue space instead of dropping the
// alert when the queue is full.
func WithBlockOnFull() Option {
	return func(a *Async) { a.blockOnFull = true }
}

// WithOnDrop sets a callback invoked with the title of every alert dropped
// because the queue was full.
func WithOnDrop(f func(title string)) Option {
	return func(a *Async) { a.dropFunc = f }
}

// WithDrainTimeout bounds how long Close waits for queued alerts. Default: 5s.
func WithDrainTimeout(d time.Duration) Option {
	return func(a *Async) { a.drainTimeout = d }
}

// ErrQueueFull is returned by Send when the queue has no room and the alert
// was dropped.
var ErrQueueFull = errors.New("async: queue full, alert dropped")

type job struct {
	title string
	body  string
}

// Async decouples alert production from delivery via a buffered queue.
// The dispatcher enqueues; a bounded pool of workers drains the queue into
// the wrapped notifier. Errors from the inner notifier are passed to errFunc
// rather than propagated to the caller.
type Async struct {
	inner        output.Notifier
	ch           chan job
	done         chan struct{}
	ctx          context.Context
	cancel       context.CancelFunc
	errFunc      func(error)
	dropFunc     func(string)
	bufSize      int
	workers      int
	blockOnFull  bool
	drainTimeout time.Duration

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// New wraps a notifier in an asynchronous queue.
// The background drain starts immediately.
func New(inner output.Notifier, opts ...Option) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		workers:      defaultWorkers,
		drainTimeout: defaultDrainTimeout,
		errFunc:      func(err error) { slog.Warn("async notifier send error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.bufSize < 0 {
		a.bufSize = 0
	}
	if a.workers < 1 {
		a.workers = 1
	}
	a.ch = make(chan job, a.bufSize)
	a.done = make(chan struct{})
	a.ctx, a.cancel = context.WithCancel(context.Background())
	go a.drain()
	return a
}

func (a *Async) Name() string  { return a.inner.Name() }
func (a *Async) Enabled() bool { return a.inner.Enabled() }

// Send enqueues the alert and never waits on delivery. When the queue is
// full the alert is dropped, logged and ErrQueueFull returned. With
// WithBlockOnFull it instead waits for room, returning ctx.Err() if ctx ends
// first. Sending after Close is an error.
func (a *Async) Send(ctx context.Context, title, body string) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return fmt.Errorf("async: send: notifier closed")
	}

	j := job{title: title, body: body}
	if !a.blockOnFull {
		select {
		case a.ch <- j:
			return nil
		default:
			slog.Warn("notification queue full, dropping alert",
				"channel", a.inner.Name(), "title", title, "capacity", a.bufSize)
			if a.dropFunc != nil {
				a.dropFunc(title)
			}
			return ErrQueueFull
		}
	}
	select {
	case a.ch <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting alerts, waits for the queue to drain (with a
// timeout), then cancels any deliveries still in flight.
func (a *Async) Close() error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.ch)
		a.mu.Unlock()

		select {
		case <-a.done:
		case <-time.After(a.drainTimeout):
			slog.Warn("async notifier drain timed out")
		}
		a.cancel()
	})
	return nil
}

// drain hands queued alerts to a bounded worker pool.
func (a *Async) drain() {
	defer close(a.done)
	p := pool.New().WithMaxGoroutines(a.workers)
	for j := range a.ch {
		p.Go(func() { a.deliver(j) })
	}
	p.Wait()
}

func (a *Async) deliver(j job) {
	defer func() {
		if r := recover(); r != nil {
			a.errFunc(fmt.Errorf("async: deliver: panic: %v", r))
		}
	}()
	if err := a.inner.Send(a.ctx, j.title, j.body); err != nil {
		a.errFunc(err)
	}
}
