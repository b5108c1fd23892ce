// Package mainloop provides the single goroutine that owns all window
// geometry. Other goroutines never touch that state directly; they hand
// closures to the loop with Post or Call.
package mainloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrStopped is returned by Call once the loop has exited.
var ErrStopped = errors.New("main loop stopped")

// Dispatcher runs closures on the main loop, in the order posted.
type Dispatcher interface {
	Post(fn func())
}

// Queue is an unbounded FIFO of closures drained by Run. Post never blocks,
// so it is safe to call from X event handlers and timer callbacks alike.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	stopped chan struct{}
	logger  *slog.Logger
}

// NewQueue creates an idle queue. Call Run to start draining it.
func NewQueue(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Post schedules fn to run on the loop.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop and waits for it to return.
func (q *Queue) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	q.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-q.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is cancelled. Closures still pending at
// that point are dropped.
func (q *Queue) Run(ctx context.Context) {
	defer close(q.stopped)
	q.logger.Debug("main loop started")

	for {
		select {
		case <-ctx.Done():
			q.logger.Debug("main loop stopped")
			return
		case <-q.wake:
		}

		for {
			batch := q.take()
			if len(batch) == 0 {
				break
			}
			for _, fn := range batch {
				if ctx.Err() != nil {
					return
				}
				q.run(fn)
			}
		}
	}
}

// Done is closed when Run returns.
func (q *Queue) Done() <-chan struct{} { return q.stopped }

func (q *Queue) take() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = nil
	return batch
}

func (q *Queue) run(fn func()) {
	// A panicking handler must not take the window down with it.
	defer func() {
		if err := recover(); err != nil {
			q.logger.Error("main loop panic recovered", "error", err)
		}
	}()
	fn()
}

// Manual is a Dispatcher for tests: posted closures run only when Drain is
// called, on the caller's goroutine.
type Manual struct {
	mu      sync.Mutex
	pending []func()
}

func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

// Drain runs closures until none are pending, including any they post, and
// returns how many ran.
func (m *Manual) Drain() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			m.mu.Unlock()
			return n
		}
		fn := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()

		fn()
		n++
	}
}

// Pending reports how many closures are waiting.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
