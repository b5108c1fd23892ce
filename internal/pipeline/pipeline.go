// Package pipeline runs an ordered list of tasks on the main loop, one at a
// time. A task finishes when its runner reports completion and its duration
// has elapsed, whichever comes last.
package pipeline

import (
	"log/slog"
	"time"

	"github.com/1broseidon/vidframe/internal/mainloop"
)

// DefaultStallTimeout bounds how long a runner may hold the pipeline past
// the task's own duration.
const DefaultStallTimeout = 5 * time.Second

// Task is one unit of work. Value is opaque to the pipeline.
type Task[T any] struct {
	Name     string
	Duration time.Duration
	Value    T
}

// Runner executes a task. It must call done exactly once, from any
// goroutine; later calls are ignored.
type Runner[T any] interface {
	Run(task Task[T], done func())
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc[T any] func(task Task[T], done func())

func (f RunnerFunc[T]) Run(task Task[T], done func()) { f(task, done) }

// Pipeline is a FIFO task scheduler. All methods must be called on the main
// loop that d dispatches to.
type Pipeline[T any] struct {
	d      mainloop.Dispatcher
	clock  mainloop.Clock
	runner Runner[T]
	logger *slog.Logger

	// StallTimeout of zero disables the guard.
	StallTimeout time.Duration

	queue   []Task[T]
	current *inflight[T]
	seq     uint64
	onIdle  []func()
}

type inflight[T any] struct {
	seq     uint64
	task    Task[T]
	started time.Time
	ran     bool
	elapsed bool
	timers  []mainloop.Timer
}

// New creates an idle pipeline.
func New[T any](d mainloop.Dispatcher, clock mainloop.Clock, runner Runner[T], logger *slog.Logger) *Pipeline[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline[T]{
		d:            d,
		clock:        clock,
		runner:       runner,
		logger:       logger,
		StallTimeout: DefaultStallTimeout,
	}
}

// Submit appends tasks. If the pipeline is idle the first one starts on the
// next turn of the loop.
func (p *Pipeline[T]) Submit(tasks ...Task[T]) {
	if len(tasks) == 0 {
		return
	}
	wasIdle := !p.Busy()
	p.queue = append(p.queue, tasks...)
	if wasIdle {
		p.d.Post(p.startNext)
	}
}

// Busy reports whether a task is running or queued.
func (p *Pipeline[T]) Busy() bool {
	return p.current != nil || len(p.queue) > 0
}

// Len is the number of tasks not yet started.
func (p *Pipeline[T]) Len() int { return len(p.queue) }

// Current returns the name of the running task, if any.
func (p *Pipeline[T]) Current() (string, bool) {
	if p.current == nil {
		return "", false
	}
	return p.current.task.Name, true
}

// OnIdle registers fn to run each time the queue drains.
func (p *Pipeline[T]) OnIdle(fn func()) {
	p.onIdle = append(p.onIdle, fn)
}

func (p *Pipeline[T]) startNext() {
	if p.current != nil {
		return
	}
	if len(p.queue) == 0 {
		for _, fn := range p.onIdle {
			fn()
		}
		return
	}

	task := p.queue[0]
	p.queue = p.queue[1:]
	p.seq++
	seq := p.seq
	cur := &inflight[T]{seq: seq, task: task, started: p.clock.Now()}
	p.current = cur

	if task.Duration > 0 {
		cur.timers = append(cur.timers, p.clock.AfterFunc(task.Duration, func() { p.markElapsed(seq) }))
	} else {
		cur.elapsed = true
	}
	if p.StallTimeout > 0 {
		cur.timers = append(cur.timers, p.clock.AfterFunc(task.Duration+p.StallTimeout, func() { p.stalled(seq) }))
	}

	p.logger.Debug("pipeline task started", "task", task.Name, "duration", task.Duration)
	p.runner.Run(task, p.doneFunc(seq))
}

// doneFunc returns the completion callback for task seq. It may be called
// from any goroutine, so it only posts back to the loop.
func (p *Pipeline[T]) doneFunc(seq uint64) func() {
	return func() {
		p.d.Post(func() { p.markRan(seq) })
	}
}

func (p *Pipeline[T]) markRan(seq uint64) {
	cur := p.current
	if cur == nil || cur.seq != seq || cur.ran {
		return
	}
	cur.ran = true
	p.maybeFinish()
}

func (p *Pipeline[T]) markElapsed(seq uint64) {
	cur := p.current
	if cur == nil || cur.seq != seq {
		return
	}
	cur.elapsed = true
	p.maybeFinish()
}

func (p *Pipeline[T]) stalled(seq uint64) {
	cur := p.current
	if cur == nil || cur.seq != seq {
		return
	}
	p.logger.Warn("pipeline task stalled, advancing",
		"task", cur.task.Name,
		"waited", p.clock.Now().Sub(cur.started))
	cur.ran = true
	cur.elapsed = true
	p.maybeFinish()
}

func (p *Pipeline[T]) maybeFinish() {
	cur := p.current
	if !cur.ran || !cur.elapsed {
		return
	}
	for _, t := range cur.timers {
		t.Stop()
	}
	p.current = nil
	p.logger.Debug("pipeline task finished", "task", cur.task.Name)
	p.d.Post(p.startNext)
}
