package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/1broseidon/vidframe/internal/mainloop"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder logs start/end events and lets the test decide when a task's
// runner completes.
type recorder struct {
	events  []string
	pending map[string]func()
	async   map[string]bool
}

func newRecorder() *recorder {
	return &recorder{pending: map[string]func(){}, async: map[string]bool{}}
}

func (r *recorder) Run(task Task[string], done func()) {
	r.events = append(r.events, "start:"+task.Name)
	if r.async[task.Name] {
		r.pending[task.Name] = func() {
			r.events = append(r.events, "end:"+task.Name)
			done()
		}
		return
	}
	r.events = append(r.events, "end:"+task.Name)
	done()
}

func (r *recorder) complete(name string) {
	fn := r.pending[name]
	delete(r.pending, name)
	fn()
}

func harness() (*mainloop.Manual, *mainloop.FakeClock, *recorder, *Pipeline[string]) {
	d := &mainloop.Manual{}
	c := mainloop.NewFakeClock()
	r := newRecorder()
	return d, c, r, New[string](d, c, r, nil)
}

func tasks(names ...string) []Task[string] {
	out := make([]Task[string], len(names))
	for i, n := range names {
		out[i] = Task[string]{Name: n}
	}
	return out
}

func TestPipeline_InstantTasksRunInOrder(t *testing.T) {
	d, _, r, p := harness()
	p.Submit(tasks("a", "b", "c")...)
	d.Drain()

	want := []string{"start:a", "end:a", "start:b", "end:b", "start:c", "end:c"}
	if fmt.Sprint(r.events) != fmt.Sprint(want) {
		t.Fatalf("events = %v, want %v", r.events, want)
	}
	if p.Busy() {
		t.Fatal("pipeline still busy")
	}
}

func TestPipeline_WaitsForDurationAndCompletion(t *testing.T) {
	d, c, r, p := harness()
	r.async["fade"] = true
	p.Submit(Task[string]{Name: "fade", Duration: 200 * time.Millisecond}, Task[string]{Name: "after"})
	d.Drain()

	// Runner done, duration not elapsed.
	r.complete("fade")
	d.Drain()
	if name, _ := p.Current(); name != "fade" {
		t.Fatalf("current = %q, want fade still running", name)
	}

	c.Advance(199 * time.Millisecond)
	d.Drain()
	if name, _ := p.Current(); name != "fade" {
		t.Fatalf("fade finished early, current = %q", name)
	}

	c.Advance(time.Millisecond)
	d.Drain()
	if p.Busy() {
		t.Fatal("pipeline should be idle")
	}
	if r.events[len(r.events)-1] != "end:after" {
		t.Fatalf("events = %v", r.events)
	}
}

func TestPipeline_ElapsedButNotCompletedBlocks(t *testing.T) {
	d, c, r, p := harness()
	r.async["open"] = true
	p.Submit(Task[string]{Name: "open", Duration: 50 * time.Millisecond}, Task[string]{Name: "next"})
	d.Drain()
	c.Advance(time.Second)
	d.Drain()
	for _, e := range r.events {
		if e == "start:next" {
			t.Fatal("next task started before runner completed")
		}
	}
	r.complete("open")
	d.Drain()
	if p.Busy() {
		t.Fatal("pipeline should be idle")
	}
}

func TestPipeline_BatchesNeverInterleave(t *testing.T) {
	d, _, r, p := harness()
	r.async["first.1"] = true

	p.Submit(tasks("first.1", "first.2", "first.3")...)
	d.Drain()
	// Second batch arrives while the first is mid-flight.
	p.Submit(tasks("second.1", "second.2")...)
	d.Drain()
	r.complete("first.1")
	d.Drain()

	want := []string{
		"start:first.1", "end:first.1",
		"start:first.2", "end:first.2",
		"start:first.3", "end:first.3",
		"start:second.1", "end:second.1",
		"start:second.2", "end:second.2",
	}
	if fmt.Sprint(r.events) != fmt.Sprint(want) {
		t.Fatalf("events = %v\nwant     %v", r.events, want)
	}
}

func TestPipeline_StallTimeoutAdvances(t *testing.T) {
	d, c, r, p := harness()
	p.StallTimeout = time.Second
	r.async["stuck"] = true
	p.Submit(tasks("stuck", "after")...)
	d.Drain()

	c.Advance(999 * time.Millisecond)
	d.Drain()
	if !p.Busy() || r.events[len(r.events)-1] != "start:stuck" {
		t.Fatalf("advanced before stall timeout: %v", r.events)
	}
	c.Advance(time.Millisecond)
	d.Drain()
	if p.Busy() {
		t.Fatal("stalled task still holding the pipeline")
	}

	// A late completion from the stalled runner is ignored.
	r.complete("stuck")
	d.Drain()
	if p.Busy() {
		t.Fatal("late completion restarted something")
	}
}

func TestPipeline_OnIdle(t *testing.T) {
	d, _, _, p := harness()
	idle := 0
	p.OnIdle(func() { idle++ })
	p.Submit(tasks("a", "b")...)
	d.Drain()
	if idle != 1 {
		t.Fatalf("idle fired %d times, want 1", idle)
	}
}

func TestPipeline_DoneFromOtherGoroutine(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := mainloop.NewQueue(nil)
	go q.Run(ctx)
	defer func() {
		cancel()
		<-q.Done()
	}()

	finished := make(chan struct{})
	var wg sync.WaitGroup
	var order []string
	runner := RunnerFunc[string](func(task Task[string], done func()) {
		order = append(order, task.Name)
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			done()
		}()
	})

	var p *Pipeline[string]
	if err := q.Call(ctx, func() {
		p = New[string](q, mainloop.RealClock{D: q}, runner, nil)
		p.OnIdle(func() { close(finished) })
		p.Submit(tasks("x", "y", "z")...)
	}); err != nil {
		t.Fatalf("Call: %v", err)
	}

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline never went idle")
	}
	wg.Wait()

	var got []string
	_ = q.Call(ctx, func() { got = append(got, order...) })
	if fmt.Sprint(got) != "[x y z]" {
		t.Fatalf("order = %v", got)
	}
}
