package mainloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueue_RunsInPostOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(nil)
	go q.Run(ctx)
	defer func() {
		cancel()
		<-q.Done()
	}()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		q.Post(func() { got = append(got, i) })
	}
	if err := q.Call(ctx, func() {}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, order not preserved", i, v)
		}
	}
	if len(got) != 100 {
		t.Fatalf("ran %d closures, want 100", len(got))
	}
}

func TestQueue_PostFromManyGoroutines(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(nil)
	go q.Run(ctx)
	defer func() {
		cancel()
		<-q.Done()
	}()

	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				q.Post(func() { count++ })
			}
		}()
	}
	wg.Wait()

	var got int
	if err := q.Call(ctx, func() { got = count }); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != 500 {
		t.Fatalf("count = %d, want 500", got)
	}
}

func TestQueue_RecoversPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(nil)
	go q.Run(ctx)
	defer func() {
		cancel()
		<-q.Done()
	}()

	q.Post(func() { panic("boom") })
	ran := false
	if err := q.Call(ctx, func() { ran = true }); err != nil || !ran {
		t.Fatalf("loop did not survive a panic: ran=%v err=%v", ran, err)
	}
}

func TestQueue_CallAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(nil)
	go q.Run(ctx)
	cancel()
	<-q.Done()

	err := q.Call(context.Background(), func() {})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("Call after stop = %v, want ErrStopped", err)
	}
}

func TestRealClock_DeliversThroughDispatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue(nil)
	go q.Run(ctx)
	defer func() {
		cancel()
		<-q.Done()
	}()

	fired := make(chan struct{})
	RealClock{D: q}.AfterFunc(time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestManual_DrainRunsNestedPosts(t *testing.T) {
	var m Manual
	var order []string
	m.Post(func() {
		order = append(order, "a")
		m.Post(func() { order = append(order, "c") })
	})
	m.Post(func() { order = append(order, "b") })

	if n := m.Drain(); n != 3 {
		t.Fatalf("Drain ran %d, want 3", n)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("order = %v", order)
	}
}

func TestFakeClock_FiresInDeadlineOrder(t *testing.T) {
	c := NewFakeClock()
	var order []string
	c.AfterFunc(30*time.Millisecond, func() { order = append(order, "slow") })
	c.AfterFunc(10*time.Millisecond, func() {
		order = append(order, "fast")
		c.AfterFunc(5*time.Millisecond, func() { order = append(order, "chained") })
	})
	stopped := c.AfterFunc(20*time.Millisecond, func() { order = append(order, "stopped") })
	if !stopped.Stop() {
		t.Fatal("Stop on pending timer returned false")
	}

	c.Advance(12 * time.Millisecond)
	if len(order) != 1 || order[0] != "fast" {
		t.Fatalf("after 12ms order = %v", order)
	}
	c.Advance(time.Second)
	want := []string{"fast", "chained", "slow"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if c.Pending() != 0 {
		t.Fatalf("pending = %d", c.Pending())
	}
}
