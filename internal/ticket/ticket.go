// Package ticket detects stale deferred work. A caller takes a ticket when
// it schedules a recompute and checks it again before acting; any newer
// ticket of the same class supersedes it.
package ticket

import "sync/atomic"

// Ticket is one value handed out by a Counter.
type Ticket uint64

// Counter is a monotonically increasing ticket source. It is safe for use
// from any goroutine.
type Counter struct {
	n atomic.Uint64
}

// Take returns a new ticket, invalidating every earlier one.
func (c *Counter) Take() Ticket {
	return Ticket(c.n.Add(1))
}

// Current returns the most recently issued ticket.
func (c *Counter) Current() Ticket {
	return Ticket(c.n.Load())
}

// IsCurrent reports whether t is still the latest ticket.
func (c *Counter) IsCurrent(t Ticket) bool {
	return c.n.Load() == uint64(t)
}

// Class names the kinds of recompute that carry their own counter.
type Class int

const (
	ScreenChanged Class = iota
	ScreenParamsChanged
	CachedGeometryUpdate
	numClasses
)

func (c Class) String() string {
	switch c {
	case ScreenChanged:
		return "screen-changed"
	case ScreenParamsChanged:
		return "screen-params-changed"
	case CachedGeometryUpdate:
		return "cached-geometry-update"
	default:
		return "unknown"
	}
}

// Set holds one Counter per Class.
type Set struct {
	counters [numClasses]Counter
}

// Take issues a ticket of class c.
func (s *Set) Take(c Class) Ticket { return s.counters[c].Take() }

// IsCurrent reports whether t is still the latest ticket of class c.
func (s *Set) IsCurrent(c Class, t Ticket) bool { return s.counters[c].IsCurrent(t) }

// Current returns the latest ticket of class c.
func (s *Set) Current(c Class) Ticket { return s.counters[c].Current() }

// Snapshot returns the current value of every class, keyed by name.
func (s *Set) Snapshot() map[string]uint64 {
	out := make(map[string]uint64, numClasses)
	for c := Class(0); c < numClasses; c++ {
		out[c.String()] = uint64(s.counters[c].Current())
	}
	return out
}
