// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package output

import "sync"

// Collector records events in arrival order. It backs the HTTP run endpoint
// and is handy in tests.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// Sinks returns sinks that append to the collector.
func (c *Collector) Sinks() Sinks {
	return Sinks{
		Normal:  c.sink(Normal),
		Error:   c.sink(Error),
		Success: c.sink(Success),
		Info:    c.sink(Info),
	}
}

// Events returns a copy of the recorded events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// OfKind returns the texts of recorded events with the given kind.
func (c *Collector) OfKind(kind Kind) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	for _, e := range c.events {
		if e.Kind == kind {
			out = append(out, e.Text)
		}
	}
	return out
}

func (c *Collector) sink(kind Kind) Sink {
	return func(text string) {
		c.mu.Lock()
		c.events = append(c.events, Event{Kind: kind, Text: text})
		c.mu.Unlock()
	}
}
