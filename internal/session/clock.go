package session

import (
	"sync"
	"time"
)

// Clock accumulates whole seconds of active quiz time. It is paused while the
// user is on a reading screen, so the final figure covers question-answering
// only. Pause and Resume are idempotent; after Stop the clock stays halted
// until the next Start, which zeroes the accumulator.
type Clock struct {
	mu          sync.Mutex
	now         func() time.Time
	running     bool
	paused      bool
	lastResume  time.Time
	accumulated int
}

func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Start begins a fresh accumulation from zero.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.paused = false
	c.accumulated = 0
	c.lastResume = c.now()
}

// Pause flushes the time since the last resume and marks the clock paused.
// No-op if already paused or not running.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.paused {
		return
	}
	c.flushLocked()
	c.paused = true
}

// Resume restarts accumulation after a pause. No-op if already running.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || !c.paused {
		return
	}
	c.paused = false
	c.lastResume = c.now()
}

// Stop flushes any remaining active time and halts the clock.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	if !c.paused {
		c.flushLocked()
	}
	c.running = false
	c.paused = false
}

// Elapsed reports the accumulated active seconds, including the current
// unflushed stretch while running.
func (c *Clock) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.accumulated
	if c.running && !c.paused {
		total += int(c.now().Sub(c.lastResume) / time.Second)
	}
	return total
}

// Running reports whether the clock has been started and not yet stopped.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// flushLocked moves whole elapsed seconds into the accumulator.
func (c *Clock) flushLocked() {
	now := c.now()
	c.accumulated += int(now.Sub(c.lastResume) / time.Second)
	c.lastResume = now
}
