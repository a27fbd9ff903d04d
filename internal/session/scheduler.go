package session

import (
	"sync"
	"time"
)

// Scheduler is the one-tick-per-interval primitive that drives the timers.
// The returned cancel function stops future ticks and is safe to call more
// than once.
type Scheduler interface {
	Schedule(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler schedules ticks on a time.Ticker goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Schedule(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// ManualScheduler delivers ticks only when Tick is called. Used in tests to
// step timers deterministically.
type ManualScheduler struct {
	mu    sync.Mutex
	next  int
	funcs map[int]func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{funcs: make(map[int]func())}
}

func (s *ManualScheduler) Schedule(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.funcs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.funcs, id)
		s.mu.Unlock()
	}
}

// Tick fires every active callback once.
func (s *ManualScheduler) Tick() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.funcs))
	for _, fn := range s.funcs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// TickN fires Tick n times.
func (s *ManualScheduler) TickN(n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

// Active reports how many callbacks are currently scheduled.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.funcs)
}
