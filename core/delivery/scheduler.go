package delivery

import (
	"sync"
	"time"
)

// Task is a handle on a scheduled periodic job.
type Task interface {
	// Stop cancels future runs. It never blocks and may be called repeatedly.
	Stop()
}

// Scheduler runs fn every interval until the returned Task is stopped. fn must
// never be invoked synchronously from Every.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Task
}

// TickerScheduler runs each task on its own goroutine driven by a time.Ticker.
// Runs of one task are strictly sequential.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) Task {
	t := &tickerTask{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

type tickerTask struct {
	once sync.Once
	stop chan struct{}
}

func (t *tickerTask) Stop() { t.once.Do(func() { close(t.stop) }) }

// ManualScheduler never fires on its own; Fire runs every live task once.
// It drives deterministic simulations and tests.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	fn      func()
	stopped bool
}

func (s *ManualScheduler) Every(_ time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{fn: fn}
	s.tasks = append(s.tasks, t)
	return &manualHandle{s: s, t: t}
}

type manualHandle struct {
	s *ManualScheduler
	t *manualTask
}

func (h *manualHandle) Stop() {
	h.s.mu.Lock()
	h.t.stopped = true
	h.s.mu.Unlock()
}

// Fire runs every task that has not been stopped.
func (s *ManualScheduler) Fire() {
	s.mu.Lock()
	var live []func()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.stopped {
			live = append(live, t.fn)
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.mu.Unlock()
	for _, fn := range live {
		fn()
	}
}

// Active returns the number of tasks that have not been stopped.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}
