package spin

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs f once after d. Implementations must not run f on the
// caller's goroutine before AfterFunc returns.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// ClockScheduler schedules on the wall clock
type ClockScheduler struct{}

func (ClockScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

type manualTask struct {
	at  time.Duration
	seq int
	f   func()
}

// ManualScheduler is a virtual clock. Tasks only run inside Advance or
// RunAll, on the calling goroutine, in due-time order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []manualTask
}

// NewManualScheduler creates a virtual clock at zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.tasks = append(s.tasks, manualTask{at: s.now + d, seq: s.seq, f: f})
}

// Advance moves the clock forward by d, running every task that falls due,
// including tasks scheduled by those tasks. Returns the number of tasks run.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	ran := 0
	for {
		task, ok := s.popDue(target)
		if !ok {
			break
		}
		task.f()
		ran++
	}

	s.mu.Lock()
	if s.now < target {
		s.now = target
	}
	s.mu.Unlock()
	return ran
}

// RunAll runs tasks until none remain
func (s *ManualScheduler) RunAll() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.tasks) == 0 {
			s.mu.Unlock()
			return ran
		}
		next := s.tasks[0].at
		for _, t := range s.tasks[1:] {
			if t.at < next {
				next = t.at
			}
		}
		d := next - s.now
		s.mu.Unlock()

		ran += s.Advance(d)
	}
}

// Pending returns the number of scheduled tasks
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Now returns the virtual time elapsed since creation
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *ManualScheduler) popDue(target time.Duration) (manualTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tasks) == 0 {
		return manualTask{}, false
	}
	sort.Slice(s.tasks, func(i, j int) bool {
		if s.tasks[i].at != s.tasks[j].at {
			return s.tasks[i].at < s.tasks[j].at
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
	if s.tasks[0].at > target {
		return manualTask{}, false
	}

	task := s.tasks[0]
	s.tasks = s.tasks[1:]
	s.now = task.at
	return task, true
}
