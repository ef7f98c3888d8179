package animator

import (
	"sync"
	"time"
)

// FrameID identifies a pending frame callback. Zero is never issued.
type FrameID uint64

// FrameFunc is invoked once per display refresh.
type FrameFunc func(now time.Time)

// Scheduler queues frame callbacks the way a browser's animation frame queue
// does. A host calls Run once per refresh; callbacks requested while Run is
// in progress wait for the next refresh. Cancel revokes a pending callback
// outright, so it will not fire even if Run has already picked up its batch.
type Scheduler struct {
	mu      sync.Mutex
	next    FrameID
	pending map[FrameID]FrameFunc
	order   []FrameID
}

func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[FrameID]FrameFunc)}
}

// Request queues fn for the next Run.
func (s *Scheduler) Request(fn FrameFunc) FrameID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	id := s.next
	s.pending[id] = fn
	s.order = append(s.order, id)
	return id
}

// Cancel revokes id. It reports whether the callback was still pending.
func (s *Scheduler) Cancel(id FrameID) bool {
	if id == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	return true
}

// Pending returns the number of callbacks waiting for the next Run.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Run invokes every callback that was pending when it started and returns
// how many actually ran.
func (s *Scheduler) Run(now time.Time) int {
	s.mu.Lock()
	batch := s.order
	s.order = nil
	s.mu.Unlock()

	ran := 0
	for _, id := range batch {
		s.mu.Lock()
		fn, ok := s.pending[id]
		if ok {
			delete(s.pending, id)
		}
		s.mu.Unlock()

		if !ok {
			continue
		}
		fn(now)
		ran++
	}
	return ran
}
