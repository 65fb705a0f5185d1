// Package reminder schedules one-shot delayed deliveries keyed by user.
// Every pending reminder has a handle: it can be cancelled, and dedup mode
// makes a new schedule replace the key's pending one. The default keeps the
// historical behavior of accumulating independent reminders per trigger.
package reminder

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Scheduler struct {
	mu      sync.Mutex
	pending map[string][]*time.Timer
	dedup   bool
	log     *zap.Logger

	afterFunc func(d time.Duration, f func()) *time.Timer
}

func NewScheduler(dedup bool, log *zap.Logger) *Scheduler {
	return &Scheduler{
		pending:   make(map[string][]*time.Timer),
		dedup:     dedup,
		log:       log,
		afterFunc: time.AfterFunc,
	}
}

// Schedule arranges fn to run once after delay. In dedup mode any reminder
// already pending for key is cancelled first.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dedup {
		s.cancelUnlocked(key)
	}

	var timer *time.Timer
	timer = s.afterFunc(delay, func() {
		s.remove(key, timer)
		fn()
	})
	s.pending[key] = append(s.pending[key], timer)
	s.log.Debug("reminder scheduled",
		zap.String("key", key), zap.Duration("delay", delay), zap.Int("pending", len(s.pending[key])))
}

// Cancel stops every pending reminder for key.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelUnlocked(key)
}

// Pending reports how many reminders are outstanding for key.
func (s *Scheduler) Pending(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending[key])
}

// Stop cancels everything; used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.pending {
		s.cancelUnlocked(key)
	}
}

func (s *Scheduler) cancelUnlocked(key string) {
	for _, t := range s.pending[key] {
		t.Stop()
	}
	delete(s.pending, key)
}

func (s *Scheduler) remove(key string, timer *time.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	timers := s.pending[key]
	for i, t := range timers {
		if t == timer {
			s.pending[key] = append(timers[:i], timers[i+1:]...)
			break
		}
	}
	if len(s.pending[key]) == 0 {
		delete(s.pending, key)
	}
}
