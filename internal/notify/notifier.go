// Package notify schedules local study reminders and raises a desktop
// notification when one comes due. The analytics core never calls this; only
// the session-edit flow does, when reminder fields change.
package notify

import (
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/google/uuid"
)

// Scheduler keeps one timer per pending reminder, keyed by an opaque handle
// stored on the session record.
type Scheduler struct {
	appName string

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewScheduler(appName string) *Scheduler {
	if appName == "" {
		appName = "StudyTrack"
	}
	return &Scheduler{
		appName: appName,
		timers:  map[string]*time.Timer{},
	}
}

// Schedule arms a reminder for the given instant and returns its handle.
// Scheduling in the past is a no-op and returns an empty handle; callers are
// expected to check at.After(time.Now()) themselves, this is the backstop.
func (s *Scheduler) Schedule(sessionID, title, body string, at time.Time) (string, error) {
	delay := time.Until(at)
	if delay <= 0 {
		return "", nil
	}

	handle := uuid.New().String()

	s.mu.Lock()
	s.timers[handle] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, handle)
		s.mu.Unlock()

		beeep.AppName = s.appName
		// a failed desktop notification is not actionable here
		_ = beeep.Notify(title, body, "")
	})
	s.mu.Unlock()

	return handle, nil
}

// Cancel stops and forgets the reminder with the given handle. Unknown or
// already-fired handles are ignored.
func (s *Scheduler) Cancel(handle string) {
	if handle == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[handle]; ok {
		t.Stop()
		delete(s.timers, handle)
	}
}

// Pending reports the number of armed reminders.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Shutdown stops every armed reminder.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for h, t := range s.timers {
		t.Stop()
		delete(s.timers, h)
	}
}
