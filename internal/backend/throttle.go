package backend

import (
	"sync"
	"time"
)

// eventThrottle coalesces a burst of file notifications into one call of
// fire, delay after the first notification of the burst.
type eventThrottle struct {
	delay time.Duration
	fire  func()

	mu    sync.Mutex
	timer *time.Timer
}

func newEventThrottle(delay time.Duration, fire func()) *eventThrottle {
	return &eventThrottle{delay: delay, fire: fire}
}

// Enqueue records a notification. Calls made while a flush is already
// scheduled are folded into it.
func (t *eventThrottle) Enqueue() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, t.flush)
	}
}

func (t *eventThrottle) flush() {
	t.mu.Lock()
	t.timer = nil
	t.mu.Unlock()
	t.fire()
}

// Stop drops any scheduled flush.
func (t *eventThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
