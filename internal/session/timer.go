package session

import (
	"sync"
	"time"
)

// Timer is the countdown driver for one session. It fires once per tick
// interval (one wall-clock second in production), checks the clock
// BEFORE decrementing, and when the current value is already zero it
// stops itself and invokes the expiry callback exactly once.
//
// Stop is idempotent and must be called on every teardown path;
// a timer still ticking after its screen is gone is a leak.
type Timer struct {
	interval time.Duration
	sess     *Session
	onExpire func()

	stopOnce sync.Once
	done     chan struct{}

	startOnce sync.Once
}

// NewTimer creates a timer for the session. A non-positive interval
// defaults to one second; tests inject a shorter one.
func NewTimer(sess *Session, interval time.Duration, onExpire func()) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{
		interval: interval,
		sess:     sess,
		onExpire: onExpire,
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop. Subsequent calls are no-ops, so a
// session can never accumulate concurrent loops from one timer.
func (t *Timer) Start() {
	t.startOnce.Do(func() {
		go t.run()
	})
}

// Stop cancels the tick loop. Safe to call any number of times, from
// any teardown path, including after the timer stopped itself.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

func (t *Timer) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			// Zero-check against the current value each tick.
			if t.sess.TimeRemaining() <= 0 {
				t.Stop()
				if t.onExpire != nil {
					t.onExpire()
				}
				return
			}
			t.sess.DecrementTimer()
		}
	}
}
