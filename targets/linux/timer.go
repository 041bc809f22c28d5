//go:build linux && !tinygo

package main

import (
	"sync"
	"time"

	"escctl/core"
)

// TimerFreq is the pulse tick rate: ticks are microseconds
const TimerFreq = 1000000

// softOneShot implements core.PulseTimer with time.AfterFunc. Expiries of a
// timer that was re-armed or disarmed in the meantime are dropped. The
// generation is checked by expire inside the engine critical section, so a
// re-arm cannot slip in between the check and the expiry.
type softOneShot struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64

	expire func(current func() bool)
}

func (t *softOneShot) ArmOneShot(ticks uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(time.Duration(ticks)*time.Microsecond, func() {
		t.expire(func() bool { return t.current(gen) })
	})
}

// current reports whether gen is still the armed generation
func (t *softOneShot) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.gen
}

func (t *softOneShot) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// tickerClock implements core.TickTimer with a time.Ticker goroutine
type tickerClock struct {
	ctrl *core.Controller
	stop <-chan struct{}
}

func (c *tickerClock) ArmPeriodic(periodUS uint32) {
	go c.run(time.Duration(periodUS) * time.Microsecond)
}

// run calls Tick every period until stop is closed
func (c *tickerClock) run(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.ctrl.Tick()
		}
	}
}
