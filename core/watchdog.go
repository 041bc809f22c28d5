package core

import "sync/atomic"

// Watchdog counts frames since the last accepted command. The frame clock
// advances it; the command pipeline resets it.
type Watchdog struct {
	frames atomic.Uint32
	limit  uint32
}

// NewWatchdog creates a watchdog that trips after more than limit frames
func NewWatchdog(limit uint32) *Watchdog {
	return &Watchdog{limit: limit}
}

// Expired reports whether the command silence exceeded the limit
func (w *Watchdog) Expired() bool {
	return w.frames.Load() > w.limit
}

// Advance counts one frame. The counter stops once expired.
// Returns true on the frame the watchdog trips.
func (w *Watchdog) Advance() bool {
	n := w.frames.Load()
	if n > w.limit {
		return false
	}
	// A concurrent Feed wins over the increment
	if !w.frames.CompareAndSwap(n, n+1) {
		return false
	}
	return n+1 > w.limit
}

// Feed restarts the silence window
func (w *Watchdog) Feed() {
	w.frames.Store(0)
}

// Frames returns the frames counted since the last Feed
func (w *Watchdog) Frames() uint32 {
	return w.frames.Load()
}
