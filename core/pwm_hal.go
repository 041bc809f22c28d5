package core

// MirrorOutput is a secondary hardware PWM output that repeats the channel 0
// pulse width while manual override is active.
type MirrorOutput interface {
	// SetPulseTicks sets the high time of the mirror pulse in pulse timer ticks
	SetPulseTicks(ticks uint32)
}
