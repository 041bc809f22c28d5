package core

import "sync/atomic"

// FrameClock is the periodic tick handler. Every FrameTicks ticks it runs the
// watchdog and starts a sequencer frame; on every tick it runs the manual
// override.
type FrameClock struct {
	frameTicks uint32
	phase      uint32 // 0..frameTicks-1, owned by the tick handler
	ticks      atomic.Uint32

	widths   *ChannelWidths
	seq      *Sequencer
	watchdog *Watchdog
	override *ManualOverride
	log      *EventLog
}

// NewFrameClock creates a frame clock at phase 0
func NewFrameClock(frameTicks uint32, widths *ChannelWidths, seq *Sequencer, wd *Watchdog, override *ManualOverride, log *EventLog) *FrameClock {
	if frameTicks == 0 {
		frameTicks = 1
	}
	return &FrameClock{
		frameTicks: frameTicks,
		widths:     widths,
		seq:        seq,
		watchdog:   wd,
		override:   override,
		log:        log,
	}
}

// Tick handles one periodic timer interrupt
func (c *FrameClock) Tick() {
	now := c.ticks.Add(1)

	c.phase++
	if c.phase >= c.frameTicks {
		c.phase = 0
		c.frame(now)
	}

	if c.override != nil {
		c.override.Tick(now)
	}
}

// frame runs the watchdog then starts the next sequencer frame
func (c *FrameClock) frame(now uint32) {
	expired := c.watchdog.Expired()
	if !expired && c.watchdog.Advance() {
		expired = true
		c.record(EvtWatchdogTrip, now, c.watchdog.Frames())
	}
	if expired {
		c.widths.ZeroAll()
	}

	if !c.seq.State().IsIdle() {
		c.record(EvtFrameOverrun, now, c.seq.Overruns()+1)
	}
	c.seq.Start()
}

func (c *FrameClock) record(typ EventType, tick, value uint32) {
	if c.log != nil {
		c.log.Record(typ, tick, value)
	}
}

// Phase returns the tick position inside the current frame
func (c *FrameClock) Phase() uint32 {
	return c.phase
}

// Ticks returns the number of ticks since boot
func (c *FrameClock) Ticks() uint32 {
	return c.ticks.Load()
}

// FrameTicks returns the frame length in ticks
func (c *FrameClock) FrameTicks() uint32 {
	return c.frameTicks
}
