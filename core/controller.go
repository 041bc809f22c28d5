package core

import (
	"runtime"

	"escctl/protocol"
)

// Drivers bundles the platform collaborators of the engine.
// Clock, Input, Transmitter and Mirror may be nil.
type Drivers struct {
	Outputs     OutputDriver
	Timer       PulseTimer
	Clock       TickTimer
	Input       InputPort
	Transmitter Transmitter
	Mirror      MirrorOutput
}

// Controller owns all engine state: channel widths, receive queue, watchdog,
// sequencer, frame clock and manual override. Platform code calls
//
//   - ReceiveByte from the serial receive interrupt
//   - Tick from the periodic frame timer interrupt
//   - PulseExpired from the one-shot pulse timer interrupt
//   - Poll (or Run) from the main loop
type Controller struct {
	cfg       Config
	tickTimer TickTimer

	widths   *ChannelWidths
	queue    *ByteQueue
	watchdog *Watchdog
	seq      *Sequencer
	override *ManualOverride
	clock    *FrameClock
	registry *CommandRegistry
	pipeline *CommandPipeline
	log      EventLog
}

// NewController validates cfg and wires the engine to its drivers
func NewController(cfg Config, drv Drivers) (*Controller, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if drv.Outputs == nil || drv.Timer == nil {
		return nil, ErrMissingDriver
	}

	c := &Controller{
		cfg:       cfg,
		tickTimer: drv.Clock,
		widths:    NewChannelWidths(cfg.Channels),
		queue:     NewByteQueue(cfg.QueueCapacity),
		watchdog:  NewWatchdog(cfg.WatchdogFrames),
		registry:  NewCommandRegistry(),
	}
	c.seq = NewSequencer(c.widths, cfg.Timing(), drv.Outputs, drv.Timer)
	c.override = NewManualOverride(&c.cfg, c.widths, drv, &c.log)
	c.override.SetEnabled(cfg.ManualOverride)
	c.clock = NewFrameClock(cfg.FrameTicks, c.widths, c.seq, c.watchdog, c.override, &c.log)
	c.pipeline = NewCommandPipeline(c.queue, c.registry, &c.log, c.clock.Ticks)

	if err := c.registry.Register(protocol.PowerMarker, "power", "v0 v1 ... vN-1", c.handlePower); err != nil {
		return nil, err
	}
	return c, nil
}

// handlePower applies "p<v0> <v1> ...". Each value is clamped to the power
// limit; negative values leave their channel unchanged. A line with fewer
// values than channels updates only the channels it names.
func (c *Controller) handlePower(src protocol.ByteSource) int {
	c.override.SetEnabled(false)

	limit := int(c.cfg.Limit())
	parsed := 0
	for i := 0; i < c.widths.Len(); i++ {
		v := protocol.ReadDecimal(src)
		if v >= 0 {
			if v > limit {
				v = limit
			}
			c.widths.Set(i, uint8(v))
		}
		parsed++

		ch := src.Next()
		if ch == protocol.Terminator {
			src.PutBack(ch)
			break
		}
	}

	c.watchdog.Feed()
	c.log.Record(EvtCommand, c.clock.Ticks(), uint32(parsed))
	return parsed
}

// Start arms the periodic frame clock timer. Platforms without a Clock
// driver call Tick themselves.
func (c *Controller) Start() {
	if c.tickTimer != nil {
		c.tickTimer.ArmPeriodic(c.cfg.TickPeriodUS)
	}
}

// ReceiveByte queues a received byte (serial receive interrupt)
func (c *Controller) ReceiveByte(b byte) {
	if c.queue.Push(b & protocol.ByteMask) {
		c.log.Record(EvtLineDropped, c.clock.Ticks(), c.queue.Dropped())
	}
}

// Tick advances the frame clock (periodic timer interrupt)
func (c *Controller) Tick() {
	c.clock.Tick()
}

// PulseExpired ends the current channel pulse (one-shot timer interrupt)
func (c *Controller) PulseExpired() {
	c.seq.Expire()
}

// PulseExpiredIf ends the current channel pulse if current still reports the
// expiry as belonging to the armed pulse. current must not block.
func (c *Controller) PulseExpiredIf(current func() bool) {
	c.seq.ExpireIf(current)
}

// Poll processes one queued command line if available
func (c *Controller) Poll() bool {
	return c.pipeline.Poll()
}

// Run is the main loop. It never returns unless stop is closed.
func (c *Controller) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		if !c.Poll() {
			runtime.Gosched()
		}
	}
}

// SetManualOverride enables or disables the push button override
func (c *Controller) SetManualOverride(on bool) {
	c.override.SetEnabled(on)
}

// ManualOverride reports whether the push buttons are active
func (c *Controller) ManualOverride() bool {
	return c.override.Enabled()
}

// Widths returns a copy of the channel values
func (c *Controller) Widths() []uint8 {
	return c.widths.Snapshot(make([]uint8, 0, MaxChannels))
}

// Width returns the value of one channel
func (c *Controller) Width(ch int) uint8 {
	return c.widths.Get(ch)
}

// Config returns the effective configuration
func (c *Controller) Config() Config {
	return c.cfg
}

// Queue returns the receive queue
func (c *Controller) Queue() *ByteQueue {
	return c.queue
}

// Watchdog returns the command watchdog
func (c *Controller) Watchdog() *Watchdog {
	return c.watchdog
}

// Sequencer returns the channel sequencer
func (c *Controller) Sequencer() *Sequencer {
	return c.seq
}

// Clock returns the frame clock
func (c *Controller) Clock() *FrameClock {
	return c.clock
}

// Registry returns the command registry, for adding commands before Run
func (c *Controller) Registry() *CommandRegistry {
	return c.registry
}

// Events returns the event log
func (c *Controller) Events() *EventLog {
	return &c.log
}
