package sim

import (
	"bytes"

	"github.com/golang/glog"

	"escctl/core"
)

// DefaultBaud is the serial rate used to space received bytes
const DefaultBaud = 115200

// Pulse is one completed channel pulse, in pulse timer ticks
type Pulse struct {
	Channel uint8
	Start   uint64
	Ticks   uint32
}

// Board is a simulated ESC board. It provides every driver the engine needs,
// runs the frame clock and the one-shot pulse timer in virtual time (pulse
// timer ticks) and records the output lines.
type Board struct {
	sched *Scheduler
	ctrl  *core.Controller

	tickPeriod uint64 // Pulse ticks per frame clock tick
	byteTicks  uint64 // Pulse ticks per received byte
	rxFree     uint64 // Time the receive line is idle again

	tick    Timer
	oneShot Timer
	armed   bool

	high      [core.MaxChannels]bool
	highSince [core.MaxChannels]uint64
	highCount int
	maxHigh   int
	pulses    []Pulse
	noTrace   bool

	buttons uint8
	tx      bytes.Buffer
	mirror  uint32
	mirrors uint32
}

// NewBoard builds a controller for cfg on a simulated board and starts the
// frame clock
func NewBoard(cfg core.Config) (*Board, error) {
	b := &Board{sched: &Scheduler{}}

	ctrl, err := core.NewController(cfg, core.Drivers{
		Outputs:     b,
		Timer:       b,
		Clock:       b,
		Input:       b,
		Transmitter: b,
		Mirror:      b,
	})
	if err != nil {
		return nil, err
	}
	b.ctrl = ctrl

	b.SetBaud(DefaultBaud)

	b.oneShot.Handler = b.pulseExpired
	b.tick.Handler = b.frameTick
	ctrl.Start()
	return b, nil
}

// Controller returns the engine running on the board
func (b *Board) Controller() *core.Controller {
	return b.ctrl
}

// Now returns the current virtual time in pulse timer ticks
func (b *Board) Now() uint64 {
	return b.sched.Now()
}

// TickPeriod returns the frame clock tick period in pulse timer ticks
func (b *Board) TickPeriod() uint64 {
	return b.tickPeriod
}

// FramePeriod returns the frame length in pulse timer ticks
func (b *Board) FramePeriod() uint64 {
	return b.tickPeriod * uint64(b.ctrl.Config().FrameTicks)
}

// SetBaud sets the rate at which Send delivers bytes
func (b *Board) SetBaud(baud uint32) {
	if baud == 0 {
		baud = DefaultBaud
	}
	freq := uint64(b.ctrl.Config().PulseTickFreq)
	b.byteTicks = freq * 10 / uint64(baud) // 8N1
	if b.byteTicks == 0 {
		b.byteTicks = 1
	}
}

// Send queues s on the receive line. Bytes arrive one character time apart,
// after anything already in flight.
func (b *Board) Send(s string) {
	at := b.sched.Now()
	if b.rxFree > at {
		at = b.rxFree
	}
	for i := 0; i < len(s); i++ {
		at += b.byteTicks
		c := s[i]
		b.sched.ScheduleTimer(&Timer{
			WakeTime: at,
			Handler: func(*Timer) uint8 {
				b.ctrl.ReceiveByte(c)
				return SF_DONE
			},
		})
	}
	b.rxFree = at
}

// RunFor advances virtual time by ticks, running the main loop after every
// event
func (b *Board) RunFor(ticks uint64) {
	deadline := b.sched.Now() + ticks
	for b.sched.Step(deadline) {
		for b.ctrl.Poll() {
		}
	}
}

// RunFrames advances virtual time by n frame periods
func (b *Board) RunFrames(n int) {
	b.RunFor(uint64(n) * b.FramePeriod())
}

// SetButtons sets the push button port value
func (b *Board) SetButtons(v uint8) {
	b.buttons = v
}

// Output returns everything transmitted by the engine
func (b *Board) Output() string {
	return b.tx.String()
}

// Pulses returns the completed pulses in order
func (b *Board) Pulses() []Pulse {
	return b.pulses
}

// LastPulse returns the ticks of the most recent completed pulse on ch
func (b *Board) LastPulse(ch uint8) (uint32, bool) {
	for i := len(b.pulses) - 1; i >= 0; i-- {
		if b.pulses[i].Channel == ch {
			return b.pulses[i].Ticks, true
		}
	}
	return 0, false
}

// MaxHigh returns the largest number of outputs seen high at once
func (b *Board) MaxHigh() int {
	return b.maxHigh
}

// Mirror returns the last mirror pulse length and how often it was set
func (b *Board) Mirror() (uint32, uint32) {
	return b.mirror, b.mirrors
}

// SetTrace enables or disables pulse recording (on by default)
func (b *Board) SetTrace(on bool) {
	b.noTrace = !on
}

// ClearTrace forgets recorded pulses and transmitted output
func (b *Board) ClearTrace() {
	b.pulses = b.pulses[:0]
	b.maxHigh = b.highCount
	b.tx.Reset()
}

func (b *Board) frameTick(t *Timer) uint8 {
	b.ctrl.Tick()
	t.WakeTime += b.tickPeriod
	return SF_RESCHEDULE
}

func (b *Board) pulseExpired(*Timer) uint8 {
	b.armed = false
	b.ctrl.PulseExpired()
	return SF_DONE
}

// ArmPeriodic implements core.TickTimer
func (b *Board) ArmPeriodic(periodUS uint32) {
	timing := b.ctrl.Config().Timing()
	b.tickPeriod = uint64(timing.TicksFromUS(periodUS))
	if b.tickPeriod == 0 {
		b.tickPeriod = 1
	}
	b.sched.CancelTimer(&b.tick)
	b.tick.WakeTime = b.sched.Now() + b.tickPeriod
	b.sched.ScheduleTimer(&b.tick)
}

// Assert implements core.OutputDriver
func (b *Board) Assert(ch uint8) {
	if b.high[ch] {
		return
	}
	b.high[ch] = true
	b.highSince[ch] = b.sched.Now()
	b.highCount++
	if b.highCount > b.maxHigh {
		b.maxHigh = b.highCount
	}
}

// Deassert implements core.OutputDriver
func (b *Board) Deassert(ch uint8) {
	if !b.high[ch] {
		return
	}
	b.high[ch] = false
	b.highCount--
	p := Pulse{
		Channel: ch,
		Start:   b.highSince[ch],
		Ticks:   uint32(b.sched.Now() - b.highSince[ch]),
	}
	if !b.noTrace {
		b.pulses = append(b.pulses, p)
	}
	if glog.V(3) {
		glog.Infof("sim: t=%d ch%d pulse %d ticks", b.sched.Now(), ch, p.Ticks)
	}
}

// ArmOneShot implements core.PulseTimer
func (b *Board) ArmOneShot(ticks uint32) {
	if b.armed {
		b.sched.CancelTimer(&b.oneShot)
	}
	b.armed = true
	b.oneShot.WakeTime = b.sched.Now() + uint64(ticks)
	b.sched.ScheduleTimer(&b.oneShot)
}

// Disarm implements core.PulseTimer
func (b *Board) Disarm() {
	if b.armed {
		b.sched.CancelTimer(&b.oneShot)
		b.armed = false
	}
}

// Snapshot implements core.InputPort
func (b *Board) Snapshot() uint8 {
	return b.buttons
}

// TransmitByte implements core.Transmitter
func (b *Board) TransmitByte(c byte) {
	b.tx.WriteByte(c)
}

// SetPulseTicks implements core.MirrorOutput
func (b *Board) SetPulseTicks(ticks uint32) {
	b.mirror = ticks
	b.mirrors++
}
