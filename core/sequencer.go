package core

// SequencerState is either Idle or Active on one channel
type SequencerState struct {
	active  bool
	channel uint8
}

// Idle is the state between frames
func Idle() SequencerState {
	return SequencerState{}
}

// Active is the state while the pulse of channel ch is high
func Active(ch uint8) SequencerState {
	return SequencerState{active: true, channel: ch}
}

// IsIdle reports whether no pulse is in progress
func (s SequencerState) IsIdle() bool {
	return !s.active
}

// Channel returns the channel whose pulse is in progress
func (s SequencerState) Channel() (uint8, bool) {
	return s.channel, s.active
}

func (s SequencerState) String() string {
	if !s.active {
		return "idle"
	}
	return "active(" + utoa(uint32(s.channel)) + ")"
}

// Sequencer time-multiplexes one one-shot timer across the channel outputs.
// Each frame it raises channel 0, and on every timer expiry lowers the
// current channel and raises the next, so at most one output is high.
//
// The width of a channel is read when its pulse is armed; later updates
// apply from the next frame.
type Sequencer struct {
	widths *ChannelWidths
	timing PulseTiming
	out    OutputDriver
	timer  PulseTimer

	state    SequencerState
	armed    [MaxChannels]uint32 // Ticks armed for each channel in the last frame
	frames   uint32
	overruns uint32
}

// NewSequencer creates an idle sequencer
func NewSequencer(widths *ChannelWidths, timing PulseTiming, out OutputDriver, timer PulseTimer) *Sequencer {
	return &Sequencer{
		widths: widths,
		timing: timing,
		out:    out,
		timer:  timer,
	}
}

// Start begins a frame: Idle -> Active(0). Called from the frame clock.
// If the previous frame is still running its pulse is cut short first.
func (s *Sequencer) Start() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if ch, active := s.state.Channel(); active {
		s.out.Deassert(ch)
		s.overruns++
	}
	s.frames++
	s.activate(0)
}

// Expire handles the compare-match interrupt: the current pulse ends and the
// next channel starts, or the frame ends and the timer is disarmed.
func (s *Sequencer) Expire() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	s.expire()
}

// ExpireIf is Expire for software timers whose callbacks can race a re-arm.
// current runs inside the critical section and reports whether the expiry
// still belongs to the armed pulse; stale expiries are ignored.
func (s *Sequencer) ExpireIf(current func() bool) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if !current() {
		return
	}
	s.expire()
}

// expire must be called inside the critical section
func (s *Sequencer) expire() {
	ch, active := s.state.Channel()
	if !active {
		s.timer.Disarm()
		return
	}

	s.out.Deassert(ch)
	next := int(ch) + 1
	if next < s.widths.Len() {
		s.activate(uint8(next))
		return
	}
	s.state = Idle()
	s.timer.Disarm()
}

// activate raises channel ch and arms the timer with its latched width.
// Must be called inside the critical section.
func (s *Sequencer) activate(ch uint8) {
	ticks := s.timing.Ticks(s.widths.Get(int(ch)))
	s.armed[ch] = ticks
	s.state = Active(ch)
	s.out.Assert(ch)
	s.timer.ArmOneShot(ticks)
}

// State returns the current state
func (s *Sequencer) State() SequencerState {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return s.state
}

// ArmedTicks returns the pulse length armed for ch in the current or last frame
func (s *Sequencer) ArmedTicks(ch int) uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return s.armed[ch]
}

// Frames returns the number of frames started
func (s *Sequencer) Frames() uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return s.frames
}

// Overruns returns how many frames started before the previous one ended
func (s *Sequencer) Overruns() uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return s.overruns
}
