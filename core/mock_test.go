package core

import "testing"

// mockOutputs records output line changes
type mockOutputs struct {
	high      [MaxChannels]bool
	asserts   []uint8
	deasserts []uint8
	maxHigh   int
}

func (m *mockOutputs) Assert(ch uint8) {
	m.high[ch] = true
	m.asserts = append(m.asserts, ch)
	if n := m.highCount(); n > m.maxHigh {
		m.maxHigh = n
	}
}

func (m *mockOutputs) Deassert(ch uint8) {
	m.high[ch] = false
	m.deasserts = append(m.deasserts, ch)
}

func (m *mockOutputs) highCount() int {
	n := 0
	for _, h := range m.high {
		if h {
			n++
		}
	}
	return n
}

// mockTimer records one-shot arming
type mockTimer struct {
	armed    []uint32
	disarmed int
	running  bool
}

func (m *mockTimer) ArmOneShot(ticks uint32) {
	m.armed = append(m.armed, ticks)
	m.running = true
}

func (m *mockTimer) Disarm() {
	m.disarmed++
	m.running = false
}

// mockClock records the periodic timer setup
type mockClock struct {
	periodUS uint32
	armed    int
}

func (m *mockClock) ArmPeriodic(periodUS uint32) {
	m.periodUS = periodUS
	m.armed++
}

// mockInput returns a fixed port value
type mockInput struct {
	value uint8
}

func (m *mockInput) Snapshot() uint8 {
	return m.value
}

// mockTx collects transmitted bytes
type mockTx struct {
	out []byte
}

func (m *mockTx) TransmitByte(b byte) {
	m.out = append(m.out, b)
}

// mockMirror records the mirror pulse
type mockMirror struct {
	ticks   uint32
	updates int
}

func (m *mockMirror) SetPulseTicks(ticks uint32) {
	m.ticks = ticks
	m.updates++
}

type testBoard struct {
	outputs *mockOutputs
	timer   *mockTimer
	clock   *mockClock
	input   *mockInput
	tx      *mockTx
	mirror  *mockMirror
}

func newTestBoard() *testBoard {
	return &testBoard{
		outputs: &mockOutputs{},
		timer:   &mockTimer{},
		clock:   &mockClock{},
		input:   &mockInput{},
		tx:      &mockTx{},
		mirror:  &mockMirror{},
	}
}

func (b *testBoard) drivers() Drivers {
	return Drivers{
		Outputs:     b.outputs,
		Timer:       b.timer,
		Clock:       b.clock,
		Input:       b.input,
		Transmitter: b.tx,
		Mirror:      b.mirror,
	}
}

func newTestController(t *testing.T, cfg Config) (*Controller, *testBoard) {
	t.Helper()
	board := newTestBoard()
	c, err := NewController(cfg, board.drivers())
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return c, board
}

// send queues a string as received bytes and processes every complete line
func send(c *Controller, s string) {
	for i := 0; i < len(s); i++ {
		c.ReceiveByte(s[i])
	}
	for c.Poll() {
	}
}

// runFrame ticks the clock through one full frame and lets the pulses finish
func runFrame(c *Controller, board *testBoard) {
	for i := uint32(0); i < c.Clock().FrameTicks(); i++ {
		c.Tick()
	}
	for board.timer.running {
		c.PulseExpired()
	}
}

func widthsEqual(got []uint8, want ...uint8) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
