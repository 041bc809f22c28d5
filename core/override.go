package core

import (
	"sync/atomic"

	"escctl/protocol"
)

// ManualOverride lets two push buttons step the channel 0 width. One press
// is one step; holding a button past the hold threshold repeats the step
// every tick while lowering the threshold, so the ramp accelerates.
//
// The threshold and decay constants come from the original board tuning.
type ManualOverride struct {
	enabled atomic.Bool

	debounce *Debouncer
	widths   *ChannelWidths
	timing   PulseTiming
	input    InputPort
	tx       Transmitter
	mirror   MirrorOutput
	log      *EventLog

	incMask   uint8
	decMask   uint8
	step      uint8
	max       uint8
	threshold uint16
	decay     uint16
	echo      bool

	incHeld uint16
	decHeld uint16
	echoBuf [8]byte
}

// NewManualOverride creates a disabled override
func NewManualOverride(cfg *Config, widths *ChannelWidths, drv Drivers, log *EventLog) *ManualOverride {
	return &ManualOverride{
		debounce:  NewDebouncer(cfg.DebounceSamples),
		widths:    widths,
		timing:    cfg.Timing(),
		input:     drv.Input,
		tx:        drv.Transmitter,
		mirror:    drv.Mirror,
		log:       log,
		incMask:   1 << cfg.IncButtonBit,
		decMask:   1 << cfg.DecButtonBit,
		step:      cfg.ManualStep,
		max:       cfg.ManualMax,
		threshold: cfg.HoldThreshold,
		decay:     cfg.HoldDecay,
		echo:      cfg.EchoEnabled(),
	}
}

// Enabled reports whether the buttons are being sampled
func (m *ManualOverride) Enabled() bool {
	return m.enabled.Load()
}

// SetEnabled switches manual mode
func (m *ManualOverride) SetEnabled(on bool) {
	m.enabled.Store(on)
}

// Tick samples the buttons and applies presses and held repeats.
// Called from the frame clock on every tick.
func (m *ManualOverride) Tick(tick uint32) {
	if !m.enabled.Load() {
		m.incHeld, m.decHeld = 0, 0
		return
	}

	if m.input != nil {
		m.debounce.Sample(m.input.Snapshot())
	}
	changed := m.debounce.Changed()
	stable := m.debounce.Stable()

	// Just pressed; increment wins if both edges arrive together
	if changed&m.incMask != 0 {
		m.increment(tick)
	} else if changed&m.decMask != 0 {
		m.decrement(tick)
	}

	// Held down
	if stable&m.incMask != 0 {
		if m.incHeld > m.threshold {
			m.increment(tick)
			m.incHeld -= m.decay
		}
		m.incHeld++
	} else {
		m.incHeld = 0
	}

	if stable&m.decMask != 0 {
		if m.decHeld > m.threshold {
			m.decrement(tick)
			m.decHeld -= m.decay
		}
		m.decHeld++
	} else {
		m.decHeld = 0
	}

	if m.mirror != nil {
		m.mirror.SetPulseTicks(m.timing.Ticks(m.widths.Get(0)))
	}
}

func (m *ManualOverride) increment(tick uint32) {
	v := m.widths.Get(0)
	if v < m.max {
		if m.max-v < m.step {
			v = m.max
		} else {
			v += m.step
		}
		m.widths.Set(0, v)
	}
	m.stepped(tick, v)
}

func (m *ManualOverride) decrement(tick uint32) {
	v := m.widths.Get(0)
	if v > 0 {
		if v < m.step {
			v = 0
		} else {
			v -= m.step
		}
		m.widths.Set(0, v)
	}
	m.stepped(tick, v)
}

// stepped records the step and echoes the new value as "<digits>\r\n"
func (m *ManualOverride) stepped(tick uint32, v uint8) {
	if m.log != nil {
		m.log.Record(EvtManualStep, tick, uint32(v))
	}
	if !m.echo || m.tx == nil {
		return
	}
	out := protocol.AppendDecimal(m.echoBuf[:0], uint32(v))
	out = append(out, protocol.Terminator, protocol.LineFeed)
	for _, b := range out {
		m.tx.TransmitByte(b)
	}
}
