package core

import (
	"errors"
	"fmt"
)

// MaxChannels is the largest channel count the sequencer supports
const MaxChannels = 8

// DefaultPowerLimit is the clamp used when the configuration sets none
const DefaultPowerLimit uint8 = 200

// Config errors
var (
	ErrChannels      = errors.New("invalid channel count")
	ErrPowerLimit    = errors.New("power limit exceeds max value")
	ErrFrameTicks    = errors.New("frame ticks must be at least 1")
	ErrQueueCapacity = errors.New("queue capacity must be at least 2")
	ErrDebounce      = errors.New("invalid debounce sample count")
	ErrButtonBit     = errors.New("button bit out of range")
	ErrPulseTiming   = errors.New("invalid pulse timing")
	ErrHoldDecay     = errors.New("hold decay exceeds hold threshold")
	ErrMissingDriver = errors.New("output and timer drivers are required")
)

// Config holds the firmware tuning. Zero values are replaced by ApplyDefaults.
type Config struct {
	Channels   int   `json:"channels"`
	PowerLimit *uint8 `json:"power_limit,omitempty"` // Clamp for accepted values, 0 pins outputs to minimum
	MaxValue   uint8  `json:"max_value"`             // Value mapped to the maximum pulse

	PulseTickFreq  uint32 `json:"pulse_tick_freq"`
	PulseBaseTicks uint32 `json:"pulse_base_ticks"`

	FrameTicks     uint32 `json:"frame_ticks"`    // Clock ticks per frame
	TickPeriodUS   uint32 `json:"tick_period_us"` // Frame clock tick period
	WatchdogFrames uint32 `json:"watchdog_frames"`

	QueueCapacity   int `json:"queue_capacity"`
	DebounceSamples int `json:"debounce_samples"`

	// Manual override
	ManualOverride  bool   `json:"manual_override"` // Enabled at boot
	IncButtonBit    uint8  `json:"inc_button_bit"`
	DecButtonBit    uint8  `json:"dec_button_bit"`
	ManualStep      uint8  `json:"manual_step"`
	ManualMax       uint8  `json:"manual_max"`
	HoldThreshold   uint16 `json:"hold_threshold"` // Ticks held before auto-repeat
	HoldDecay       uint16 `json:"hold_decay"`     // Subtracted after each repeat
	EchoManualSteps *bool  `json:"echo_manual_steps,omitempty"`
}

// DefaultConfig returns the configuration of the four channel ESC board
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills in missing configuration values
func (c *Config) ApplyDefaults() {
	if c.Channels == 0 {
		c.Channels = 4
	}
	if c.MaxValue == 0 {
		c.MaxValue = DefaultMaxValue
	}
	if c.PowerLimit == nil {
		limit := DefaultPowerLimit
		c.PowerLimit = &limit
	}
	if c.PulseTickFreq == 0 {
		c.PulseTickFreq = DefaultPulseTickFreq
	}
	if c.PulseBaseTicks == 0 {
		c.PulseBaseTicks = DefaultPulseBaseTicks
	}
	if c.FrameTicks == 0 {
		c.FrameTicks = 20
	}
	if c.TickPeriodUS == 0 {
		c.TickPeriodUS = 1000
	}
	if c.WatchdogFrames == 0 {
		c.WatchdogFrames = 100 // 2s at 20ms frames
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = 100
	}
	if c.DebounceSamples == 0 {
		c.DebounceSamples = 10
	}
	if c.IncButtonBit == 0 && c.DecButtonBit == 0 {
		c.IncButtonBit = 5
		c.DecButtonBit = 4
	}
	if c.ManualStep == 0 {
		c.ManualStep = 10
	}
	if c.ManualMax == 0 {
		c.ManualMax = 100
	}
	if c.HoldThreshold == 0 {
		c.HoldThreshold = 500
	}
	if c.HoldDecay == 0 {
		c.HoldDecay = 80
	}
	if c.EchoManualSteps == nil {
		echo := true
		c.EchoManualSteps = &echo
	}
}

// Validate checks the configuration for values the engine cannot run with
func (c Config) Validate() error {
	if c.Channels < 1 || c.Channels > MaxChannels {
		return fmt.Errorf("%w: %d (1-%d)", ErrChannels, c.Channels, MaxChannels)
	}
	if c.Limit() > c.MaxValue {
		return fmt.Errorf("%w: %d > %d", ErrPowerLimit, c.Limit(), c.MaxValue)
	}
	if c.FrameTicks < 1 {
		return ErrFrameTicks
	}
	if c.QueueCapacity < 2 || c.QueueCapacity > 65535 {
		return fmt.Errorf("%w: %d", ErrQueueCapacity, c.QueueCapacity)
	}
	if c.DebounceSamples < 1 || c.DebounceSamples > 64 {
		return fmt.Errorf("%w: %d", ErrDebounce, c.DebounceSamples)
	}
	if c.IncButtonBit > 7 || c.DecButtonBit > 7 || c.IncButtonBit == c.DecButtonBit {
		return fmt.Errorf("%w: inc=%d dec=%d", ErrButtonBit, c.IncButtonBit, c.DecButtonBit)
	}
	if c.PulseTickFreq == 0 || c.PulseBaseTicks == 0 {
		return ErrPulseTiming
	}
	if c.HoldDecay > c.HoldThreshold {
		return fmt.Errorf("%w: %d > %d", ErrHoldDecay, c.HoldDecay, c.HoldThreshold)
	}
	return nil
}

// Timing returns the pulse mapping described by the configuration
func (c Config) Timing() PulseTiming {
	return NewPulseTiming(c.PulseTickFreq, c.PulseBaseTicks, c.MaxValue)
}

// EchoEnabled reports whether manual steps are echoed to the transmitter
func (c Config) EchoEnabled() bool {
	return c.EchoManualSteps == nil || *c.EchoManualSteps
}

// Limit returns the clamp applied to received values
func (c Config) Limit() uint8 {
	if c.PowerLimit == nil {
		return DefaultPowerLimit
	}
	return *c.PowerLimit
}
