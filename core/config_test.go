package core

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Channels != 4 || cfg.Limit() != 200 || cfg.FrameTicks != 20 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.WatchdogFrames != 100 || cfg.QueueCapacity != 100 || cfg.DebounceSamples != 10 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.IncButtonBit != 5 || cfg.DecButtonBit != 4 {
		t.Errorf("Expected buttons on bits 5/4, got %d/%d", cfg.IncButtonBit, cfg.DecButtonBit)
	}
	if !cfg.EchoEnabled() {
		t.Error("Expected echo enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		err  error
	}{
		{"channels", Config{Channels: 9}, ErrChannels},
		{"power", Config{MaxValue: 100, PowerLimit: limitOf(150)}, ErrPowerLimit},
		{"queue", Config{QueueCapacity: 1}, ErrQueueCapacity},
		{"debounce", Config{DebounceSamples: 65}, ErrDebounce},
		{"buttons", Config{IncButtonBit: 3, DecButtonBit: 3}, ErrButtonBit},
		{"decay", Config{HoldThreshold: 10, HoldDecay: 20}, ErrHoldDecay},
	}

	for _, test := range tests {
		cfg := test.cfg
		cfg.ApplyDefaults()
		if err := cfg.Validate(); !errors.Is(err, test.err) {
			t.Errorf("%s: expected %v, got %v", test.name, test.err, err)
		}
	}
}

func limitOf(v uint8) *uint8 {
	return &v
}

func TestConfigZeroPowerLimit(t *testing.T) {
	c, _ := newTestController(t, Config{PowerLimit: limitOf(0)})
	if c.Config().Limit() != 0 {
		t.Fatalf("Expected limit 0 to be kept, got %d", c.Config().Limit())
	}

	send(c, "p10 20 30 40\r")
	for ch, w := range c.Widths() {
		if w != 0 {
			t.Errorf("Expected channel %d pinned to 0, got %d", ch, w)
		}
	}
}

func TestNewControllerRequiresDrivers(t *testing.T) {
	_, err := NewController(Config{}, Drivers{})
	if !errors.Is(err, ErrMissingDriver) {
		t.Errorf("Expected ErrMissingDriver, got %v", err)
	}

	_, err = NewController(Config{Channels: 12}, newTestBoard().drivers())
	if !errors.Is(err, ErrChannels) {
		t.Errorf("Expected ErrChannels, got %v", err)
	}
}

func TestEchoDisabled(t *testing.T) {
	echo := false
	c, board := newTestController(t, Config{ManualOverride: true, EchoManualSteps: &echo})

	board.input.value = incButton
	tickN(c, 10)
	if c.Width(0) != 10 {
		t.Fatalf("Expected step, got %d", c.Width(0))
	}
	if len(board.tx.out) != 0 {
		t.Errorf("Expected no echo, got %q", board.tx.out)
	}
}
