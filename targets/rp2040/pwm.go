//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/servo"
)

// mirrorPin carries the manual override mirror signal (PWM slice 5, channel A)
const mirrorPin = machine.GP10

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
	SetPeriod(period uint64) error
}

// RPMirror implements core.MirrorOutput with a 50Hz servo PWM
type RPMirror struct {
	servo servo.Servo
}

// NewRPMirror configures the mirror pin. Pulse ticks are microseconds.
func NewRPMirror(pin machine.Pin) (*RPMirror, error) {
	s, err := servo.New(getPWMPeripheral(pin), pin)
	if err != nil {
		return nil, err
	}
	return &RPMirror{servo: s}, nil
}

// SetPulseTicks sets the mirror pulse length
func (m *RPMirror) SetPulseTicks(ticks uint32) {
	if ticks > 0x7fff {
		ticks = 0x7fff
	}
	m.servo.SetMicroseconds(int16(ticks))
}

// getPWMPeripheral returns the PWM slice driving pin
// RP2040: GPIO pin N maps to slice (N >> 1) & 0x7
func getPWMPeripheral(pin machine.Pin) pwmPeripheral {
	switch (uint8(pin) >> 1) & 0x7 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
