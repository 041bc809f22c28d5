//go:build rp2040

package main

import (
	"machine"

	"escctl/core"
)

// ESC signal outputs, one per channel. GP0/GP1 carry UART0.
var escPins = [core.MaxChannels]machine.Pin{
	machine.GP2, machine.GP3, machine.GP4, machine.GP5,
	machine.GP6, machine.GP7, machine.GP8, machine.GP9,
}

// Push button port. Bit n of the snapshot is buttonPins[n], active high.
var buttonPins = [8]machine.Pin{
	machine.NoPin, machine.NoPin, machine.NoPin, machine.NoPin,
	machine.GP14, // Decrement
	machine.GP15, // Increment
	machine.NoPin, machine.NoPin,
}

// RPOutputs implements core.OutputDriver on GPIO pins
type RPOutputs struct {
	pins []machine.Pin
}

// NewRPOutputs configures the first n ESC pins as low outputs
func NewRPOutputs(n int) *RPOutputs {
	d := &RPOutputs{pins: escPins[:n]}
	for _, pin := range d.pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		pin.Low()
	}
	return d
}

// Assert drives channel ch high
func (d *RPOutputs) Assert(ch uint8) {
	d.pins[ch].High()
}

// Deassert drives channel ch low
func (d *RPOutputs) Deassert(ch uint8) {
	d.pins[ch].Low()
}

// RPButtons implements core.InputPort
type RPButtons struct{}

// NewRPButtons configures the button pins with pull-downs
func NewRPButtons() RPButtons {
	for _, pin := range buttonPins {
		if pin != machine.NoPin {
			pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
		}
	}
	return RPButtons{}
}

// Snapshot reads the button port
func (RPButtons) Snapshot() uint8 {
	var v uint8
	for i, pin := range buttonPins {
		if pin != machine.NoPin && pin.Get() {
			v |= 1 << i
		}
	}
	return v
}
