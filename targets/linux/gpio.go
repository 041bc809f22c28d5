//go:build linux && !tinygo

package main

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/warthog618/go-gpiocdev"
)

const consumer = "escctl"

// CdevOutputs implements core.OutputDriver on GPIO character device lines
type CdevOutputs struct {
	lines []*gpiocdev.Line
}

// NewCdevOutputs requests the ESC lines as low outputs
func NewCdevOutputs(chip string, offsets []int) (*CdevOutputs, error) {
	d := &CdevOutputs{}
	for _, off := range offsets {
		line, err := gpiocdev.RequestLine(chip, off,
			gpiocdev.AsOutput(0),
			gpiocdev.WithConsumer(consumer))
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to request output line %d: %w", off, err)
		}
		d.lines = append(d.lines, line)
	}
	return d, nil
}

// Assert drives channel ch high
func (d *CdevOutputs) Assert(ch uint8) {
	if err := d.lines[ch].SetValue(1); err != nil {
		glog.Warningf("ch%d assert: %v", ch, err)
	}
}

// Deassert drives channel ch low
func (d *CdevOutputs) Deassert(ch uint8) {
	if err := d.lines[ch].SetValue(0); err != nil {
		glog.Warningf("ch%d deassert: %v", ch, err)
	}
}

// Close drives every line low and releases it
func (d *CdevOutputs) Close() {
	for _, line := range d.lines {
		line.SetValue(0)
		line.Reconfigure(gpiocdev.AsInput)
		line.Close()
	}
	d.lines = nil
}

// CdevButtons implements core.InputPort. bits[i] is the port bit of line i.
type CdevButtons struct {
	lines []*gpiocdev.Line
	bits  []uint8
}

// NewCdevButtons requests the button lines as pulled down inputs
func NewCdevButtons(chip string, offsets []int, bits []uint8) (*CdevButtons, error) {
	d := &CdevButtons{bits: bits}
	for _, off := range offsets {
		line, err := gpiocdev.RequestLine(chip, off,
			gpiocdev.AsInput,
			gpiocdev.WithPullDown,
			gpiocdev.WithConsumer(consumer))
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to request button line %d: %w", off, err)
		}
		d.lines = append(d.lines, line)
	}
	return d, nil
}

// Snapshot reads the button port
func (d *CdevButtons) Snapshot() uint8 {
	var v uint8
	for i, line := range d.lines {
		if level, err := line.Value(); err == nil && level != 0 {
			v |= 1 << d.bits[i]
		}
	}
	return v
}

// Close releases the lines
func (d *CdevButtons) Close() {
	for _, line := range d.lines {
		line.Close()
	}
	d.lines = nil
}
