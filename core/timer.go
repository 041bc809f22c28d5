package core

// Pulse timer defaults: 20MHz crystal with a /8 prescaler
const (
	DefaultPulseTickFreq  = 2500000 // 2.5MHz
	DefaultPulseBaseTicks = 2500    // 1ms minimum pulse
	DefaultMaxValue       = 255
)

// PulseTiming is the affine mapping from a channel value to pulse timer ticks:
//
//	ticks = BaseTicks + value*TicksPerUnit
type PulseTiming struct {
	TickFreq     uint32 // Pulse timer frequency in Hz
	BaseTicks    uint32 // Pulse length for value 0
	TicksPerUnit uint32 // Added ticks per value step
}

// NewPulseTiming derives TicksPerUnit so that maxValue maps to roughly twice
// the base pulse (rounded to nearest).
func NewPulseTiming(tickFreq, baseTicks uint32, maxValue uint8) PulseTiming {
	perUnit := uint32(0)
	if maxValue > 0 {
		perUnit = (baseTicks + uint32(maxValue)/2) / uint32(maxValue)
	}
	return PulseTiming{
		TickFreq:     tickFreq,
		BaseTicks:    baseTicks,
		TicksPerUnit: perUnit,
	}
}

// Ticks converts a channel value to pulse timer ticks
func (p PulseTiming) Ticks(value uint8) uint32 {
	return p.BaseTicks + uint32(value)*p.TicksPerUnit
}

// TicksToUS converts pulse timer ticks to microseconds
func (p PulseTiming) TicksToUS(ticks uint32) uint32 {
	if p.TickFreq == 0 {
		return 0
	}
	return uint32(uint64(ticks) * 1000000 / uint64(p.TickFreq))
}

// TicksFromUS converts microseconds to pulse timer ticks
func (p PulseTiming) TicksFromUS(us uint32) uint32 {
	return uint32(uint64(us) * uint64(p.TickFreq) / 1000000)
}
