package core

// Debouncer filters a noisy 8-bit input port. A bit reads as stable only when
// it was set in every one of the last K samples, so closing a switch takes K
// ticks to register while a single low sample releases it.
type Debouncer struct {
	history []uint8
	ix      int
	stable  uint8
	changed uint8
}

// NewDebouncer creates a filter over the last k samples
func NewDebouncer(k int) *Debouncer {
	if k < 1 {
		k = 1
	}
	return &Debouncer{history: make([]uint8, k)}
}

// Sample shifts in a raw port reading and recomputes the stable and changed
// masks. Called once per clock tick.
func (d *Debouncer) Sample(raw uint8) {
	d.history[d.ix] = raw
	d.ix++
	if d.ix >= len(d.history) {
		d.ix = 0
	}

	j := uint8(0xff)
	for _, s := range d.history {
		j &= s
	}
	d.changed = (d.stable ^ j) & j
	d.stable = j
}

// Stable returns the bits held high across the whole history
func (d *Debouncer) Stable() uint8 {
	return d.stable
}

// Changed returns the bits that became stable on the last sample
func (d *Debouncer) Changed() uint8 {
	return d.changed
}

// Reset clears the history
func (d *Debouncer) Reset() {
	for i := range d.history {
		d.history[i] = 0
	}
	d.ix = 0
	d.stable = 0
	d.changed = 0
}
