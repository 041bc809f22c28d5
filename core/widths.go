package core

import "sync/atomic"

// ChannelWidths holds the commanded value of every channel.
// Each cell is written by the main loop and read by the compare-match
// handler at arm time, so cells are atomic and need no critical section.
type ChannelWidths struct {
	cells [MaxChannels]atomic.Uint32
	n     int
}

// NewChannelWidths creates n zeroed channels
func NewChannelWidths(n int) *ChannelWidths {
	if n > MaxChannels {
		n = MaxChannels
	}
	return &ChannelWidths{n: n}
}

// Len returns the channel count
func (w *ChannelWidths) Len() int {
	return w.n
}

// Get returns the value of a channel
func (w *ChannelWidths) Get(ch int) uint8 {
	return uint8(w.cells[ch].Load())
}

// Set stores the value of a channel
func (w *ChannelWidths) Set(ch int, v uint8) {
	w.cells[ch].Store(uint32(v))
}

// ZeroAll forces every channel to 0 (the safe state)
func (w *ChannelWidths) ZeroAll() {
	for i := 0; i < w.n; i++ {
		w.cells[i].Store(0)
	}
}

// Snapshot copies all channel values into dst and returns the filled slice
func (w *ChannelWidths) Snapshot(dst []uint8) []uint8 {
	dst = dst[:0]
	for i := 0; i < w.n; i++ {
		dst = append(dst, w.Get(i))
	}
	return dst
}
