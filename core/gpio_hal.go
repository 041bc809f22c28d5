package core

// OutputDriver drives the channel output lines.
// Platform-specific implementations handle actual hardware control.
type OutputDriver interface {
	// Assert sets the output line for a channel high
	Assert(channel uint8)

	// Deassert sets the output line for a channel low
	Deassert(channel uint8)
}

// InputPort is a digital input register read as a bitmask
type InputPort interface {
	// Snapshot performs a single read of the port
	Snapshot() uint8
}
