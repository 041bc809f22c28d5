package core

// Transmitter is the synchronous serial transmit path. It is only used for
// diagnostic echo and has no protocol significance.
type Transmitter interface {
	TransmitByte(b byte)
}
