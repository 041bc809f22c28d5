// Package protocol implements the line-oriented ESC command protocol
package protocol

// Version represents the escctl firmware version
const Version = "0.1.0"

// Protocol constants
const (
	Terminator  = '\r' // Ends every line
	LineFeed    = '\n' // Sent after echo output, ignored on receive
	PowerMarker = 'p'  // "p<v0> <v1> ... <vN-1>\r"
	Separator   = ' '

	// ASCII mask applied to every received byte
	ByteMask = 0x7f

	// MaxLine is the longest line the host tool will send
	MaxLine = 64
)
