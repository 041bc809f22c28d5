package serial

import (
	"errors"
	"io"
	"sort"
	"strings"
)

// Port is the byte stream to an ESC board: a native serial device, the
// simulated board (sim.Port) or a test fake.
type Port interface {
	io.ReadWriteCloser

	// Flush discards received bytes not read yet
	Flush() error
}

// AutoDevice selects the first USB serial adapter found
const AutoDevice = "auto"

// DefaultBaud is the UART rate of the ESC board
const DefaultBaud = 115200

// DefaultReadTimeout bounds a Read so echo readers can notice cancellation
const DefaultReadTimeout = 100

// ErrNoDevice is returned when AutoDevice finds no serial adapter
var ErrNoDevice = errors.New("no serial device found")

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3") or AutoDevice
	Device string

	// Baud rate, DefaultBaud when zero
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the ESC board settings for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeout,
	}
}

// devicePrefixes ranks adapter names: CDC boards first, then USB UART bridges
var devicePrefixes = []string{
	"/dev/ttyACM",
	"/dev/ttyUSB",
	"/dev/cu.usbmodem",
	"/dev/cu.usbserial",
	"COM",
}

// PickDevice chooses the most likely ESC board among the listed ports
func PickDevice(ports []string) (string, error) {
	for _, prefix := range devicePrefixes {
		var matches []string
		for _, p := range ports {
			if strings.HasPrefix(p, prefix) {
				matches = append(matches, p)
			}
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[0], nil
		}
	}
	return "", ErrNoDevice
}
