//go:build !wasm

package serial

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/tarm/serial"
	bugst "go.bug.st/serial"
)

// NativePort is a serial device opened with tarm/serial
type NativePort struct {
	port   *serial.Port
	device string
}

// Ports lists the serial devices present on the system
func Ports() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Open opens the device named by cfg. AutoDevice (or an empty name) picks
// an adapter from Ports. Input left over from a previous session is
// discarded so the first echo read is current.
func Open(cfg *Config) (*NativePort, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	device := cfg.Device
	if device == "" || device == AutoDevice {
		ports, err := Ports()
		if err != nil {
			return nil, err
		}
		if device, err = PickDevice(ports); err != nil {
			return nil, fmt.Errorf("%w among %v", err, ports)
		}
		glog.V(1).Infof("Selected serial device %s", device)
	}

	baud := cfg.Baud
	if baud == 0 {
		baud = DefaultBaud
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}

	p := &NativePort{port: port, device: device}
	if err := p.Flush(); err != nil {
		glog.Warningf("Failed to discard stale input on %s: %v", device, err)
	}
	return p, nil
}

// Device returns the path of the opened device
func (p *NativePort) Device() string {
	return p.device
}

func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the serial port
func (p *NativePort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Flush discards unread input
func (p *NativePort) Flush() error {
	return p.port.Flush()
}
