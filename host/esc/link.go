// Package esc talks to the ESC firmware over a serial port
package esc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"escctl/host/serial"
	"escctl/protocol"
)

// DefaultKeepAlive is the resend interval that keeps the firmware watchdog
// (2s at the default configuration) from tripping
const DefaultKeepAlive = 500 * time.Millisecond

var (
	ErrTooManyValues = errors.New("more values than channels")
	ErrNothingSent   = errors.New("no power command sent yet")
	ErrLineTooLong   = errors.New("line too long")
	ErrInterval      = errors.New("keep-alive interval must be positive")
	ErrClosed        = errors.New("link closed")
)

// Link is a connection to one ESC board. It remembers the last power vector
// so a keep-alive loop can resend it.
type Link struct {
	port     serial.Port
	channels int

	mu   sync.Mutex
	last []uint8
	buf  []byte
	sent uint64

	closed atomic.Bool
}

// NewLink wraps an open port. channels is the channel count of the firmware.
func NewLink(port serial.Port, channels int) *Link {
	return &Link{
		port:     port,
		channels: channels,
		buf:      make([]byte, 0, protocol.MaxLine),
	}
}

// Open opens the serial device and returns a link to it
func Open(cfg *serial.Config, channels int) (*Link, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("Opened %s for %d channels", port.Device(), channels)
	return NewLink(port, channels), nil
}

// Channels returns the channel count
func (l *Link) Channels() int {
	return l.channels
}

// SetPower sends a power command. Fewer values than channels update only
// the leading channels.
func (l *Link) SetPower(values ...uint8) error {
	if len(values) > l.channels {
		return fmt.Errorf("%w: %d > %d", ErrTooManyValues, len(values), l.channels)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.sendLocked(values); err != nil {
		return err
	}
	l.last = append(l.last[:0], values...)
	return nil
}

// Stop sets every channel to zero
func (l *Link) Stop() error {
	return l.SetPower(make([]uint8, l.channels)...)
}

// Resend repeats the last power command
func (l *Link) Resend() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.last == nil {
		return ErrNothingSent
	}
	return l.sendLocked(l.last)
}

// Last returns a copy of the last power vector sent
func (l *Link) Last() []uint8 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return nil
	}
	return append([]uint8(nil), l.last...)
}

// Sent returns the number of lines written
func (l *Link) Sent() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sent
}

// WriteRaw sends an arbitrary line, adding the terminator if missing
func (l *Link) WriteRaw(line string) error {
	line = strings.TrimRight(line, "\r\n")
	if len(line)+1 > protocol.MaxLine {
		return fmt.Errorf("%w: %d bytes", ErrLineTooLong, len(line))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf = append(append(l.buf[:0], line...), protocol.Terminator)
	return l.writeLocked()
}

func (l *Link) sendLocked(values []uint8) error {
	l.buf = protocol.AppendPowerCommand(l.buf[:0], values)
	return l.writeLocked()
}

func (l *Link) writeLocked() error {
	if l.closed.Load() {
		return ErrClosed
	}
	if glog.V(2) {
		glog.Infof("esc tx %q", l.buf)
	}
	if _, err := l.port.Write(l.buf); err != nil {
		return fmt.Errorf("failed to write to ESC: %w", err)
	}
	l.sent++
	return nil
}

// KeepAlive resends the last power command every interval until ctx is done.
// Ticks before the first SetPower are skipped.
func (l *Link) KeepAlive(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return ErrInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := l.Resend()
			if errors.Is(err, ErrNothingSent) {
				continue
			}
			if err != nil {
				return err
			}
		}
	}
}

// ReadEchoes calls fn with every line the firmware transmits (manual
// override steps) until ctx is done, the link is closed or the port fails.
func (l *Link) ReadEchoes(ctx context.Context, fn func(line string)) error {
	scanner := bufio.NewScanner(&portReader{ctx: ctx, link: l})
	scanner.Split(protocol.ScanLines)

	for scanner.Scan() {
		line := scanner.Text()
		if glog.V(2) {
			glog.Infof("esc rx %q", line)
		}
		fn(line)
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil || l.closed.Load() {
			return nil
		}
		glog.Warningf("esc echo read failed: %v", err)
		return err
	}
	return nil
}

// Close closes the port
func (l *Link) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.port.Close()
}

// portReader retries read timeouts of the serial port until the context is
// done or the link is closed
type portReader struct {
	ctx  context.Context
	link *Link
}

func (r *portReader) Read(b []byte) (int, error) {
	for {
		if r.link.closed.Load() {
			return 0, io.EOF
		}
		if err := r.ctx.Err(); err != nil {
			return 0, err
		}

		n, err := r.link.port.Read(b)
		if n > 0 {
			return n, nil
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}
}
