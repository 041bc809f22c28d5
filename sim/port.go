package sim

import (
	"errors"
	"io"
	"sync"
	"time"

	"escctl/core"
)

// ErrPortClosed is returned by writes after Close
var ErrPortClosed = errors.New("sim port closed")

// Port runs a Board in real time and exposes its UART as a serial port, so
// host tooling can drive the simulated firmware like real hardware.
type Port struct {
	mu    sync.Mutex
	board *Board
	read  int // Offset into the board output

	readable chan struct{}
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewPort creates a board for cfg and starts advancing it one frame clock
// tick per tick period of wall time
func NewPort(cfg core.Config) (*Port, error) {
	board, err := NewBoard(cfg)
	if err != nil {
		return nil, err
	}
	board.SetTrace(false)

	p := &Port{
		board:    board,
		readable: make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	period := time.Duration(board.Controller().Config().TickPeriodUS) * time.Microsecond
	go p.run(period)
	return p, nil
}

func (p *Port) run(period time.Duration) {
	defer close(p.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		p.board.RunFor(p.board.TickPeriod())
		pending := len(p.board.Output()) > p.read
		p.mu.Unlock()

		if pending {
			select {
			case p.readable <- struct{}{}:
			default:
			}
		}
	}
}

// Read returns bytes transmitted by the firmware, blocking until some are
// available or the port is closed
func (p *Port) Read(b []byte) (int, error) {
	for {
		p.mu.Lock()
		out := p.board.Output()
		if len(out) > p.read {
			n := copy(b, out[p.read:])
			p.read += n
			p.mu.Unlock()
			return n, nil
		}
		p.mu.Unlock()

		select {
		case <-p.stop:
			return 0, io.EOF
		case <-p.readable:
		}
	}
}

// Write delivers b to the firmware receive line
func (p *Port) Write(b []byte) (int, error) {
	select {
	case <-p.stop:
		return 0, ErrPortClosed
	default:
	}

	p.mu.Lock()
	p.board.Send(string(b))
	p.mu.Unlock()
	return len(b), nil
}

// Flush is a no-op
func (p *Port) Flush() error {
	return nil
}

// Close stops the board
func (p *Port) Close() error {
	p.once.Do(func() {
		close(p.stop)
		<-p.done
	})
	return nil
}

// Widths returns the channel values of the simulated firmware
func (p *Port) Widths() []uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.board.Controller().Widths()
}

// SetButtons sets the simulated push buttons
func (p *Port) SetButtons(v uint8) {
	p.mu.Lock()
	p.board.SetButtons(v)
	p.mu.Unlock()
}

// SetManualOverride switches the simulated firmware to push button control
func (p *Port) SetManualOverride(on bool) {
	p.mu.Lock()
	p.board.Controller().SetManualOverride(on)
	p.mu.Unlock()
}
