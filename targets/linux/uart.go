//go:build linux && !tinygo

package main

import (
	"errors"
	"io"

	"github.com/golang/glog"

	"escctl/core"
	"escctl/host/serial"
)

// uartTx implements core.Transmitter. Bytes are handed to a writer
// goroutine; when it falls behind, bytes are dropped.
type uartTx struct {
	ch chan byte
}

func newUARTTx() *uartTx {
	return &uartTx{ch: make(chan byte, 64)}
}

func (t *uartTx) TransmitByte(b byte) {
	select {
	case t.ch <- b:
	default:
	}
}

// writeLoop sends queued bytes to the port until it fails
func (t *uartTx) writeLoop(port serial.Port) {
	buf := make([]byte, 0, 16)
	for b := range t.ch {
		buf = append(buf[:0], b)
	drain:
		for len(buf) < cap(buf) {
			select {
			case b := <-t.ch:
				buf = append(buf, b)
			default:
				break drain
			}
		}
		if _, err := port.Write(buf); err != nil {
			glog.Errorf("uart write: %v", err)
			return
		}
	}
}

// readLoop feeds received bytes to the engine. Read timeouts are retried.
func readLoop(port serial.Port, ctrl *core.Controller) {
	buf := make([]byte, 32)
	for {
		n, err := port.Read(buf)
		for _, b := range buf[:n] {
			ctrl.ReceiveByte(b)
		}
		// tarm/serial reports a read timeout as io.EOF
		if err != nil && n == 0 && !errors.Is(err, io.EOF) {
			glog.Errorf("uart read: %v", err)
			return
		}
	}
}
