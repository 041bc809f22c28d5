//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"escctl/core"
)

const uartBaud = 115200

// txQueue buffers echo output produced in interrupt context until the main
// loop writes it to the UART
var txQueue = core.NewByteQueue(64)

// RPTransmitter implements core.Transmitter
type RPTransmitter struct{}

// TransmitByte queues b for the UART
func (RPTransmitter) TransmitByte(b byte) {
	txQueue.Push(b)
}

// InitUART configures UART0 on GP0/GP1
func InitUART() error {
	return uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: uartBaud,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
}

// uartReaderLoop runs in a goroutine and feeds received bytes to the engine
func uartReaderLoop() {
	// Recover from panics to prevent a firmware crash
	defer func() {
		if r := recover(); r != nil {
			rxErrors++
			// Restart the reader loop
			time.Sleep(100 * time.Millisecond)
			go uartReaderLoop()
		}
	}()

	var buf [32]byte
	ctx := context.Background()
	for {
		n, err := uartx.UART0.RecvSomeContext(ctx, buf[:])
		if err != nil {
			rxErrors++
			time.Sleep(1 * time.Millisecond)
			continue
		}
		for _, b := range buf[:n] {
			controller.ReceiveByte(b)
		}
	}
}

// writeUART drains the transmit queue
func writeUART() {
	var out [16]byte
	n := 0
	for n < len(out) {
		b, ok := txQueue.TryPop()
		if !ok {
			break
		}
		out[n] = b
		n++
	}
	if n > 0 {
		if _, err := uartx.UART0.Write(out[:n]); err != nil {
			txErrors++
		}
	}
}
