//go:build rp2040

package main

import (
	"machine"
	"time"

	"escctl/config"
	"escctl/core"
)

var (
	controller *core.Controller

	// Debug counters
	rxErrors   uint32
	txErrors   uint32
	loopErrors uint32
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Debug output goes to USB CDC, the UART carries the command protocol
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s + "\r\n"))
	})

	if err := InitUART(); err != nil {
		fail()
	}

	cfg := config.RP2040Config()
	drv := core.Drivers{
		Outputs:     NewRPOutputs(cfg.Channels),
		Timer:       oneShot,
		Clock:       &frameAlarm,
		Input:       NewRPButtons(),
		Transmitter: RPTransmitter{},
	}
	if mirror, err := NewRPMirror(mirrorPin); err == nil {
		drv.Mirror = mirror
	} else {
		core.DebugPrintln("mirror output unavailable: " + err.Error())
	}

	ctrl, err := core.NewController(*cfg, drv)
	if err != nil {
		fail()
	}
	controller = ctrl

	// Start interrupts only once the controller exists
	oneShot.init()
	controller.Start()

	go uartReaderLoop()

	// Main loop
	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					loopErrors++
				}
			}()

			for controller.Poll() {
			}
			writeUART()
		}()

		// Yield to other goroutines
		time.Sleep(100 * time.Microsecond)
	}
}

// fail blinks the LED forever
func fail() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
