//go:build linux && !tinygo

// Command esc-linux runs the ESC firmware engine on a Linux board, driving
// the ESC signals from GPIO character device lines. Pulse timing is subject
// to scheduler jitter.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"

	"escctl/config"
	"escctl/core"
	"escctl/host/serial"
)

var (
	chip       = flag.String("chip", "gpiochip0", "GPIO chip")
	outputs    = flag.String("outputs", "17,27,22,23", "ESC output line offsets, one per channel")
	incLine    = flag.Int("inc", 5, "Increment button line offset (-1 disables)")
	decLine    = flag.Int("dec", 6, "Decrement button line offset (-1 disables)")
	device     = flag.String("device", "/dev/serial0", "UART device")
	baud       = flag.Int("baud", serial.DefaultBaud, "UART baud rate")
	configPath = flag.String("config", "", "Firmware configuration JSON")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		glog.Flush()
		os.Exit(1)
	}
}

func run() error {
	cfg := config.RP2040Config() // Microsecond ticks
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return fmt.Errorf("failed to load config %s: %w", *configPath, err)
		}
		if cfg.PulseTickFreq != TimerFreq {
			return fmt.Errorf("%w: pulse_tick_freq must be %d", core.ErrPulseTiming, TimerFreq)
		}
	}

	offsets, err := parseOffsets(*outputs)
	if err != nil {
		return err
	}
	if len(offsets) < cfg.Channels {
		return fmt.Errorf("%d output lines for %d channels", len(offsets), cfg.Channels)
	}

	outs, err := NewCdevOutputs(*chip, offsets[:cfg.Channels])
	if err != nil {
		return err
	}
	defer outs.Close()

	var lines []int
	var bits []uint8
	if *incLine >= 0 {
		lines, bits = append(lines, *incLine), append(bits, cfg.IncButtonBit)
	}
	if *decLine >= 0 {
		lines, bits = append(lines, *decLine), append(bits, cfg.DecButtonBit)
	}
	buttons, err := NewCdevButtons(*chip, lines, bits)
	if err != nil {
		return err
	}
	defer buttons.Close()

	serialCfg := serial.DefaultConfig(*device)
	serialCfg.Baud = *baud
	port, err := serial.Open(serialCfg)
	if err != nil {
		return err
	}
	defer port.Close()

	core.SetDebugWriter(func(s string) { glog.Info(s) })
	core.SetDebugEnabled(bool(glog.V(1)))

	stop := make(chan struct{})
	tx := newUARTTx()
	oneShot := &softOneShot{}
	clock := &tickerClock{stop: stop}
	ctrl, err := core.NewController(*cfg, core.Drivers{
		Outputs:     outs,
		Timer:       oneShot,
		Clock:       clock,
		Input:       buttons,
		Transmitter: tx,
	})
	if err != nil {
		return err
	}
	oneShot.expire = ctrl.PulseExpiredIf
	clock.ctrl = ctrl

	go tx.writeLoop(port)
	go readLoop(port, ctrl)
	ctrl.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		close(stop)
	}()

	glog.Infof("Driving %d channels on %s, UART %s", cfg.Channels, *chip, *device)
	for {
		select {
		case <-stop:
			ctrl.Events().Dump()
			return nil
		default:
		}
		if !ctrl.Poll() {
			time.Sleep(time.Millisecond)
		}
	}
}

func parseOffsets(s string) ([]int, error) {
	var offsets []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid line offset %q: %w", f, err)
		}
		offsets = append(offsets, n)
	}
	return offsets, nil
}
