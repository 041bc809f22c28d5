package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"escctl/config"
	"escctl/core"
	"escctl/sim"
)

var (
	configPath = flag.String("config", "", "Firmware configuration JSON")
	baud       = flag.Uint("baud", sim.DefaultBaud, "Simulated UART rate")
	dumpConfig = flag.Bool("dump-config", false, "Print the effective configuration and exit")
	debug      = flag.Bool("debug", false, "Route firmware debug output to the log")
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
	cfg := config.DefaultBoardConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return fmt.Errorf("failed to load config %s: %w", *configPath, err)
		}
	}

	if *dumpConfig {
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if *debug {
		core.SetDebugWriter(func(s string) { glog.Info(s) })
		core.SetDebugEnabled(true)
	}

	board, err := sim.NewBoard(*cfg)
	if err != nil {
		return err
	}
	board.SetBaud(uint32(*baud))

	var script io.Reader = os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		script = f
	}

	glog.Infof("Simulating %d channels, frame %d ticks of %dus",
		cfg.Channels, cfg.FrameTicks, cfg.TickPeriodUS)
	if err := sim.RunScript(board, script, os.Stdout); err != nil {
		return err
	}

	if *debug {
		board.Controller().Events().Dump()
	}
	return nil
}
