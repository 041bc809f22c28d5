package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"

	"escctl/config"
	"escctl/core"
	"escctl/host/esc"
	"escctl/host/serial"
	"escctl/sim"
)

var (
	device     = flag.String("device", serial.AutoDevice, "Serial device path, \"auto\" for the first USB adapter, or \"sim\" for the simulated board")
	baud       = flag.Int("baud", serial.DefaultBaud, "Baud rate")
	keepAlive  = flag.Duration("keepalive", esc.DefaultKeepAlive, "Resend interval for the last power command (0 disables)")
	configPath = flag.String("config", "", "Firmware configuration JSON (channel count, simulator tuning)")
	listenAddr = flag.String("http", "", "Serve the HTTP API on this address (e.g. :8080)")
	listPorts  = flag.Bool("list", false, "List serial ports and exit")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		glog.Flush()
		os.Exit(1)
	}
}

func run(args []string) error {
	if *listPorts {
		ports, err := serial.Ports()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	cfg := config.DefaultBoardConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return fmt.Errorf("failed to load config %s: %w", *configPath, err)
		}
	}

	link, simPort, err := connect(cfg)
	if err != nil {
		return err
	}
	defer link.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewShell(link, simPort)
	if *listenAddr != "" {
		s.Web = esc.NewServer(link)
		httpServer := &http.Server{
			Handler:      s.Web.Handler(),
			Addr:         *listenAddr,
			WriteTimeout: 4 * time.Second,
			ReadTimeout:  4 * time.Second,
		}
		go func() {
			glog.Infof("HTTP API on %s", *listenAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				glog.Errorf("http server: %v", err)
			}
		}()
		defer httpServer.Close()
	}
	s.WatchEchoes(ctx)
	s.StartKeepAlive(*keepAlive)
	return s.Run(args...)
}

func connect(cfg *core.Config) (*esc.Link, *sim.Port, error) {
	if *device == "sim" {
		port, err := sim.NewPort(*cfg)
		if err != nil {
			return nil, nil, err
		}
		glog.Infof("Running against simulated board (%d channels)", cfg.Channels)
		return esc.NewLink(port, cfg.Channels), port, nil
	}

	serialCfg := serial.DefaultConfig(*device)
	serialCfg.Baud = *baud
	link, err := esc.Open(serialCfg, cfg.Channels)
	if err != nil {
		return nil, nil, err
	}
	glog.Infof("Connected to %s at %d baud", *device, *baud)
	return link, nil, nil
}
