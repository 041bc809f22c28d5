package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"escctl/host/esc"
	"escctl/host/serial"
	"escctl/sim"
)

// Shell provides the ishell backed ESC console.
type Shell struct {
	Shell *ishell.Shell
	Link  *esc.Link
	Sim   *sim.Port   // Set when running against the simulator
	Web   *esc.Server // Set when the HTTP API is enabled

	keepAlive time.Duration
	cancel    context.CancelFunc
}

const shellKey = "$shell"

var commands = []*ishell.Cmd{
	&PowerCmd,
	&StopCmd,
	&KeepAliveCmd,
	&RawCmd,
	&LastCmd,
	&StatusCmd,
	&ManualCmd,
	&ButtonsCmd,
	&PortsCmd,
}

// NewShell creates a console for link
func NewShell(link *esc.Link, simPort *sim.Port) *Shell {
	s := &Shell{
		Shell: ishell.New(),
		Link:  link,
		Sim:   simPort,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("esc > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeSimulated wraps command func requiring the simulator.
func MustBeSimulated(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Sim == nil {
			c.Err(fmt.Errorf("only available with -device sim"))
			return
		}
		fn(c)
	}
}

// StartKeepAlive (re)starts resending the last power vector every interval.
// A zero interval stops it.
func (s *Shell) StartKeepAlive(interval time.Duration) {
	s.StopKeepAlive()
	if interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.keepAlive = interval
	go func() {
		if err := s.Link.KeepAlive(ctx, interval); err != nil && ctx.Err() == nil {
			glog.Errorf("keep-alive stopped: %v", err)
		}
	}()
}

// StopKeepAlive stops the keep-alive loop
func (s *Shell) StopKeepAlive() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.keepAlive = 0
}

// WatchEchoes prints manual override steps reported by the firmware
func (s *Shell) WatchEchoes(ctx context.Context) {
	go func() {
		err := s.Link.ReadEchoes(ctx, func(line string) {
			if line == "" {
				return
			}
			s.Shell.Printf("[esc] %s\n", line)
			if s.Web != nil {
				s.Web.Publish(line)
			}
		})
		if err != nil {
			glog.Errorf("echo reader stopped: %v", err)
		}
	}()
}

// Run processes args as one command, or runs the interactive shell
func (s *Shell) Run(args ...string) error {
	defer s.StopKeepAlive()
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	s.Shell.Run()
	return nil
}

// parseValues converts command arguments to channel values
func parseValues(args []string, limit int) ([]uint8, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one value expected")
	}
	if len(args) > limit {
		return nil, fmt.Errorf("at most %d values expected", limit)
	}
	values := make([]uint8, len(args))
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", arg, err)
		}
		values[i] = uint8(v)
	}
	return values, nil
}

// parseInterval accepts "off", a duration ("250ms") or plain milliseconds
func parseInterval(arg string) (time.Duration, error) {
	if arg == "off" {
		return 0, nil
	}
	if ms, err := strconv.Atoi(arg); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(arg)
}

func formatValues(values []uint8) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, " ")
}

var (
	// PowerCmd sends a power command.
	PowerCmd = ishell.Cmd{
		Name:    "power",
		Aliases: []string{"p"},
		Help:    "V0 [V1 ...]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			values, err := parseValues(c.Args, s.Link.Channels())
			if err != nil {
				c.Err(err)
				return
			}
			if err := s.Link.SetPower(values...); err != nil {
				c.Err(err)
			}
		},
	}

	// StopCmd zeroes every channel.
	StopCmd = ishell.Cmd{
		Name:    "stop",
		Aliases: []string{"s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Link.Stop(); err != nil {
				c.Err(err)
			}
		},
	}

	// KeepAliveCmd sets the keep-alive interval.
	KeepAliveCmd = ishell.Cmd{
		Name:    "keepalive",
		Aliases: []string{"ka"},
		Help:    "INTERVAL|off",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) != 1 {
				c.Printf("keep-alive: %v\n", s.keepAlive)
				return
			}
			interval, err := parseInterval(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			s.StartKeepAlive(interval)
		},
	}

	// RawCmd sends a line as typed.
	RawCmd = ishell.Cmd{
		Name: "raw",
		Help: "LINE",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Link.WriteRaw(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
			}
		},
	}

	// LastCmd prints the last power vector sent.
	LastCmd = ishell.Cmd{
		Name: "last",
		Help: "",
		Func: func(c *ishell.Context) {
			last := ShellFrom(c).Link.Last()
			if last == nil {
				c.Println("nothing sent")
				return
			}
			c.Println(formatValues(last))
		},
	}

	// StatusCmd prints link state.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			c.Printf("channels: %d\n", s.Link.Channels())
			c.Printf("sent:     %d\n", s.Link.Sent())
			c.Printf("keep-alive: %v\n", s.keepAlive)
			if s.Sim != nil {
				c.Printf("sim widths: %s\n", formatValues(s.Sim.Widths()))
			}
		},
	}

	// ManualCmd switches the simulated firmware to push button control.
	ManualCmd = ishell.Cmd{
		Name: "manual",
		Help: "on|off",
		Func: MustBeSimulated(func(c *ishell.Context) {
			if len(c.Args) != 1 || (c.Args[0] != "on" && c.Args[0] != "off") {
				c.Err(fmt.Errorf("on or off expected"))
				return
			}
			ShellFrom(c).Sim.SetManualOverride(c.Args[0] == "on")
		}),
	}

	// ButtonsCmd sets the simulated button port.
	ButtonsCmd = ishell.Cmd{
		Name: "buttons",
		Help: "VALUE (inc=0x20 dec=0x10)",
		Func: MustBeSimulated(func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("port value expected"))
				return
			}
			v, err := strconv.ParseUint(c.Args[0], 0, 8)
			if err != nil {
				c.Err(err)
				return
			}
			ShellFrom(c).Sim.SetButtons(uint8(v))
		}),
	}

	// PortsCmd lists serial devices.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Help: "",
		Func: func(c *ishell.Context) {
			ports, err := serial.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, p := range ports {
				c.Println(p)
			}
		},
	}
)
