package sim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrScript is wrapped by every script error
var ErrScript = errors.New("script error")

// RunScript drives b from a line based script and writes a report to w.
// Script lines:
//
//	# comment
//	send <text>      raw line to the receive path, terminator added
//	p<v0> <v1> ...   shorthand for send
//	wait <frames>    run frames, then report the measured pulse widths
//	ticks <n>        run frame clock ticks without reporting
//	buttons <value>  set the push button port (0x20 inc, 0x10 dec)
//	manual on|off    switch manual override
//	events           dump the firmware event ring
func RunScript(b *Board, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := runLine(b, line, w); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrScript, lineNo, err)
		}
	}
	return scanner.Err()
}

func runLine(b *Board, line string, w io.Writer) error {
	if line[0] == 'p' && (len(line) == 1 || line[1] == '-' || (line[1] >= '0' && line[1] <= '9')) {
		b.Send(line + "\r")
		return nil
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "send":
		b.Send(strings.TrimPrefix(line, "send ") + "\r")

	case "wait":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		b.RunFrames(n)
		report(b, w)

	case "ticks":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		b.RunFor(uint64(n) * b.TickPeriod())

	case "buttons":
		if len(args) != 1 {
			return errors.New("buttons expects one value")
		}
		v, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			return err
		}
		b.SetButtons(uint8(v))

	case "manual":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return errors.New("manual expects on or off")
		}
		b.Controller().SetManualOverride(args[0] == "on")

	case "events":
		for _, evt := range b.Controller().Events().Events() {
			fmt.Fprintf(w, "event %s tick=%d v=%d\n", evt.Type, evt.Tick, evt.Value)
		}

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("one count expected")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return n, nil
}

// report prints the last measured pulse of every channel in microseconds,
// with any echo output since the previous report
func report(b *Board, w io.Writer) {
	ctrl := b.Controller()
	timing := ctrl.Config().Timing()

	var sb strings.Builder
	fmt.Fprintf(&sb, "t=%dus", timing.TicksToUS(uint32(b.Now())))
	for ch := 0; ch < ctrl.Config().Channels; ch++ {
		ticks, ok := b.LastPulse(uint8(ch))
		if !ok {
			sb.WriteString(" -")
			continue
		}
		fmt.Fprintf(&sb, " ch%d=%d/%dus", ch, ctrl.Width(ch), timing.TicksToUS(ticks))
	}
	if ctrl.Watchdog().Expired() {
		sb.WriteString(" watchdog")
	}
	if ctrl.ManualOverride() {
		sb.WriteString(" manual")
	}
	fmt.Fprintln(w, sb.String())

	if out := b.Output(); out != "" {
		fmt.Fprintf(w, "echo %q\n", out)
	}
	b.ClearTrace()
}
