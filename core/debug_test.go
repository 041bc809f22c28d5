package core

import (
	"strings"
	"testing"
)

func TestEventLogRing(t *testing.T) {
	var log EventLog

	for i := uint32(1); i <= EventRingSize+5; i++ {
		log.Record(EvtCommand, i, i)
	}

	events := log.Events()
	if len(events) != EventRingSize {
		t.Fatalf("Expected %d events, got %d", EventRingSize, len(events))
	}
	if events[0].Tick != 6 || events[len(events)-1].Tick != EventRingSize+5 {
		t.Errorf("Expected oldest tick 6 and newest %d, got %d and %d",
			EventRingSize+5, events[0].Tick, events[len(events)-1].Tick)
	}
	if log.Total() != EventRingSize+5 {
		t.Errorf("Expected total %d, got %d", EventRingSize+5, log.Total())
	}

	log.Clear()
	if len(log.Events()) != 0 {
		t.Error("Expected empty ring after Clear")
	}
}

func TestEventLogDump(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	var log EventLog
	log.Record(EvtWatchdogTrip, 40, 101)
	log.Dump()

	if len(lines) != 3 {
		t.Fatalf("Expected header, event and footer, got %v", lines)
	}
	if !strings.Contains(lines[1], "WATCHDOG_TRIP tick=40 v=101") {
		t.Errorf("Unexpected event line %q", lines[1])
	}
}

func TestControllerRecordsOverflow(t *testing.T) {
	c, _ := newTestController(t, Config{QueueCapacity: 4})

	for _, b := range []byte("abcde") {
		c.ReceiveByte(b)
	}

	events := c.Events().Events()
	if len(events) != 1 || events[0].Type != EvtLineDropped {
		t.Errorf("Expected one LINE_DROPPED event, got %v", events)
	}
}

func TestDebugPrintln(t *testing.T) {
	var got string
	SetDebugWriter(func(s string) { got = s })
	defer SetDebugWriter(func(string) {})

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	if got != "" {
		t.Error("Debug output should be suppressed when disabled")
	}

	SetDebugEnabled(true)
	defer SetDebugEnabled(false)
	DebugPrintln("shown")
	if got != "shown" || !IsDebugEnabled() {
		t.Errorf("Expected debug output, got %q", got)
	}
}
