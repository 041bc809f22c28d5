package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// EventType identifies a recorded engine event
type EventType uint8

// Event type codes
const (
	EvtNone           EventType = iota
	EvtCommand                  // Power command accepted (Value: channels parsed)
	EvtUnknownCommand           // Line started with an unregistered marker (Value: marker)
	EvtLineDropped              // Receive queue overflow (Value: total drops)
	EvtWatchdogTrip             // Command silence, outputs forced to zero
	EvtManualStep               // Manual override step (Value: new channel 0 width)
	EvtFrameOverrun             // Frame started before the last pulse ended
)

func (e EventType) String() string {
	switch e {
	case EvtCommand:
		return "COMMAND"
	case EvtUnknownCommand:
		return "UNKNOWN_CMD"
	case EvtLineDropped:
		return "LINE_DROPPED"
	case EvtWatchdogTrip:
		return "WATCHDOG_TRIP"
	case EvtManualStep:
		return "MANUAL_STEP"
	case EvtFrameOverrun:
		return "FRAME_OVERRUN"
	default:
		return "NONE"
	}
}

// Event captures an engine event for post-mortem analysis
type Event struct {
	Type  EventType
	Tick  uint32 // Frame clock tick at the event
	Value uint32 // Context-dependent value
}

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// EventLog is a fixed ring of the most recent events. Recording never
// allocates, so it is safe from interrupt handlers.
type EventLog struct {
	ring  [EventRingSize]Event
	head  uint8 // Next write position
	total uint32
}

// Record captures an event, overwriting the oldest when full
func (l *EventLog) Record(typ EventType, tick, value uint32) {
	state := disableInterrupts()
	l.ring[l.head] = Event{Type: typ, Tick: tick, Value: value}
	l.head = (l.head + 1) % EventRingSize
	l.total++
	restoreInterrupts(state)
}

// Events returns the recorded events, oldest first
func (l *EventLog) Events() []Event {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	out := make([]Event, 0, EventRingSize)
	for i := uint8(0); i < EventRingSize; i++ {
		evt := l.ring[(l.head+i)%EventRingSize]
		if evt.Type == EvtNone {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// Total returns the number of events recorded since the last Clear
func (l *EventLog) Total() uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return l.total
}

// Clear empties the ring
func (l *EventLog) Clear() {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	l.ring = [EventRingSize]Event{}
	l.head = 0
	l.total = 0
}

// Dump writes the ring through the debug writer, oldest first.
// Call from the main loop, never from an interrupt.
func (l *EventLog) Dump() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range l.Events() {
		debugPrintln("[EVENTS] " + evt.Type.String() +
			" tick=" + utoa(evt.Tick) +
			" v=" + utoa(evt.Value))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}
