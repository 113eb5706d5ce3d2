package core

import "strconv"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// EventKind tags a trace event.
type EventKind uint8

// Event kinds
const (
	EvtDispatch  EventKind = 1 // command resolved and executed
	EvtUnknown   EventKind = 2 // code dropped, Value holds the registry miss
	EvtShortRead EventKind = 3 // payload read timed out, Value = bytes read
	EvtAck       EventKind = 4 // ACK written
	EvtRejected  EventKind = 5 // handler returned an error
	EvtCreated   EventKind = 6 // device inserted
	EvtUpdated   EventKind = 7 // device reconfigured in place
	EvtPhase     EventKind = 8 // servo phase change, Value = new phase
	EvtPanic     EventKind = 9 // loop iteration recovered from a panic
)

func (k EventKind) String() string {
	switch k {
	case EvtDispatch:
		return "DISPATCH"
	case EvtUnknown:
		return "UNKNOWN"
	case EvtShortRead:
		return "SHORT_READ"
	case EvtAck:
		return "ACK"
	case EvtRejected:
		return "REJECTED"
	case EvtCreated:
		return "CREATED"
	case EvtUpdated:
		return "UPDATED"
	case EvtPhase:
		return "PHASE"
	case EvtPanic:
		return "PANIC"
	}
	return "EVT_" + strconv.Itoa(int(k))
}

// Event captures one step of message handling for post-mortem analysis
type Event struct {
	Kind  EventKind
	Code  uint8
	ID    uint8
	Clock uint32 // milliseconds since boot
	Value uint32
}

// TraceRingSize is the number of events kept.
const TraceRingSize = 32

// Tracer is the firmware debug channel: optional text output plus an
// always-on event ring.
type Tracer struct {
	writer  DebugWriter
	enabled bool

	ring [TraceRingSize]Event
	head uint8
	size uint8
}

// NewTracer creates a disabled tracer with no writer.
func NewTracer() *Tracer {
	return &Tracer{}
}

// SetWriter sets the platform-specific output function
func (t *Tracer) SetWriter(w DebugWriter) {
	t.writer = w
}

// SetEnabled enables or disables text output
func (t *Tracer) SetEnabled(enabled bool) {
	t.enabled = enabled
}

// Enabled reports whether Println produces output.
func (t *Tracer) Enabled() bool {
	return t.enabled && t.writer != nil
}

// Println writes msg when output is enabled.
func (t *Tracer) Println(msg string) {
	if t.enabled && t.writer != nil {
		t.writer(msg)
	}
}

// Record appends an event to the ring, overwriting the oldest.
func (t *Tracer) Record(kind EventKind, code, id uint8, clock, value uint32) {
	t.ring[t.head] = Event{Kind: kind, Code: code, ID: id, Clock: clock, Value: value}
	t.head = (t.head + 1) % TraceRingSize
	if t.size < TraceRingSize {
		t.size++
	}
}

// Events returns the recorded events, oldest first.
func (t *Tracer) Events() []Event {
	out := make([]Event, 0, t.size)
	start := (int(t.head) + TraceRingSize - int(t.size)) % TraceRingSize
	for i := 0; i < int(t.size); i++ {
		out = append(out, t.ring[(start+i)%TraceRingSize])
	}
	return out
}

// Last returns the most recent event of kind.
func (t *Tracer) Last(kind EventKind) (Event, bool) {
	events := t.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == kind {
			return events[i], true
		}
	}
	return Event{}, false
}

// Dump writes the ring through the writer regardless of the enable flag.
func (t *Tracer) Dump() {
	if t.writer == nil {
		return
	}
	t.writer("[TRACE] === Event Dump ===")
	for _, evt := range t.Events() {
		t.writer("[TRACE] " + evt.Kind.String() +
			" code=" + strconv.Itoa(int(evt.Code)) +
			" id=" + strconv.Itoa(int(evt.ID)) +
			" clock=" + strconv.Itoa(int(evt.Clock)) +
			" value=" + strconv.Itoa(int(evt.Value)))
	}
	t.writer("[TRACE] === End Dump ===")
}
