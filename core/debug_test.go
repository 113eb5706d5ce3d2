package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerOutputGated(t *testing.T) {
	tr := NewTracer()
	var lines []string
	tr.Println("dropped, no writer")

	tr.SetWriter(func(s string) { lines = append(lines, s) })
	tr.Println("dropped, disabled")
	assert.False(t, tr.Enabled())

	tr.SetEnabled(true)
	tr.Println("kept")
	assert.Equal(t, []string{"kept"}, lines)
}

func TestTracerRingWraps(t *testing.T) {
	tr := NewTracer()
	for i := 0; i < TraceRingSize+5; i++ {
		tr.Record(EvtDispatch, uint8(i), 0, uint32(i), 0)
	}
	events := tr.Events()
	require.Len(t, events, TraceRingSize)
	assert.Equal(t, uint8(5), events[0].Code, "oldest surviving event first")
	assert.Equal(t, uint8(TraceRingSize+4), events[len(events)-1].Code)
}

func TestTracerLast(t *testing.T) {
	tr := NewTracer()
	tr.Record(EvtAck, 1, 0, 0, 0)
	tr.Record(EvtPhase, 42, 3, 10, uint32(PhaseCruising))
	tr.Record(EvtAck, 2, 0, 0, 0)

	evt, ok := tr.Last(EvtAck)
	require.True(t, ok)
	assert.Equal(t, uint8(2), evt.Code)

	evt, ok = tr.Last(EvtPhase)
	require.True(t, ok)
	assert.Equal(t, uint8(3), evt.ID)

	_, ok = tr.Last(EvtPanic)
	assert.False(t, ok)
}

func TestTracerDumpIgnoresEnable(t *testing.T) {
	tr := NewTracer()
	var lines []string
	tr.SetWriter(func(s string) { lines = append(lines, s) })
	tr.Record(EvtShortRead, 21, 0, 1500, 1)
	tr.Dump()

	require.Len(t, lines, 3)
	assert.Equal(t, "[TRACE] SHORT_READ code=21 id=0 clock=1500 value=1", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "[TRACE] === End"))
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "PHASE", EvtPhase.String())
	assert.Equal(t, "EVT_99", EventKind(99).String())
	assert.Equal(t, "cruising", PhaseCruising.String())
}
