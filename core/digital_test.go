package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/protocol"
)

func TestBooleanOutput(t *testing.T) {
	rig := newRig(t)
	require.Equal(t, ack, rig.send(t, patch(protocol.BOOLEAN_OUTPUT, 2, 25, 1)...))
	assert.Equal(t, modeOutput, rig.gpio.modes[25])
	assert.True(t, rig.gpio.levels[25], "default applied")

	require.Equal(t, ack, rig.send(t, mutation(2, 0)...))
	assert.False(t, rig.gpio.levels[25])

	dev, _ := rig.fw.Devices().Get(2)
	out := dev.(*BooleanOutput)
	assert.Equal(t, GPIOPin(25), out.Pin())
	assert.False(t, out.Value())
}

func TestBooleanOutputDriverError(t *testing.T) {
	rig := newRig(t)
	rig.gpio.fail = errors.New("pin busy")
	assert.Empty(t, rig.send(t, patch(protocol.BOOLEAN_OUTPUT, 2, 25, 1)...))
	assert.Zero(t, rig.fw.Devices().Len())
}

func TestBooleanInputReports(t *testing.T) {
	rig := newRig(t)
	require.Equal(t, ack, rig.send(t, patch(protocol.BOOLEAN_INPUT, 6, 14, PullUp)...))
	assert.Equal(t, modePullUp, rig.gpio.modes[14])

	report := func(v byte) []byte { return []byte{byte(protocol.BOOLEAN_INPUT), 6, v} }

	// first tick reports the initial state
	rig.fw.Step()
	assert.Equal(t, report(0), rig.tr.takeOut())

	rig.fw.Step()
	assert.Empty(t, rig.tr.takeOut(), "no change, no report")

	rig.gpio.levels[14] = true
	rig.fw.Step()
	assert.Equal(t, report(1), rig.tr.takeOut())

	// forced report precedes the ACK
	out := rig.send(t, mutation(6)...)
	assert.Equal(t, append(report(1), ack...), out)
}

func TestBooleanInputPullModes(t *testing.T) {
	tests := []struct {
		pull byte
		mode pinMode
	}{
		{PullNone, modeInput},
		{PullUp, modePullUp},
		{PullDown, modePullDown},
	}
	for _, tt := range tests {
		rig := newRig(t)
		require.Equal(t, ack, rig.send(t, patch(protocol.BOOLEAN_INPUT, 1, 3, tt.pull)...))
		assert.Equal(t, tt.mode, rig.gpio.modes[3], "pull %d", tt.pull)
	}

	rig := newRig(t)
	assert.Empty(t, rig.send(t, patch(protocol.BOOLEAN_INPUT, 1, 3, 7)...))
	assert.Zero(t, rig.fw.Devices().Len())
}

func TestDigitalWriteNotMutable(t *testing.T) {
	rig := newRig(t)
	dw := &DigitalWrite{}
	assert.ErrorIs(t, dw.Mutate(rig.fw, nil), ErrNotRunnable)
	assert.False(t, dw.Runnable())
}

func TestDigitalDevicesNeedGPIO(t *testing.T) {
	tr := &fakeTransport{}
	fw, err := New(DefaultConfig(), tr, NewManualClock(), HAL{})
	require.NoError(t, err)

	for _, dev := range []Device{&BooleanOutput{}, &BooleanInput{}, &DigitalWrite{}} {
		assert.ErrorIs(t, dev.Configure(fw, []byte{1, 0}), ErrNoDriver, dev.Name())
	}
}
