package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/protocol"
)

type stubCommand struct{ code protocol.MessageCode }

func (c *stubCommand) Code() protocol.MessageCode        { return c.code }
func (c *stubCommand) Name() string                      { return "Stub" }
func (c *stubCommand) PayloadSize() protocol.PayloadSize { return protocol.Fixed(0) }
func (c *stubCommand) Execute(*Firmware, []byte) error   { return nil }

func TestRegistryDuplicateRejected(t *testing.T) {
	r := NewRegistry[Command]("command")
	first := func() Command { return &AckCommand{} }
	second := func() Command { return &stubCommand{code: protocol.ACK} }

	require.True(t, r.Register(protocol.ACK, first))
	assert.False(t, r.Register(protocol.ACK, second))
	assert.Equal(t, 1, r.Count())

	cmd, ok := r.Create(protocol.ACK)
	require.True(t, ok)
	assert.Equal(t, "Ack", cmd.Name(), "first registration wins")
}

func TestRegistryRejectsReservedAndNil(t *testing.T) {
	r := NewRegistry[Command]("command")
	for _, code := range []protocol.MessageCode{protocol.VOID, protocol.END_OF_LINE, protocol.DEBUG} {
		c := code
		assert.False(t, r.Register(c, func() Command { return &stubCommand{code: c} }), "code %d", c)
	}
	assert.False(t, r.Register(protocol.ACK, nil))
	assert.Equal(t, 0, r.Count())

	_, ok := r.Create(protocol.ACK)
	assert.False(t, ok)
}

func TestRegistryCreatesFreshInstances(t *testing.T) {
	rig := newRig(t)

	check := func(h Handler, code int) {
		assert.NotEmpty(t, h.Name(), "code %d", code)
		assert.EqualValues(t, code, h.Code())
		size := h.PayloadSize()
		if !size.IsVariable() {
			assert.True(t, size.Len() >= 0 && size.Len() <= protocol.MaxPayload, "code %d size %s", code, size)
		}
	}

	commands, devices := 0, 0
	for code := 0; code < 256; code++ {
		c := protocol.MessageCode(code)
		if cmd, ok := rig.fw.Commands().Create(c); ok {
			check(cmd, code)
			commands++
		}
		if dev, ok := rig.fw.DeviceRegistry().Create(c); ok {
			check(dev, code)
			assert.Zero(t, dev.ID())
			require.NoError(t, dev.bind(7))
			again, _ := rig.fw.DeviceRegistry().Create(c)
			assert.Zero(t, again.ID(), "code %d: bind leaked into the next instance", code)
			devices++
		}
	}
	assert.Equal(t, 4, commands)
	assert.Equal(t, 4, devices)
}

func TestRegistryCallsFactoryPerCreate(t *testing.T) {
	r := NewRegistry[Device]("device")
	calls := 0
	require.True(t, r.Register(protocol.BOOLEAN_OUTPUT, func() Device {
		calls++
		return &BooleanOutput{}
	}))
	assert.Equal(t, 0, calls, "Register must not build an instance")

	first, ok := r.Create(protocol.BOOLEAN_OUTPUT)
	require.True(t, ok)
	second, ok := r.Create(protocol.BOOLEAN_OUTPUT)
	require.True(t, ok)
	assert.Equal(t, 2, calls)
	assert.NotSame(t, first, second)

	require.NoError(t, first.bind(3))
	assert.EqualValues(t, 3, first.ID())
	assert.Zero(t, second.ID())
}

func TestCodeSpacesDisjoint(t *testing.T) {
	rig := newRig(t)
	for code := 0; code < 256; code++ {
		c := protocol.MessageCode(code)
		assert.False(t, rig.fw.Commands().Has(c) && rig.fw.DeviceRegistry().Has(c), "code %d in both registries", code)
	}
}

func TestInitDevicesRejectsCommandCollision(t *testing.T) {
	commands := NewRegistry[Command]("command")
	require.True(t, commands.Register(protocol.SERVO, func() Command { return &stubCommand{code: protocol.SERVO} }))

	err := InitDevices(NewRegistry[Device]("device"), commands)
	require.ErrorIs(t, err, ErrRegistration)

	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, protocol.SERVO, regErr.Code)
	assert.Contains(t, err.Error(), "SERVO")
}

func TestInitCommandsTwice(t *testing.T) {
	r := NewRegistry[Command]("command")
	require.NoError(t, InitCommands(r))
	assert.ErrorIs(t, InitCommands(r), ErrRegistration)
	assert.Equal(t, 4, r.Count())
}

func TestRegistryDictionary(t *testing.T) {
	rig := newRig(t)
	lines := strings.Split(strings.TrimSpace(rig.fw.DeviceRegistry().Dictionary()), "\n")
	assert.Equal(t, []string{
		"device 41 BooleanOutput",
		"device 42 Servo",
		"device 43 DigitalWrite",
		"device 141 BooleanInput",
	}, lines)
}
