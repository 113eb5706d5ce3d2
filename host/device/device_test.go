package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/protocol"
)

func TestServoSettingsLayout(t *testing.T) {
	s := Servo{Pin: 9, Default: 90, TMin: 0, TMax: 180, Min: 10, Max: 170, Speed: 300, Accel: -1}
	assert.Equal(t, []byte{
		9,
		0, 90,
		0, 0,
		0, 180,
		0, 10,
		0, 170,
		0x01, 0x2C,
		0xFF, 0xFF,
	}, s.Settings())
}

func TestServoValue(t *testing.T) {
	v, err := Servo{}.Value(0x1234)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34}, v)

	_, err = Servo{}.Value(-1)
	assert.ErrorIs(t, err, ErrValueRange)
	_, err = Servo{}.Value(70000)
	assert.ErrorIs(t, err, ErrValueRange)
}

func TestBooleanKinds(t *testing.T) {
	assert.Equal(t, []byte{13, 1}, BooleanOutput{Pin: 13, Default: true}.Settings())
	v, err := BooleanOutput{}.Value(5)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, v)

	assert.Equal(t, []byte{14, 2}, BooleanInput{Pin: 14, Pull: PullDown}.Settings())
	v, err = BooleanInput{}.Value(1)
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = DigitalWrite{}.Value(1)
	assert.ErrorIs(t, err, ErrNotMutable)
}

func TestParsePull(t *testing.T) {
	for in, want := range map[string]Pull{"": PullNone, "none": PullNone, "UP": PullUp, "down": PullDown} {
		got, err := ParsePull(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePull("sideways")
	assert.Error(t, err)
}

func TestPatchFrame(t *testing.T) {
	frame, err := PatchFrame(3, BooleanOutput{Pin: 7})
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(protocol.PATCH), 4, byte(protocol.BOOLEAN_OUTPUT), 3, 7, 0}, frame)

	frame, err = PatchFrame(3, Servo{Pin: 9, TMax: 180, Max: 180})
	require.NoError(t, err)
	assert.Len(t, frame, 4+15)
	assert.Equal(t, byte(17), frame[1])

	frame, err = PatchFrame(8, DigitalWrite{Pin: 5, Level: true})
	require.NoError(t, err)
	assert.Equal(t, byte(0), frame[3], "one-shot kinds carry id 0")
}

type bigSpec struct{ BooleanOutput }

func (bigSpec) Settings() []byte { return make([]byte, 254) }

func TestPatchFrameTooLarge(t *testing.T) {
	_, err := PatchFrame(1, bigSpec{})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestMutationAndHandshakeFrames(t *testing.T) {
	assert.Equal(t, []byte{byte(protocol.MUTATION), 4, 0, 90}, MutationFrame(4, []byte{0, 90}))
	assert.Equal(t, []byte{byte(protocol.MUTATION), 4}, MutationFrame(4, nil))
	assert.Equal(t, []byte{byte(protocol.HANDSHAKE), 2}, HandshakeFrame(2))
	assert.Equal(t, []byte{byte(protocol.HANDSHAKE), 255}, HandshakeFrame(300))
}
