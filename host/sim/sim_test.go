package sim

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/core"
	"hermes/protocol"
)

func TestLoopback(t *testing.T) {
	l := NewLoopback()
	host := l.Host()

	_, err := host.Write([]byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, l.Buffered())
	b, err := l.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(1), b)

	_, err = l.Write([]byte{9})
	require.NoError(t, err)
	buf := make([]byte, 4)
	n, err := host.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, buf[:n])

	done := make(chan error)
	go func() {
		_, err := host.Read(buf)
		done <- err
	}()
	require.NoError(t, host.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, io.ErrClosedPipe)
	case <-time.After(time.Second):
		t.Fatal("Read did not unblock on Close")
	}
}

func TestLoopbackReadByteEmpty(t *testing.T) {
	l := NewLoopback()
	_, err := l.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestGPIOSet(t *testing.T) {
	g := NewGPIO()
	require.NoError(t, g.ConfigureInputPullUp(4))
	assert.True(t, g.ReadPin(4), "pull-up reads high")
	g.Set(4, false)
	assert.False(t, g.ReadPin(4))
	assert.Equal(t, "input pull-up", g.Mode(4))

	require.NoError(t, g.ConfigureOutput(5))
	require.NoError(t, g.SetPin(5, true))
	assert.True(t, g.Level(5))
}

// waitFor polls cond until it holds or a second passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBoardRunsFirmware(t *testing.T) {
	l := NewLoopback()
	cfg := core.DefaultConfig()
	cfg.SettleDelay = time.Hour
	b, err := New(l, l, Options{Config: cfg})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	host := l.Host()
	settings := []byte{9}
	for _, v := range []uint16{90, 0, 180, 0, 180} {
		settings = protocol.AppendUint16(settings, v)
	}
	settings = protocol.AppendInt16(settings, -1)
	settings = protocol.AppendInt16(settings, -1)
	frame := append([]byte{byte(protocol.PATCH), byte(len(settings) + 2), byte(protocol.SERVO), 1}, settings...)
	_, err = host.Write(frame)
	require.NoError(t, err)

	reply := make([]byte, 1)
	_, err = io.ReadFull(host, reply)
	require.NoError(t, err)
	assert.Equal(t, byte(protocol.ACK), reply[0])

	_, err = host.Write([]byte{byte(protocol.MUTATION), 1, 0, 180})
	require.NoError(t, err)
	waitFor(t, func() bool {
		a, ok := b.Servos.Pin(9)
		return ok && a.Snapshot().Pulse == core.MAX_PULSE
	})
}
