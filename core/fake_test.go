package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hermes/protocol"
)

// fakeTransport serves queued input bytes and records everything written.
type fakeTransport struct {
	in       []byte
	out      []byte
	writeErr error
	resets   int
}

func (t *fakeTransport) feed(b ...byte) { t.in = append(t.in, b...) }

func (t *fakeTransport) BytesAvailable() int { return len(t.in) }

func (t *fakeTransport) WaitFor(n int, _ time.Duration) bool { return len(t.in) >= n }

func (t *fakeTransport) ReadExact(buf []byte) int {
	n := copy(buf, t.in)
	t.in = t.in[n:]
	return n
}

func (t *fakeTransport) WriteByte(b byte) error {
	if t.writeErr != nil {
		return t.writeErr
	}
	t.out = append(t.out, b)
	return nil
}

func (t *fakeTransport) WriteBytes(p []byte) error {
	if t.writeErr != nil {
		return t.writeErr
	}
	t.out = append(t.out, p...)
	return nil
}

func (t *fakeTransport) Reset() {
	t.in = nil
	t.resets++
}

// takeOut returns and clears the written bytes.
func (t *fakeTransport) takeOut() []byte {
	out := t.out
	t.out = nil
	return out
}

type pinMode uint8

const (
	modeUnset pinMode = iota
	modeOutput
	modeInput
	modePullUp
	modePullDown
)

type fakeGPIO struct {
	modes  map[GPIOPin]pinMode
	levels map[GPIOPin]bool
	writes int
	fail   error
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{modes: map[GPIOPin]pinMode{}, levels: map[GPIOPin]bool{}}
}

func (g *fakeGPIO) configure(pin GPIOPin, m pinMode) error {
	if g.fail != nil {
		return g.fail
	}
	g.modes[pin] = m
	return nil
}

func (g *fakeGPIO) ConfigureOutput(pin GPIOPin) error        { return g.configure(pin, modeOutput) }
func (g *fakeGPIO) ConfigureInput(pin GPIOPin) error         { return g.configure(pin, modeInput) }
func (g *fakeGPIO) ConfigureInputPullUp(pin GPIOPin) error   { return g.configure(pin, modePullUp) }
func (g *fakeGPIO) ConfigureInputPullDown(pin GPIOPin) error { return g.configure(pin, modePullDown) }
func (g *fakeGPIO) ReadPin(pin GPIOPin) bool                 { return g.levels[pin] }

func (g *fakeGPIO) SetPin(pin GPIOPin, value bool) error {
	if g.fail != nil {
		return g.fail
	}
	g.levels[pin] = value
	g.writes++
	return nil
}

type fakeActuator struct {
	pin      GPIOPin
	attached bool
	attaches int
	detaches int
	writes   []uint16
}

func (a *fakeActuator) Attach(pin GPIOPin) error {
	if a.attached && a.pin == pin {
		return nil
	}
	a.pin = pin
	a.attached = true
	a.attaches++
	return nil
}

func (a *fakeActuator) Detach() error {
	a.attached = false
	a.detaches++
	return nil
}

func (a *fakeActuator) Attached() bool { return a.attached }

func (a *fakeActuator) WritePulseWidth(us uint16) error {
	if !a.attached {
		return errors.New("write to detached actuator")
	}
	a.writes = append(a.writes, us)
	return nil
}

func (a *fakeActuator) last() uint16 {
	if len(a.writes) == 0 {
		return 0
	}
	return a.writes[len(a.writes)-1]
}

type fakeServoDriver struct {
	actuators []*fakeActuator
}

func (d *fakeServoDriver) NewActuator() Actuator {
	a := &fakeActuator{}
	d.actuators = append(d.actuators, a)
	return a
}

type testRig struct {
	fw     *Firmware
	tr     *fakeTransport
	gpio   *fakeGPIO
	servos *fakeServoDriver
	clock  *ManualClock
	lines  []string
}

func newRig(t *testing.T, opts ...func(*Config)) *testRig {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Debug = true
	for _, o := range opts {
		o(&cfg)
	}
	r := &testRig{
		tr:     &fakeTransport{},
		gpio:   newFakeGPIO(),
		servos: &fakeServoDriver{},
		clock:  NewManualClock(),
	}
	fw, err := New(cfg, r.tr, r.clock, HAL{GPIO: r.gpio, Servos: r.servos})
	require.NoError(t, err)
	fw.Trace().SetWriter(func(s string) { r.lines = append(r.lines, s) })
	r.fw = fw
	return r
}

// send queues a message and polls it through the dispatcher.
func (r *testRig) send(t *testing.T, msg ...byte) []byte {
	t.Helper()
	r.tr.feed(msg...)
	require.True(t, r.fw.Dispatcher().Poll())
	return r.tr.takeOut()
}

// tickFor steps the loop every interval for d.
func (r *testRig) tickFor(d, interval time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += interval {
		r.clock.Advance(interval)
		r.fw.Step()
	}
}

func patch(code protocol.MessageCode, id byte, settings ...byte) []byte {
	msg := []byte{byte(protocol.PATCH), byte(len(settings) + 2), byte(code), id}
	return append(msg, settings...)
}

func mutation(id byte, value ...byte) []byte {
	return append([]byte{byte(protocol.MUTATION), id}, value...)
}

func servoSettings(pin byte, def, tmin, tmax, min, max uint16, speed, accel int16) []byte {
	b := []byte{pin}
	for _, v := range []uint16{def, tmin, tmax, min, max} {
		b = protocol.AppendUint16(b, v)
	}
	b = protocol.AppendInt16(b, speed)
	return protocol.AppendInt16(b, accel)
}

func angle(v uint16) []byte {
	hi, lo := protocol.EncodePosition(v)
	return []byte{hi, lo}
}

var ack = []byte{byte(protocol.ACK)}
