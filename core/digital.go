package core

import (
	"time"

	"hermes/protocol"
)

// Boolean input pull modes
const (
	PullNone = 0
	PullUp   = 1
	PullDown = 2
)

// BooleanOutput drives a GPIO pin high or low.
// Settings: [pin][default]. Value: [state].
type BooleanOutput struct {
	deviceID
	pin   GPIOPin
	value bool
}

func (*BooleanOutput) Code() protocol.MessageCode         { return protocol.BOOLEAN_OUTPUT }
func (*BooleanOutput) Name() string                       { return "BooleanOutput" }
func (*BooleanOutput) PayloadSize() protocol.PayloadSize  { return protocol.Fixed(2) }
func (*BooleanOutput) Runnable() bool                     { return true }
func (*BooleanOutput) MutationSize() protocol.PayloadSize { return protocol.Fixed(1) }
func (*BooleanOutput) Tick(*Firmware, time.Duration)      {}
func (o *BooleanOutput) Pin() GPIOPin                     { return o.pin }
func (o *BooleanOutput) Value() bool                      { return o.value }

func (o *BooleanOutput) Configure(fw *Firmware, settings []byte) error {
	if len(settings) < 2 {
		return ErrShortPayload
	}
	gpio, err := fw.gpio()
	if err != nil {
		return err
	}
	o.pin = GPIOPin(settings[0])
	if err := gpio.ConfigureOutput(o.pin); err != nil {
		return err
	}
	return o.set(gpio, settings[1] != 0)
}

func (o *BooleanOutput) Mutate(fw *Firmware, value []byte) error {
	if len(value) < 1 {
		return ErrShortPayload
	}
	gpio, err := fw.gpio()
	if err != nil {
		return err
	}
	return o.set(gpio, value[0] != 0)
}

func (o *BooleanOutput) set(gpio GPIODriver, v bool) error {
	if err := gpio.SetPin(o.pin, v); err != nil {
		return err
	}
	o.value = v
	return nil
}

// DigitalWrite sets a pin once and is discarded. Settings: [pin][value].
type DigitalWrite struct {
	deviceID
}

func (*DigitalWrite) Code() protocol.MessageCode         { return protocol.DIGITAL_WRITE }
func (*DigitalWrite) Name() string                       { return "DigitalWrite" }
func (*DigitalWrite) PayloadSize() protocol.PayloadSize  { return protocol.Fixed(2) }
func (*DigitalWrite) Runnable() bool                     { return false }
func (*DigitalWrite) MutationSize() protocol.PayloadSize { return protocol.Fixed(0) }
func (*DigitalWrite) Mutate(*Firmware, []byte) error     { return ErrNotRunnable }
func (*DigitalWrite) Tick(*Firmware, time.Duration)      {}

func (*DigitalWrite) Configure(fw *Firmware, settings []byte) error {
	if len(settings) < 2 {
		return ErrShortPayload
	}
	gpio, err := fw.gpio()
	if err != nil {
		return err
	}
	pin := GPIOPin(settings[0])
	if err := gpio.ConfigureOutput(pin); err != nil {
		return err
	}
	return gpio.SetPin(pin, settings[1] != 0)
}

// BooleanInput watches a pin and reports [BOOLEAN_INPUT][id][state] to the
// host whenever the state changes. A MUTATION with no value forces a report.
// Settings: [pin][pull].
type BooleanInput struct {
	deviceID
	pin      GPIOPin
	pull     uint8
	value    bool
	reported bool // at least one report sent since Configure

	report [3]byte
}

func (*BooleanInput) Code() protocol.MessageCode         { return protocol.BOOLEAN_INPUT }
func (*BooleanInput) Name() string                       { return "BooleanInput" }
func (*BooleanInput) PayloadSize() protocol.PayloadSize  { return protocol.Fixed(2) }
func (*BooleanInput) Runnable() bool                     { return true }
func (*BooleanInput) MutationSize() protocol.PayloadSize { return protocol.Fixed(0) }
func (i *BooleanInput) Pin() GPIOPin                     { return i.pin }
func (i *BooleanInput) Value() bool                      { return i.value }

func (i *BooleanInput) Configure(fw *Firmware, settings []byte) error {
	if len(settings) < 2 {
		return ErrShortPayload
	}
	gpio, err := fw.gpio()
	if err != nil {
		return err
	}
	pin, pull := GPIOPin(settings[0]), settings[1]
	switch pull {
	case PullNone:
		err = gpio.ConfigureInput(pin)
	case PullUp:
		err = gpio.ConfigureInputPullUp(pin)
	case PullDown:
		err = gpio.ConfigureInputPullDown(pin)
	default:
		return ErrInvalidRange
	}
	if err != nil {
		return err
	}
	i.pin, i.pull = pin, pull
	i.value = gpio.ReadPin(pin)
	i.reported = false
	return nil
}

func (i *BooleanInput) Mutate(fw *Firmware, _ []byte) error {
	gpio, err := fw.gpio()
	if err != nil {
		return err
	}
	i.value = gpio.ReadPin(i.pin)
	return i.send(fw)
}

// Tick samples the pin; the first tick after Configure always reports.
func (i *BooleanInput) Tick(fw *Firmware, _ time.Duration) {
	gpio := fw.hal.GPIO
	if gpio == nil {
		return
	}
	v := gpio.ReadPin(i.pin)
	if i.reported && v == i.value {
		return
	}
	i.value = v
	if err := i.send(fw); err != nil {
		fw.trace.Println("BooleanInput: report failed: " + err.Error())
	}
}

func (i *BooleanInput) send(fw *Firmware) error {
	i.report[0] = byte(protocol.BOOLEAN_INPUT)
	i.report[1] = i.id
	i.report[2] = 0
	if i.value {
		i.report[2] = 1
	}
	if err := fw.transport.WriteBytes(i.report[:]); err != nil {
		return err
	}
	i.reported = true
	return nil
}
