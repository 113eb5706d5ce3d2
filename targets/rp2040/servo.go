//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinygo.org/x/drivers/servo"

	"hermes/core"
)

// RPServoDriver drives servos from the PWM slices at 50 Hz.
//
// GPIO pin N maps to:
//
//	Slice: (N >> 1) & 0x7  (divide by 2, mod 8)
//	Channel: N & 1          (even=A, odd=B)
//
// Both channels of a slice share its period, which is fine since every
// servo runs at 50 Hz.
type RPServoDriver struct{}

func NewRPServoDriver() *RPServoDriver { return &RPServoDriver{} }

func (d *RPServoDriver) NewActuator() core.Actuator {
	return &pwmActuator{}
}

type pwmActuator struct {
	servo    servo.Servo
	pin      core.GPIOPin
	attached bool
}

func (a *pwmActuator) Attach(pin core.GPIOPin) error {
	if a.attached && a.pin == pin {
		return nil
	}
	if pin > 29 {
		return core.ErrInvalidRange
	}
	s, err := servo.New(pwmForPin(pin), machine.Pin(pin))
	if err != nil {
		return err
	}
	a.servo, a.pin, a.attached = s, pin, true
	return nil
}

// Detach holds the output low, which stops the pulse train.
func (a *pwmActuator) Detach() error {
	if !a.attached {
		return nil
	}
	a.servo.SetMicroseconds(0)
	a.attached = false
	return nil
}

func (a *pwmActuator) Attached() bool { return a.attached }

func (a *pwmActuator) WritePulseWidth(us uint16) error {
	if !a.attached {
		return nil
	}
	a.servo.SetMicroseconds(int16(us))
	return nil
}

// pwmForPin returns the PWM slice peripheral of a pin.
// TinyGo defines PWM0-PWM7 as globals of an unexported type.
func pwmForPin(pin core.GPIOPin) servo.PWM {
	switch (pin >> 1) & 0x7 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
