// Package device encodes board devices into the firmware wire format.
package device

import (
	"errors"
	"fmt"
	"strings"

	"hermes/protocol"
)

var (
	ErrNotMutable = errors.New("device takes no value")
	ErrValueRange = errors.New("value out of range")
	ErrTooLarge   = errors.New("settings exceed payload limit")
)

// Spec is the host view of one device kind: its code, its PATCH settings
// block and the encoding of its MUTATION value.
type Spec interface {
	Code() protocol.MessageCode
	Runnable() bool
	Settings() []byte

	// Value encodes a MUTATION value. Kinds without a value ignore v.
	Value(v int) ([]byte, error)
}

// Servo is a position-controlled servo. Angles in degrees; Speed and
// Accel in degrees/s and degrees/s², zero or below for unbounded.
type Servo struct {
	Pin     uint8
	Default uint16
	TMin    uint16
	TMax    uint16
	Min     uint16
	Max     uint16
	Speed   int16
	Accel   int16
}

func (Servo) Code() protocol.MessageCode { return protocol.SERVO }
func (Servo) Runnable() bool             { return true }

func (s Servo) Settings() []byte {
	b := make([]byte, 1, 15)
	b[0] = s.Pin
	for _, v := range []uint16{s.Default, s.TMin, s.TMax, s.Min, s.Max} {
		b = protocol.AppendUint16(b, v)
	}
	b = protocol.AppendInt16(b, s.Speed)
	return protocol.AppendInt16(b, s.Accel)
}

func (Servo) Value(v int) ([]byte, error) {
	if v < 0 || v > 0xFFFF {
		return nil, fmt.Errorf("servo angle %d: %w", v, ErrValueRange)
	}
	return protocol.AppendUint16(nil, uint16(v)), nil
}

// BooleanOutput drives a pin high or low.
type BooleanOutput struct {
	Pin     uint8
	Default bool
}

func (BooleanOutput) Code() protocol.MessageCode { return protocol.BOOLEAN_OUTPUT }
func (BooleanOutput) Runnable() bool             { return true }
func (o BooleanOutput) Settings() []byte         { return []byte{o.Pin, boolByte(o.Default)} }
func (BooleanOutput) Value(v int) ([]byte, error) {
	return []byte{boolByte(v != 0)}, nil
}

// Pull selects the input bias resistor.
type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

func (p Pull) String() string {
	switch p {
	case PullNone:
		return "none"
	case PullUp:
		return "up"
	case PullDown:
		return "down"
	}
	return fmt.Sprintf("pull(%d)", uint8(p))
}

// ParsePull accepts "", "none", "up" and "down".
func ParsePull(s string) (Pull, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return PullNone, nil
	case "up":
		return PullUp, nil
	case "down":
		return PullDown, nil
	}
	return 0, fmt.Errorf("unknown pull mode %q", s)
}

// BooleanInput reports pin changes. A MUTATION asks for its current state.
type BooleanInput struct {
	Pin  uint8
	Pull Pull
}

func (BooleanInput) Code() protocol.MessageCode { return protocol.BOOLEAN_INPUT }
func (BooleanInput) Runnable() bool             { return true }
func (i BooleanInput) Settings() []byte         { return []byte{i.Pin, byte(i.Pull)} }
func (BooleanInput) Value(int) ([]byte, error)  { return nil, nil }

// DigitalWrite sets a pin once; the firmware keeps no instance.
type DigitalWrite struct {
	Pin   uint8
	Level bool
}

func (DigitalWrite) Code() protocol.MessageCode { return protocol.DIGITAL_WRITE }
func (DigitalWrite) Runnable() bool             { return false }
func (w DigitalWrite) Settings() []byte         { return []byte{w.Pin, boolByte(w.Level)} }
func (DigitalWrite) Value(int) ([]byte, error)  { return nil, ErrNotMutable }

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
