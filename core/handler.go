package core

import (
	"time"

	"hermes/protocol"
)

// Handler is the capability set shared by commands and devices.
type Handler interface {
	Code() protocol.MessageCode
	Name() string

	// PayloadSize frames the payload read after the code byte (commands) or
	// the settings block following (code, id) in a PATCH (devices).
	PayloadSize() protocol.PayloadSize
}

// Command is a handler resolved directly from the leading byte of a message.
type Command interface {
	Handler
	Execute(fw *Firmware, payload []byte) error
}

// SelfAcknowledging is implemented by commands that never get an ACK,
// either because they are the ACK or because they send their own reply.
type SelfAcknowledging interface {
	SelfAcknowledging()
}

// Device is a handler created through PATCH. Runnable devices live in the
// DeviceManager under their id and are ticked every loop iteration;
// the others execute once from their settings and are discarded.
type Device interface {
	Handler

	ID() uint8
	Runnable() bool

	// Configure applies a settings block. For one-shot devices this is the
	// whole execution. Calling it again on a runnable device replaces the
	// previous configuration.
	Configure(fw *Firmware, settings []byte) error

	// MutationSize frames the value following [MUTATION][id].
	MutationSize() protocol.PayloadSize
	Mutate(fw *Firmware, value []byte) error

	Tick(fw *Firmware, now time.Duration)

	bind(id uint8) error
}

// deviceID holds the immutable identity of a device instance.
type deviceID struct {
	id    uint8
	bound bool
}

func (d *deviceID) ID() uint8 { return d.id }

func (d *deviceID) bind(id uint8) error {
	if d.bound && d.id != id {
		return ErrDeviceMismatch
	}
	d.id = id
	d.bound = true
	return nil
}
