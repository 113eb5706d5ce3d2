package core

import (
	"strconv"

	"hermes/protocol"
)

// RegistrationError reports a handler that could not be registered at boot.
type RegistrationError struct {
	Kind string
	Code protocol.MessageCode
}

func (e *RegistrationError) Error() string {
	return "cannot register " + e.Kind + " " + strconv.Itoa(int(e.Code)) + " (" + e.Code.String() + ")"
}

func (e *RegistrationError) Unwrap() error { return ErrRegistration }

// InitCommands registers all protocol commands. Order is irrelevant but
// fixed so the dictionary trace is stable.
func InitCommands(r *Registry[Command]) error {
	commands := []struct {
		code    protocol.MessageCode
		factory Factory[Command]
	}{
		{protocol.ACK, func() Command { return &AckCommand{} }},
		{protocol.HANDSHAKE, func() Command { return &HandshakeCommand{} }},
		{protocol.PATCH, func() Command { return &SettingsCommand{} }},
		{protocol.MUTATION, func() Command { return &MutationCommand{} }},
	}
	for _, c := range commands {
		if !r.Register(c.code, c.factory) {
			return &RegistrationError{Kind: "command", Code: c.code}
		}
	}
	return nil
}

// InitDevices registers all device kinds. Commands and devices share one
// code space, so a device code already taken by a command is rejected.
func InitDevices(r *Registry[Device], commands *Registry[Command]) error {
	devices := []struct {
		code    protocol.MessageCode
		factory Factory[Device]
	}{
		{protocol.BOOLEAN_OUTPUT, func() Device { return &BooleanOutput{} }},
		{protocol.SERVO, func() Device { return &Servo{} }},
		{protocol.DIGITAL_WRITE, func() Device { return &DigitalWrite{} }},
		{protocol.BOOLEAN_INPUT, func() Device { return &BooleanInput{} }},
	}
	for _, d := range devices {
		if commands != nil && commands.Has(d.code) {
			return &RegistrationError{Kind: "device", Code: d.code}
		}
		if !r.Register(d.code, d.factory) {
			return &RegistrationError{Kind: "device", Code: d.code}
		}
	}
	return nil
}

// AckCommand is the acknowledgment itself; receiving one is a no-op.
type AckCommand struct{}

func (*AckCommand) Code() protocol.MessageCode        { return protocol.ACK }
func (*AckCommand) Name() string                      { return "Ack" }
func (*AckCommand) PayloadSize() protocol.PayloadSize { return protocol.Fixed(0) }
func (*AckCommand) Execute(*Firmware, []byte) error   { return nil }
func (*AckCommand) SelfAcknowledging()                {}

// HandshakeCommand opens a session: [HANDSHAKE][device count].
// It answers CONNECTED instead of ACK. Live devices are kept; the host's
// PATCH messages that follow update them in place.
type HandshakeCommand struct{}

func (*HandshakeCommand) Code() protocol.MessageCode        { return protocol.HANDSHAKE }
func (*HandshakeCommand) Name() string                      { return "Handshake" }
func (*HandshakeCommand) PayloadSize() protocol.PayloadSize { return protocol.Fixed(1) }
func (*HandshakeCommand) SelfAcknowledging()                {}

func (*HandshakeCommand) Execute(fw *Firmware, payload []byte) error {
	if len(payload) > 0 {
		fw.announced = int(payload[0])
	}
	fw.trace.Println("Handshake: " + strconv.Itoa(fw.announced) + " devices announced")
	return fw.transport.WriteByte(byte(protocol.CONNECTED))
}

// SettingsCommand (PATCH) creates or updates a device:
// [target code][id][settings...], variable framing.
type SettingsCommand struct{}

func (*SettingsCommand) Code() protocol.MessageCode        { return protocol.PATCH }
func (*SettingsCommand) Name() string                      { return "Settings" }
func (*SettingsCommand) PayloadSize() protocol.PayloadSize { return protocol.Variable }

func (*SettingsCommand) Execute(fw *Firmware, payload []byte) error {
	if len(payload) < 2 {
		return ErrShortPayload
	}
	code := protocol.MessageCode(payload[0])
	id := payload[1]
	settings := payload[2:]

	dev, ok := fw.devices.Create(code)
	if !ok {
		fw.trace.Println("Settings: unknown device code " + strconv.Itoa(int(code)))
		return ErrUnknownCode
	}
	if size := dev.PayloadSize(); !size.IsVariable() && len(settings) < size.Len() {
		return ErrShortPayload
	}

	if !dev.Runnable() {
		return dev.Configure(fw, settings)
	}
	if id == 0 {
		return ErrAnonymousDevice
	}

	now := millis(fw.clock.Now())
	if existing, found := fw.manager.Get(id); found {
		if existing.Code() != code {
			return ErrDeviceMismatch
		}
		if err := existing.Configure(fw, settings); err != nil {
			return err
		}
		fw.trace.Record(EvtUpdated, uint8(code), id, now, 0)
		fw.trace.Println("Settings: updated " + existing.Name() + " #" + strconv.Itoa(int(id)))
		return nil
	}

	if err := dev.bind(id); err != nil {
		return err
	}
	if err := dev.Configure(fw, settings); err != nil {
		return err
	}
	if err := fw.manager.Insert(dev); err != nil {
		return err
	}
	fw.trace.Record(EvtCreated, uint8(code), id, now, 0)
	fw.trace.Println("Settings: created " + dev.Name() + " #" + strconv.Itoa(int(id)))
	return nil
}

// MutationCommand changes the state of a live device: [MUTATION][id]
// followed by the device's own value framing.
type MutationCommand struct{}

func (*MutationCommand) Code() protocol.MessageCode        { return protocol.MUTATION }
func (*MutationCommand) Name() string                      { return "Mutation" }
func (*MutationCommand) PayloadSize() protocol.PayloadSize { return protocol.Fixed(1) }

func (*MutationCommand) Execute(fw *Firmware, payload []byte) error {
	if len(payload) < 1 {
		return ErrShortPayload
	}
	id := payload[0]
	dev, ok := fw.manager.Get(id)
	if !ok {
		return ErrUnknownDevice
	}
	if !dev.Runnable() {
		return ErrNotRunnable
	}

	value, err := fw.dispatcher.ReadValue(dev.MutationSize())
	if err != nil && !fw.cfg.ProceedOnShortRead {
		return err
	}
	return dev.Mutate(fw, value)
}
