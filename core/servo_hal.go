package core

// Actuator drives one servo output.
type Actuator interface {
	// Attach starts driving pin. Attaching an attached actuator to the same
	// pin is a no-op.
	Attach(pin GPIOPin) error

	// Detach stops the pulse train so the servo goes limp.
	Detach() error

	Attached() bool

	// WritePulseWidth sets the pulse width in microseconds.
	WritePulseWidth(us uint16) error
}

// ServoDriver hands out one actuator per servo device instance.
type ServoDriver interface {
	NewActuator() Actuator
}
