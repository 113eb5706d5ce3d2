// Package sim runs the firmware core on the host against simulated
// hardware.
package sim

import (
	"sync"

	"github.com/golang/glog"

	"hermes/core"
)

// GPIO is a simulated pin bank. Inputs are driven with Set.
type GPIO struct {
	mu     sync.Mutex
	modes  map[core.GPIOPin]string
	levels map[core.GPIOPin]bool
}

// NewGPIO returns a bank with every pin unconfigured and low.
func NewGPIO() *GPIO {
	return &GPIO{
		modes:  make(map[core.GPIOPin]string),
		levels: make(map[core.GPIOPin]bool),
	}
}

func (g *GPIO) configure(pin core.GPIOPin, mode string, level bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modes[pin] = mode
	if mode != "output" {
		if _, set := g.levels[pin]; !set {
			g.levels[pin] = level
		}
	}
	glog.V(1).Infof("gpio %d: %s", pin, mode)
	return nil
}

func (g *GPIO) ConfigureOutput(pin core.GPIOPin) error { return g.configure(pin, "output", false) }
func (g *GPIO) ConfigureInput(pin core.GPIOPin) error  { return g.configure(pin, "input", false) }

func (g *GPIO) ConfigureInputPullUp(pin core.GPIOPin) error {
	return g.configure(pin, "input pull-up", true)
}

func (g *GPIO) ConfigureInputPullDown(pin core.GPIOPin) error {
	return g.configure(pin, "input pull-down", false)
}

func (g *GPIO) SetPin(pin core.GPIOPin, value bool) error {
	g.mu.Lock()
	g.levels[pin] = value
	g.mu.Unlock()
	glog.V(1).Infof("gpio %d = %v", pin, value)
	return nil
}

func (g *GPIO) ReadPin(pin core.GPIOPin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels[pin]
}

// Set drives a pin from outside, as a switch on an input would.
func (g *GPIO) Set(pin core.GPIOPin, level bool) {
	g.mu.Lock()
	g.levels[pin] = level
	g.mu.Unlock()
}

// Level returns the current level of pin.
func (g *GPIO) Level(pin core.GPIOPin) bool {
	return g.ReadPin(pin)
}

// Mode returns how pin was configured, or "" when it never was.
func (g *GPIO) Mode(pin core.GPIOPin) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.modes[pin]
}

// Servos hands out simulated actuators and remembers them by pin.
type Servos struct {
	mu        sync.Mutex
	actuators []*Actuator
}

// NewServos returns an empty servo bank.
func NewServos() *Servos {
	return &Servos{}
}

func (s *Servos) NewActuator() core.Actuator {
	a := &Actuator{}
	s.mu.Lock()
	s.actuators = append(s.actuators, a)
	s.mu.Unlock()
	return a
}

// Pin returns the actuator attached to pin, or the last one that was.
func (s *Servos) Pin(pin core.GPIOPin) (*Actuator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.actuators) - 1; i >= 0; i-- {
		if a := s.actuators[i]; a.Snapshot().Pin == pin {
			return a, true
		}
	}
	return nil, false
}

// ActuatorState is a snapshot of a simulated actuator.
type ActuatorState struct {
	Pin      core.GPIOPin
	Attached bool
	Pulse    uint16
	Writes   int
}

// Actuator is a simulated servo output.
type Actuator struct {
	mu    sync.Mutex
	state ActuatorState
}

func (a *Actuator) Attach(pin core.GPIOPin) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Attached && a.state.Pin == pin {
		return nil
	}
	a.state.Pin = pin
	a.state.Attached = true
	glog.V(1).Infof("servo %d: attached", pin)
	return nil
}

func (a *Actuator) Detach() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Attached = false
	glog.V(1).Infof("servo %d: detached at %dus", a.state.Pin, a.state.Pulse)
	return nil
}

func (a *Actuator) Attached() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Attached
}

func (a *Actuator) WritePulseWidth(us uint16) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Pulse = us
	a.state.Writes++
	glog.V(2).Infof("servo %d: %dus", a.state.Pin, us)
	return nil
}

// Snapshot returns the current actuator state.
func (a *Actuator) Snapshot() ActuatorState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}
