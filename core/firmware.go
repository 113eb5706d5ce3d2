package core

import (
	"context"
	"strconv"
	"time"

	"hermes/protocol"
)

// Firmware is the control core: registries, live devices and the dispatcher
// bound to one transport. It is driven from a single loop and is not safe
// for concurrent use.
type Firmware struct {
	cfg       Config
	transport protocol.Transport
	clock     protocol.Clock
	hal       HAL
	trace     *Tracer

	commands *Registry[Command]
	devices  *Registry[Device]
	manager  *DeviceManager

	dispatcher *Dispatcher

	announced int    // device count from the last handshake
	panics    uint32 // loop iterations recovered by Run
}

// New builds a firmware instance and registers every handler kind.
// A registration failure is a programming error and is returned as is.
func New(cfg Config, transport protocol.Transport, clock protocol.Clock, hal HAL) (*Firmware, error) {
	cfg.normalize()
	fw := &Firmware{
		cfg:       cfg,
		transport: transport,
		clock:     clock,
		hal:       hal,
		trace:     NewTracer(),
		commands:  NewRegistry[Command]("command"),
		devices:   NewRegistry[Device]("device"),
		manager:   NewDeviceManager(),
	}
	fw.trace.SetEnabled(cfg.Debug)
	fw.dispatcher = newDispatcher(fw)

	if err := InitCommands(fw.commands); err != nil {
		return nil, err
	}
	if err := InitDevices(fw.devices, fw.commands); err != nil {
		return nil, err
	}
	return fw, nil
}

func (f *Firmware) Config() Config                    { return f.cfg }
func (f *Firmware) Transport() protocol.Transport     { return f.transport }
func (f *Firmware) Trace() *Tracer                    { return f.trace }
func (f *Firmware) Commands() *Registry[Command]      { return f.commands }
func (f *Firmware) DeviceRegistry() *Registry[Device] { return f.devices }
func (f *Firmware) Devices() *DeviceManager           { return f.manager }
func (f *Firmware) Dispatcher() *Dispatcher           { return f.dispatcher }

// Announced returns the device count sent by the host in its last handshake.
func (f *Firmware) Announced() int { return f.announced }

// Panics returns how many loop iterations were recovered.
func (f *Firmware) Panics() uint32 { return f.panics }

// Now reads the firmware clock.
func (f *Firmware) Now() time.Duration { return f.clock.Now() }

// Boot writes the banner and handler dictionary to the trace.
func (f *Firmware) Boot() {
	f.trace.Println("hermes " + protocol.Version + " ready, " +
		strconv.Itoa(f.commands.Count()) + " commands, " +
		strconv.Itoa(f.devices.Count()) + " devices")
	if !f.trace.Enabled() {
		return
	}
	for _, dict := range []string{f.commands.Dictionary(), f.devices.Dictionary()} {
		start := 0
		for i := 0; i < len(dict); i++ {
			if dict[i] == '\n' {
				f.trace.writer(dict[start:i])
				start = i + 1
			}
		}
	}
}

// Step runs one loop iteration: poll at most one message, then tick every
// runnable device. It reports whether a byte was consumed.
func (f *Firmware) Step() bool {
	handled := f.dispatcher.Poll()
	f.manager.TickAll(f, f.clock.Now())
	return handled
}

// Run steps the firmware until ctx is cancelled. A panicking iteration is
// counted, the pending input is dropped and the loop keeps going.
func (f *Firmware) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		f.safeStep()
		if f.cfg.LoopYield > 0 {
			time.Sleep(f.cfg.LoopYield)
		}
	}
}

func (f *Firmware) safeStep() {
	defer func() {
		if r := recover(); r != nil {
			f.panics++
			f.trace.Record(EvtPanic, 0, 0, millis(f.clock.Now()), f.panics)
			if rs, ok := f.transport.(interface{ Reset() }); ok {
				rs.Reset()
			}
		}
	}()
	f.Step()
}

func (f *Firmware) gpio() (GPIODriver, error) {
	if f.hal.GPIO == nil {
		return nil, ErrNoDriver
	}
	return f.hal.GPIO, nil
}
