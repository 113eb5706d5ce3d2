package sim

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"

	"hermes/core"
	"hermes/protocol"
)

// Options configure a simulated board.
type Options struct {
	Config core.Config

	// WireDebug sends the firmware trace to the host as debug lines, as
	// the targets do. Otherwise it is logged through glog.
	WireDebug bool
}

// Board is the firmware core wired to simulated hardware.
type Board struct {
	GPIO   *GPIO
	Servos *Servos

	fw  *core.Firmware
	out io.Writer
}

// New builds a simulated board reading src and writing out.
func New(src protocol.ByteSource, out io.Writer, opts Options) (*Board, error) {
	b := &Board{
		GPIO:   NewGPIO(),
		Servos: NewServos(),
		out:    out,
	}
	clock := protocol.NewSystemClock()
	transport := protocol.NewStreamTransport(src, out, clock)
	transport.Yield = func() { time.Sleep(50 * time.Microsecond) }

	fw, err := core.New(opts.Config, transport, clock, core.HAL{GPIO: b.GPIO, Servos: b.Servos})
	if err != nil {
		return nil, err
	}
	if opts.WireDebug {
		var line []byte
		fw.Trace().SetWriter(func(s string) {
			line = protocol.AppendDebugLine(line[:0], s)
			if _, err := out.Write(line); err != nil {
				glog.V(1).Infof("fw: %s (debug write: %v)", s, err)
			}
		})
	} else {
		fw.Trace().SetWriter(func(s string) { glog.V(1).Infof("fw: %s", s) })
	}
	b.fw = fw
	return b, nil
}

// Firmware returns the core. It must not be used while Run is active.
func (b *Board) Firmware() *core.Firmware {
	return b.fw
}

// Run boots the firmware and loops until ctx is done.
func (b *Board) Run(ctx context.Context) error {
	b.fw.Boot()
	err := b.fw.Run(ctx)
	if n := b.fw.Panics(); n > 0 {
		glog.Warningf("firmware recovered %d panics", n)
		b.fw.Trace().Dump()
	}
	return err
}
