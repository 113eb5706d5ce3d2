//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"hermes/core"
	"hermes/protocol"
)

var (
	fw        *core.Firmware
	transport *protocol.StreamTransport
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	clock := NewHardwareClock()

	transport = protocol.NewStreamTransport(usb, usb, clock)
	transport.Yield = func() { time.Sleep(10 * time.Microsecond) }

	cfg := core.DefaultConfig()
	cfg.Debug = debugEnabled

	fw, err = core.New(cfg, transport, clock, core.HAL{
		GPIO:   NewRPGPIODriver(),
		Servos: NewRPServoDriver(),
	})
	if err != nil {
		// handler tables are static; this only fails on a programming error
		for {
			time.Sleep(time.Second)
		}
	}
	fw.Trace().SetWriter(usbDebugLine)

	// the host may open the port late; hold the banner until it did
	usb.onReconnect = func() {
		transport.Reset()
		fw.Boot()
	}
	fw.Boot()

	// Run recovers panics per iteration and yields LoopYield between them
	_ = fw.Run(context.Background())
}
