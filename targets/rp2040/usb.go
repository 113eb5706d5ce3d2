//go:build rp2040 || rp2350

package main

import (
	"machine"

	"hermes/protocol"
)

// debugEnabled sends the firmware trace to the host as "# " lines.
const debugEnabled = true

// maxWriteFailures before the link is considered gone
const maxWriteFailures = 10

// usbPort is machine.Serial (USB CDC on RP2040) with disconnect tracking.
type usbPort struct {
	failures     uint32
	disconnected bool
	onReconnect  func()
}

var (
	usb      = &usbPort{}
	debugBuf []byte
)

// InitUSB initializes USB serial communication
func InitUSB() {
	// The USB descriptors are set by TinyGo's runtime
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
}

func (u *usbPort) Buffered() int {
	n := machine.Serial.Buffered()
	if n > 0 && u.disconnected {
		// fresh connection, stale input belongs to the previous session
		u.disconnected = false
		u.failures = 0
		if u.onReconnect != nil {
			u.onReconnect()
		}
	}
	return n
}

func (u *usbPort) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

// Write drops output once the host stopped reading so the loop never
// stalls on a closed port.
func (u *usbPort) Write(data []byte) (int, error) {
	if u.disconnected {
		return len(data), nil
	}
	written := 0
	for written < len(data) {
		n, err := machine.Serial.Write(data[written:])
		if err != nil || n == 0 {
			u.failures++
			if u.failures > maxWriteFailures {
				u.disconnected = true
				u.failures = 0
				return len(data), nil
			}
			continue
		}
		written += n
	}
	u.failures = 0
	return written, nil
}

func usbDebugLine(s string) {
	debugBuf = protocol.AppendDebugLine(debugBuf[:0], s)
	usb.Write(debugBuf)
}
