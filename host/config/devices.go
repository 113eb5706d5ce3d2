package config

import (
	"time"

	"hermes/host/board"
	"hermes/host/device"
	"hermes/host/serial"
)

// ToDevices converts the validated device list for board.New.
func (c *Config) ToDevices() []board.Device {
	devs := make([]board.Device, 0, len(c.Devices))
	for _, d := range c.Devices {
		devs = append(devs, board.Device{ID: d.ID, Name: d.Name, Spec: d.spec()})
	}
	return devs
}

func (d DeviceConfig) spec() device.Spec {
	switch d.Type {
	case TypeServo:
		return device.Servo{
			Pin:     d.Pin,
			Default: d.Default,
			TMin:    d.Range[0],
			TMax:    d.Range[1],
			Min:     d.Limits[0],
			Max:     d.Limits[1],
			Speed:   unbounded(d.Speed),
			Accel:   unbounded(d.Acceleration),
		}
	case TypeBooleanOutput:
		return device.BooleanOutput{Pin: d.Pin, Default: d.Default != 0}
	case TypeBooleanInput:
		pull, _ := device.ParsePull(d.Pull)
		return device.BooleanInput{Pin: d.Pin, Pull: pull}
	case TypeDigitalWrite:
		return device.DigitalWrite{Pin: d.Pin, Level: d.Level}
	}
	return nil
}

// 0 in the file reads better than -1; the wire wants -1.
func unbounded(v int16) int16 {
	if v == 0 {
		return -1
	}
	return v
}

// AckTimeout is the board reply timeout.
func (b BoardConfig) AckTimeout() time.Duration {
	return time.Duration(b.AckTimeoutMs) * time.Millisecond
}

// Serial returns the serial port settings of the board.
func (b BoardConfig) Serial() *serial.Config {
	return &serial.Config{Device: b.Device, Baud: b.Baud, ReadTimeout: b.ReadTimeoutMs}
}
