package config

import "hermes/host/serial"

const (
	DefaultBoardName    = "board"
	DefaultAckTimeoutMs = 500
	DefaultMQTTPrefix   = "hermes/"
)

// ApplyDefaults fills unset fields. Runs before Validate.
func ApplyDefaults(cfg *Config) {
	b := &cfg.Board
	if b.Name == "" {
		b.Name = DefaultBoardName
	}
	if b.Transport == "" {
		if b.Address != "" && b.Device == "" {
			b.Transport = TransportUDP
		} else {
			b.Transport = TransportSerial
		}
	}
	if b.Baud == 0 {
		b.Baud = serial.DefaultBaud
	}
	if b.ReadTimeoutMs == 0 {
		b.ReadTimeoutMs = serial.DefaultReadTimeout
	}
	if b.AckTimeoutMs == 0 {
		b.AckTimeoutMs = DefaultAckTimeoutMs
	}

	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		if d.Type != TypeServo {
			continue
		}
		if len(d.Range) == 0 {
			d.Range = []uint16{0, 180}
		}
		if len(d.Limits) == 0 {
			d.Limits = append([]uint16(nil), d.Range...)
		}
	}

	if cfg.MQTT.Prefix == "" {
		cfg.MQTT.Prefix = DefaultMQTTPrefix
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "hermes-" + b.Name
	}
}
