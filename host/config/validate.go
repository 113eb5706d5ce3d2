package config

import (
	"fmt"
	"net/url"

	"hermes/host/device"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	b := cfg.Board
	switch b.Transport {
	case TransportSerial:
		if b.Device == "" {
			return fmt.Errorf("board %q: serial transport needs a device", b.Name)
		}
		if b.Baud <= 0 {
			return fmt.Errorf("board %q: invalid baud %d", b.Name, b.Baud)
		}
	case TransportUDP:
		if b.Address == "" {
			return fmt.Errorf("board %q: udp transport needs an address", b.Name)
		}
	default:
		return fmt.Errorf("board %q: unknown transport %q", b.Name, b.Transport)
	}
	if b.ReadTimeoutMs < 0 || b.AckTimeoutMs < 0 {
		return fmt.Errorf("board %q: negative timeout", b.Name)
	}

	ids := make(map[uint8]string)
	names := make(map[string]uint8)
	for i, d := range cfg.Devices {
		label := d.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if d.ID == 0 {
			return fmt.Errorf("device %s: id must be 1..255", label)
		}
		if other, dup := ids[d.ID]; dup {
			return fmt.Errorf("device %s: id %d already used by %s", label, d.ID, other)
		}
		ids[d.ID] = label
		if d.Name != "" {
			if _, dup := names[d.Name]; dup {
				return fmt.Errorf("device %s: duplicate name", label)
			}
			names[d.Name] = d.ID
		}

		if err := validateDevice(d); err != nil {
			return fmt.Errorf("device %s: %w", label, err)
		}
	}

	if cfg.MQTT.Broker != "" {
		u, err := url.Parse(cfg.MQTT.Broker)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("mqtt: invalid broker url %q", cfg.MQTT.Broker)
		}
	}
	return nil
}

func validateDevice(d DeviceConfig) error {
	switch d.Type {
	case TypeServo:
		if len(d.Range) != 2 || d.Range[0] >= d.Range[1] {
			return fmt.Errorf("range must be [min, max] with min < max, got %v", d.Range)
		}
		if len(d.Limits) != 2 || d.Limits[0] > d.Limits[1] {
			return fmt.Errorf("limits must be [min, max] with min <= max, got %v", d.Limits)
		}
		if d.Speed < 0 || d.Acceleration < 0 {
			return fmt.Errorf("speed and acceleration must not be negative")
		}
	case TypeBooleanOutput:
		if d.Default > 1 {
			return fmt.Errorf("default must be 0 or 1, got %d", d.Default)
		}
	case TypeBooleanInput:
		if _, err := device.ParsePull(d.Pull); err != nil {
			return err
		}
	case TypeDigitalWrite:
	default:
		return fmt.Errorf("unknown type %q", d.Type)
	}
	return nil
}
