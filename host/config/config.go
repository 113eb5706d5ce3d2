// Package config loads the host board description: transport, devices and
// the optional MQTT bridge and HTTP API.
package config

type Config struct {
	Board   BoardConfig    `yaml:"board"`
	Devices []DeviceConfig `yaml:"devices"`
	MQTT    MQTTConfig     `yaml:"mqtt"`
	API     APIConfig      `yaml:"api"`
}

// ---- BOARD ----

type BoardConfig struct {
	Name      string `yaml:"name"`
	Transport string `yaml:"transport"` // serial | udp

	// serial
	Device        string `yaml:"device"`
	Baud          int    `yaml:"baud"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`

	// udp
	Address string `yaml:"address"`

	AckTimeoutMs int `yaml:"ack_timeout_ms"`
}

// ---- DEVICES ----

type DeviceConfig struct {
	ID   uint8  `yaml:"id"`
	Name string `yaml:"name"`
	Type string `yaml:"type"` // servo | boolean_output | boolean_input | digital_write
	Pin  uint8  `yaml:"pin"`

	// servo: angle; boolean output: 0 or 1
	Default uint16 `yaml:"default"`

	// servo
	Range        []uint16 `yaml:"range,flow"`  // theoretical [min, max] angle
	Limits       []uint16 `yaml:"limits,flow"` // allowed [min, max], inside range
	Speed        int16    `yaml:"speed"`        // deg/s, 0 unbounded
	Acceleration int16    `yaml:"acceleration"` // deg/s², 0 unbounded

	// boolean input
	Pull string `yaml:"pull"` // none | up | down

	// digital write
	Level bool `yaml:"level"`
}

const (
	TypeServo         = "servo"
	TypeBooleanOutput = "boolean_output"
	TypeBooleanInput  = "boolean_input"
	TypeDigitalWrite  = "digital_write"

	TransportSerial = "serial"
	TransportUDP    = "udp"
)

// ---- BRIDGE / API ----

type MQTTConfig struct {
	Broker   string `yaml:"broker"` // empty disables the bridge
	Prefix   string `yaml:"prefix"`
	ClientID string `yaml:"client_id"`
}

type APIConfig struct {
	Listen string `yaml:"listen"` // empty disables the API
}

// Overrides are read from the environment and win over the file.
type Overrides struct {
	Device     string `env:"HERMES_DEVICE"`
	Baud       int    `env:"HERMES_BAUD"`
	Address    string `env:"HERMES_ADDRESS"`
	MQTTBroker string `env:"HERMES_MQTT_BROKER"`
	APIListen  string `env:"HERMES_API_LISTEN"`
}
