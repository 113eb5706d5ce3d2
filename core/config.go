package core

import "time"

// Servo pulse bounds in microseconds (standard hobby servo range).
const (
	MIN_PULSE = 544
	MAX_PULSE = 2400
)

// Config holds the firmware tunables.
type Config struct {
	// PayloadTimeout bounds every blocking payload read.
	PayloadTimeout time.Duration

	// ProceedOnShortRead hands truncated payloads to their handler instead
	// of dropping the message after a read timeout.
	ProceedOnShortRead bool

	// SettleDelay is how long a servo holds its target before detaching.
	SettleDelay time.Duration

	MinPulse uint16
	MaxPulse uint16

	// Debug enables trace output at boot.
	Debug bool

	// LoopYield is slept between loop iterations by Run.
	LoopYield time.Duration
}

// DefaultConfig returns the configuration used by the targets.
func DefaultConfig() Config {
	return Config{
		PayloadTimeout: 100 * time.Millisecond,
		SettleDelay:    500 * time.Millisecond,
		MinPulse:       MIN_PULSE,
		MaxPulse:       MAX_PULSE,
		LoopYield:      10 * time.Microsecond,
	}
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.PayloadTimeout <= 0 {
		c.PayloadTimeout = def.PayloadTimeout
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	if c.MinPulse == 0 && c.MaxPulse == 0 {
		c.MinPulse, c.MaxPulse = def.MinPulse, def.MaxPulse
	}
	if c.MaxPulse <= c.MinPulse {
		c.MaxPulse = c.MinPulse + 1
	}
}
