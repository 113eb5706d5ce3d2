// Package protocol implements the hermes byte protocol shared by the
// firmware and the host: the message code table, payload framing and the
// transports the firmware reads from.
package protocol

// Version represents the hermes firmware version
const Version = "0.1.0"

// Wire constants
const (
	MaxPayload = 255 // length field is a single byte
	CodeSize   = 1

	// DefaultUDPPort is the port the ethernet boards listen on.
	DefaultUDPPort = 5000
)
