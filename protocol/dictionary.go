package protocol

import "strconv"

// MessageCode is the leading byte of every message. Commands and devices
// share the same code space.
type MessageCode uint8

// Reserved codes collide with monitor noise and are never assigned.
const (
	VOID        MessageCode = 0  // ASCII NUL, sent by monitors on baudrate change
	END_OF_LINE MessageCode = 10 // ASCII LF
	DEBUG       MessageCode = 35 // ASCII '#', prefixes debug lines
)

// Commands
const (
	ACK       MessageCode = 11
	HANDSHAKE MessageCode = 12
	CONNECTED MessageCode = 13
	PATCH     MessageCode = 20
	SETTINGS              = PATCH
	MUTATION  MessageCode = 21
)

// Devices
const (
	BOOLEAN_OUTPUT MessageCode = 41
	SERVO          MessageCode = 42
	DIGITAL_WRITE  MessageCode = 43
	BOOLEAN_INPUT  MessageCode = 141
)

// Dictionary lists every assigned code with its name, reserved ones first.
var Dictionary = []struct {
	Code MessageCode
	Name string
}{
	{VOID, "VOID"},
	{END_OF_LINE, "END_OF_LINE"},
	{DEBUG, "DEBUG"},
	{ACK, "ACK"},
	{HANDSHAKE, "HANDSHAKE"},
	{CONNECTED, "CONNECTED"},
	{PATCH, "PATCH"},
	{MUTATION, "MUTATION"},
	{BOOLEAN_OUTPUT, "BOOLEAN_OUTPUT"},
	{SERVO, "SERVO"},
	{DIGITAL_WRITE, "DIGITAL_WRITE"},
	{BOOLEAN_INPUT, "BOOLEAN_INPUT"},
}

// IsReserved reports whether c is one of the noise codes.
func (c MessageCode) IsReserved() bool {
	return c == VOID || c == END_OF_LINE || c == DEBUG
}

// String returns the dictionary name, or the decimal value for unassigned codes.
func (c MessageCode) String() string {
	for _, e := range Dictionary {
		if e.Code == c {
			return e.Name
		}
	}
	return "CODE_" + strconv.Itoa(int(c))
}
