package protocol

import "strconv"

// PayloadSize describes how a handler's payload is framed on the wire.
// Values 0..255 are fixed byte counts; Variable means a one byte length
// prefix followed by that many bytes.
type PayloadSize int16

// Variable marks self-describing payloads.
const Variable PayloadSize = -1

// Fixed returns the framing for a payload of exactly n bytes.
func Fixed(n int) PayloadSize {
	if n < 0 || n > MaxPayload {
		panic("protocol: fixed payload size out of range")
	}
	return PayloadSize(n)
}

// IsVariable reports whether the payload carries its own length byte.
func (s PayloadSize) IsVariable() bool {
	return s == Variable
}

// Len returns the fixed byte count, or 0 for variable payloads.
func (s PayloadSize) Len() int {
	if s < 0 {
		return 0
	}
	return int(s)
}

func (s PayloadSize) String() string {
	if s.IsVariable() {
		return "variable"
	}
	return "fixed(" + strconv.Itoa(int(s)) + ")"
}

// ReadPosition rebuilds a big-endian 16 bit field.
func ReadPosition(b1, b2 byte) uint16 {
	return uint16(b1)<<8 | uint16(b2)
}

// Uint16 decodes the big-endian field at p[0:2].
func Uint16(p []byte) uint16 {
	return ReadPosition(p[0], p[1])
}

// Int16 decodes the signed big-endian field at p[0:2].
func Int16(p []byte) int16 {
	return int16(Uint16(p))
}

// AppendUint16 appends v big-endian.
func AppendUint16(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

// AppendInt16 appends v as a two's complement big-endian field.
func AppendInt16(dst []byte, v int16) []byte {
	return AppendUint16(dst, uint16(v))
}

// EncodePosition splits a position into its two wire bytes.
func EncodePosition(v uint16) (byte, byte) {
	return byte(v >> 8), byte(v)
}

// AppendDebugLine appends a debug line as emitted by the firmware:
// "# " + text + "\r\n". The leading '#' is the reserved DEBUG code.
func AppendDebugLine(dst []byte, text string) []byte {
	dst = append(dst, byte(DEBUG), ' ')
	dst = append(dst, text...)
	return append(dst, '\r', '\n')
}
