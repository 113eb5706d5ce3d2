package board

import (
	"strings"

	"hermes/protocol"
)

// Frame is one decoded firmware message.
type Frame struct {
	Code  protocol.MessageCode
	ID    uint8  // BOOLEAN_INPUT reports
	Value bool   // BOOLEAN_INPUT reports
	Text  string // DEBUG lines, without the "# " prefix
}

type decodeState uint8

const (
	stateCode decodeState = iota
	stateReportID
	stateReportValue
	stateDebug
)

// maxDebugLine bounds a debug line when the terminating newline is lost.
const maxDebugLine = 512

// Decoder splits the firmware byte stream into frames. Bytes that start no
// known frame are dropped, which keeps the decoder in sync through noise.
type Decoder struct {
	state  decodeState
	report Frame
	line   []byte
}

// Feed consumes one byte and returns a frame when one completes.
func (d *Decoder) Feed(b byte) (Frame, bool) {
	switch d.state {
	case stateReportID:
		d.report.ID = b
		d.state = stateReportValue
		return Frame{}, false
	case stateReportValue:
		d.report.Value = b != 0
		d.state = stateCode
		return d.report, true
	case stateDebug:
		if b == '\n' || len(d.line) >= maxDebugLine {
			d.state = stateCode
			text := strings.TrimRight(string(d.line), "\r")
			return Frame{Code: protocol.DEBUG, Text: strings.TrimPrefix(text, " ")}, true
		}
		d.line = append(d.line, b)
		return Frame{}, false
	}

	switch code := protocol.MessageCode(b); code {
	case protocol.ACK, protocol.CONNECTED:
		return Frame{Code: code}, true
	case protocol.BOOLEAN_INPUT:
		d.report = Frame{Code: code}
		d.state = stateReportID
	case protocol.DEBUG:
		d.line = d.line[:0]
		d.state = stateDebug
	}
	return Frame{}, false
}

// Reset drops any partial frame.
func (d *Decoder) Reset() {
	d.state = stateCode
	d.line = d.line[:0]
}
