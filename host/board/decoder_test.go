package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hermes/protocol"
)

func decodeAll(d *Decoder, data []byte) []Frame {
	var frames []Frame
	for _, b := range data {
		if f, ok := d.Feed(b); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

func TestDecoderFrames(t *testing.T) {
	var stream []byte
	stream = append(stream, byte(protocol.CONNECTED))
	stream = protocol.AppendDebugLine(stream, "Settings: created Servo #1")
	stream = append(stream, byte(protocol.ACK))
	stream = append(stream, byte(protocol.BOOLEAN_INPUT), 6, 1)
	stream = append(stream, 0, 10) // noise

	frames := decodeAll(&Decoder{}, stream)
	assert.Equal(t, []Frame{
		{Code: protocol.CONNECTED},
		{Code: protocol.DEBUG, Text: "Settings: created Servo #1"},
		{Code: protocol.ACK},
		{Code: protocol.BOOLEAN_INPUT, ID: 6, Value: true},
	}, frames)
}

func TestDecoderReportSpansReads(t *testing.T) {
	d := &Decoder{}
	assert.Empty(t, decodeAll(d, []byte{byte(protocol.BOOLEAN_INPUT)}))
	assert.Empty(t, decodeAll(d, []byte{3}))
	assert.Equal(t, []Frame{{Code: protocol.BOOLEAN_INPUT, ID: 3}}, decodeAll(d, []byte{0}))
}

func TestDecoderReportBytesAreData(t *testing.T) {
	// an id equal to the ACK code must not be taken as an ACK
	frames := decodeAll(&Decoder{}, []byte{byte(protocol.BOOLEAN_INPUT), byte(protocol.ACK), 0})
	assert.Equal(t, []Frame{{Code: protocol.BOOLEAN_INPUT, ID: byte(protocol.ACK)}}, frames)
}

func TestDecoderLongDebugLine(t *testing.T) {
	d := &Decoder{}
	data := append([]byte{'#'}, make([]byte, maxDebugLine+10)...)
	for i := 1; i < len(data); i++ {
		data[i] = 'x'
	}
	frames := decodeAll(d, data)
	assert.Len(t, frames, 1)
	assert.Len(t, frames[0].Text, maxDebugLine)
}

func TestDecoderReset(t *testing.T) {
	d := &Decoder{}
	decodeAll(d, []byte{byte(protocol.BOOLEAN_INPUT), 4})
	d.Reset()
	assert.Equal(t, []Frame{{Code: protocol.ACK}}, decodeAll(d, []byte{byte(protocol.ACK)}))
}
