package core

import (
	"strconv"

	"hermes/protocol"
)

// Dispatcher turns the incoming byte stream into command executions.
// Payloads are read into fixed buffers owned by the dispatcher; a slice
// handed to a handler is only valid until the next read.
type Dispatcher struct {
	fw *Firmware

	payload [protocol.MaxPayload]byte
	value   [protocol.MaxPayload]byte // nested reads (MUTATION values)
	scratch [1]byte
}

func newDispatcher(fw *Firmware) *Dispatcher {
	return &Dispatcher{fw: fw}
}

// Poll handles at most one message. It returns false without blocking when
// no byte is pending.
func (d *Dispatcher) Poll() bool {
	fw := d.fw
	t := fw.transport
	if t.BytesAvailable() == 0 {
		return false
	}
	if t.ReadExact(d.scratch[:]) != 1 {
		return false
	}
	code := protocol.MessageCode(d.scratch[0])
	now := millis(fw.clock.Now())

	cmd, ok := fw.commands.Create(code)
	if !ok {
		// Reserved codes are line noise; anything else may come from a newer host.
		fw.trace.Record(EvtUnknown, uint8(code), 0, now, 0)
		if !code.IsReserved() {
			fw.trace.Println("Unknown code " + strconv.Itoa(int(code)) + " dropped")
		}
		return true
	}

	payload, err := d.receive(cmd.PayloadSize(), &d.payload)
	if err != nil {
		fw.trace.Record(EvtShortRead, uint8(code), 0, now, uint32(len(payload)))
		fw.trace.Println(cmd.Name() + ": payload timeout after " + strconv.Itoa(len(payload)) + " bytes")
		if !fw.cfg.ProceedOnShortRead {
			return true
		}
	}

	if err := cmd.Execute(fw, payload); err != nil {
		fw.trace.Record(EvtRejected, uint8(code), 0, now, 0)
		fw.trace.Println(cmd.Name() + ": " + err.Error())
		return true
	}
	fw.trace.Record(EvtDispatch, uint8(code), 0, now, uint32(len(payload)))

	if _, quiet := cmd.(SelfAcknowledging); quiet {
		return true
	}
	if err := t.WriteByte(byte(protocol.ACK)); err != nil {
		fw.trace.Println("ACK write failed: " + err.Error())
		return true
	}
	fw.trace.Record(EvtAck, uint8(code), 0, now, 0)
	return true
}

// ReadValue reads a payload framed by size into the nested buffer. It is
// used by commands whose payload announces a second, device-framed part.
func (d *Dispatcher) ReadValue(size protocol.PayloadSize) ([]byte, error) {
	return d.receive(size, &d.value)
}

// receive reads one framed payload into buf. On timeout it returns the
// bytes that did arrive together with ErrShortPayload.
func (d *Dispatcher) receive(size protocol.PayloadSize, buf *[protocol.MaxPayload]byte) ([]byte, error) {
	t := d.fw.transport
	timeout := d.fw.cfg.PayloadTimeout

	n := size.Len()
	if size.IsVariable() {
		if !t.WaitFor(1, timeout) {
			return buf[:0], ErrShortPayload
		}
		if t.ReadExact(d.scratch[:]) != 1 {
			return buf[:0], ErrShortPayload
		}
		n = int(d.scratch[0])
	}
	if n == 0 {
		return buf[:0], nil
	}

	ok := t.WaitFor(n, timeout)
	got := t.ReadExact(buf[:n])
	if !ok || got < n {
		return buf[:got], ErrShortPayload
	}
	return buf[:n], nil
}
