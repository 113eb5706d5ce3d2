package protocol

import (
	"io"
	"time"
)

// Transport is the byte-oriented link the firmware reads messages from.
// Implementations are polled from a single loop and need not be safe for
// concurrent use.
type Transport interface {
	// BytesAvailable returns the number of bytes that can be read without waiting.
	BytesAvailable() int

	// WaitFor busy-waits until n bytes are available or timeout elapses.
	WaitFor(n int, timeout time.Duration) bool

	// ReadExact reads up to len(buf) already available bytes and returns the
	// count read. It never blocks; pair it with WaitFor.
	ReadExact(buf []byte) int

	WriteByte(b byte) error
	WriteBytes(data []byte) error
}

// Clock reports monotonic time since an arbitrary origin.
type Clock interface {
	Now() time.Duration
}

// SystemClock measures time from its creation using the monotonic clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock whose origin is now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ByteSource is the receive side of a serial-like device. machine.Serial
// implements it on TinyGo targets.
type ByteSource interface {
	Buffered() int
	ReadByte() (byte, error)
}

// DefaultStreamBuffer sizes the receive FIFO to hold a maximal message.
const DefaultStreamBuffer = 2 * (CodeSize + 1 + MaxPayload)

// StreamTransport adapts a ByteSource and a writer into a Transport.
// Incoming bytes are pulled into a FIFO on demand.
type StreamTransport struct {
	src   ByteSource
	out   io.Writer
	fifo  *FifoBuffer
	clock Clock

	// Yield is called between polls while waiting. Nil busy-waits.
	Yield func()

	scratch [1]byte
}

// NewStreamTransport creates a transport reading from src and writing to out.
func NewStreamTransport(src ByteSource, out io.Writer, clock Clock) *StreamTransport {
	return &StreamTransport{
		src:   src,
		out:   out,
		fifo:  NewFifoBuffer(DefaultStreamBuffer),
		clock: clock,
	}
}

// pump moves pending source bytes into the FIFO.
func (t *StreamTransport) pump() {
	for t.fifo.Free() > 0 && t.src.Buffered() > 0 {
		b, err := t.src.ReadByte()
		if err != nil {
			return
		}
		t.fifo.Push(b)
	}
}

func (t *StreamTransport) BytesAvailable() int {
	t.pump()
	return t.fifo.Available()
}

func (t *StreamTransport) WaitFor(n int, timeout time.Duration) bool {
	if n <= 0 {
		return true
	}
	start := t.clock.Now()
	for {
		t.pump()
		if t.fifo.Available() >= n {
			return true
		}
		if t.clock.Now()-start >= timeout {
			return false
		}
		if t.Yield != nil {
			t.Yield()
		}
	}
}

func (t *StreamTransport) ReadExact(buf []byte) int {
	t.pump()
	return t.fifo.Read(buf)
}

func (t *StreamTransport) WriteByte(b byte) error {
	t.scratch[0] = b
	return t.WriteBytes(t.scratch[:])
}

func (t *StreamTransport) WriteBytes(data []byte) error {
	for len(data) > 0 {
		n, err := t.out.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		data = data[n:]
	}
	return nil
}

// Reset drops any buffered input.
func (t *StreamTransport) Reset() {
	t.fifo.Reset()
}
