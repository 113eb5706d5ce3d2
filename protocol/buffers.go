package protocol

// FifoBuffer is a fixed capacity byte ring used between a byte source and
// the dispatcher. It never allocates after construction.
type FifoBuffer struct {
	buf   []byte
	head  int // next byte to read
	count int
}

// NewFifoBuffer creates a new FifoBuffer with the specified capacity
func NewFifoBuffer(capacity int) *FifoBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Push appends b. It returns false when the buffer is full.
func (f *FifoBuffer) Push(b byte) bool {
	if f.count == len(f.buf) {
		return false
	}
	f.buf[(f.head+f.count)%len(f.buf)] = b
	f.count++
	return true
}

// Write appends as much of data as fits and returns the count written.
func (f *FifoBuffer) Write(data []byte) int {
	n := 0
	for _, b := range data {
		if !f.Push(b) {
			break
		}
		n++
	}
	return n
}

// Read moves up to len(p) bytes out of the buffer.
func (f *FifoBuffer) Read(p []byte) int {
	n := 0
	for n < len(p) && f.count > 0 {
		p[n] = f.buf[f.head]
		f.head = (f.head + 1) % len(f.buf)
		f.count--
		n++
	}
	return n
}

// Peek returns the byte at offset i from the read position.
func (f *FifoBuffer) Peek(i int) (byte, bool) {
	if i < 0 || i >= f.count {
		return 0, false
	}
	return f.buf[(f.head+i)%len(f.buf)], true
}

// Pop discards up to n bytes from the front
func (f *FifoBuffer) Pop(n int) {
	if n > f.count {
		n = f.count
	}
	f.head = (f.head + n) % len(f.buf)
	f.count -= n
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	return f.count
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.count
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.count == 0
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.head = 0
	f.count = 0
}
