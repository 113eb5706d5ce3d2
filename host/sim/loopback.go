package sim

import (
	"io"
	"sync"
)

// Loopback connects a host client and a simulated board in one process.
// The board side (Buffered, ReadByte, Write) is used by the firmware loop
// and never blocks; the host side returned by Host blocks on Read.
type Loopback struct {
	mu      sync.Mutex
	cond    *sync.Cond
	toBoard []byte
	toHost  []byte
	closed  bool
}

// NewLoopback returns an open loopback.
func NewLoopback() *Loopback {
	l := &Loopback{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func (l *Loopback) Buffered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.toBoard)
}

func (l *Loopback) ReadByte() (byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.toBoard) == 0 {
		return 0, io.EOF
	}
	b := l.toBoard[0]
	l.toBoard = l.toBoard[1:]
	return b, nil
}

// Write queues board output for the host.
func (l *Loopback) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, io.ErrClosedPipe
	}
	l.toHost = append(l.toHost, p...)
	l.cond.Broadcast()
	return len(p), nil
}

// Host returns the host end of the loopback.
func (l *Loopback) Host() io.ReadWriteCloser {
	return hostEnd{l}
}

type hostEnd struct {
	l *Loopback
}

func (h hostEnd) Read(p []byte) (int, error) {
	l := h.l
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.toHost) == 0 && !l.closed {
		l.cond.Wait()
	}
	if len(l.toHost) == 0 {
		return 0, io.ErrClosedPipe
	}
	n := copy(p, l.toHost)
	l.toHost = l.toHost[n:]
	return n, nil
}

func (h hostEnd) Write(p []byte) (int, error) {
	l := h.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, io.ErrClosedPipe
	}
	l.toBoard = append(l.toBoard, p...)
	return len(p), nil
}

func (h hostEnd) Close() error {
	l := h.l
	l.mu.Lock()
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()
	return nil
}
