//go:build !tinygo

package protocol

import (
	"io"
	"net"
	"time"
)

// UDPEndpoint is the board side of the ethernet link: a ByteSource and
// writer over a listening UDP socket. Replies go to the last peer heard from.
type UDPEndpoint struct {
	conn   *net.UDPConn
	remote *net.UDPAddr

	// PollInterval bounds how long an empty poll blocks on the socket.
	PollInterval time.Duration

	pending []byte
	buf     [1500]byte
}

// ListenUDP opens an endpoint on addr (e.g. ":5000").
func ListenUDP(addr string) (*UDPEndpoint, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	return &UDPEndpoint{conn: conn, PollInterval: time.Millisecond}, nil
}

// Addr returns the local address.
func (e *UDPEndpoint) Addr() net.Addr {
	return e.conn.LocalAddr()
}

func (e *UDPEndpoint) receive() {
	if err := e.conn.SetReadDeadline(time.Now().Add(e.PollInterval)); err != nil {
		return
	}
	n, addr, err := e.conn.ReadFromUDP(e.buf[:])
	if err != nil || n == 0 {
		return
	}
	e.remote = addr
	e.pending = e.buf[:n]
}

// Buffered returns the bytes left in the current datagram, reading the next
// one when it is exhausted.
func (e *UDPEndpoint) Buffered() int {
	if len(e.pending) == 0 {
		e.receive()
	}
	return len(e.pending)
}

func (e *UDPEndpoint) ReadByte() (byte, error) {
	if len(e.pending) == 0 {
		e.receive()
		if len(e.pending) == 0 {
			return 0, io.EOF
		}
	}
	b := e.pending[0]
	e.pending = e.pending[1:]
	return b, nil
}

// Write sends p as one datagram. Output is dropped until a peer has spoken.
func (e *UDPEndpoint) Write(p []byte) (int, error) {
	if e.remote == nil {
		return len(p), nil
	}
	return e.conn.WriteToUDP(p, e.remote)
}

func (e *UDPEndpoint) Close() error {
	return e.conn.Close()
}
