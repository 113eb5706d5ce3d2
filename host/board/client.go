package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"hermes/host/device"
	"hermes/protocol"
)

var (
	ErrNoAck   = errors.New("no acknowledgment from board")
	ErrClosed  = errors.New("client closed")
	ErrNoReply = errors.New("board did not answer the handshake")
)

// DefaultAckTimeout bounds the wait for ACK and CONNECTED. It covers the
// firmware payload timeout plus the line latency.
const DefaultAckTimeout = 500 * time.Millisecond

// Options tune a Client.
type Options struct {
	AckTimeout time.Duration

	// OnDebug receives firmware debug lines. They are logged at V(1) when nil.
	OnDebug func(text string)
}

// InputEvent is a boolean input report.
type InputEvent struct {
	ID    uint8
	Value bool
	At    time.Time
}

// Client talks to one board over a byte stream. Requests are serialized:
// each waits for its own acknowledgment before the next is written.
type Client struct {
	port io.ReadWriteCloser
	opts Options

	reqLock sync.Mutex
	replies chan protocol.MessageCode
	events  chan InputEvent

	closing   atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient starts reading port. The client owns the port from then on.
func NewClient(port io.ReadWriteCloser, opts Options) *Client {
	if opts.AckTimeout <= 0 {
		opts.AckTimeout = DefaultAckTimeout
	}
	c := &Client{
		port:    port,
		opts:    opts,
		replies: make(chan protocol.MessageCode, 8),
		events:  make(chan InputEvent, 64),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Events delivers boolean input reports. The channel is closed when the
// read side stops.
func (c *Client) Events() <-chan InputEvent {
	return c.events
}

// Close closes the port and stops the reader.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closing.Store(true)
		err = c.port.Close()
	})
	<-c.done
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.events)

	var dec Decoder
	buf := make([]byte, 256)
	for {
		n, err := c.port.Read(buf)
		for _, b := range buf[:n] {
			frame, ok := dec.Feed(b)
			if ok {
				c.handle(frame)
			}
		}
		if err == nil {
			continue
		}
		// serial ports report a quiet line as EOF after the read timeout
		if err == io.EOF && !c.closing.Load() {
			continue
		}
		if !c.closing.Load() {
			glog.Errorf("board read stopped: %v", err)
		}
		return
	}
}

func (c *Client) handle(f Frame) {
	switch f.Code {
	case protocol.ACK, protocol.CONNECTED:
		select {
		case c.replies <- f.Code:
		default:
			glog.Warningf("dropping unexpected %s", f.Code)
		}
	case protocol.BOOLEAN_INPUT:
		evt := InputEvent{ID: f.ID, Value: f.Value, At: time.Now()}
		select {
		case c.events <- evt:
		default:
			glog.Warningf("input event queue full, dropping report of #%d", f.ID)
		}
	case protocol.DEBUG:
		if c.opts.OnDebug != nil {
			c.opts.OnDebug(f.Text)
		} else {
			glog.V(1).Infof("board: %s", f.Text)
		}
	}
}

// Handshake opens a session announcing count devices.
func (c *Client) Handshake(ctx context.Context, count int) error {
	err := c.request(ctx, device.HandshakeFrame(count), protocol.CONNECTED)
	if errors.Is(err, ErrNoAck) {
		return ErrNoReply
	}
	return err
}

// Patch creates or updates device id on the board.
func (c *Client) Patch(ctx context.Context, id uint8, spec device.Spec) error {
	frame, err := device.PatchFrame(id, spec)
	if err != nil {
		return err
	}
	if err := c.request(ctx, frame, protocol.ACK); err != nil {
		return fmt.Errorf("patch %s #%d: %w", spec.Code(), id, err)
	}
	return nil
}

// Mutate sends a raw, already encoded value to device id.
func (c *Client) Mutate(ctx context.Context, id uint8, value []byte) error {
	if err := c.request(ctx, device.MutationFrame(id, value), protocol.ACK); err != nil {
		return fmt.Errorf("mutate #%d: %w", id, err)
	}
	return nil
}

func (c *Client) request(ctx context.Context, frame []byte, want protocol.MessageCode) error {
	c.reqLock.Lock()
	defer c.reqLock.Unlock()

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	// late replies belong to requests that already timed out
	for drained := false; !drained; {
		select {
		case <-c.replies:
		default:
			drained = true
		}
	}

	if _, err := c.port.Write(frame); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	glog.V(2).Infof("sent % x", frame)

	timer := time.NewTimer(c.opts.AckTimeout)
	defer timer.Stop()
	for {
		select {
		case code := <-c.replies:
			if code == want {
				return nil
			}
			glog.V(1).Infof("got %s while waiting for %s", code, want)
		case <-timer.C:
			return ErrNoAck
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return ErrClosed
		}
	}
}
