package board

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/golang/glog"

	"hermes/host/device"
)

var (
	ErrUnknownDevice = errors.New("unknown device")
	ErrNotConnected  = errors.New("board not connected")
)

// Device is a named device of a board.
type Device struct {
	ID   uint8
	Name string
	Spec device.Spec
}

// State is the last known value of a device: the last value set for
// outputs and servos, the last report for inputs.
type State struct {
	Device
	Value   int
	Known   bool
	Updated time.Time
}

// Listener is called on every state change.
type Listener func(State)

// Board is the host model of one board: its devices, their last known
// state and the client used to reach it.
type Board struct {
	Name string

	client *Client

	mu        sync.RWMutex
	states    map[uint8]*State
	byName    map[string]uint8
	order     []uint8
	listeners []Listener
	connected bool
}

// New validates devs and builds a board. Runnable devices need a unique,
// non-zero id; names are unique.
func New(name string, client *Client, devs []Device) (*Board, error) {
	b := &Board{
		Name:   name,
		client: client,
		states: make(map[uint8]*State),
		byName: make(map[string]uint8),
	}
	for _, d := range devs {
		if d.Spec == nil {
			return nil, fmt.Errorf("device %q: no kind", d.Name)
		}
		if d.ID == 0 {
			return nil, fmt.Errorf("device %q: id 0 is reserved", d.Name)
		}
		if _, dup := b.states[d.ID]; dup {
			return nil, fmt.Errorf("device %q: duplicate id %d", d.Name, d.ID)
		}
		if d.Name == "" {
			d.Name = strconv.Itoa(int(d.ID))
		}
		if _, dup := b.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate device name %q", d.Name)
		}
		b.states[d.ID] = &State{Device: d}
		b.byName[d.Name] = d.ID
		b.order = append(b.order, d.ID)
	}
	sort.Slice(b.order, func(i, j int) bool { return b.order[i] < b.order[j] })
	return b, nil
}

// Client returns the board client.
func (b *Board) Client() *Client {
	return b.client
}

// Connect runs the handshake and configures every device. One-shot
// devices are not configured here; they run when set.
func (b *Board) Connect(ctx context.Context) error {
	devs := b.Devices()
	runnable := 0
	for _, d := range devs {
		if d.Spec.Runnable() {
			runnable++
		}
	}
	if err := b.client.Handshake(ctx, runnable); err != nil {
		return fmt.Errorf("handshake %s: %w", b.Name, err)
	}
	for _, d := range devs {
		if !d.Spec.Runnable() {
			continue
		}
		if err := b.client.Patch(ctx, d.ID, d.Spec); err != nil {
			return err
		}
		glog.V(1).Infof("%s: configured %s #%d", b.Name, d.Name, d.ID)
	}

	b.mu.Lock()
	b.connected = true
	b.mu.Unlock()
	glog.Infof("%s: connected, %d devices", b.Name, runnable)
	return nil
}

// Configure replaces the kind settings of a device and pushes them to the board.
func (b *Board) Configure(ctx context.Context, ref string, spec device.Spec) error {
	b.mu.RLock()
	st, err := b.lookup(ref)
	b.mu.RUnlock()
	if err != nil {
		return err
	}
	if spec.Runnable() {
		if err := b.client.Patch(ctx, st.ID, spec); err != nil {
			return err
		}
	}
	b.mu.Lock()
	st.Spec = spec
	b.mu.Unlock()
	return nil
}

// Set sends a value to a device referenced by name or id. One-shot digital
// writes are re-sent as a PATCH with the new level.
func (b *Board) Set(ctx context.Context, ref string, value int) error {
	b.mu.RLock()
	st, err := b.lookup(ref)
	connected := b.connected
	var dev Device
	if st != nil {
		dev = st.Device
	}
	b.mu.RUnlock()
	if err != nil {
		return err
	}
	if !connected {
		return ErrNotConnected
	}

	if dw, ok := dev.Spec.(device.DigitalWrite); ok {
		dw.Level = value != 0
		if err := b.client.Patch(ctx, dev.ID, dw); err != nil {
			return err
		}
		b.update(dev.ID, boolInt(dw.Level))
		return nil
	}

	encoded, err := dev.Spec.Value(value)
	if err != nil {
		return err
	}
	if err := b.client.Mutate(ctx, dev.ID, encoded); err != nil {
		return err
	}
	if _, input := dev.Spec.(device.BooleanInput); !input {
		b.update(dev.ID, value)
	}
	return nil
}

// Run applies input reports until ctx is done or the client stops.
func (b *Board) Run(ctx context.Context) error {
	events := b.client.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return ErrClosed
			}
			if !b.update(evt.ID, boolInt(evt.Value)) {
				glog.Warningf("%s: report from unknown device #%d", b.Name, evt.ID)
			}
		}
	}
}

// Subscribe registers fn for state changes.
func (b *Board) Subscribe(fn Listener) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// Devices lists the devices ordered by id.
func (b *Board) Devices() []Device {
	b.mu.RLock()
	defer b.mu.RUnlock()
	devs := make([]Device, 0, len(b.order))
	for _, id := range b.order {
		devs = append(devs, b.states[id].Device)
	}
	return devs
}

// States lists the device states ordered by id.
func (b *Board) States() []State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	states := make([]State, 0, len(b.order))
	for _, id := range b.order {
		states = append(states, *b.states[id])
	}
	return states
}

// State returns the state of the device referenced by name or id.
func (b *Board) State(ref string) (State, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	st, err := b.lookup(ref)
	if err != nil {
		return State{}, err
	}
	return *st, nil
}

// lookup resolves a name first, then a decimal id. Caller holds mu.
func (b *Board) lookup(ref string) (*State, error) {
	if id, ok := b.byName[ref]; ok {
		return b.states[id], nil
	}
	if n, err := strconv.ParseUint(ref, 10, 8); err == nil {
		if st, ok := b.states[uint8(n)]; ok {
			return st, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, ref)
}

func (b *Board) update(id uint8, value int) bool {
	b.mu.Lock()
	st, ok := b.states[id]
	if !ok {
		b.mu.Unlock()
		return false
	}
	st.Value = value
	st.Known = true
	st.Updated = time.Now()
	snapshot := *st
	listeners := append([]Listener(nil), b.listeners...)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
	return true
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
