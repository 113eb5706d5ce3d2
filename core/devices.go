package core

import "time"

// DeviceManager owns the live runnable devices keyed by id.
// It is mutated only from PATCH handling and iterated by the tick sweep;
// both run on the loop goroutine.
type DeviceManager struct {
	byID  [256]Device
	order []uint8 // insertion order, ticked in this order
}

// NewDeviceManager creates an empty manager.
func NewDeviceManager() *DeviceManager {
	return &DeviceManager{order: make([]uint8, 0, 16)}
}

// Insert registers dev under its id. Id 0 and taken ids are rejected.
func (m *DeviceManager) Insert(dev Device) error {
	id := dev.ID()
	if id == 0 {
		return ErrAnonymousDevice
	}
	if m.byID[id] != nil {
		return ErrDuplicateID
	}
	m.byID[id] = dev
	m.order = append(m.order, id)
	return nil
}

// Get returns the device registered under id.
func (m *DeviceManager) Get(id uint8) (Device, bool) {
	dev := m.byID[id]
	return dev, dev != nil
}

// Len returns the number of live devices.
func (m *DeviceManager) Len() int {
	return len(m.order)
}

// Each calls fn for every device in insertion order.
func (m *DeviceManager) Each(fn func(Device)) {
	for _, id := range m.order {
		fn(m.byID[id])
	}
}

// TickAll advances every device by one tick.
func (m *DeviceManager) TickAll(fw *Firmware, now time.Duration) {
	for _, id := range m.order {
		m.byID[id].Tick(fw, now)
	}
}
