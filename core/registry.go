package core

import (
	"strconv"

	"hermes/protocol"
)

// Factory produces a fresh handler instance.
type Factory[H Handler] func() H

// Registry maps a message code to the factory of its handler. Entries are
// added once at boot by the explicit init functions and only read after.
type Registry[H Handler] struct {
	kind      string
	factories [256]Factory[H]
	names     [256]string
	count     int
}

// NewRegistry creates an empty registry. kind names it in traces.
func NewRegistry[H Handler](kind string) *Registry[H] {
	return &Registry[H]{kind: kind}
}

// Register adds a factory for code. It returns false for reserved codes,
// nil factories and codes already taken; the first registration wins.
func (r *Registry[H]) Register(code protocol.MessageCode, factory Factory[H]) bool {
	if factory == nil || code.IsReserved() || r.factories[code] != nil {
		return false
	}
	r.factories[code] = factory
	r.names[code] = factory().Name()
	r.count++
	return true
}

// Create returns a new handler for code, or false if none is registered.
func (r *Registry[H]) Create(code protocol.MessageCode) (H, bool) {
	f := r.factories[code]
	if f == nil {
		var zero H
		return zero, false
	}
	return f(), true
}

// Has reports whether code is registered.
func (r *Registry[H]) Has(code protocol.MessageCode) bool {
	return r.factories[code] != nil
}

// Count returns the number of registered codes
func (r *Registry[H]) Count() int {
	return r.count
}

// Dictionary lists registered handlers as "kind code name" lines in code order.
func (r *Registry[H]) Dictionary() string {
	dict := ""
	for code := range r.factories {
		if r.factories[code] == nil {
			continue
		}
		dict += r.kind + " " + strconv.Itoa(code) + " " + r.names[code] + "\n"
	}
	return dict
}
