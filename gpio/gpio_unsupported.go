//go:build !linux

package gpio

import "github.com/edaniels/golog"

// The GPIO character device only exists on Linux. These stubs keep the
// package compiling elsewhere; every operation reports the chip as
// unavailable so desktop builds of dependent tools still link.

// DefaultChipPath is the GPIO controller character device on the target
// boards.
const DefaultChipPath = "/dev/gpiochip0"

// Chip is a handle to a GPIO controller character device.
type Chip struct {
	path string
}

// NewChip returns an unopened handle to the controller device at path.
func NewChip(path string) *Chip {
	return &Chip{path: path}
}

// Pin returns a handle for one line of the chip.
func (c *Chip) Pin(pin int) (*Pin, error) {
	return nil, ErrChipUnavailable
}

// WriteByte drives eight consecutive lines as a byte-wide bus.
func (c *Chip) WriteByte(value byte, pinStart, pinEnd int) error {
	return ErrChipUnavailable
}

// Close releases the controller descriptor.
func (c *Chip) Close() error {
	return nil
}

// Pin is a single digital I/O line.
type Pin struct{}

// SetMode configures the pin as an input or an output.
func (p *Pin) SetMode(Direction) error { return ErrChipUnavailable }

// SetPull configures the bias resistor applied while the pin is an input.
func (p *Pin) SetPull(Pull) error { return ErrChipUnavailable }

// Read returns the current level of the pin.
func (p *Pin) Read() (bool, error) { return false, ErrChipUnavailable }

// Write drives the pin high or low.
func (p *Pin) Write(bool) error { return ErrChipUnavailable }

// Close releases the pin's line handle.
func (p *Pin) Close() error { return nil }

// Manager owns the interrupt registry and the per-pin dispatch workers.
type Manager struct{}

// NewManager returns a manager dispatching events from the process-wide
// default chip.
func NewManager(logger golog.Logger) *Manager {
	return &Manager{}
}

// RegisterInterrupt arranges for callback to run once per edge event the
// kernel reports for pin.
func (m *Manager) RegisterInterrupt(pin int, edge Edge, callback func()) error {
	return ErrChipUnavailable
}

// UnregisterInterrupt tears down a registration made on this manager.
func (m *Manager) UnregisterInterrupt(pin int) error {
	return ErrChipUnavailable
}

// Close tears down every live registration.
func (m *Manager) Close() error {
	return nil
}
