// Package gpio provides access to the digital I/O pins of a single-board
// computer through the Linux GPIO character device. Its centerpiece is
// edge-triggered interrupt dispatch: register a callback for a pin and an
// edge mode, and the callback fires asynchronously whenever the kernel
// reports a matching line event. The package also exposes the narrow
// pin-level surface consumed by display drivers and other collaborators
// (direction configuration, digital read/write, delays).
package gpio

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

// MaxPins is the number of addressable GPIO lines on the target boards. Pins
// are identified by their hardware line offset (BCM numbering on a Pi).
const MaxPins = 32

// Direction configures a pin as an input or an output.
type Direction int

// Supported pin directions.
const (
	Input Direction = iota
	Output
)

// Edge selects which voltage transitions of an input pin generate events.
type Edge int

// Supported edge detection modes.
const (
	EdgeRising Edge = iota + 1
	EdgeFalling
	EdgeBoth
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// Pull selects the built-in bias resistor applied to an input pin. Bias is
// best-effort: kernels older than 5.5 ignore the request.
type Pull int

// Supported bias modes.
const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// DigitalPin is the pin surface consumed by collaborators such as character
// and graphics display drivers.
type DigitalPin interface {
	SetMode(Direction) error
	Read() (bool, error)
	Write(bool) error
}

// Delay blocks for the given number of milliseconds.
func Delay(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// DelayMicro blocks for the given number of microseconds.
func DelayMicro(us int) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// DelayFor blocks for d or until ctx is done, and reports whether the full
// delay elapsed.
func DelayFor(ctx context.Context, d time.Duration) bool {
	return goutils.SelectContextOrWait(ctx, d)
}

var (
	chipMu      sync.Mutex
	processChip *Chip
)

// DefaultChip returns the process-wide handle to the GPIO controller device,
// creating it on first use. The device itself is opened lazily on the first
// line request and stays open until the process exits.
func DefaultChip() *Chip {
	chipMu.Lock()
	defer chipMu.Unlock()
	if processChip == nil {
		processChip = NewChip(DefaultChipPath)
	}
	return processChip
}

var (
	defaultManagerMu sync.Mutex
	defaultManager   *Manager
)

func defaultMgr() *Manager {
	defaultManagerMu.Lock()
	defer defaultManagerMu.Unlock()
	if defaultManager == nil {
		defaultManager = NewManager(golog.Global())
	}
	return defaultManager
}

// RegisterInterrupt arranges for callback to run whenever the kernel reports
// a matching edge event on pin, using the process-wide interrupt manager.
// See Manager.RegisterInterrupt.
func RegisterInterrupt(pin int, edge Edge, callback func()) error {
	return defaultMgr().RegisterInterrupt(pin, edge, callback)
}

// UnregisterInterrupt tears down a registration made through
// RegisterInterrupt.
func UnregisterInterrupt(pin int) error {
	return defaultMgr().UnregisterInterrupt(pin)
}

var (
	pinsMu     sync.Mutex
	openedPins = map[int]*Pin{}
)

func openPin(pin int) (*Pin, error) {
	pinsMu.Lock()
	defer pinsMu.Unlock()
	if p, ok := openedPins[pin]; ok {
		return p, nil
	}
	p, err := DefaultChip().Pin(pin)
	if err != nil {
		return nil, err
	}
	openedPins[pin] = p
	return p, nil
}

// PinMode sets the direction of a pin on the default chip.
func PinMode(pin int, dir Direction) error {
	p, err := openPin(pin)
	if err != nil {
		return err
	}
	return p.SetMode(dir)
}

// PullMode sets the bias resistor of a pin on the default chip.
func PullMode(pin int, pull Pull) error {
	p, err := openPin(pin)
	if err != nil {
		return err
	}
	return p.SetPull(pull)
}

// DigitalWrite drives a pin on the default chip high or low.
func DigitalWrite(pin int, high bool) error {
	p, err := openPin(pin)
	if err != nil {
		return err
	}
	return p.Write(high)
}

// DigitalRead returns the current level of a pin on the default chip.
func DigitalRead(pin int) (bool, error) {
	p, err := openPin(pin)
	if err != nil {
		return false, err
	}
	return p.Read()
}

// DigitalWriteByte drives eight consecutive pins of the default chip as a
// byte-wide bus, lowest bit on pinStart.
func DigitalWriteByte(value byte, pinStart, pinEnd int) error {
	return DefaultChip().WriteByte(value, pinStart, pinEnd)
}

func validEdge(e Edge) error {
	if e < EdgeRising || e > EdgeBoth {
		return errors.Errorf("unknown edge mode %d", int(e))
	}
	return nil
}
