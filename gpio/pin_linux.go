//go:build linux

package gpio

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"golang.org/x/sys/unix"
)

// Pin is a single digital I/O line, addressed by its hardware line offset.
// The underlying line handle is requested lazily and re-requested whenever
// the direction or bias changes.
type Pin struct {
	chip   *Chip
	offset uint32

	mu   sync.Mutex
	fd   int
	dir  Direction
	pull Pull
	held bool
}

// Pin returns a handle for one line of the chip. No hardware is touched
// until the first operation.
func (c *Chip) Pin(pin int) (*Pin, error) {
	if pin < 0 || pin >= MaxPins {
		return nil, errors.Wrapf(ErrInvalidPin, "pin %d", pin)
	}
	return &Pin{chip: c, offset: uint32(pin), fd: -1, dir: Input}, nil
}

// ensureHandle opens the line handle for the wanted direction if it is not
// already held. Callers must hold p.mu.
func (p *Pin) ensureHandle(dir Direction) error {
	if p.held && p.dir == dir {
		return nil
	}
	p.dropHandle()
	flags := dir.handleFlags()
	if dir == Input {
		flags |= p.pull.handleFlags()
	}
	fd, err := p.chip.requestLineHandle([]uint32{p.offset}, flags, nil, pinConsumerLabel)
	if err != nil {
		return err
	}
	p.fd = fd
	p.dir = dir
	p.held = true
	return nil
}

// dropHandle releases the line handle if held. Callers must hold p.mu.
func (p *Pin) dropHandle() {
	if !p.held {
		return
	}
	goutils.UncheckedError(unix.Close(p.fd))
	p.fd = -1
	p.held = false
}

// SetMode configures the pin as an input or an output.
func (p *Pin) SetMode(dir Direction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensureHandle(dir)
}

// SetPull configures the bias resistor applied while the pin is an input.
// If the pin already holds an input handle it is re-requested so the new
// bias takes effect.
func (p *Pin) SetPull(pull Pull) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pull = pull
	if !p.held || p.dir != Input {
		return nil
	}
	p.dropHandle()
	return p.ensureHandle(Input)
}

// Write drives the pin high or low, reconfiguring it as an output first if
// needed.
func (p *Pin) Write(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureHandle(Output); err != nil {
		return err
	}
	var data handleData
	if high {
		data.Values[0] = 1
	}
	if err := ioctl(p.fd, setLineValuesIoctl, unsafe.Pointer(&data)); err != nil {
		return errors.Wrapf(err, "writing pin %d", p.offset)
	}
	return nil
}

// Read returns the current level of the pin. It works in either direction;
// an unconfigured pin is requested as an input.
func (p *Pin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureHandle(p.dir); err != nil {
		return false, err
	}
	var data handleData
	if err := ioctl(p.fd, getLineValuesIoctl, unsafe.Pointer(&data)); err != nil {
		return false, errors.Wrapf(err, "reading pin %d", p.offset)
	}
	// Anything non-zero counts as high.
	return data.Values[0] != 0, nil
}

// Close releases the pin's line handle.
func (p *Pin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropHandle()
	return nil
}

var _ DigitalPin = (*Pin)(nil)
