//go:build linux

package gpio

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"golang.org/x/sys/unix"
)

// DefaultChipPath is the GPIO controller character device on the target
// boards.
const DefaultChipPath = "/dev/gpiochip0"

const (
	eventConsumerLabel = "jakestering_gpio_irq"
	pinConsumerLabel   = "jakestering_gpio"
)

// Chip is a handle to a GPIO controller character device. The descriptor is
// opened lazily on first use and stays open for the life of the handle;
// multiple line requests share it.
type Chip struct {
	path string

	mu     sync.Mutex
	fd     int
	opened bool
}

// NewChip returns an unopened handle to the controller device at path.
func NewChip(path string) *Chip {
	return &Chip{path: path, fd: -1}
}

// ensureOpen opens the controller device once. Callers must hold c.mu.
func (c *Chip) ensureOpen() error {
	if c.opened {
		return nil
	}
	fd, err := unix.Open(c.path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return errors.Wrapf(ErrChipUnavailable, "%s: %v", c.path, err)
	}
	c.fd = fd
	c.opened = true
	return nil
}

// requestLineEvent asks the kernel for an edge-event subscription on a
// single line and returns the event descriptor, already configured
// non-blocking. On any failure no descriptor is leaked.
func (c *Chip) requestLineEvent(pin int, edge Edge) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpen(); err != nil {
		return -1, err
	}

	req := eventRequest{
		LineOffset:  uint32(pin),
		HandleFlags: gpioHandleRequestInput,
		EventFlags:  edge.eventFlags(),
	}
	copy(req.Consumer[:len(req.Consumer)-1], eventConsumerLabel)
	if err := ioctl(c.fd, getLineEventIoctl, unsafe.Pointer(&req)); err != nil {
		return -1, errors.Wrapf(ErrLineRequest, "pin %d (%s): %v", pin, edge, err)
	}

	fd := int(req.Fd)
	if err := unix.SetNonblock(fd, true); err != nil {
		goutils.UncheckedError(unix.Close(fd))
		return -1, errors.Wrapf(ErrDescriptorConfig, "pin %d: %v", pin, err)
	}
	return fd, nil
}

// requestLineHandle claims one or more lines for reading/writing levels and
// returns the handle descriptor.
func (c *Chip) requestLineHandle(offsets []uint32, flags uint32, defaults []byte, consumer string) (int, error) {
	if len(offsets) == 0 || len(offsets) > maxHandleLines {
		return -1, errors.Errorf("line handle must cover 1-%d lines, got %d", maxHandleLines, len(offsets))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureOpen(); err != nil {
		return -1, err
	}

	var req handleRequest
	copy(req.LineOffsets[:], offsets)
	req.Flags = flags
	copy(req.DefaultValues[:], defaults)
	copy(req.Consumer[:len(req.Consumer)-1], consumer)
	req.Lines = uint32(len(offsets))
	if err := ioctl(c.fd, getLineHandleIoctl, unsafe.Pointer(&req)); err != nil {
		return -1, errors.Wrapf(ErrLineRequest, "lines %v: %v", offsets, err)
	}
	return int(req.Fd), nil
}

// WriteByte drives eight consecutive lines as a byte-wide bus, lowest bit on
// pinStart. The lines are claimed, driven, and released in one shot.
func (c *Chip) WriteByte(value byte, pinStart, pinEnd int) error {
	if pinEnd-pinStart != 7 {
		return errors.Errorf("byte write needs exactly 8 pins, got %d through %d", pinStart, pinEnd)
	}
	if pinStart < 0 || pinEnd >= MaxPins {
		return errors.Wrapf(ErrInvalidPin, "pins %d through %d", pinStart, pinEnd)
	}

	offsets := make([]uint32, 8)
	for i := range offsets {
		offsets[i] = uint32(pinStart + i)
	}
	levels := byteLevels(value)
	fd, err := c.requestLineHandle(offsets, gpioHandleRequestOutput, levels[:], pinConsumerLabel)
	if err != nil {
		return err
	}
	return unix.Close(fd)
}

// Close releases the controller descriptor. Line and event descriptors
// handed out earlier stay valid.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.opened {
		return nil
	}
	c.opened = false
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}

func byteLevels(value byte) [8]byte {
	var levels [8]byte
	for i := range levels {
		if value&(1<<i) != 0 {
			levels[i] = 1
		}
	}
	return levels
}
