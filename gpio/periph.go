package gpio

import (
	"fmt"

	"github.com/pkg/errors"
	periphgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphPin reads and writes a pin through periph.io's host drivers. It is a
// fallback for boards where the GPIO character device is not usable.
type PeriphPin struct {
	name string
	pin  periphgpio.PinIO
}

// OpenPeriphPin looks up a pin by BCM number in the periph host registry.
func OpenPeriphPin(pin int) (*PeriphPin, error) {
	if pin < 0 || pin >= MaxPins {
		return nil, errors.Wrapf(ErrInvalidPin, "pin %d", pin)
	}
	// host.Init is safe to call repeatedly; later calls are no-ops.
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "initializing periph host drivers")
	}
	name := fmt.Sprintf("GPIO%d", pin)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, errors.Errorf("no gpio pin named %q", name)
	}
	return &PeriphPin{name: name, pin: p}, nil
}

// SetMode configures the pin as an input or an output.
func (p *PeriphPin) SetMode(dir Direction) error {
	if dir == Output {
		return p.pin.Out(periphgpio.Low)
	}
	return p.pin.In(periphgpio.PullNoChange, periphgpio.NoEdge)
}

// Read returns the current level of the pin.
func (p *PeriphPin) Read() (bool, error) {
	return p.pin.Read() == periphgpio.High, nil
}

// Write drives the pin high or low.
func (p *PeriphPin) Write(high bool) error {
	return p.pin.Out(periphgpio.Level(high))
}

var _ DigitalPin = (*PeriphPin)(nil)
