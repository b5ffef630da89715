package gpio

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestChipPinBounds(t *testing.T) {
	c := NewChip(DefaultChipPath)

	_, err := c.Pin(-1)
	test.That(t, errors.Is(err, ErrInvalidPin), test.ShouldBeTrue)
	_, err = c.Pin(MaxPins)
	test.That(t, errors.Is(err, ErrInvalidPin), test.ShouldBeTrue)

	// In range: no hardware touched until the first operation.
	p, err := c.Pin(MaxPins - 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p, test.ShouldNotBeNil)
	test.That(t, p.Close(), test.ShouldBeNil)
}

func TestWriteByteValidation(t *testing.T) {
	c := NewChip(DefaultChipPath)

	err := c.WriteByte(0xff, 3, 9)
	test.That(t, err, test.ShouldNotBeNil)
	err = c.WriteByte(0xff, -2, 5)
	test.That(t, errors.Is(err, ErrInvalidPin), test.ShouldBeTrue)
	err = c.WriteByte(0xff, MaxPins-4, MaxPins+3)
	test.That(t, errors.Is(err, ErrInvalidPin), test.ShouldBeTrue)
}

func TestByteLevels(t *testing.T) {
	test.That(t, byteLevels(0x00), test.ShouldResemble, [8]byte{})
	test.That(t, byteLevels(0xff), test.ShouldResemble, [8]byte{1, 1, 1, 1, 1, 1, 1, 1})
	// 0xA5 = 1010_0101, lowest bit first.
	test.That(t, byteLevels(0xa5), test.ShouldResemble, [8]byte{1, 0, 1, 0, 0, 1, 0, 1})
}
