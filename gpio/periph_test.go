package gpio

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestOpenPeriphPinBounds(t *testing.T) {
	_, err := OpenPeriphPin(-1)
	test.That(t, errors.Is(err, ErrInvalidPin), test.ShouldBeTrue)
	_, err = OpenPeriphPin(MaxPins)
	test.That(t, errors.Is(err, ErrInvalidPin), test.ShouldBeTrue)
}

func TestEdgeString(t *testing.T) {
	test.That(t, EdgeRising.String(), test.ShouldEqual, "rising")
	test.That(t, EdgeFalling.String(), test.ShouldEqual, "falling")
	test.That(t, EdgeBoth.String(), test.ShouldEqual, "both")
	test.That(t, Edge(0).String(), test.ShouldEqual, "unknown")
}
