package gpio

import "github.com/pkg/errors"

// Failure kinds surfaced by the package. Callers can match them with
// errors.Is; most are returned wrapped with pin context.
var (
	// ErrChipUnavailable means the GPIO controller device could not be
	// opened. No registrations can be serviced for the rest of the process.
	ErrChipUnavailable = errors.New("gpio chip unavailable")

	// ErrInvalidPin means the pin is outside the board's line range.
	ErrInvalidPin = errors.New("pin out of range")

	// ErrLineRequest means the kernel refused the line event request, e.g.
	// because the line is already claimed by another consumer.
	ErrLineRequest = errors.New("line event request failed")

	// ErrDescriptorConfig means the event descriptor could not be configured
	// after the request succeeded. The descriptor is closed before this is
	// returned.
	ErrDescriptorConfig = errors.New("event descriptor configuration failed")

	// ErrNotRegistered is reported on teardown of a pin with no live
	// registration. It is benign.
	ErrNotRegistered = errors.New("no interrupt registered for pin")

	// ErrCancellation means an interrupt worker did not stop within the
	// teardown deadline. Descriptors are reclaimed regardless.
	ErrCancellation = errors.New("interrupt worker did not stop in time")
)
