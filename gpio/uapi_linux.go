//go:build linux

// GPIO character device uAPI (v1) definitions: struct layouts, request
// flags, and ioctl numbers, used directly instead of a wrapper library so
// the dispatcher owns the raw descriptors and event records.

package gpio

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	gpioHandleRequestInput        = 1 << 0
	gpioHandleRequestOutput       = 1 << 1
	gpioHandleRequestBiasPullUp   = 1 << 5
	gpioHandleRequestBiasPullDown = 1 << 6

	gpioEventRequestRisingEdge  = 1 << 0
	gpioEventRequestFallingEdge = 1 << 1
	gpioEventRequestBothEdges   = gpioEventRequestRisingEdge | gpioEventRequestFallingEdge

	// Event identifiers reported in gpioevent_data.id.
	gpioEventRisingEdge  = 0x01
	gpioEventFallingEdge = 0x02

	maxHandleLines = 64
)

// eventRequest mirrors struct gpioevent_request.
type eventRequest struct {
	LineOffset  uint32
	HandleFlags uint32
	EventFlags  uint32
	Consumer    [32]byte
	Fd          uint32
}

// handleRequest mirrors struct gpiohandle_request.
type handleRequest struct {
	LineOffsets   [maxHandleLines]uint32
	Flags         uint32
	DefaultValues [maxHandleLines]uint8
	Consumer      [32]byte
	Lines         uint32
	Fd            int32
}

// handleData mirrors struct gpiohandle_data.
type handleData struct {
	Values [maxHandleLines]uint8
}

// eventData mirrors struct gpioevent_data. The trailing pad matches the
// kernel layout on every supported target (64-bit and 32-bit ARM); i386 is
// the lone exception and is not a supported board architecture.
type eventData struct {
	Timestamp uint64
	ID        uint32
	_         uint32
}

const eventDataSize = 16

// parseEvent decodes one event record. A buffer shorter than a full record
// is not an event. The kernel writes native byte order; every supported
// board is little-endian.
func parseEvent(buf []byte) (eventData, bool) {
	if len(buf) < eventDataSize {
		return eventData{}, false
	}
	return eventData{
		Timestamp: binary.LittleEndian.Uint64(buf[0:8]),
		ID:        binary.LittleEndian.Uint32(buf[8:12]),
	}, true
}

func iowr(nr, size uintptr) uintptr {
	// _IOWR with the GPIO ioctl magic 0xB4.
	return (3 << 30) | (size << 16) | (0xB4 << 8) | nr
}

var (
	getLineHandleIoctl = iowr(0x03, unsafe.Sizeof(handleRequest{}))
	getLineEventIoctl  = iowr(0x04, unsafe.Sizeof(eventRequest{}))
	getLineValuesIoctl = iowr(0x08, unsafe.Sizeof(handleData{}))
	setLineValuesIoctl = iowr(0x09, unsafe.Sizeof(handleData{}))
)

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (e Edge) eventFlags() uint32 {
	switch e {
	case EdgeRising:
		return gpioEventRequestRisingEdge
	case EdgeFalling:
		return gpioEventRequestFallingEdge
	default:
		return gpioEventRequestBothEdges
	}
}

func (d Direction) handleFlags() uint32 {
	if d == Output {
		return gpioHandleRequestOutput
	}
	return gpioHandleRequestInput
}

func (p Pull) handleFlags() uint32 {
	switch p {
	case PullUp:
		return gpioHandleRequestBiasPullUp
	case PullDown:
		return gpioHandleRequestBiasPullDown
	default:
		return 0
	}
}
