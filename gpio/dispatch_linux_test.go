package gpio

import (
	"encoding/binary"
	"testing"
	"time"

	"go.viam.com/test"
)

// encodeEvent builds the wire form of one gpioevent_data record.
func encodeEvent(id uint32) []byte {
	buf := make([]byte, eventDataSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(time.Now().UnixNano()))
	binary.LittleEndian.PutUint32(buf[8:12], id)
	return buf
}

func TestParseEvent(t *testing.T) {
	ev, ok := parseEvent(encodeEvent(gpioEventFallingEdge))
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, ev.ID, test.ShouldEqual, uint32(gpioEventFallingEdge))
	test.That(t, ev.Timestamp, test.ShouldNotEqual, uint64(0))
}

func TestParseEventShortBuffer(t *testing.T) {
	for _, n := range []int{0, 1, 8, eventDataSize - 1} {
		_, ok := parseEvent(make([]byte, n))
		test.That(t, ok, test.ShouldBeFalse)
	}
}
