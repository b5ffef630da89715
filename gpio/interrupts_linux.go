//go:build linux

// Edge-triggered interrupt dispatch: per-pin registration state and the
// lifecycle controller that creates and tears down dispatch workers.

package gpio

import (
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"golang.org/x/sys/unix"
)

// teardownDeadline bounds how long teardown waits for a dispatch worker to
// acknowledge a stop request. Callbacks are expected to be short; a worker
// stuck past this deadline forfeits its descriptors.
const teardownDeadline = time.Second

// eventSource turns a (pin, edge) request into a live, non-blocking event
// descriptor. Implemented by Chip; tests substitute pipe-backed fakes.
type eventSource interface {
	requestLineEvent(pin int, edge Edge) (int, error)
}

// registration is one pin's slot in the interrupt registry.
type registration struct {
	pin      int
	edge     Edge
	callback func()

	// eventFD, stopFD, and released are guarded by Manager.mu.
	eventFD  int
	stopFD   int
	released bool

	// done is closed once the dispatch worker has exited and the slot has
	// been cleaned up.
	done chan struct{}

	mu    sync.Mutex
	armed bool
}

// rearm marks the next consumed event as eligible to dispatch. Every decoded
// valid event re-arms the pin.
func (r *registration) rearm() {
	r.mu.Lock()
	r.armed = true
	r.mu.Unlock()
}

// consume disarms the pin and reports whether it was armed.
func (r *registration) consume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.armed {
		return false
	}
	r.armed = false
	return true
}

func (r *registration) isArmed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed
}

// registry is the bounds-checked table mapping pins to their registrations.
// Pure data; synchronization belongs to the Manager.
type registry struct {
	slots []*registration
}

func newRegistry(capacity int) *registry {
	return &registry{slots: make([]*registration, capacity)}
}

func (t *registry) get(pin int) *registration {
	if pin < 0 || pin >= len(t.slots) {
		return nil
	}
	return t.slots[pin]
}

func (t *registry) set(pin int, r *registration) {
	t.slots[pin] = r
}

func (t *registry) clear(pin int) {
	t.slots[pin] = nil
}

func (t *registry) live() []*registration {
	var out []*registration
	for _, r := range t.slots {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Manager owns the interrupt registry and the per-pin dispatch workers.
// Registration and teardown are serialized process-wide; dispatch of already
// registered pins runs fully in parallel.
type Manager struct {
	logger golog.Logger
	src    eventSource

	// opMu serializes RegisterInterrupt/UnregisterInterrupt/Close end to
	// end, including the startup rendezvous and teardown waits.
	opMu   sync.Mutex
	closed bool

	// mu guards the registry and descriptor state shared with workers.
	mu    sync.Mutex
	table *registry

	workers sync.WaitGroup
}

// NewManager returns a manager dispatching events from the process-wide
// default chip. The chip device is opened lazily on first registration.
func NewManager(logger golog.Logger) *Manager {
	return newManager(DefaultChip(), logger)
}

func newManager(src eventSource, logger golog.Logger) *Manager {
	return &Manager{logger: logger, src: src, table: newRegistry(MaxPins)}
}

// RegisterInterrupt arranges for callback to run once per edge event the
// kernel reports for pin. A live registration on the same pin is torn down
// first. On failure nothing is left behind: the registry slot is rolled back
// and no descriptor leaks. The call returns only after the new dispatch
// worker has captured its pin.
//
// The event request claims the line and configures it as an input; a line
// already held elsewhere, including by a Pin handle, is reported busy by the
// kernel.
func (m *Manager) RegisterInterrupt(pin int, edge Edge, callback func()) error {
	if callback == nil {
		return errors.New("interrupt callback must not be nil")
	}
	if err := validEdge(edge); err != nil {
		return err
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()
	if m.closed {
		return errors.New("interrupt manager is closed")
	}
	if pin < 0 || pin >= MaxPins {
		return errors.Wrapf(ErrInvalidPin, "pin %d", pin)
	}

	// Re-registration replaces the previous owner of the pin.
	m.mu.Lock()
	existing := m.table.get(pin)
	m.mu.Unlock()
	if existing != nil {
		if err := m.teardown(existing); err != nil && !errors.Is(err, ErrCancellation) {
			return err
		}
	}

	r := &registration{
		pin:      pin,
		edge:     edge,
		callback: callback,
		eventFD:  -1,
		stopFD:   -1,
		armed:    true,
		done:     make(chan struct{}),
	}
	// The slot is fully populated before any hardware is touched, so the
	// worker never observes a half-built entry.
	m.mu.Lock()
	m.table.set(pin, r)
	m.mu.Unlock()

	eventFD, err := m.src.requestLineEvent(pin, edge)
	if err != nil {
		m.rollback(r)
		return err
	}
	stopFD, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		goutils.UncheckedError(unix.Close(eventFD))
		m.rollback(r)
		return errors.Wrap(err, "creating stop descriptor")
	}
	m.mu.Lock()
	r.eventFD = eventFD
	r.stopFD = stopFD
	m.mu.Unlock()

	ready := make(chan int)
	m.workers.Add(1)
	goutils.ManagedGo(func() {
		m.watchPin(r, ready)
	}, m.workers.Done)

	// Rendezvous: do not return until the worker has captured its pin.
	if got := <-ready; got != pin {
		m.logger.Errorw("dispatch worker captured wrong pin", "want", pin, "got", got)
	}
	m.logger.Debugw("interrupt registered", "pin", pin, "edge", edge.String())
	return nil
}

// UnregisterInterrupt stops the pin's dispatch worker, closes its
// descriptors, and clears the registry slot. A pin with no live registration
// reports ErrNotRegistered. If the worker misses the teardown deadline the
// descriptors are reclaimed anyway and ErrCancellation is returned.
func (m *Manager) UnregisterInterrupt(pin int) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	if pin < 0 || pin >= MaxPins {
		return errors.Wrapf(ErrInvalidPin, "pin %d", pin)
	}

	m.mu.Lock()
	r := m.table.get(pin)
	m.mu.Unlock()
	if r == nil {
		return errors.Wrapf(ErrNotRegistered, "pin %d", pin)
	}
	return m.teardown(r)
}

// Close tears down every live registration and waits for the workers to
// finish. The underlying chip descriptor stays open; its lifecycle is
// init-only.
func (m *Manager) Close() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	m.mu.Lock()
	live := m.table.live()
	m.mu.Unlock()

	var err error
	for _, r := range live {
		err = multierr.Combine(err, m.teardown(r))
	}
	if err == nil {
		m.workers.Wait()
	}
	return err
}

// teardown requests a worker stop and waits for its cleanup. Callers must
// hold opMu.
func (m *Manager) teardown(r *registration) error {
	m.signalStop(r)
	select {
	case <-r.done:
		return nil
	case <-time.After(teardownDeadline):
	}

	// The worker is stuck, most likely inside a long callback. Reclaim the
	// descriptors anyway; a leaked worker beats leaked descriptors.
	m.logger.Warnw("dispatch worker missed teardown deadline", "pin", r.pin)
	m.mu.Lock()
	m.release(r)
	if m.table.get(r.pin) == r {
		m.table.clear(r.pin)
	}
	m.mu.Unlock()
	return errors.Wrapf(ErrCancellation, "pin %d", r.pin)
}

// signalStop wakes the worker's blocking wait via its stop descriptor.
func (m *Manager) signalStop(r *registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.released || r.stopFD < 0 {
		return
	}
	one := [8]byte{1}
	if _, err := unix.Write(r.stopFD, one[:]); err != nil {
		m.logger.Debugw("stop signal failed", "pin", r.pin, "error", err)
	}
}

// release closes both descriptors exactly once. Callers must hold m.mu.
func (m *Manager) release(r *registration) {
	if r.released {
		return
	}
	r.released = true
	if r.eventFD >= 0 {
		goutils.UncheckedError(unix.Close(r.eventFD))
	}
	if r.stopFD >= 0 {
		goutils.UncheckedError(unix.Close(r.stopFD))
	}
}

// rollback undoes a failed registration before any worker has started.
func (m *Manager) rollback(r *registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.released = true
	if m.table.get(r.pin) == r {
		m.table.clear(r.pin)
	}
}

// finalize is the worker-side cleanup path: close descriptors, clear the
// slot, and announce completion.
func (m *Manager) finalize(r *registration) {
	m.mu.Lock()
	m.release(r)
	if m.table.get(r.pin) == r {
		m.table.clear(r.pin)
	}
	m.mu.Unlock()
	close(r.done)
}

// armed reports the arming state of a pin's registration.
func (m *Manager) armed(pin int) bool {
	m.mu.Lock()
	r := m.table.get(pin)
	m.mu.Unlock()
	if r == nil {
		return false
	}
	return r.isArmed()
}
