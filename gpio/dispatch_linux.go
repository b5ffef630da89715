//go:build linux

package gpio

import (
	"golang.org/x/sys/unix"
)

// watchPin is the dispatch loop for one pin. It blocks on the pin's event
// descriptor until the kernel reports an edge or a stop is requested, and
// invokes the registered callback once per decoded valid event. Terminal
// errors end only this pin's worker; cleanup runs on the way out.
func (m *Manager) watchPin(r *registration, ready chan<- int) {
	// Startup handshake: the registering caller blocks until the worker has
	// captured its pin.
	ready <- r.pin
	defer m.finalize(r)

	buf := make([]byte, eventDataSize)
	fds := []unix.PollFd{
		{Fd: int32(r.eventFD), Events: unix.POLLIN | unix.POLLERR},
		{Fd: int32(r.stopFD), Events: unix.POLLIN},
	}
	for {
		fds[0].Revents = 0
		fds[1].Revents = 0
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			m.logger.Debugw("interrupt poll failed", "pin", r.pin, "error", err)
			return
		}
		if fds[1].Revents != 0 {
			// Stop requested (or the stop descriptor was reclaimed).
			return
		}
		m.mu.Lock()
		released := r.released
		m.mu.Unlock()
		if released {
			return
		}
		if fds[0].Revents&(unix.POLLNVAL|unix.POLLHUP) != 0 && fds[0].Revents&unix.POLLIN == 0 {
			return
		}
		if fds[0].Revents == 0 {
			continue
		}

		n, err := unix.Read(r.eventFD, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			m.logger.Debugw("interrupt read failed", "pin", r.pin, "error", err)
			return
		}
		ev, ok := parseEvent(buf[:n])
		if !ok {
			// A short read is not an event; never dispatch on one.
			continue
		}
		if ev.ID != gpioEventRisingEdge && ev.ID != gpioEventFallingEdge {
			continue
		}

		// Every decoded valid event re-arms the pin and is then consumed:
		// exactly one callback per event, no batching.
		r.rearm()
		if r.consume() {
			r.callback()
		}
	}
}
