// Package hostevent carries host-originated events (keyboard, joystick,
// window focus) across the thread boundary into the emulation goroutine.
//
// Distribute may be called from any goroutine. Delivery happens only when
// the emulation goroutine calls DeliverAll, so listeners run on the
// emulation side and may talk to the scheduler. The scheduler itself never
// observes host threads.
package hostevent

import "sync"

// Type identifies the kind of a host event.
type Type int

const (
	TypeKeyDown Type = iota
	TypeKeyUp
	TypeJoystickButtonDown
	TypeJoystickButtonUp
	TypeJoystickAxisMotion
	TypeFocusChange
)

// An Event is one host-originated occurrence. Code identifies the key,
// button, or axis; Value carries the new position for axis motion and is
// otherwise zero.
type Event struct {
	Type  Type
	Code  int
	Value int
}

// A Listener receives host events of the types it registered for.
type Listener interface {
	SignalEvent(ev Event)
}

// A Distributor queues host events and fans them out to registered
// listeners.
type Distributor struct {
	mu        sync.Mutex
	listeners map[Type][]Listener
	queue     []Event

	// onPending, if set, is called (with the lock held released) whenever an
	// event is queued, so the emulation loop can be woken up.
	onPending func()
}

// NewDistributor creates an empty Distributor.
func NewDistributor() *Distributor {
	return &Distributor{
		listeners: make(map[Type][]Listener),
	}
}

// NotifyPending registers a callback invoked whenever a new event becomes
// available for delivery.
func (d *Distributor) NotifyPending(f func()) {
	d.mu.Lock()
	d.onPending = f
	d.mu.Unlock()
}

// Pending reports whether any queued event awaits delivery. Safe to call
// from any goroutine.
func (d *Distributor) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue) > 0
}

// RegisterListener subscribes a listener to one event type.
func (d *Distributor) RegisterListener(t Type, l Listener) {
	d.mu.Lock()
	d.listeners[t] = append(d.listeners[t], l)
	d.mu.Unlock()
}

// UnregisterListener removes a previously registered listener. Removing a
// listener that was never registered is a no-op.
func (d *Distributor) UnregisterListener(t Type, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ls := d.listeners[t]
	for i, registered := range ls {
		if registered == l {
			d.listeners[t] = append(ls[:i], ls[i+1:]...)
			return
		}
	}
}

// Distribute queues an event for delivery on the emulation goroutine. Safe
// to call from any goroutine. Events with no registered listener are
// dropped.
func (d *Distributor) Distribute(ev Event) {
	d.mu.Lock()
	if len(d.listeners[ev.Type]) == 0 {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, ev)
	notify := d.onPending
	d.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// DeliverAll delivers every queued event to its listeners. It must be called
// from the emulation goroutine. Listeners run without the distributor lock
// held, so they may distribute or (un)register freely.
func (d *Distributor) DeliverAll() {
	d.mu.Lock()
	queue := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, ev := range queue {
		d.mu.Lock()
		ls := make([]Listener, len(d.listeners[ev.Type]))
		copy(ls, d.listeners[ev.Type])
		d.mu.Unlock()

		for _, l := range ls {
			l.SignalEvent(ev)
		}
	}
}
