// Package input models the machine's input controllers. Host-side input
// arrives through the hostevent distributor on the emulation goroutine and
// is applied to device state at a definite tick on the shared timeline.
package input

import (
	"github.com/retromach/retromach/hostevent"
	"github.com/retromach/retromach/timing"
)

// SyncApply is the sync point tag under which queued state changes are
// applied.
const SyncApply = 0

// Button bits of the joystick port.
const (
	ButtonUp = 1 << iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonTrigA
	ButtonTrigB
)

const joystickFreq = 3579545 * timing.Hz

type change struct {
	press bool
	code  int
	axis  bool
	value int
}

// A Joystick buffers host joystick events and applies them to its visible
// state via a sync point, so the change becomes observable at a precise
// tick rather than whenever the host happened to deliver it.
type Joystick struct {
	name  string
	sched *timing.Scheduler
	clock timing.Clock

	pending []change

	buttons byte
	axisX   int
	axisY   int
}

// NewJoystick creates a joystick attached to the scheduler.
func NewJoystick(name string, sched *timing.Scheduler) *Joystick {
	return &Joystick{
		name:  name,
		sched: sched,
		clock: timing.NewClock(joystickFreq),
	}
}

func (j *Joystick) Name() string {
	return j.name
}

// Buttons returns the currently pressed button mask.
func (j *Joystick) Buttons() byte {
	return j.buttons
}

// Axes returns the current stick position.
func (j *Joystick) Axes() (x, y int) {
	return j.axisX, j.axisY
}

// Plug registers the joystick with the distributor.
func (j *Joystick) Plug(d *hostevent.Distributor) {
	d.RegisterListener(hostevent.TypeJoystickButtonDown, j)
	d.RegisterListener(hostevent.TypeJoystickButtonUp, j)
	d.RegisterListener(hostevent.TypeJoystickAxisMotion, j)
}

// Unplug removes the joystick's listeners and pending sync points. Must be
// called before the joystick is discarded.
func (j *Joystick) Unplug(d *hostevent.Distributor) {
	d.UnregisterListener(hostevent.TypeJoystickButtonDown, j)
	d.UnregisterListener(hostevent.TypeJoystickButtonUp, j)
	d.UnregisterListener(hostevent.TypeJoystickAxisMotion, j)
	j.sched.RemoveSyncPoints(j)
	j.pending = nil
}

// SignalEvent queues a host event and arms a sync point at the next tick so
// the change is applied on the timeline. Runs on the emulation goroutine.
func (j *Joystick) SignalEvent(ev hostevent.Event) {
	switch ev.Type {
	case hostevent.TypeJoystickButtonDown:
		j.pending = append(j.pending, change{press: true, code: ev.Code})
	case hostevent.TypeJoystickButtonUp:
		j.pending = append(j.pending, change{press: false, code: ev.Code})
	case hostevent.TypeJoystickAxisMotion:
		j.pending = append(j.pending,
			change{axis: true, code: ev.Code, value: ev.Value})
	default:
		return
	}

	if !j.sched.PendingSyncPoint(j, SyncApply) {
		now := j.sched.CurrentTime()
		j.sched.SetSyncPoint(j.clock.NextTick(now), j, SyncApply)
	}
}

// ExecuteUntil applies every queued state change.
func (j *Joystick) ExecuteUntil(t timing.EmuTime, userData int) {
	if userData != SyncApply {
		return
	}

	for _, c := range j.pending {
		if c.axis {
			if c.code == 0 {
				j.axisX = c.value
			} else {
				j.axisY = c.value
			}
			continue
		}

		if c.press {
			j.buttons |= byte(c.code)
		} else {
			j.buttons &^= byte(c.code)
		}
	}
	j.pending = j.pending[:0]
}
