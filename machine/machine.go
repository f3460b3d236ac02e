// Package machine assembles the scheduler, the host-event distributor, the
// CPU driver, and the devices into one runnable emulated machine.
package machine

import (
	"fmt"
	"io"

	"github.com/retromach/retromach/hostevent"
	"github.com/retromach/retromach/monitoring"
	"github.com/retromach/retromach/recording"
	"github.com/retromach/retromach/stateful"
	"github.com/retromach/retromach/timing"
)

// A Resyncer re-derives its pending sync points from its own state. Devices
// implement it so that a loaded snapshot, which never contains sync points,
// still resumes with the right deadlines armed.
type Resyncer interface {
	Resync(now timing.EmuTime)
}

// A Machine is a fully assembled emulated computer.
type Machine struct {
	id   string
	name string

	sched       *timing.Scheduler
	dist        *hostevent.Distributor
	driver      *CPUDriver
	monitor     *monitoring.Monitor
	monitorAddr string
	recorder    recording.Recorder

	devices map[string]timing.Schedulable
	holders []stateful.StateHolder

	codec stateful.Codec
}

// ID returns the unique ID of the machine.
func (m *Machine) ID() string {
	return m.id
}

// Name returns the name of the machine.
func (m *Machine) Name() string {
	return m.name
}

// Scheduler returns the shared timeline of the machine.
func (m *Machine) Scheduler() *timing.Scheduler {
	return m.sched
}

// Distributor returns the host-event distributor of the machine.
func (m *Machine) Distributor() *hostevent.Distributor {
	return m.dist
}

// Driver returns the CPU driver of the machine.
func (m *Machine) Driver() *CPUDriver {
	return m.driver
}

// Monitor returns the monitor of the machine. It returns nil if monitoring
// is disabled.
func (m *Machine) Monitor() *monitoring.Monitor {
	return m.monitor
}

// MonitorAddr returns the address the monitoring server listens on, or the
// empty string if monitoring is disabled.
func (m *Machine) MonitorAddr() string {
	return m.monitorAddr
}

// Recorder returns the trace recorder of the machine. It returns nil if
// tracing is disabled.
func (m *Machine) Recorder() recording.Recorder {
	return m.recorder
}

// AttachDevice registers a device with the machine. Device names must be
// unique. Devices that hold state are included in snapshots.
func (m *Machine) AttachDevice(d timing.Schedulable) {
	name := d.Name()
	if _, ok := m.devices[name]; ok {
		panic(fmt.Sprintf("machine: device %s already attached", name))
	}

	m.devices[name] = d

	if h, ok := d.(stateful.StateHolder); ok {
		m.holders = append(m.holders, h)
	}

	if m.monitor != nil {
		m.monitor.RegisterDevice(d)
	}
}

// DetachDevice removes a device and every sync point it still holds, so no
// dispatchable reference to it remains.
func (m *Machine) DetachDevice(name string) {
	d, ok := m.devices[name]
	if !ok {
		return
	}

	m.sched.RemoveSyncPoints(d)
	delete(m.devices, name)

	for i, h := range m.holders {
		if h.Name() == name {
			m.holders = append(m.holders[:i], m.holders[i+1:]...)
			break
		}
	}
}

// Device returns an attached device by name, or nil.
func (m *Machine) Device(name string) timing.Schedulable {
	return m.devices[name]
}

// Save writes a snapshot of every stateful device and the current time.
// Pending sync points are not part of the snapshot; devices re-derive them on
// load.
func (m *Machine) Save(w io.Writer) error {
	snapshot := map[string]any{
		"time": uint64(m.sched.CurrentTime()),
	}

	for _, h := range m.holders {
		data, err := h.State().Serialize()
		if err != nil {
			return fmt.Errorf("machine: serializing %s: %w", h.Name(), err)
		}
		snapshot[h.Name()] = data
	}

	return m.codec.Encode(w, snapshot)
}

// Load restores a snapshot. The timeline is advanced to the snapshot time,
// every stateful device gets its state back, and devices that implement
// Resyncer re-arm their sync points. Load must not be called on a machine
// that has already run past the snapshot time.
func (m *Machine) Load(r io.Reader) error {
	snapshot, err := m.codec.Decode(r)
	if err != nil {
		return fmt.Errorf("machine: decoding snapshot: %w", err)
	}

	snapTime, err := snapshotTime(snapshot)
	if err != nil {
		return err
	}
	if snapTime.Before(m.sched.CurrentTime()) {
		return fmt.Errorf(
			"machine: snapshot time %d is before current time %d",
			snapTime, m.sched.CurrentTime())
	}

	// Drop every armed sync point. The devices are about to change state
	// wholesale; deadlines derived from the old state mean nothing.
	for _, d := range m.devices {
		m.sched.RemoveSyncPoints(d)
	}
	m.sched.Schedule(snapTime)
	m.driver.writeNow(snapTime)

	for _, h := range m.holders {
		data, ok := snapshot[h.Name()].(map[string]any)
		if !ok {
			return fmt.Errorf("machine: snapshot has no state for %s", h.Name())
		}

		state := h.State()
		if err := state.Deserialize(data); err != nil {
			return fmt.Errorf("machine: restoring %s: %w", h.Name(), err)
		}
		h.SetState(state)
	}

	for _, d := range m.devices {
		if r, ok := d.(Resyncer); ok {
			r.Resync(snapTime)
		}
	}

	return nil
}

func snapshotTime(snapshot map[string]any) (timing.EmuTime, error) {
	switch v := snapshot["time"].(type) {
	case float64:
		return timing.EmuTime(v), nil
	case uint64:
		return timing.EmuTime(v), nil
	default:
		return 0, fmt.Errorf("machine: snapshot carries no time")
	}
}

// Run starts the emulation and blocks until the driver is stopped.
func (m *Machine) Run() error {
	return m.driver.Run()
}

// Terminate stops the driver and flushes the trace recorder.
func (m *Machine) Terminate() {
	m.driver.Stop()

	if m.recorder != nil {
		m.recorder.Close()
	}
}
