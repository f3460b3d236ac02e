package machine

import (
	"sync"
	"sync/atomic"

	"github.com/retromach/retromach/hostevent"
	"github.com/retromach/retromach/timing"
)

const cpuFreq = 3579545 * timing.Hz

// An Executor runs the CPU core for a bounded number of its own cycles. The
// driver decides the bound; the executor must not run past it.
type Executor interface {
	Execute(cycles uint64)
}

// An Interrupter is an Executor that can cut a running slice short when an
// earlier deadline appears mid-slice.
type Interrupter interface {
	Interrupt(at timing.EmuTime)
}

// A CPUDriver owns the emulation goroutine. It alternates between running the
// CPU executor for one slice and handing the scheduler the same span to
// dispatch, so no device ever falls more than one slice behind the CPU.
//
// Run, Step, Pause, and Continue follow a strict locking discipline: the
// emulation loop holds pauseLock for the duration of each step, and Pause
// acquires it, so Pause returns only when the loop is parked between steps.
// That parked window is the only time other goroutines may touch the
// scheduler.
type CPUDriver struct {
	sched    *timing.Scheduler
	dist     *hostevent.Distributor
	executor Executor
	clock    timing.Clock
	quantum  timing.EmuDuration

	timeLock sync.RWMutex
	now      timing.EmuTime

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	stopFlag atomic.Bool
	wake     chan struct{}
}

// NewCPUDriver creates a driver bound to the scheduler and distributor. The
// driver registers itself as the scheduler's primary driver.
func NewCPUDriver(
	sched *timing.Scheduler,
	dist *hostevent.Distributor,
	quantum timing.EmuDuration,
) *CPUDriver {
	d := &CPUDriver{
		sched:   sched,
		dist:    dist,
		clock:   timing.NewClock(cpuFreq),
		quantum: quantum,
		wake:    make(chan struct{}, 1),
	}

	sched.SetDriver(d)
	dist.NotifyPending(d.wakeUp)

	return d
}

// SetExecutor binds the CPU core. A driver without an executor still advances
// the timeline, which is enough for machines driven purely by sync points.
func (d *CPUDriver) SetExecutor(e Executor) {
	d.executor = e
}

// NotifySyncPoint is called by the scheduler when a newly registered sync
// point becomes the earliest pending one. If the executor is mid-slice and
// can be interrupted, it is told to yield at the new deadline; otherwise the
// next slice picks the deadline up from the scheduler.
func (d *CPUDriver) NotifySyncPoint(t timing.EmuTime) {
	if i, ok := d.executor.(Interrupter); ok {
		i.Interrupt(t)
	}
}

// CurrentTime returns the last fully resolved time. Unlike the scheduler,
// this is safe to call from any goroutine.
func (d *CPUDriver) CurrentTime() timing.EmuTime {
	d.timeLock.RLock()
	t := d.now
	d.timeLock.RUnlock()
	return t
}

func (d *CPUDriver) writeNow(t timing.EmuTime) {
	d.timeLock.Lock()
	d.now = t
	d.timeLock.Unlock()
}

// Step runs one execution slice: deliver queued host events, run the CPU up
// to the earlier of one quantum and the next sync point, then let the
// scheduler dispatch everything due in that span.
func (d *CPUDriver) Step() {
	d.dist.DeliverAll()

	now := d.sched.CurrentTime()

	next := timing.Infinity
	if d.sched.Pending() {
		next = d.sched.NextSyncPoint()
	}

	limit := now.Add(d.quantum)
	if next.Before(limit) {
		limit = next
	}

	if d.executor != nil {
		d.executor.Execute(uint64(limit.Sub(now)) / uint64(d.clock.Period()))
	}

	d.sched.Schedule(limit)
	d.writeNow(d.sched.CurrentTime())
}

// Run advances the emulation slice by slice until Stop is called. When there
// is nothing to advance for, the loop parks until a host event arrives or
// Stop wakes it.
func (d *CPUDriver) Run() error {
	d.singleRunLock.Lock()
	defer d.singleRunLock.Unlock()

	for !d.stopFlag.Load() {
		d.pauseLock.Lock()

		if d.idle() {
			d.pauseLock.Unlock()
			<-d.wake
			continue
		}

		d.Step()
		d.pauseLock.Unlock()
	}

	return nil
}

// idle reports whether a step would do no work: no CPU core to run, no sync
// point to dispatch, no host event to deliver.
func (d *CPUDriver) idle() bool {
	return d.executor == nil && !d.sched.Pending() && !d.dist.Pending()
}

// wakeUp unparks the run loop. The channel holds one token, so repeated
// wake-ups while the loop is busy collapse into a single extra iteration.
func (d *CPUDriver) wakeUp() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// RunUntil advances the emulation until the resolved time reaches t.
func (d *CPUDriver) RunUntil(t timing.EmuTime) {
	d.singleRunLock.Lock()
	defer d.singleRunLock.Unlock()

	for d.sched.CurrentTime().Before(t) && !d.stopFlag.Load() {
		d.pauseLock.Lock()
		d.Step()
		d.pauseLock.Unlock()
	}
}

// Stop makes Run return after the slice in progress. It may be called from
// any goroutine.
func (d *CPUDriver) Stop() {
	d.stopFlag.Store(true)
	d.wakeUp()
}

// Pause prevents the driver from running more slices. It blocks until the
// slice in progress has finished.
func (d *CPUDriver) Pause() {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	if d.isPaused {
		return
	}

	d.pauseLock.Lock()
	d.isPaused = true
}

// Continue allows the driver to run more slices.
func (d *CPUDriver) Continue() {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	if !d.isPaused {
		return
	}

	d.pauseLock.Unlock()
	d.isPaused = false
}
