package timing

import (
	"container/heap"
	"log"

	"github.com/retromach/retromach/hooking"
)

// HookPosBeforeDispatch is a hook position that triggers before a sync point
// is dispatched.
var HookPosBeforeDispatch = &hooking.HookPos{Name: "BeforeDispatch"}

// HookPosAfterDispatch is a hook position that triggers after a sync point is
// dispatched.
var HookPosAfterDispatch = &hooking.HookPos{Name: "AfterDispatch"}

// A SyncPoint is a pending (time, owner, tag) entry awaiting dispatch. The
// Scheduler passes copies of it to hooks; it never hands out references into
// its own storage.
type SyncPoint struct {
	Time     EmuTime
	Device   Schedulable
	UserData int

	// seq is the registration order, used as the deterministic tie-break
	// between sync points sharing the same time.
	seq uint64
}

// A Scheduler owns the set of pending sync points across all components and
// dispatches them in nondecreasing time order.
//
// All operations must be called from the single emulation goroutine. The
// Scheduler performs no locking and never blocks.
type Scheduler struct {
	*hooking.HookableBase

	points      syncPointHeap
	current     EmuTime
	seq         uint64
	driver      Driver
	dispatching bool
}

// NewScheduler creates a Scheduler with an empty pending set at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{
		HookableBase: hooking.NewHookableBase(),
		points:       make(syncPointHeap, 0, 16),
	}
}

// SetDriver binds the primary driver to the scheduler. This is a one-time
// structural wiring call.
func (s *Scheduler) SetDriver(d Driver) {
	if s.driver != nil {
		log.Panic("timing: driver already bound")
	}
	s.driver = d
}

// CurrentTime returns the time up to which the timeline has been fully
// resolved: all due sync points through this point have been dispatched.
func (s *Scheduler) CurrentTime() EmuTime {
	return s.current
}

// Pending reports whether any sync point is pending.
func (s *Scheduler) Pending() bool {
	return len(s.points) > 0
}

// NextSyncPoint returns the time of the earliest pending sync point. At
// least one sync point must be pending; callers that cannot guarantee that
// must consult Pending first.
func (s *Scheduler) NextSyncPoint() EmuTime {
	if len(s.points) == 0 {
		log.Panic("timing: NextSyncPoint called with no pending sync points")
	}
	return s.points[0].Time
}

// SetSyncPoint registers a sync point: when dispatching reaches t, the
// ExecuteUntil method of device is called with the given userData tag. A
// device may hold several sync points at once; tags are not required to be
// unique.
//
// Registering earlier than the current time is a contract violation and
// panics. While a dispatch is in progress the time must be strictly in the
// future, to guarantee forward progress.
//
// The returned Registration cancels exactly this sync point.
func (s *Scheduler) SetSyncPoint(
	t EmuTime,
	device Schedulable,
	userData int,
) Registration {
	if s.dispatching {
		if t <= s.current {
			log.Panicf(
				"timing: %s sets sync point @%d during dispatch, now %d",
				device.Name(), t, s.current,
			)
		}
	} else if t < s.current {
		log.Panicf(
			"timing: %s sets sync point @%d in the past, now %d",
			device.Name(), t, s.current,
		)
	}

	s.seq++
	sp := SyncPoint{Time: t, Device: device, UserData: userData, seq: s.seq}
	heap.Push(&s.points, sp)

	if s.points[0].seq == sp.seq && s.driver != nil {
		s.driver.NotifySyncPoint(t)
	}

	return Registration{s: s, seq: sp.seq}
}

// RemoveSyncPoint removes one sync point matching both device and userData,
// if any exists. If several match, exactly one is removed; it is not
// guaranteed to be the earliest. Removing with no match is a silent no-op.
func (s *Scheduler) RemoveSyncPoint(device Schedulable, userData int) {
	for i, sp := range s.points {
		if sp.Device == device && sp.UserData == userData {
			heap.Remove(&s.points, i)
			return
		}
	}
}

// RemoveSyncPoints removes every sync point belonging to device, regardless
// of tag. It is called when a device is reset, unplugged, or destroyed, so
// that no dispatchable reference to it remains.
func (s *Scheduler) RemoveSyncPoints(device Schedulable) {
	kept := s.points[:0]
	for _, sp := range s.points {
		if sp.Device != device {
			kept = append(kept, sp)
		}
	}
	// Zero the tail so removed entries do not pin their devices.
	for i := len(kept); i < len(s.points); i++ {
		s.points[i] = SyncPoint{}
	}
	s.points = kept
	heap.Init(&s.points)
}

// PendingSyncPoint reports whether a sync point with the given device and
// userData is pending. It never mutates state.
func (s *Scheduler) PendingSyncPoint(device Schedulable, userData int) bool {
	for _, sp := range s.points {
		if sp.Device == device && sp.UserData == userData {
			return true
		}
	}
	return false
}

// Schedule advances dispatching up to limit: every sync point with a time at
// or before limit is dispatched, in nondecreasing time order, and the
// current time becomes limit. The fast path, taken when nothing is due, is a
// single comparison; the driver calls Schedule on every execution step.
func (s *Scheduler) Schedule(limit EmuTime) {
	if limit < s.current {
		log.Panicf(
			"timing: schedule limit %d is before current time %d",
			limit, s.current,
		)
	}

	if len(s.points) > 0 && s.points[0].Time <= limit {
		s.scheduleHelper(limit)
	}
	s.current = limit
}

// scheduleHelper drains due sync points. It re-examines the heap minimum
// after every single dispatch rather than iterating over a snapshot, because
// a callback may add or remove sync points mid-dispatch: entries it inserts
// at or before limit are dispatched within this same call, entries after
// limit are deferred.
func (s *Scheduler) scheduleHelper(limit EmuTime) {
	s.dispatching = true
	defer func() { s.dispatching = false }()

	for len(s.points) > 0 && s.points[0].Time <= limit {
		sp := heap.Pop(&s.points).(SyncPoint)
		s.current = sp.Time

		ctx := hooking.HookCtx{
			Domain: s,
			Pos:    HookPosBeforeDispatch,
			Item:   sp,
		}
		s.InvokeHook(ctx)

		sp.Device.ExecuteUntil(sp.Time, sp.UserData)

		ctx.Pos = HookPosAfterDispatch
		s.InvokeHook(ctx)
	}
}

// A Registration identifies one registered sync point. Cancelling it removes
// that exact sync point if it is still pending, giving deterministic cleanup
// without matching on (device, tag) pairs.
type Registration struct {
	s   *Scheduler
	seq uint64
}

// Cancel removes the registered sync point. It is a silent no-op if the sync
// point has already been dispatched or removed.
func (r Registration) Cancel() {
	for i, sp := range r.s.points {
		if sp.seq == r.seq {
			heap.Remove(&r.s.points, i)
			return
		}
	}
}

// Pending reports whether the registered sync point is still pending.
func (r Registration) Pending() bool {
	for _, sp := range r.s.points {
		if sp.seq == r.seq {
			return true
		}
	}
	return false
}

// syncPointHeap is an array-backed binary heap ordered by ascending time,
// with registration order breaking ties so that same-time dispatch order is
// deterministic across runs.
type syncPointHeap []SyncPoint

func (h syncPointHeap) Len() int {
	return len(h)
}

func (h syncPointHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}

func (h syncPointHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *syncPointHeap) Push(x any) {
	sp := x.(SyncPoint)
	*h = append(*h, sp)
}

func (h *syncPointHeap) Pop() any {
	old := *h
	n := len(old)
	sp := old[n-1]
	old[n-1] = SyncPoint{}
	*h = old[:n-1]
	return sp
}
