package recording

import (
	"github.com/retromach/retromach/hooking"
	"github.com/retromach/retromach/timing"
)

// DispatchEntry is one row of the dispatch trace.
type DispatchEntry struct {
	Seq      uint64
	Time     uint64
	Device   string
	UserData int
}

// A DispatchRecorder is a scheduler hook that records every dispatched sync
// point. Two runs of the same machine with the same inputs must produce
// identical traces; diffing them is how determinism regressions are found.
type DispatchRecorder struct {
	recorder Recorder
	seq      uint64
}

const dispatchTable = "dispatches"

// NewDispatchRecorder creates a DispatchRecorder writing into the given
// backend.
func NewDispatchRecorder(r Recorder) *DispatchRecorder {
	r.CreateTable(dispatchTable, DispatchEntry{})
	return &DispatchRecorder{recorder: r}
}

// Func records the sync point about to be dispatched.
func (d *DispatchRecorder) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosBeforeDispatch {
		return
	}

	sp, ok := ctx.Item.(timing.SyncPoint)
	if !ok {
		return
	}

	d.seq++
	d.recorder.InsertData(dispatchTable, DispatchEntry{
		Seq:      d.seq,
		Time:     uint64(sp.Time),
		Device:   sp.Device.Name(),
		UserData: sp.UserData,
	})
}
