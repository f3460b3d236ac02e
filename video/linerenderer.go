// Package video models the timing skeleton of the video display processor:
// scanline and frame pacing on the shared timeline. Rasterization is the
// concern of an external rendering front end.
package video

import (
	"github.com/retromach/retromach/naming"
	"github.com/retromach/retromach/stateful"
	"github.com/retromach/retromach/timing"
)

// Sync point tags used by the LineRenderer.
const (
	SyncLine  = 0
	SyncFrame = 1
)

// VDPFreq is the pixel clock of the video display processor, six times the
// colorburst-derived master oscillator.
const VDPFreq = 6 * 3579545 * timing.Hz

// Display geometry of the emulated platform (NTSC).
const (
	CyclesPerLine = 1368
	LinesPerFrame = 262
)

// A LineRenderer keeps scanline and frame counters advancing on the shared
// timeline. It holds two independent sync points: one per scanline and one
// per frame.
type LineRenderer struct {
	naming.NamedBase

	sched *timing.Scheduler
	clock timing.Clock

	line  int
	frame uint64

	onFrame func(frame uint64)
}

// New creates a LineRenderer attached to the scheduler.
func New(name string, sched *timing.Scheduler) *LineRenderer {
	return &LineRenderer{
		NamedBase: naming.MakeNamedBase(name),
		sched:     sched,
		clock:     timing.NewClock(VDPFreq),
	}
}

// OnFrame registers a callback invoked at the start of every frame, on the
// emulation goroutine, with the frame counter.
func (r *LineRenderer) OnFrame(f func(frame uint64)) {
	r.onFrame = f
}

// Line returns the scanline currently being displayed.
func (r *LineRenderer) Line() int {
	return r.line
}

// Frame returns the number of completed frames.
func (r *LineRenderer) Frame() uint64 {
	return r.frame
}

// PowerUp registers the initial sync points. Must be called once before the
// driver starts.
func (r *LineRenderer) PowerUp(now timing.EmuTime) {
	r.sched.SetSyncPoint(r.nextLineTime(now), r, SyncLine)
	r.sched.SetSyncPoint(r.nextFrameTime(now), r, SyncFrame)
}

// PowerDown removes every pending sync point of the renderer. Required
// before the renderer is detached, so no dangling dispatch remains.
func (r *LineRenderer) PowerDown() {
	r.sched.RemoveSyncPoints(r)
}

// ExecuteUntil advances the line or frame counter and re-arms the
// corresponding sync point.
func (r *LineRenderer) ExecuteUntil(t timing.EmuTime, userData int) {
	switch userData {
	case SyncLine:
		r.line++
		if r.line == LinesPerFrame {
			r.line = 0
		}
		r.sched.SetSyncPoint(t.Add(r.lineDuration()), r, SyncLine)
	case SyncFrame:
		r.frame++
		if r.onFrame != nil {
			r.onFrame(r.frame)
		}
		r.sched.SetSyncPoint(t.Add(r.frameDuration()), r, SyncFrame)
	}
}

func (r *LineRenderer) lineDuration() timing.EmuDuration {
	return r.clock.Cycles(CyclesPerLine)
}

func (r *LineRenderer) frameDuration() timing.EmuDuration {
	return r.clock.Cycles(CyclesPerLine * LinesPerFrame)
}

func (r *LineRenderer) nextLineTime(now timing.EmuTime) timing.EmuTime {
	period := timing.EmuTime(r.lineDuration())
	return now/period*period + period
}

func (r *LineRenderer) nextFrameTime(now timing.EmuTime) timing.EmuTime {
	period := timing.EmuTime(r.frameDuration())
	return now/period*period + period
}

// State returns a snapshot of the renderer's counters. Pending sync points
// are not part of the snapshot; Resync re-derives them.
func (r *LineRenderer) State() stateful.State {
	return &rendererState{
		name:  r.Name(),
		Line:  r.line,
		Frame: r.frame,
	}
}

// SetState restores the renderer's counters from a snapshot.
func (r *LineRenderer) SetState(s stateful.State) {
	st := s.(*rendererState)
	r.line = st.Line
	r.frame = st.Frame
}

// Resync re-issues the renderer's sync points after a snapshot load. Both
// tags are re-armed on their next absolute boundary, not one period from now,
// so a machine restored mid-frame fires at the same times the source machine
// would have.
func (r *LineRenderer) Resync(now timing.EmuTime) {
	r.sched.RemoveSyncPoints(r)
	r.sched.SetSyncPoint(r.nextLineTime(now), r, SyncLine)
	r.sched.SetSyncPoint(r.nextFrameTime(now), r, SyncFrame)
}

type rendererState struct {
	name  string
	Line  int
	Frame uint64
}

func (s *rendererState) Name() string {
	return s.name
}

func (s *rendererState) Serialize() (map[string]interface{}, error) {
	return map[string]interface{}{
		"line":  s.Line,
		"frame": s.Frame,
	}, nil
}

func (s *rendererState) Deserialize(data map[string]interface{}) error {
	s.Line = int(asUint64(data["line"]))
	s.Frame = asUint64(data["frame"])
	return nil
}

// asUint64 tolerates the float64 numbers the JSON codec produces.
func asUint64(v interface{}) uint64 {
	switch n := v.(type) {
	case float64:
		return uint64(n)
	case int:
		return uint64(n)
	case uint64:
		return n
	default:
		return 0
	}
}
