package timing

import (
	"log"

	"github.com/retromach/retromach/hooking"
)

// DispatchLogger is a hook that prints every dispatched sync point.
type DispatchLogger struct {
	hooking.LogHookBase
}

// NewDispatchLogger returns a DispatchLogger which will write into the logger
func NewDispatchLogger(logger *log.Logger) *DispatchLogger {
	h := new(DispatchLogger)
	h.Logger = logger
	return h
}

// Func writes the sync point information into the logger
func (h *DispatchLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosBeforeDispatch {
		return
	}

	sp, ok := ctx.Item.(SyncPoint)
	if !ok {
		return
	}

	h.Logger.Printf("%d, %s, %d", sp.Time, sp.Device.Name(), sp.UserData)
}
