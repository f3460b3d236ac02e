package hooking

import "log"

// A LogHook writes what it observes at a hook position into a logger, such
// as the sync points the scheduler dispatches.
type LogHook interface {
	Hook
}

// LogHookBase carries the logger that concrete log hooks write into.
type LogHookBase struct {
	*log.Logger
}
