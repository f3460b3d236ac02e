package timing

import "github.com/retromach/retromach/naming"

// A Schedulable is a component that can ask the Scheduler to call it back at
// a specific future time.
//
// ExecuteUntil runs synchronously on the dispatch stack of a Schedule call.
// It may mutate the pending-entry set, including registering new sync points
// for itself, but any sync point it registers must be strictly in the future
// so that dispatching always makes forward progress.
type Schedulable interface {
	naming.Named

	// ExecuteUntil is invoked when a previously registered sync point's time
	// has been reached. userData is the tag the sync point was registered
	// with, used to distinguish multiple pending reasons for one component.
	ExecuteUntil(t EmuTime, userData int)
}

// A Driver is the single external loop that advances the virtual clock and
// triggers dispatch. The Scheduler notifies it when a newly registered sync
// point becomes the earliest pending one, so the driver can shorten its
// execution window.
type Driver interface {
	NotifySyncPoint(t EmuTime)
}
