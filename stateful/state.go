// Package stateful defines how devices expose their internal counters and
// phase for save-state snapshots. Pending sync points are never serialized;
// each device re-derives them from its own state when a snapshot is loaded.
package stateful

import (
	"github.com/retromach/retromach/naming"
)

// A State is a collection of data that can be serialized and deserialized.
type State interface {
	naming.Named

	Serialize() (map[string]interface{}, error)
	Deserialize(map[string]interface{}) error
}

// A StateHolder is a component that has a state.
type StateHolder interface {
	naming.Named

	State() State
	SetState(State)
}
