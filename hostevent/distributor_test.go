package hostevent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	events []Event
}

func (l *recordingListener) SignalEvent(ev Event) {
	l.events = append(l.events, ev)
}

func TestDeliverToRegisteredListener(t *testing.T) {
	d := NewDistributor()
	l := &recordingListener{}
	d.RegisterListener(TypeKeyDown, l)

	d.Distribute(Event{Type: TypeKeyDown, Code: 42})
	d.Distribute(Event{Type: TypeKeyUp, Code: 42}) // no listener, dropped
	d.DeliverAll()

	require.Len(t, l.events, 1)
	assert.Equal(t, 42, l.events[0].Code)
}

func TestDeliverPreservesOrder(t *testing.T) {
	d := NewDistributor()
	l := &recordingListener{}
	d.RegisterListener(TypeJoystickAxisMotion, l)

	for i := 0; i < 10; i++ {
		d.Distribute(Event{Type: TypeJoystickAxisMotion, Value: i})
	}
	d.DeliverAll()

	require.Len(t, l.events, 10)
	for i, ev := range l.events {
		assert.Equal(t, i, ev.Value)
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	d := NewDistributor()
	l := &recordingListener{}
	d.RegisterListener(TypeFocusChange, l)
	d.UnregisterListener(TypeFocusChange, l)

	d.Distribute(Event{Type: TypeFocusChange})
	d.DeliverAll()

	assert.Empty(t, l.events)
}

func TestDistributeFromManyGoroutines(t *testing.T) {
	d := NewDistributor()
	l := &recordingListener{}
	d.RegisterListener(TypeKeyDown, l)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.Distribute(Event{Type: TypeKeyDown})
			}
		}()
	}
	wg.Wait()

	d.DeliverAll()
	assert.Len(t, l.events, 800)
}

func TestNotifyPending(t *testing.T) {
	d := NewDistributor()
	d.RegisterListener(TypeKeyDown, &recordingListener{})

	notified := 0
	d.NotifyPending(func() { notified++ })

	d.Distribute(Event{Type: TypeKeyDown})
	d.Distribute(Event{Type: TypeKeyUp}) // dropped, no wakeup

	assert.Equal(t, 1, notified)
}
