// Package timing implements the shared virtual timeline of the emulated
// machine: the main-clock time values, per-component clocks, and the
// scheduler that keeps every device's state transitions in order.
package timing

import "math"

// EmuTime is a point on the shared logical timeline, counted in main-clock
// ticks since power-on. It has no relation to host wall-clock time.
type EmuTime uint64

// EmuDuration is a span of virtual time, counted in main-clock ticks.
type EmuDuration uint64

// Infinity is a time later than any time the emulation can reach. It is used
// as a sentinel for "no pending deadline".
const Infinity EmuTime = math.MaxUint64

// Add returns the time d ticks after t.
func (t EmuTime) Add(d EmuDuration) EmuTime {
	return t + EmuTime(d)
}

// Sub returns the duration between t and an earlier time u.
func (t EmuTime) Sub(u EmuTime) EmuDuration {
	if u > t {
		panic("timing: negative duration")
	}
	return EmuDuration(t - u)
}

// Before reports whether t is strictly earlier than u.
func (t EmuTime) Before(u EmuTime) bool {
	return t < u
}

// After reports whether t is strictly later than u.
func (t EmuTime) After(u EmuTime) bool {
	return t > u
}
