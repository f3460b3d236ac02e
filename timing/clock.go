package timing

import "log"

// Freq defines the type of frequency, in ticks per second.
type Freq uint64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
)

// MainFreq is the resolution of the shared timeline. It is a common multiple
// of every component frequency the machine supports, so that cycle counts at
// any component frequency convert to main-clock ticks with exact integer
// arithmetic. The value is 960 times the 3.58 MHz colorburst-derived master
// oscillator of the emulated platform.
const MainFreq Freq = 3579545 * 960

// A Clock converts between cycles of one component frequency and points on
// the shared timeline. Different components tick at different rates but all
// map onto the same integer timeline via a fixed integral ratio.
type Clock struct {
	freq   Freq
	period EmuDuration // main-clock ticks per cycle
}

// NewClock creates a Clock for a component that ticks f times per second.
// The frequency must divide MainFreq exactly; anything else would force
// rounding and break bit-reproducibility, so it is a programmer error.
func NewClock(f Freq) Clock {
	if f == 0 {
		log.Panic("timing: frequency cannot be 0")
	}
	if MainFreq%f != 0 {
		log.Panicf("timing: frequency %d does not divide the main clock", f)
	}
	return Clock{freq: f, period: EmuDuration(MainFreq / f)}
}

// Freq returns the frequency the clock was created with.
func (c Clock) Freq() Freq {
	return c.freq
}

// Period returns the duration between two consecutive ticks.
func (c Clock) Period() EmuDuration {
	return c.period
}

// Cycles returns the duration of n cycles.
func (c Clock) Cycles(n uint64) EmuDuration {
	return EmuDuration(n) * c.period
}

// Cycle converts a time to the number of whole cycles passed since time 0.
func (c Clock) Cycle(t EmuTime) uint64 {
	return uint64(t) / uint64(c.period)
}

// TimeOfCycle returns the time of the n-th tick of the clock.
func (c Clock) TimeOfCycle(n uint64) EmuTime {
	return EmuTime(n) * EmuTime(c.period)
}

// ThisTick returns the current tick time
//
//	           Input
//	           (          ]
//	|----------|----------|----------|----->
//	                      |
//	                      Output
func (c Clock) ThisTick(now EmuTime) EmuTime {
	p := EmuTime(c.period)
	return (now + p - 1) / p * p
}

// NextTick returns the next tick time.
//
//	           Input
//	           [          )
//	|----------|----------|----------|----->
//	                      |
//	                      Output
func (c Clock) NextTick(now EmuTime) EmuTime {
	p := EmuTime(c.period)
	return now/p*p + p
}

// NCyclesLater returns the time after n cycles.
//
// This function will always return a time of an integer number of cycles.
func (c Clock) NCyclesLater(n uint64, now EmuTime) EmuTime {
	return c.ThisTick(now.Add(c.Cycles(n)))
}
