package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Clock", func() {
	It("should get period", func() {
		c := NewClock(MainFreq)
		Expect(c.Period()).To(Equal(EmuDuration(1)))
	})

	It("should convert cycles to durations exactly", func() {
		c := NewClock(3579545 * Hz)
		Expect(c.Cycles(1)).To(Equal(EmuDuration(960)))
		Expect(c.Cycles(3579545)).To(Equal(EmuDuration(MainFreq)))
	})

	It("should count whole cycles since time zero", func() {
		c := NewClock(3579545 * Hz)
		Expect(c.Cycle(0)).To(Equal(uint64(0)))
		Expect(c.Cycle(959)).To(Equal(uint64(0)))
		Expect(c.Cycle(960)).To(Equal(uint64(1)))
		Expect(c.Cycle(1921)).To(Equal(uint64(2)))
	})

	It("should get the time of a cycle", func() {
		c := NewClock(3579545 * Hz)
		Expect(c.TimeOfCycle(3)).To(Equal(EmuTime(2880)))
	})

	It("should get this tick", func() {
		c := NewClock(3579545 * Hz)
		Expect(c.ThisTick(0)).To(Equal(EmuTime(0)))
		Expect(c.ThisTick(1)).To(Equal(EmuTime(960)))
		Expect(c.ThisTick(960)).To(Equal(EmuTime(960)))
		Expect(c.ThisTick(961)).To(Equal(EmuTime(1920)))
	})

	It("should get the next tick", func() {
		c := NewClock(3579545 * Hz)
		Expect(c.NextTick(0)).To(Equal(EmuTime(960)))
		Expect(c.NextTick(959)).To(Equal(EmuTime(960)))
		Expect(c.NextTick(960)).To(Equal(EmuTime(1920)))
	})

	It("should get the time n cycles later", func() {
		c := NewClock(3579545 * Hz)
		Expect(c.NCyclesLater(3, 0)).To(Equal(EmuTime(2880)))
		Expect(c.NCyclesLater(3, 1)).To(Equal(EmuTime(3840)))
	})

	It("should panic on a zero frequency", func() {
		Expect(func() {
			NewClock(0)
		}).To(Panic())
	})

	It("should panic on a frequency that does not divide the main clock", func() {
		Expect(func() {
			NewClock(7 * Hz)
		}).To(Panic())
	})
})

var _ = Describe("EmuTime", func() {
	It("should add durations", func() {
		Expect(EmuTime(100).Add(50)).To(Equal(EmuTime(150)))
	})

	It("should subtract times", func() {
		Expect(EmuTime(150).Sub(100)).To(Equal(EmuDuration(50)))
	})

	It("should panic on negative durations", func() {
		Expect(func() {
			EmuTime(100).Sub(150)
		}).To(Panic())
	})

	It("should order times", func() {
		Expect(EmuTime(100).Before(101)).To(BeTrue())
		Expect(EmuTime(101).After(100)).To(BeTrue())
		Expect(EmuTime(100).Before(100)).To(BeFalse())
	})
})
