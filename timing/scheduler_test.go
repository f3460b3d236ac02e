package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Scheduler", func() {
	var (
		mockCtrl *gomock.Controller
		sched    *Scheduler
		dev      *MockSchedulable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sched = NewScheduler()
		dev = NewMockSchedulable(mockCtrl)
		dev.EXPECT().Name().Return("dev").AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start at time zero with nothing pending", func() {
		Expect(sched.CurrentTime()).To(Equal(EmuTime(0)))
		Expect(sched.Pending()).To(BeFalse())
	})

	It("should report the earliest pending sync point", func() {
		sched.SetSyncPoint(300, dev, 0)
		sched.SetSyncPoint(100, dev, 1)
		sched.SetSyncPoint(200, dev, 2)

		Expect(sched.NextSyncPoint()).To(Equal(EmuTime(100)))
	})

	It("should dispatch only sync points at or before the limit", func() {
		sched.SetSyncPoint(100, dev, 1)
		sched.SetSyncPoint(200, dev, 2)

		dev.EXPECT().ExecuteUntil(EmuTime(100), 1)

		sched.Schedule(150)

		Expect(sched.CurrentTime()).To(Equal(EmuTime(150)))
		Expect(sched.NextSyncPoint()).To(Equal(EmuTime(200)))
		Expect(sched.PendingSyncPoint(dev, 1)).To(BeFalse())
		Expect(sched.PendingSyncPoint(dev, 2)).To(BeTrue())
	})

	It("should take the fast path when the limit is before the next sync point", func() {
		sched.SetSyncPoint(100, dev, 1)

		sched.Schedule(99)

		Expect(sched.CurrentTime()).To(Equal(EmuTime(99)))
		Expect(sched.NextSyncPoint()).To(Equal(EmuTime(100)))
	})

	It("should not dispatch removed sync points", func() {
		sched.SetSyncPoint(100, dev, 1)

		sched.RemoveSyncPoint(dev, 1)
		Expect(sched.PendingSyncPoint(dev, 1)).To(BeFalse())

		sched.Schedule(150)
		Expect(sched.PendingSyncPoint(dev, 1)).To(BeFalse())
	})

	It("should ignore removals with no match", func() {
		sched.RemoveSyncPoint(dev, 1)
		sched.RemoveSyncPoints(dev)

		Expect(sched.Pending()).To(BeFalse())
	})

	It("should dispatch sync points registered during dispatch within the same call", func() {
		sched.SetSyncPoint(50, dev, 1)

		first := dev.EXPECT().
			ExecuteUntil(EmuTime(50), 1).
			Do(func(t EmuTime, userData int) {
				sched.SetSyncPoint(80, dev, 2)
			})
		dev.EXPECT().ExecuteUntil(EmuTime(80), 2).After(first)

		sched.Schedule(100)

		Expect(sched.Pending()).To(BeFalse())
		Expect(sched.CurrentTime()).To(Equal(EmuTime(100)))
	})

	It("should defer mid-dispatch registrations beyond the limit", func() {
		sched.SetSyncPoint(50, dev, 1)

		dev.EXPECT().
			ExecuteUntil(EmuTime(50), 1).
			Do(func(t EmuTime, userData int) {
				sched.SetSyncPoint(150, dev, 2)
			})

		sched.Schedule(100)

		Expect(sched.PendingSyncPoint(dev, 2)).To(BeTrue())
		Expect(sched.NextSyncPoint()).To(Equal(EmuTime(150)))
	})

	It("should let a callback remove another device's sync points", func() {
		other := NewMockSchedulable(mockCtrl)
		other.EXPECT().Name().Return("other").AnyTimes()

		sched.SetSyncPoint(50, dev, 1)
		sched.SetSyncPoint(80, other, 0)

		dev.EXPECT().
			ExecuteUntil(EmuTime(50), 1).
			Do(func(t EmuTime, userData int) {
				sched.RemoveSyncPoints(other)
			})

		sched.Schedule(100)

		Expect(sched.Pending()).To(BeFalse())
	})

	It("should dispatch same-time sync points in registration order", func() {
		devB := NewMockSchedulable(mockCtrl)
		devB.EXPECT().Name().Return("devB").AnyTimes()

		sched.SetSyncPoint(100, dev, 0)
		sched.SetSyncPoint(100, devB, 0)
		sched.SetSyncPoint(100, dev, 7)

		first := dev.EXPECT().ExecuteUntil(EmuTime(100), 0)
		second := devB.EXPECT().ExecuteUntil(EmuTime(100), 0).After(first)
		dev.EXPECT().ExecuteUntil(EmuTime(100), 7).After(second)

		sched.Schedule(100)
	})

	It("should remove all sync points of a device", func() {
		devB := NewMockSchedulable(mockCtrl)
		devB.EXPECT().Name().Return("devB").AnyTimes()

		sched.SetSyncPoint(100, dev, 1)
		sched.SetSyncPoint(200, dev, 2)
		sched.SetSyncPoint(300, dev, 3)
		sched.SetSyncPoint(150, devB, 1)

		sched.RemoveSyncPoints(dev)

		Expect(sched.PendingSyncPoint(dev, 1)).To(BeFalse())
		Expect(sched.PendingSyncPoint(dev, 2)).To(BeFalse())
		Expect(sched.PendingSyncPoint(dev, 3)).To(BeFalse())
		Expect(sched.PendingSyncPoint(devB, 1)).To(BeTrue())
		Expect(sched.NextSyncPoint()).To(Equal(EmuTime(150)))
	})

	It("should remove one of several matching sync points", func() {
		sched.SetSyncPoint(100, dev, 1)
		sched.SetSyncPoint(200, dev, 1)

		sched.RemoveSyncPoint(dev, 1)

		Expect(sched.PendingSyncPoint(dev, 1)).To(BeTrue())

		sched.RemoveSyncPoint(dev, 1)

		Expect(sched.PendingSyncPoint(dev, 1)).To(BeFalse())
	})

	It("should treat pendingSyncPoint as a pure query", func() {
		sched.SetSyncPoint(100, dev, 1)

		Expect(sched.PendingSyncPoint(dev, 1)).To(BeTrue())
		Expect(sched.PendingSyncPoint(dev, 1)).To(BeTrue())
		Expect(sched.NextSyncPoint()).To(Equal(EmuTime(100)))

		dev.EXPECT().ExecuteUntil(EmuTime(100), 1)
		sched.Schedule(100)
	})

	It("should cancel exactly the registered sync point", func() {
		reg := sched.SetSyncPoint(100, dev, 1)
		sched.SetSyncPoint(100, dev, 1)

		Expect(reg.Pending()).To(BeTrue())
		reg.Cancel()
		Expect(reg.Pending()).To(BeFalse())

		// The twin with the same device and tag is untouched.
		Expect(sched.PendingSyncPoint(dev, 1)).To(BeTrue())

		reg.Cancel() // no-op
	})

	It("should panic when registering in the past", func() {
		sched.Schedule(100)

		Expect(func() {
			sched.SetSyncPoint(99, dev, 0)
		}).To(Panic())
	})

	It("should panic when a callback registers at the current time", func() {
		sched.SetSyncPoint(50, dev, 1)

		dev.EXPECT().
			ExecuteUntil(EmuTime(50), 1).
			Do(func(t EmuTime, userData int) {
				sched.SetSyncPoint(50, dev, 2)
			})

		Expect(func() {
			sched.Schedule(100)
		}).To(Panic())
	})

	It("should panic when querying next with nothing pending", func() {
		Expect(func() {
			sched.NextSyncPoint()
		}).To(Panic())
	})

	It("should panic when the schedule limit goes backwards", func() {
		sched.Schedule(100)

		Expect(func() {
			sched.Schedule(99)
		}).To(Panic())
	})

	It("should notify the driver of a new earliest sync point", func() {
		driver := NewMockDriver(mockCtrl)
		sched.SetDriver(driver)

		driver.EXPECT().NotifySyncPoint(EmuTime(100))
		sched.SetSyncPoint(100, dev, 0)

		// Not the earliest, no notification.
		sched.SetSyncPoint(200, dev, 1)

		driver.EXPECT().NotifySyncPoint(EmuTime(60))
		sched.SetSyncPoint(60, dev, 2)
	})

	It("should panic when binding a second driver", func() {
		sched.SetDriver(NewMockDriver(mockCtrl))

		Expect(func() {
			sched.SetDriver(NewMockDriver(mockCtrl))
		}).To(Panic())
	})
})
