package timing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("DispatchLogger", func() {
	var (
		mockCtrl *gomock.Controller
		sched    *Scheduler
		dev      *MockSchedulable
		buf      *bytes.Buffer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sched = NewScheduler()
		dev = NewMockSchedulable(mockCtrl)
		dev.EXPECT().Name().Return("board.dev").AnyTimes()

		buf = &bytes.Buffer{}
		sched.AcceptHook(NewDispatchLogger(log.New(buf, "", 0)))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should log every dispatched sync point", func() {
		sched.SetSyncPoint(100, dev, 1)
		sched.SetSyncPoint(250, dev, 2)
		dev.EXPECT().ExecuteUntil(gomock.Any(), gomock.Any()).Times(2)

		sched.Schedule(300)

		Expect(buf.String()).To(Equal(
			"100, board.dev, 1\n250, board.dev, 2\n"))
	})

	It("should not log anything on the fast path", func() {
		sched.SetSyncPoint(100, dev, 1)

		sched.Schedule(99)

		Expect(buf.String()).To(BeEmpty())
	})
})
