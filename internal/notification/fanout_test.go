package notification_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/office-hr/internal/core/events"
	"github.com/frahmantamala/office-hr/internal/notification"
	"github.com/frahmantamala/office-hr/internal/notification/notificationtest"
)

type stubDirectory struct {
	mu    sync.Mutex
	users map[string][]string
	calls int
}

func (d *stubDirectory) ListActiveUserIDsByRole(_ context.Context, companyID, role string, offset, limit int) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	all := d.users[companyID+"/"+role]
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

var _ = Describe("FanOut", func() {
	var (
		repo      *notificationtest.MemoryRepository
		directory *stubDirectory
		fanOut    *notification.FanOut
	)

	BeforeEach(func() {
		repo = &notificationtest.MemoryRepository{}
		hr := make([]string, 0, 7)
		for i := 0; i < 7; i++ {
			hr = append(hr, fmt.Sprintf("hr%d", i))
		}
		directory = &stubDirectory{users: map[string][]string{"c1/HR": hr, "c2/HR": {"other"}}}
		fanOut = notification.NewFanOut(notification.FanOutConfig{Workers: 2, QueueSize: 8, PageSize: 3},
			directory, notification.NewService(repo, quietLogger()), quietLogger())
	})

	AfterEach(func() {
		fanOut.Shutdown()
	})

	It("pages through every recipient without a cap", func() {
		Expect(fanOut.Enqueue(notification.FanOutJob{
			CompanyID: "c1", Role: "HR", Title: "New leave request", SourceKey: "leave:lv_1:requested",
		})).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(fanOut.Wait(ctx)).To(Succeed())

		Expect(repo.Recipients()).To(HaveLen(7))
		Expect(repo.Recipients()).NotTo(ContainElement("other"))
		Expect(directory.calls).To(Equal(3))
	})

	It("is idempotent for a repeated source key", func() {
		job := notification.FanOutJob{CompanyID: "c1", Role: "HR", Title: "t", SourceKey: "leave:lv_1:requested"}
		Expect(fanOut.Enqueue(job)).To(Succeed())
		Expect(fanOut.Enqueue(job)).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(fanOut.Wait(ctx)).To(Succeed())
		Expect(repo.Recipients()).To(HaveLen(7))
	})

	It("keeps Wait consistent with concurrent Enqueue calls", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(2)
			go func(n int) {
				defer GinkgoRecover()
				defer wg.Done()
				for j := 0; j < 5; j++ {
					err := fanOut.Enqueue(notification.FanOutJob{
						CompanyID: "c2", Role: "HR", Title: "t", SourceKey: fmt.Sprintf("burst:%d:%d", n, j),
					})
					if err != nil {
						Expect(err).To(MatchError(notification.ErrQueueFull))
					}
				}
			}(i)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				Expect(fanOut.Wait(ctx)).To(Succeed())
			}()
		}
		wg.Wait()

		Expect(fanOut.Wait(ctx)).To(Succeed())
		Expect(repo.Recipients()).NotTo(BeEmpty())
	})

	It("refuses jobs after shutdown and does not leave Wait hanging", func() {
		fanOut.Shutdown()

		err := fanOut.Enqueue(notification.FanOutJob{CompanyID: "c1", Role: "HR", Title: "late"})
		Expect(err).To(MatchError(notification.ErrFanOutStopped))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(fanOut.Wait(ctx)).To(Succeed())
	})

	It("subscribes to leave.requested on the event bus", func() {
		bus := events.NewEventBus(quietLogger())
		fanOut.RegisterEventHandlers(bus, "HR")

		Expect(bus.PublishSync(context.Background(), events.NewLeaveRequestedEvent("c2", "lv_9", "Dana"))).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(fanOut.Wait(ctx)).To(Succeed())
		Expect(repo.Recipients()).To(ConsistOf("other"))
	})
})
