package mongo_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	approvalMongo "github.com/frahmantamala/office-hr/internal/approval/mongo"
	approvalDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/approval"
	"github.com/frahmantamala/office-hr/internal/core/mongodb"
)

func TestApprovalMongo(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Approval Mongo Suite")
}

var _ = Describe("Approval MongoDB Repository", func() {
	var (
		client *mongodb.Client
		repo   approval.RepositoryAPI
		ctx    context.Context
	)

	BeforeEach(func() {
		uri := os.Getenv("MONGO_TEST_URI")
		if uri == "" {
			Skip("MONGO_TEST_URI is not set")
		}
		ctx = context.Background()

		var err error
		client, err = mongodb.Connect(ctx, internal.DatabaseConfig{
			Driver:           internal.DriverMongo,
			Source:           uri,
			Name:             fmt.Sprintf("office_hr_test_%d", time.Now().UnixNano()),
			OperationTimeout: 5 * time.Second,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(client.EnsureIndexes(ctx)).To(Succeed())
		repo = approvalMongo.NewApprovalRepository(client)

		DeferCleanup(func() {
			Expect(client.Database().Drop(context.Background())).To(Succeed())
			Expect(client.Close(context.Background())).To(Succeed())
		})
	})

	pending := func(id, company, entityID string) *approvalDatamodel.Approval {
		now := time.Now().UTC()
		return &approvalDatamodel.Approval{
			ID:          id,
			CompanyID:   company,
			EntityType:  approval.EntityLeave,
			EntityID:    entityID,
			WorkflowKey: approval.WorkflowLeaveDefault,
			CurrentStep: 1,
			Status:      string(approval.StatusPending),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	It("enforces one approval per entity and company", func() {
		Expect(repo.Create(ctx, pending("apv_1", "c1", "lv_1"))).To(Succeed())
		Expect(repo.Create(ctx, pending("apv_2", "c1", "lv_1"))).To(MatchError(approval.ErrApprovalExists))
		Expect(repo.Create(ctx, pending("apv_3", "c2", "lv_1"))).To(Succeed())
	})

	It("hides approvals of other companies", func() {
		Expect(repo.Create(ctx, pending("apv_1", "c1", "lv_1"))).To(Succeed())
		_, err := repo.GetByID(ctx, "c2", "apv_1")
		Expect(err).To(MatchError(approval.ErrApprovalNotFound))
	})

	It("lets a single concurrent decision match", func() {
		Expect(repo.Create(ctx, pending("apv_1", "c1", "lv_1"))).To(Succeed())

		var (
			wg  sync.WaitGroup
			won atomic.Int32
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer GinkgoRecover()
				defer wg.Done()
				ok, err := repo.DecideIfPending(ctx, "c1", "apv_1", string(approval.StatusApproved), fmt.Sprintf("hr%d", n), "", time.Now())
				Expect(err).NotTo(HaveOccurred())
				if ok {
					won.Add(1)
				}
			}(i)
		}
		wg.Wait()
		Expect(won.Load()).To(BeEquivalentTo(1))

		stored, err := repo.GetByID(ctx, "c1", "apv_1")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Status).To(Equal(string(approval.StatusApproved)))
	})
})
