package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/office-hr/internal"
	leaveDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/leave"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
	"github.com/frahmantamala/office-hr/internal/leave"
	leavePostgres "github.com/frahmantamala/office-hr/internal/leave/postgres"
)

func TestLeavePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Postgres Suite")
}

var _ = Describe("Leave PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo leave.RepositoryAPI
		ctx  context.Context
	)

	newLeave := func(id, company string, created time.Time) *leaveDatamodel.LeaveRequest {
		return &leaveDatamodel.LeaveRequest{
			ID:                id,
			CompanyID:         company,
			EmployeeID:        "emp1",
			LeaveType:         "annual",
			StartDate:         "2026-11-02",
			EndDate:           "2026-11-06",
			Status:            leave.StatusPending,
			RequestedByUserID: "emp1",
			CreatedAt:         created,
			UpdatedAt:         created,
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), sqlstore.Config())
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&leaveDatamodel.LeaveRequest{})).To(Succeed())

		repo = leavePostgres.NewLeaveRepository(db)
		ctx = context.Background()
	})

	It("scopes reads to the company", func() {
		Expect(repo.Create(ctx, newLeave("lv_1", "c1", time.Now()))).To(Succeed())

		found, err := repo.GetByID(ctx, "c1", "lv_1")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.EmployeeID).To(Equal("emp1"))

		_, err = repo.GetByID(ctx, "c2", "lv_1")
		Expect(err).To(MatchError(leave.ErrLeaveNotFound))
	})

	It("lists newest first with a status filter and paging", func() {
		base := time.Now().UTC()
		for i, id := range []string{"lv_1", "lv_2", "lv_3"} {
			Expect(repo.Create(ctx, newLeave(id, "c1", base.Add(time.Duration(i)*time.Minute)))).To(Succeed())
		}
		_, err := repo.SetDecision(ctx, "c1", "lv_1", leave.StatusApproved, "", base)
		Expect(err).NotTo(HaveOccurred())

		pending, total, err := repo.List(ctx, "c1", leave.ListFilter{Status: leave.StatusPending, Limit: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeEquivalentTo(2))
		Expect(pending).To(HaveLen(1))
		Expect(pending[0].ID).To(Equal("lv_3"))
	})

	It("writes the decision and reports a missing leave", func() {
		Expect(repo.Create(ctx, newLeave("lv_1", "c1", time.Now()))).To(Succeed())

		found, err := repo.SetDecision(ctx, "c1", "lv_1", leave.StatusRejected, "busy", time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())

		stored, err := repo.GetByID(ctx, "c1", "lv_1")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Status).To(Equal(leave.StatusRejected))
		Expect(stored.ApproverComment).To(Equal("busy"))

		found, err = repo.SetDecision(ctx, "c2", "lv_1", leave.StatusApproved, "", time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("deletes only within the company", func() {
		Expect(repo.Create(ctx, newLeave("lv_1", "c1", time.Now()))).To(Succeed())
		Expect(repo.Delete(ctx, "c2", "lv_1")).To(Succeed())
		_, err := repo.GetByID(ctx, "c1", "lv_1")
		Expect(err).NotTo(HaveOccurred())

		Expect(repo.Delete(ctx, "c1", "lv_1")).To(Succeed())
		_, err = repo.GetByID(ctx, "c1", "lv_1")
		Expect(err).To(MatchError(leave.ErrLeaveNotFound))
	})

	It("reports a statement past the operation timeout as DatabaseDown", func() {
		Expect(db.Use(sqlstore.OperationTimeout(20 * time.Millisecond))).To(Succeed())
		Expect(repo.Create(ctx, newLeave("lv_1", "c1", time.Now()))).To(Succeed())
		_, err := repo.GetByID(ctx, "c1", "lv_1")
		Expect(err).NotTo(HaveOccurred())

		stall := func(*gorm.DB) { time.Sleep(100 * time.Millisecond) }
		Expect(db.Callback().Query().Before("gorm:query").After("sqlstore:timeout_query").
			Register("test:stall", stall)).To(Succeed())

		_, err = repo.GetByID(ctx, "c1", "lv_missing")
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, leave.ErrLeaveNotFound)).To(BeFalse())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeDatabaseDown))
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
	})
})
