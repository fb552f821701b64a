package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	employeeDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/employee"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
	"github.com/frahmantamala/office-hr/internal/employee"
	employeePostgres "github.com/frahmantamala/office-hr/internal/employee/postgres"
)

func TestEmployeePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Postgres Suite")
}

var _ = Describe("Employee PostgreSQL Repository", func() {
	var (
		repo employee.RepositoryAPI
		ctx  context.Context
	)

	newEmployee := func(id, company, code string) *employeeDatamodel.Employee {
		now := time.Now().UTC()
		return &employeeDatamodel.Employee{
			ID:           id,
			CompanyID:    company,
			EmployeeCode: code,
			FullName:     "Employee " + code,
			Status:       employee.StatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), sqlstore.Config())
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&employeeDatamodel.Employee{})).To(Succeed())

		repo = employeePostgres.NewEmployeeRepository(db)
		ctx = context.Background()
	})

	It("keeps employee codes unique per company", func() {
		Expect(repo.Create(ctx, newEmployee("emp_1", "c1", "E-1"))).To(Succeed())
		Expect(repo.Create(ctx, newEmployee("emp_2", "c1", "E-1"))).To(MatchError(employee.ErrEmployeeCodeExists))
		Expect(repo.Create(ctx, newEmployee("emp_3", "c2", "E-1"))).To(Succeed())

		found, err := repo.FindByCode(ctx, "c2", "E-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal("emp_3"))

		_, err = repo.FindByCode(ctx, "c3", "E-1")
		Expect(err).To(MatchError(employee.ErrEmployeeNotFound))
	})

	It("filters by join date and skips employees without one", func() {
		joined := newEmployee("emp_1", "c1", "E-1")
		joined.JoinDate = "2026-10-01"
		Expect(repo.Create(ctx, joined)).To(Succeed())
		Expect(repo.Create(ctx, newEmployee("emp_2", "c1", "E-2"))).To(Succeed())

		rows, total, err := repo.List(ctx, "c1", employee.ListFilter{JoinedSince: "2026-09-15"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeEquivalentTo(1))
		Expect(rows[0].ID).To(Equal("emp_1"))
	})

	It("lists birth dates of active employees only", func() {
		active := newEmployee("emp_1", "c1", "E-1")
		active.DOB = "1990-05-01"
		inactive := newEmployee("emp_2", "c1", "E-2")
		inactive.DOB = "1991-06-01"
		inactive.Status = employee.StatusInactive
		Expect(repo.Create(ctx, active)).To(Succeed())
		Expect(repo.Create(ctx, inactive)).To(Succeed())
		Expect(repo.Create(ctx, newEmployee("emp_3", "c1", "E-3"))).To(Succeed())

		Expect(repo.ListBirthDates(ctx, "c1")).To(Equal([]string{"1990-05-01"}))
	})

	It("reports whether an update or delete matched", func() {
		Expect(repo.Create(ctx, newEmployee("emp_1", "c1", "E-1"))).To(Succeed())
		dept := "Ops"

		ok, err := repo.Update(ctx, "c2", "emp_1", employee.Changes{Department: &dept}, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		ok, err = repo.Update(ctx, "c1", "emp_1", employee.Changes{Department: &dept}, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = repo.Delete(ctx, "c1", "emp_1")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		ok, err = repo.Delete(ctx, "c1", "emp_1")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})
