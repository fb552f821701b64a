package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	userDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/user"
	"github.com/frahmantamala/office-hr/internal/core/security"
	"github.com/frahmantamala/office-hr/internal/core/sqlstore"
	"github.com/frahmantamala/office-hr/internal/user"
	userPostgres "github.com/frahmantamala/office-hr/internal/user/postgres"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("User PostgreSQL Repository", func() {
	var (
		repo user.RepositoryAPI
		ctx  context.Context
	)

	newUser := func(id, company, email, role, status string) *userDatamodel.User {
		now := time.Now().UTC()
		return &userDatamodel.User{
			ID:        id,
			CompanyID: company,
			Email:     email,
			FullName:  "Test " + id,
			RoleKey:   role,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), sqlstore.Config())
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&userDatamodel.User{})).To(Succeed())

		repo = userPostgres.NewUserRepository(db)
		ctx = context.Background()
	})

	It("enforces one email per company", func() {
		Expect(repo.Create(ctx, newUser("usr_1", "c1", "a@x.io", "HR", user.StatusActive))).To(Succeed())
		err := repo.Create(ctx, newUser("usr_2", "c1", "a@x.io", "HR", user.StatusActive))
		Expect(err).To(MatchError(user.ErrEmailExists))
		Expect(repo.Create(ctx, newUser("usr_3", "c2", "a@x.io", "HR", user.StatusActive))).To(Succeed())
	})

	It("finds by email case-insensitively", func() {
		Expect(repo.Create(ctx, newUser("usr_1", "c1", "a@x.io", "HR", user.StatusActive))).To(Succeed())

		found, err := repo.FindByEmail(ctx, "c1", "A@X.IO")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal("usr_1"))

		_, err = repo.FindByEmail(ctx, "c2", "a@x.io")
		Expect(err).To(MatchError(user.ErrUserNotFound))
	})

	It("applies partial updates including the credential", func() {
		Expect(repo.Create(ctx, newUser("usr_1", "c1", "a@x.io", "EMPLOYEE", user.StatusPendingApproval))).To(Succeed())

		status, role := user.StatusActive, "HR"
		secret := security.HashedSecret{Hash: "h", Salt: "s", Iterations: security.DefaultIterations}
		found, err := repo.Update(ctx, "c1", "usr_1", user.Changes{Status: &status, RoleKey: &role, Secret: &secret}, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())

		stored, err := repo.GetByID(ctx, "c1", "usr_1")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Status).To(Equal(user.StatusActive))
		Expect(stored.RoleKey).To(Equal("HR"))
		Expect(stored.SecretHash).To(Equal("h"))
		Expect(stored.FullName).To(Equal("Test usr_1"))

		found, err = repo.Update(ctx, "c2", "usr_1", user.Changes{Status: &status}, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("pages active users of a role in id order", func() {
		for i := 0; i < 5; i++ {
			Expect(repo.Create(ctx, newUser(fmt.Sprintf("usr_%d", i), "c1", fmt.Sprintf("hr%d@x.io", i), "HR", user.StatusActive))).To(Succeed())
		}
		Expect(repo.Create(ctx, newUser("usr_9", "c1", "off@x.io", "HR", user.StatusInactive))).To(Succeed())

		page, err := repo.ListActiveIDsByRole(ctx, "c1", "HR", 3, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(page).To(Equal([]string{"usr_3", "usr_4"}))
	})
})
