package user_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	"github.com/frahmantamala/office-hr/internal/approval/approvaltest"
	userDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/user"
	"github.com/frahmantamala/office-hr/internal/core/security"
	"github.com/frahmantamala/office-hr/internal/notification"
	"github.com/frahmantamala/office-hr/internal/notification/notificationtest"
	"github.com/frahmantamala/office-hr/internal/permission"
	"github.com/frahmantamala/office-hr/internal/user"
	"github.com/frahmantamala/office-hr/internal/user/usertest"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

const pinPrefix = "Your account has been approved. Your temporary PIN is "

var _ = Describe("User", func() {
	var (
		users         *usertest.MemoryRepository
		approvals     *approvaltest.MemoryRepository
		notifications *notificationtest.MemoryRepository
		audit         *approvaltest.Recorder
		hasher        *security.Hasher
		workflow      *approval.Workflow
		service       *user.Service
		ctx           context.Context
		admin         internal.Identity
		superuser     internal.Identity
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		users = usertest.NewMemoryRepository()
		approvals = approvaltest.NewMemoryRepository()
		notifications = &notificationtest.MemoryRepository{}
		audit = &approvaltest.Recorder{}
		hasher = security.NewHasher(0)
		matrix := permission.NewMatrix(nil)

		notifier := notification.NewService(notifications, logger)
		registry := approval.NewRegistry(approval.EntityHandlerFunc(func(context.Context, approval.Decision) error { return nil })).
			RegisterManaged(approval.EntityUserSignup, user.NewSignupHandler(users, notifier, hasher, 12, logger))
		workflow = approval.NewWorkflow(approvals, registry, approval.DefaultAccessPolicy(matrix), audit, logger)
		service = user.NewService(users, workflow, matrix, hasher, audit, logger)

		ctx = context.Background()
		admin = internal.Identity{CompanyID: "c1", UserID: "adm", Role: permission.RoleAdmin}
		superuser = internal.Identity{CompanyID: "c1", UserID: "su", Role: permission.RoleSuperuser}
	})

	signup := func(email string) *user.SignupResponse {
		resp, err := service.Signup(ctx, user.SignupDTO{
			CompanyID:     "c1",
			FullName:      "Nina Hart",
			Email:         email,
			RoleRequested: "hr",
		})
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Describe("Create", func() {
		It("stores a user with a hashed PIN and lowercased email", func() {
			created, err := service.Create(ctx, admin, user.CreateUserDTO{
				FullName: "Ann Lee", Email: "Ann@Example.com", RoleKey: "employee", Pin: "123456",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(HavePrefix("usr_"))
			Expect(created.Email).To(Equal("ann@example.com"))
			Expect(created.RoleKey).To(Equal(permission.RoleEmployee))
			Expect(created.Status).To(Equal(user.StatusActive))

			stored, err := users.GetByID(ctx, "c1", created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.SecretHash).NotTo(BeEmpty())
			Expect(stored.SecretHash).NotTo(ContainSubstring("123456"))
			Expect(hasher.VerifySecret("123456", user.StoredSecret(stored))).To(BeTrue())
			Expect(audit.Actions()).To(ContainElement("CREATE"))
		})

		It("returns Conflict for a duplicate email in the same company", func() {
			dto := user.CreateUserDTO{FullName: "Ann Lee", Email: "ann@example.com", RoleKey: "EMPLOYEE"}
			_, err := service.Create(ctx, admin, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, admin, dto)
			Expect(err).To(MatchError(user.ErrEmailExists))

			other := internal.Identity{CompanyID: "c2", UserID: "adm2", Role: permission.RoleAdmin}
			_, err = service.Create(ctx, other, dto)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects roles missing from the matrix", func() {
			_, err := service.Create(ctx, admin, user.CreateUserDTO{
				FullName: "Ann Lee", Email: "ann@example.com", RoleKey: "JANITOR",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidRole))
		})
	})

	Describe("Update and SetStatus", func() {
		var created *user.User

		BeforeEach(func() {
			var err error
			created, err = service.Create(ctx, admin, user.CreateUserDTO{
				FullName: "Ann Lee", Email: "ann@example.com", RoleKey: "EMPLOYEE",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("changes only the provided fields", func() {
			phone := " +62 811 "
			updated, err := service.Update(ctx, admin, created.ID, user.UpdateUserDTO{Phone: &phone})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Phone).To(Equal("+62 811"))
			Expect(updated.FullName).To(Equal("Ann Lee"))
		})

		It("hides users of other companies", func() {
			name := "Other"
			outsider := internal.Identity{CompanyID: "c2", UserID: "x", Role: permission.RoleAdmin}
			_, err := service.Update(ctx, outsider, created.ID, user.UpdateUserDTO{FullName: &name})
			Expect(err).To(MatchError(user.ErrUserNotFound))

			_, err = service.Get(ctx, "c2", created.ID)
			Expect(err).To(MatchError(user.ErrUserNotFound))
		})

		It("only accepts active or inactive", func() {
			u, err := service.SetStatus(ctx, admin, created.ID, user.StatusInactive)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Status).To(Equal(user.StatusInactive))

			_, err = service.SetStatus(ctx, admin, created.ID, user.StatusRejected)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Signup", func() {
		It("creates a pending user gated by a user_signup approval", func() {
			resp := signup("nina@example.com")
			Expect(resp.User.Status).To(Equal(user.StatusPendingApproval))
			Expect(resp.User.RoleKey).To(Equal(permission.RoleEmployee))
			Expect(resp.User.RoleRequested).To(Equal(permission.RoleHR))

			apv := approvals.ForEntity(approval.EntityUserSignup, resp.User.ID)
			Expect(apv).NotTo(BeNil())
			Expect(apv.ID).To(Equal(resp.ApprovalID))
			Expect(apv.WorkflowKey).To(Equal(approval.WorkflowUserSignup))
		})

		It("refuses roles outside the signup set", func() {
			_, err := service.Signup(ctx, user.SignupDTO{
				CompanyID: "c1", FullName: "Nina Hart", Email: "nina@example.com", RoleRequested: "SUPERUSER",
			})
			Expect(err).To(HaveOccurred())
			Expect(users.Count()).To(BeZero())
		})

		It("activates the user with a fresh credential delivered once", func() {
			resp := signup("nina@example.com")
			users.Put(withSecret(mustGet(users, resp.User.ID), "old-hash"))

			_, err := workflow.Decide(ctx, superuser, resp.ApprovalID, approval.StatusApproved, "")
			Expect(err).NotTo(HaveOccurred())

			stored := mustGet(users, resp.User.ID)
			Expect(stored.Status).To(Equal(user.StatusActive))
			Expect(stored.RoleKey).To(Equal(permission.RoleHR))
			Expect(stored.SecretHash).NotTo(Equal("old-hash"))
			Expect(stored.SecretIterations).To(BeNumerically(">=", security.DefaultIterations))

			delivered := notifications.For(resp.User.ID)
			Expect(delivered).To(HaveLen(1))
			Expect(delivered[0].Message).To(HavePrefix(pinPrefix))
			pin := strings.TrimPrefix(delivered[0].Message, pinPrefix)
			Expect(pin).NotTo(BeEmpty())
			Expect(stored.SecretHash).NotTo(ContainSubstring(pin))
			Expect(hasher.VerifySecret(pin, user.StoredSecret(stored))).To(BeTrue())
		})

		It("requires SUPERUSER to decide a signup", func() {
			resp := signup("nina@example.com")
			hr := internal.Identity{CompanyID: "c1", UserID: "hr", Role: permission.RoleHR}
			_, err := workflow.Decide(ctx, hr, resp.ApprovalID, approval.StatusApproved, "")
			Expect(err).To(MatchError(internal.ErrRoleRequired))
			Expect(mustGet(users, resp.User.ID).Status).To(Equal(user.StatusPendingApproval))
		})

		It("marks a rejected signup and passes the comment on", func() {
			resp := signup("nina@example.com")
			_, err := workflow.Decide(ctx, superuser, resp.ApprovalID, approval.StatusRejected, "unknown applicant")
			Expect(err).NotTo(HaveOccurred())

			Expect(mustGet(users, resp.User.ID).Status).To(Equal(user.StatusRejected))
			delivered := notifications.For(resp.User.ID)
			Expect(delivered).To(HaveLen(1))
			Expect(delivered[0].Message).To(ContainSubstring("unknown applicant"))
		})

		It("leaves a delivered credential alone on replay", func() {
			resp := signup("nina@example.com")
			_, err := workflow.Decide(ctx, superuser, resp.ApprovalID, approval.StatusApproved, "")
			Expect(err).NotTo(HaveOccurred())
			before := mustGet(users, resp.User.ID).SecretHash

			_, err = workflow.Replay(ctx, superuser, resp.ApprovalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mustGet(users, resp.User.ID).SecretHash).To(Equal(before))
			Expect(notifications.For(resp.User.ID)).To(HaveLen(1))
		})

		It("reissues the credential on replay when delivery failed", func() {
			resp := signup("nina@example.com")
			notifications.FailCreate = internal.NewDatabaseDownError(errors.New("down"))

			_, err := workflow.Decide(ctx, superuser, resp.ApprovalID, approval.StatusApproved, "")
			Expect(err).To(MatchError(approval.ErrSideEffectFailed))
			Expect(notifications.For(resp.User.ID)).To(BeEmpty())

			notifications.FailCreate = nil
			_, err = workflow.Replay(ctx, superuser, resp.ApprovalID)
			Expect(err).NotTo(HaveOccurred())

			delivered := notifications.For(resp.User.ID)
			Expect(delivered).To(HaveLen(1))
			pin := strings.TrimPrefix(delivered[0].Message, pinPrefix)
			Expect(hasher.VerifySecret(pin, user.StoredSecret(mustGet(users, resp.User.ID)))).To(BeTrue())
		})
	})

	Describe("SignupHandler", func() {
		var md *userDatamodel.User

		BeforeEach(func() {
			md = withSecret(&userDatamodel.User{
				ID: "usr_md", CompanyID: "c1", Email: "md@x.io", FullName: "Managing Director",
				RoleKey: permission.RoleMD, Status: user.StatusActive, CreatedAt: time.Now(),
			}, "md-hash")
			users.Put(md)
		})

		It("does not let an API caller open a signup approval", func() {
			_, err := workflow.Create(ctx, approval.NewApproval{
				CompanyID: "c1", EntityType: approval.EntityUserSignup, EntityID: md.ID,
				WorkflowKey: approval.WorkflowUserSignup, RequestedBy: admin.UserID,
			})
			Expect(err).To(MatchError(approval.ErrManagedEntity))
			Expect(approvals.ForEntity(approval.EntityUserSignup, md.ID)).To(BeNil())
		})

		DescribeTable("leaves an account that is not awaiting signup untouched",
			func(outcome approval.Status) {
				apv, err := workflow.Open(ctx, approval.NewApproval{
					CompanyID: "c1", EntityType: approval.EntityUserSignup, EntityID: md.ID,
					WorkflowKey: approval.WorkflowUserSignup, RequestedBy: admin.UserID,
				})
				Expect(err).NotTo(HaveOccurred())

				_, err = workflow.Decide(ctx, superuser, apv.ID, outcome, "")
				Expect(err).To(MatchError(approval.ErrSideEffectFailed))
				Expect(errors.Is(err, user.ErrSignupUserMissing)).To(BeTrue())

				stored := mustGet(users, md.ID)
				Expect(stored.RoleKey).To(Equal(permission.RoleMD))
				Expect(stored.Status).To(Equal(user.StatusActive))
				Expect(stored.SecretHash).To(Equal("md-hash"))
				Expect(notifications.For(md.ID)).To(BeEmpty())
			},
			Entry("approved", approval.StatusApproved),
			Entry("rejected", approval.StatusRejected),
		)

		It("refuses a second approval against an already activated signup", func() {
			resp := signup("nina@example.com")
			_, err := workflow.Decide(ctx, superuser, resp.ApprovalID, approval.StatusApproved, "")
			Expect(err).NotTo(HaveOccurred())
			activated := mustGet(users, resp.User.ID).SecretHash

			handler := user.NewSignupHandler(users, notification.NewService(notifications, slog.Default()), hasher, 12, slog.Default())
			err = handler.ApplyDecision(ctx, approval.Decision{
				ApprovalID: "apv_other", CompanyID: "c1", EntityType: approval.EntityUserSignup, EntityID: resp.User.ID,
				Outcome: approval.StatusApproved,
			})
			Expect(err).To(MatchError(user.ErrSignupUserMissing))
			Expect(mustGet(users, resp.User.ID).SecretHash).To(Equal(activated))
			Expect(notifications.For(resp.User.ID)).To(HaveLen(1))
		})

		It("reports a missing user as an internal error", func() {
			handler := user.NewSignupHandler(users, notification.NewService(notifications, slog.Default()), hasher, 12, slog.Default())
			err := handler.ApplyDecision(ctx, approval.Decision{
				ApprovalID: "apv_x", CompanyID: "c1", EntityType: approval.EntityUserSignup, EntityID: "usr_gone",
				Outcome: approval.StatusApproved,
			})
			Expect(err).To(MatchError(user.ErrSignupUserMissing))
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("ListActiveUserIDsByRole", func() {
		It("pages through active users of one role", func() {
			now := time.Now()
			for _, u := range []struct{ id, role, status string }{
				{"usr_a", permission.RoleHR, user.StatusActive},
				{"usr_b", permission.RoleHR, user.StatusActive},
				{"usr_c", permission.RoleHR, user.StatusInactive},
				{"usr_d", permission.RoleFinance, user.StatusActive},
			} {
				users.Put(&userDatamodel.User{ID: u.id, CompanyID: "c1", Email: u.id + "@x.io", RoleKey: u.role, Status: u.status, CreatedAt: now})
			}

			first, err := service.ListActiveUserIDsByRole(ctx, "c1", permission.RoleHR, 0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(Equal([]string{"usr_a"}))

			rest, err := service.ListActiveUserIDsByRole(ctx, "c1", permission.RoleHR, 1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(rest).To(Equal([]string{"usr_b"}))
		})
	})
})

func mustGet(repo *usertest.MemoryRepository, id string) *userDatamodel.User {
	u, err := repo.GetByID(context.Background(), "c1", id)
	Expect(err).NotTo(HaveOccurred())
	return u
}

func withSecret(u *userDatamodel.User, hash string) *userDatamodel.User {
	u.SecretHash = hash
	u.SecretSalt = "c2FsdA=="
	u.SecretIterations = security.DefaultIterations
	return u
}
