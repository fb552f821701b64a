package leave_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval"
	"github.com/frahmantamala/office-hr/internal/approval/approvaltest"
	leaveDatamodel "github.com/frahmantamala/office-hr/internal/core/datamodel/leave"
	"github.com/frahmantamala/office-hr/internal/core/events"
	"github.com/frahmantamala/office-hr/internal/leave"
	"github.com/frahmantamala/office-hr/internal/notification"
	"github.com/frahmantamala/office-hr/internal/notification/notificationtest"
	"github.com/frahmantamala/office-hr/internal/permission"
)

func TestLeave(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Suite")
}

type MockLeaveRepository struct {
	mu     sync.Mutex
	leaves map[string]*leaveDatamodel.LeaveRequest
}

func NewMockLeaveRepository() *MockLeaveRepository {
	return &MockLeaveRepository{leaves: make(map[string]*leaveDatamodel.LeaveRequest)}
}

func (m *MockLeaveRepository) Create(_ context.Context, l *leaveDatamodel.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.leaves[l.ID] = &cp
	return nil
}

func (m *MockLeaveRepository) GetByID(_ context.Context, companyID, id string) (*leaveDatamodel.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leaves[id]
	if !ok || l.CompanyID != companyID {
		return nil, leave.ErrLeaveNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *MockLeaveRepository) List(_ context.Context, companyID string, f leave.ListFilter) ([]*leaveDatamodel.LeaveRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*leaveDatamodel.LeaveRequest
	for _, l := range m.leaves {
		if l.CompanyID == companyID && (f.Status == "" || l.Status == f.Status) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (m *MockLeaveRepository) SetDecision(_ context.Context, companyID, id, status, comment string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leaves[id]
	if !ok || l.CompanyID != companyID {
		return false, nil
	}
	l.Status = status
	l.ApproverComment = comment
	l.UpdatedAt = at
	return true, nil
}

func (m *MockLeaveRepository) Delete(_ context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.leaves[id]; ok && l.CompanyID == companyID {
		delete(m.leaves, id)
	}
	return nil
}

func (m *MockLeaveRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leaves)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

// failingApprovals refuses to open approvals.
type failingApprovals struct{}

func (failingApprovals) Open(context.Context, approval.NewApproval) (*approval.Approval, error) {
	return nil, internal.NewDatabaseDownError(errors.New("connection refused"))
}

func (failingApprovals) DecideEntity(context.Context, internal.Identity, string, string, approval.Status, string) (*approval.Approval, error) {
	return nil, errors.New("not reached")
}

var _ = Describe("Leave", func() {
	var (
		leaveRepo     *MockLeaveRepository
		approvalRepo  *approvaltest.MemoryRepository
		notifications *notificationtest.MemoryRepository
		publisher     *recordingPublisher
		audit         *approvaltest.Recorder
		workflow      *approval.Workflow
		service       *leave.Service
		ctx           context.Context
		employee      internal.Identity
		hr            internal.Identity
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		leaveRepo = NewMockLeaveRepository()
		approvalRepo = approvaltest.NewMemoryRepository()
		notifications = &notificationtest.MemoryRepository{}
		publisher = &recordingPublisher{}
		audit = &approvaltest.Recorder{}

		notifier := notification.NewService(notifications, logger)
		registry := approval.NewRegistry(approval.EntityHandlerFunc(func(context.Context, approval.Decision) error { return nil })).
			RegisterManaged(approval.EntityLeave, leave.NewDecisionHandler(leaveRepo, notifier, logger))
		workflow = approval.NewWorkflow(approvalRepo, registry, approval.DefaultAccessPolicy(permission.NewMatrix(nil)), audit, logger)
		service = leave.NewService(leaveRepo, workflow, publisher, audit, logger)

		ctx = context.Background()
		employee = internal.Identity{CompanyID: "c1", UserID: "emp1", Role: permission.RoleEmployee}
		hr = internal.Identity{CompanyID: "c1", UserID: "hr1", Role: permission.RoleHR}
	})

	request := func() *leave.Leave {
		l, err := service.Create(ctx, employee, leave.CreateLeaveDTO{
			EmployeeName: "Ann",
			LeaveType:    "Annual",
			StartDate:    "2026-11-02",
			EndDate:      "2026-11-06",
			Reason:       "family trip",
		})
		Expect(err).NotTo(HaveOccurred())
		return l
	}

	Describe("Create", func() {
		It("stores a pending leave gated by a pending approval", func() {
			l := request()
			Expect(l.ID).To(HavePrefix("lv_"))
			Expect(l.Status).To(Equal(leave.StatusPending))
			Expect(l.EmployeeID).To(Equal("emp1"))
			Expect(l.LeaveType).To(Equal("annual"))

			apv := approvalRepo.ForEntity(approval.EntityLeave, l.ID)
			Expect(apv).NotTo(BeNil())
			Expect(apv.ID).To(Equal(l.ApprovalID))
			Expect(apv.Status).To(Equal("pending"))
			Expect(apv.WorkflowKey).To(Equal(approval.WorkflowLeaveDefault))
		})

		It("announces the request for HR fan-out", func() {
			l := request()
			Expect(publisher.events).To(HaveLen(1))
			e, ok := publisher.events[0].(*events.LeaveRequestedEvent)
			Expect(ok).To(BeTrue())
			Expect(e.EventType()).To(Equal(events.EventLeaveRequested))
			Expect(e.Payload()).To(HaveKeyWithValue("leave_id", l.ID))
		})

		It("rejects an end date before the start date", func() {
			_, err := service.Create(ctx, employee, leave.CreateLeaveDTO{
				LeaveType: "sick", StartDate: "2026-11-06", EndDate: "2026-11-02",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(leaveRepo.count()).To(BeZero())
		})

		It("rejects unknown leave types", func() {
			_, err := service.Create(ctx, employee, leave.CreateLeaveDTO{
				LeaveType: "sabbatical", StartDate: "2026-11-02", EndDate: "2026-11-02",
			})
			Expect(err).To(HaveOccurred())
		})

		It("removes the leave when its approval cannot be opened", func() {
			broken := leave.NewService(leaveRepo, failingApprovals{}, publisher, audit,
				slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
			_, err := broken.Create(ctx, employee, leave.CreateLeaveDTO{
				LeaveType: "sick", StartDate: "2026-11-02", EndDate: "2026-11-02",
			})
			Expect(err).To(HaveOccurred())
			Expect(leaveRepo.count()).To(BeZero())
			Expect(publisher.events).To(BeEmpty())
		})
	})

	Describe("deciding through the approval workflow", func() {
		It("approves the leave and notifies the requester once", func() {
			l := request()

			_, err := workflow.Decide(ctx, hr, l.ApprovalID, approval.StatusApproved, "ok")
			Expect(err).NotTo(HaveOccurred())

			stored, err := service.Get(ctx, "c1", l.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusApproved))
			Expect(stored.ApproverComment).To(Equal("ok"))

			delivered := notifications.For("emp1")
			Expect(delivered).To(HaveLen(1))
			Expect(delivered[0].Title).To(Equal("Leave approved"))
			Expect(delivered[0].Message).To(Equal("Your leave request was approved."))
			Expect(delivered[0].Type).To(Equal(notification.TypeSuccess))
		})

		It("marks a rejection as a warning", func() {
			l := request()

			updated, err := service.Reject(ctx, hr, l.ID, "team is short")
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(leave.StatusRejected))
			Expect(updated.ApproverComment).To(Equal("team is short"))

			delivered := notifications.For("emp1")
			Expect(delivered).To(HaveLen(1))
			Expect(delivered[0].Type).To(Equal(notification.TypeWarn))
		})

		It("does not let the requester approve their own leave", func() {
			l := request()
			_, err := service.Approve(ctx, employee, l.ID, "")
			Expect(err).To(MatchError(internal.ErrPermissionDenied))

			stored, err := service.Get(ctx, "c1", l.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusPending))
		})

		It("returns Conflict when the leave was already decided", func() {
			l := request()
			_, err := service.Approve(ctx, hr, l.ID, "")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Reject(ctx, hr, l.ID, "changed my mind")
			Expect(err).To(MatchError(approval.ErrAlreadyDecided))
		})

		It("does not repeat the notification on replay", func() {
			l := request()
			_, err := workflow.Decide(ctx, hr, l.ApprovalID, approval.StatusApproved, "ok")
			Expect(err).NotTo(HaveOccurred())

			_, err = workflow.Replay(ctx, hr, l.ApprovalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(notifications.For("emp1")).To(HaveLen(1))
		})

		It("surfaces a failed notification and delivers it once on replay", func() {
			l := request()
			notifications.FailCreate = internal.NewDatabaseDownError(errors.New("down"))

			_, err := service.Approve(ctx, hr, l.ID, "")
			Expect(err).To(MatchError(approval.ErrSideEffectFailed))
			Expect(notifications.For("emp1")).To(BeEmpty())

			stored, err := service.Get(ctx, "c1", l.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusApproved))

			notifications.FailCreate = nil
			_, err = workflow.Replay(ctx, hr, l.ApprovalID)
			Expect(err).NotTo(HaveOccurred())
			_, err = workflow.Replay(ctx, hr, l.ApprovalID)
			Expect(err).NotTo(HaveOccurred())
			Expect(notifications.For("emp1")).To(HaveLen(1))
		})

		It("hides leaves of other companies", func() {
			l := request()
			outsider := internal.Identity{CompanyID: "c2", UserID: "hr9", Role: permission.RoleHR}
			_, err := service.Approve(ctx, outsider, l.ID, "")
			Expect(err).To(MatchError(leave.ErrLeaveNotFound))
		})
	})

	Describe("List", func() {
		It("filters by status", func() {
			first := request()
			request()
			_, err := service.Approve(ctx, hr, first.ID, "")
			Expect(err).NotTo(HaveOccurred())

			approved, total, err := service.List(ctx, "c1", leave.ListFilter{Status: leave.StatusApproved})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeEquivalentTo(1))
			Expect(approved[0].ID).To(Equal(first.ID))
		})
	})
})
